package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/streadway/amqp"

	"stocktrack/internal/domain"
	"stocktrack/internal/pkg/logger"
)

// channel é o subconjunto de *amqp.Channel usado para publicar.
type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher envia alertas de estoque baixo para uma fila durável.
type Publisher struct {
	conn   *amqp.Connection
	ch     channel
	queue  string
	logger logger.Logger
	mu     sync.Mutex
}

// NewPublisher conecta ao RabbitMQ, abre um canal e declara a fila de alertas.
func NewPublisher(url, queue string, log logger.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar ao RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("falha ao abrir canal: %w", err)
	}

	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("falha ao declarar a fila %s: %w", queue, err)
	}

	log.Info("RabbitMQ conectado e fila declarada.", map[string]interface{}{"queue": queue})
	return &Publisher{conn: conn, ch: ch, queue: queue, logger: log}, nil
}

// PublishLowStockAlert publica o alerta como JSON persistente na fila padrão.
func (p *Publisher) PublishLowStockAlert(ctx context.Context, alert domain.LowStockAlert) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("falha ao serializar alerta: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.Publish(
		"",      // exchange padrão
		p.queue, // routing key = nome da fila
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			MessageId:    alert.ProductID,
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("falha ao publicar alerta: %w", err)
	}

	p.logger.Debug("Alerta de estoque baixo publicado.", map[string]interface{}{
		"queue":      p.queue,
		"product_id": alert.ProductID,
	})
	return nil
}

// Close fecha canal e conexão.
func (p *Publisher) Close() error {
	var errs []error
	if p.ch != nil {
		if err := p.ch.Close(); err != nil {
			errs = append(errs, fmt.Errorf("falha ao fechar canal: %w", err))
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("falha ao fechar conexão: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("erros ao fechar RabbitMQ: %v", errs)
	}
	return nil
}
