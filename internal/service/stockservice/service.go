package stockservice

import (
	"context"
	"errors"
	"time"

	"stocktrack/internal/domain"
	apperror "stocktrack/internal/errors"
	"stocktrack/internal/pkg/logger"
	"stocktrack/internal/validation"
)

// StockRepository define o contrato que o Serviço de Estoque espera da camada de Persistência.
type StockRepository interface {
	FindByID(ctx context.Context, id string) (domain.Product, error)
	Replace(ctx context.Context, id string, product domain.Product) (domain.Product, error)
}

// AlertPublisher recebe os alertas de estoque baixo (RabbitMQ em produção).
type AlertPublisher interface {
	PublishLowStockAlert(ctx context.Context, alert domain.LowStockAlert) error
}

// Service aplica os ajustes de estoque (increase/decrease) sobre o produto persistido.
type Service struct {
	repo      StockRepository
	publisher AlertPublisher
	logger    logger.Logger
	now       func() time.Time
}

// NewService cria e retorna uma nova instância do Serviço de Estoque.
// publisher pode ser nil; nesse caso nenhum alerta é enviado.
func NewService(repo StockRepository, publisher AlertPublisher, log logger.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// IncreaseStock soma a quantidade informada ao estoque do produto. Uma soma além do
// int64 é recusada com ValidationError antes de gravar.
func (s *Service) IncreaseStock(ctx context.Context, id string, in domain.AdjustmentInput) (domain.Product, error) {
	return s.adjust(ctx, id, in, domain.IncreaseStock)
}

// DecreaseStock subtrai a quantidade informada. Se o estoque ficaria negativo,
// devolve InsufficientStockError e nada é gravado.
func (s *Service) DecreaseStock(ctx context.Context, id string, in domain.AdjustmentInput) (domain.Product, error) {
	return s.adjust(ctx, id, in, domain.DecreaseStock)
}

// adjust faz leitura, ajuste em memória e substituição. Não há trava entre a leitura
// e a escrita: ajustes concorrentes no mesmo produto seguem "último a gravar vence".
func (s *Service) adjust(
	ctx context.Context,
	id string,
	in domain.AdjustmentInput,
	apply func(domain.Product, int64) (domain.Product, error),
) (domain.Product, error) {
	id, err := validation.ParseID(id)
	if err != nil {
		return domain.Product{}, err
	}
	quantity, err := validation.ValidateAdjustmentQuantity(in.Quantity)
	if err != nil {
		return domain.Product{}, err
	}

	s.logger.Debug("Iniciando ajuste de estoque no serviço.", map[string]interface{}{
		"id":       id,
		"quantity": quantity,
	})

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Product{}, internal(err, "Falha interna ao buscar produto.")
	}

	adjusted, err := apply(current, quantity)
	if err != nil {
		s.logger.Info("Ajuste de estoque recusado.", map[string]interface{}{
			"id":       id,
			"stock":    current.StockQuantity,
			"quantity": quantity,
		})
		return domain.Product{}, err
	}

	saved, err := s.repo.Replace(ctx, id, adjusted)
	if err != nil {
		s.logger.Error("Falha ao gravar ajuste de estoque no repositório.", err)
		return domain.Product{}, internal(err, "Falha interna ao ajustar estoque.")
	}

	s.logger.Info("Estoque ajustado com sucesso.", map[string]interface{}{
		"id":           id,
		"new_quantity": saved.StockQuantity,
	})

	if domain.CrossedLowStock(current, saved) {
		s.notifyLowStock(ctx, saved)
	}
	return saved, nil
}

// notifyLowStock publica o alerta; falhas são apenas registradas em log.
func (s *Service) notifyLowStock(ctx context.Context, product domain.Product) {
	if s.publisher == nil {
		return
	}
	alert := domain.NewLowStockAlert(product, s.now())
	if err := s.publisher.PublishLowStockAlert(ctx, alert); err != nil {
		s.logger.Warn("Falha ao publicar alerta de estoque baixo.", map[string]interface{}{
			"id":    product.ID,
			"error": err.Error(),
		})
	}
}

func internal(err error, msg string) error {
	var appErr apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.NewInternalError(msg, err)
}
