package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"stocktrack/config"
	"stocktrack/internal/api/product"
	"stocktrack/internal/api/router"
	"stocktrack/internal/api/stock"
	"stocktrack/internal/api/user"
	"stocktrack/internal/pkg/cache"
	"stocktrack/internal/pkg/database"
	"stocktrack/internal/pkg/logger"
	"stocktrack/internal/pkg/middleware"
	"stocktrack/internal/pkg/rabbitmq"
	"stocktrack/internal/pkg/token"
	"stocktrack/internal/repository/productrepo"
	"stocktrack/internal/repository/userrepo"
	"stocktrack/internal/service/productservice"
	"stocktrack/internal/service/stockservice"
	"stocktrack/internal/service/userservice"
)

// productStore é a união dos contratos que os dois serviços de produto esperam.
type productStore interface {
	productservice.ProductRepository
	stockservice.StockRepository
}

func main() {
	// 0. .env é opcional: em contêiner as variáveis vêm do ambiente.
	envErr := godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuração inválida: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.LogLevel)
	if s, ok := log.(interface{ Sync() error }); ok {
		defer s.Sync()
	}
	if envErr != nil {
		log.Debug("Arquivo .env não encontrado; usando apenas o ambiente.", nil)
	}
	log.Info("Configurações carregadas.", map[string]interface{}{
		"env":     cfg.Environment,
		"storage": cfg.StorageDriver,
		"auth":    cfg.AuthEnabled,
	})

	ctx := context.Background()

	// 1. Cache (Redis), opcional
	var cacheClient cache.Client
	if cfg.RedisAddr != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			log.Warn("Redis indisponível; seguindo sem cache e sem rate limit.", map[string]interface{}{"error": err.Error()})
		} else {
			defer redisClient.Close()
			cacheClient = redisClient
			log.Info("Conexão Redis estabelecida.", nil)
		}
	}

	// 2. Persistência
	var (
		products productStore
		users    userservice.UserRepository
		db       *sql.DB
	)
	switch cfg.StorageDriver {
	case config.DriverMemory:
		products = productrepo.NewMemoryRepository()
		users = userrepo.NewMemoryRepository()
		log.Info("Usando persistência em memória.", nil)
	default:
		db, err = database.NewPostgresDB(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("Falha ao conectar ao banco de dados.", err)
		}
		defer db.Close()
		log.Info("Conexão PostgreSQL estabelecida.", nil)

		products = productrepo.NewPostgresRepository(db, cacheClient, cfg.DBTimeout, cfg.CacheTTL, log)
		users = userrepo.NewUserRepository(db, cfg.DBTimeout, log)
	}

	// 3. Alertas de estoque baixo (RabbitMQ), opcional
	var publisher stockservice.AlertPublisher
	if cfg.RabbitMQURL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.LowStockQueue, log)
		if err != nil {
			log.Warn("RabbitMQ indisponível; alertas de estoque baixo desligados.", map[string]interface{}{"error": err.Error()})
		} else {
			defer p.Close()
			publisher = p
		}
	}

	// 4. Serviços e Handlers
	productSvc := productservice.NewService(products, log)
	stockSvc := stockservice.NewService(products, publisher, log)

	deps := router.Dependencies{
		Products: product.NewHandler(productSvc, log),
		Stock:    stock.NewHandler(stockSvc, log),
		Logger:   log,
	}

	if cfg.AuthEnabled {
		tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)
		userSvc := userservice.NewService(users, tokenSvc, cfg.AdminEmail, log)
		deps.Users = user.NewHandler(userSvc, log)
		deps.Tokens = tokenSvc
		log.Info("Autenticação JWT habilitada.", nil)
	}

	if cacheClient != nil {
		deps.RateLimit = middleware.RateLimiter(cacheClient, cfg.RateLimitMaxRequests, cfg.RateLimitPeriod, log)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.NewRouter(deps),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		log.Info("Servidor stocktrack ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	log.Info("Servidor encerrado com sucesso.", nil)
}
