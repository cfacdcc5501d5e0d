package router

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "stocktrack/docs" // registra a especificação OpenAPI servida em /swagger/
	"stocktrack/internal/api/product"
	"stocktrack/internal/api/stock"
	"stocktrack/internal/api/user"
	"stocktrack/internal/domain"
	"stocktrack/internal/pkg/logger"
	"stocktrack/internal/pkg/middleware"
)

// Dependencies reúne os Handlers e middlewares opcionais montados em cmd/main.go.
type Dependencies struct {
	Products *product.Handler
	Stock    *stock.Handler
	Logger   logger.Logger

	// Users e Tokens ligam /register, /login e a proteção das rotas de escrita.
	// Com Tokens nil a autenticação fica desligada.
	Users  *user.Handler
	Tokens middleware.TokenValidator

	// RateLimit é aplicado a todas as rotas quando não for nil.
	RateLimit func(http.Handler) http.Handler
}

// NewRouter configura e retorna o roteador HTTP principal.
func NewRouter(deps Dependencies) http.Handler {
	mux := http.NewServeMux()

	// --- Health Check ---
	mux.HandleFunc("GET /{$}", HealthHandler)
	mux.HandleFunc("GET /ping", PingHandler)
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// --- Autenticação ---
	authEnabled := deps.Tokens != nil
	if authEnabled && deps.Users != nil {
		mux.HandleFunc("POST /register", deps.Users.RegisterUserHandler)
		mux.HandleFunc("POST /login", deps.Users.LoginUserHandler)
	}

	write := func(h http.HandlerFunc) http.Handler { return h }
	admin := write
	if authEnabled {
		authn := middleware.Authenticate(deps.Tokens)
		write = func(h http.HandlerFunc) http.Handler {
			return authn(h)
		}
		admin = func(h http.HandlerFunc) http.Handler {
			return middleware.Chain(h, authn, middleware.RequireRole(domain.RoleAdmin))
		}
	}

	// --- Produtos ---
	// "GET /products/low-stock" é mais específico que "GET /products/{id}" e tem precedência.
	mux.HandleFunc("GET /products", deps.Products.ListProductsHandler)
	mux.HandleFunc("GET /products/low-stock", deps.Products.ListLowStockHandler)
	mux.HandleFunc("GET /products/{id}", deps.Products.GetProductByIDHandler)
	mux.Handle("POST /products", write(deps.Products.CreateProductHandler))
	mux.Handle("PUT /products/{id}", write(deps.Products.UpdateProductHandler))
	mux.Handle("DELETE /products/{id}", admin(deps.Products.DeleteProductHandler))

	// --- Estoque ---
	mux.Handle("POST /products/{id}/increase-stock", write(deps.Stock.IncreaseStockHandler))
	mux.Handle("POST /products/{id}/decrease-stock", write(deps.Stock.DecreaseStockHandler))

	mws := []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.AccessLog(deps.Logger),
	}
	if deps.RateLimit != nil {
		mws = append(mws, deps.RateLimit)
	}
	return middleware.Chain(mux, mws...)
}

// HealthHandler responde {"status":"ok"} na raiz.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	_ = middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
