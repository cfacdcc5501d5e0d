package stock

import (
	"context"
	"fmt"
	"net/http"

	"stocktrack/internal/domain"
	"stocktrack/internal/pkg/logger"
	"stocktrack/internal/pkg/middleware"
)

// StockService define o contrato que o Handler espera da camada de Serviço.
type StockService interface {
	IncreaseStock(ctx context.Context, id string, in domain.AdjustmentInput) (domain.Product, error)
	DecreaseStock(ctx context.Context, id string, in domain.AdjustmentInput) (domain.Product, error)
}

// Handler agrupa todos os métodos de Handler de estoque.
type Handler struct {
	Service StockService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc StockService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error) {
	if err == nil {
		if jsonErr := middleware.WriteJSON(w, http.StatusOK, data); jsonErr != nil {
			h.Logger.Error("Falha ao codificar JSON de resposta", jsonErr)
		}
		return
	}

	status := middleware.WriteError(w, err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error(fmt.Sprintf("Erro de Servidor em %s %s", r.Method, r.URL.Path), err)
		return
	}
	h.Logger.Debug(fmt.Sprintf("Ajuste rejeitado com status %d.", status), map[string]interface{}{
		"path":  r.URL.Path,
		"error": err.Error(),
	})
}

type adjustFunc func(ctx context.Context, id string, in domain.AdjustmentInput) (domain.Product, error)

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request, fn adjustFunc) {
	var in domain.AdjustmentInput
	if err := middleware.DecodeJSON(w, r, &in); err != nil {
		h.handleServiceResponse(w, r, nil, err)
		return
	}

	product, err := fn(r.Context(), r.PathValue("id"), in)
	h.handleServiceResponse(w, r, product, err)
}

// IncreaseStockHandler lida com a requisição POST /products/{id}/increase-stock.
// @Summary Aumenta o estoque de um produto
// @Tags stock
// @Accept json
// @Produce json
// @Param id path string true "ID do produto"
// @Param adjustment body domain.AdjustmentInput true "Quantidade (inteiro positivo)"
// @Success 200 {object} domain.Product
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Router /products/{id}/increase-stock [post]
func (h *Handler) IncreaseStockHandler(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.Service.IncreaseStock)
}

// DecreaseStockHandler lida com a requisição POST /products/{id}/decrease-stock.
// @Summary Diminui o estoque de um produto
// @Description Falha com INSUFFICIENT_STOCK (400) se o estoque ficaria negativo.
// @Tags stock
// @Accept json
// @Produce json
// @Param id path string true "ID do produto"
// @Param adjustment body domain.AdjustmentInput true "Quantidade (inteiro positivo)"
// @Success 200 {object} domain.Product
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Router /products/{id}/decrease-stock [post]
func (h *Handler) DecreaseStockHandler(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.Service.DecreaseStock)
}
