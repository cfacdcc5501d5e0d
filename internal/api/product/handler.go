package product

import (
	"context"
	"fmt"
	"net/http"

	"stocktrack/internal/domain"
	"stocktrack/internal/pkg/logger"
	"stocktrack/internal/pkg/middleware"
)

// ProductService define o contrato que o Handler espera da camada de Serviço.
type ProductService interface {
	CreateProduct(ctx context.Context, in domain.ProductInput) (domain.Product, error)
	GetProductByID(ctx context.Context, id string) (domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, id string, in domain.ProductInput) (domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ListLowStock(ctx context.Context) ([]domain.Product, error)
}

// Handler agrupa todos os métodos de Handler do produto.
type Handler struct {
	Service ProductService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ProductService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// handleServiceResponse processa erros de serviço e envia respostas padronizadas ao cliente.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		if jsonErr := middleware.WriteJSON(w, successStatus, data); jsonErr != nil {
			h.Logger.Error("Falha ao codificar JSON de resposta", jsonErr)
		}
		return
	}

	status := middleware.WriteError(w, err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error(fmt.Sprintf("Erro de Servidor em %s %s", r.Method, r.URL.Path), err)
		return
	}
	h.Logger.Debug(fmt.Sprintf("Requisição rejeitada com status %d.", status), map[string]interface{}{
		"path":  r.URL.Path,
		"error": err.Error(),
	})
}

// CreateProductHandler lida com a requisição POST /products.
// @Summary Cria um produto
// @Tags products
// @Accept json
// @Produce json
// @Param product body domain.ProductInput true "Nome, descrição, estoque e limite de estoque baixo"
// @Success 201 {object} domain.Product
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 500 {object} domain.ErrorResponse
// @Router /products [post]
func (h *Handler) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	var in domain.ProductInput
	if err := middleware.DecodeJSON(w, r, &in); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusCreated)
		return
	}

	if claims, ok := middleware.GetUserClaimsFromContext(r.Context()); ok {
		h.Logger.Info("Criação de produto solicitada.", map[string]interface{}{"user_id": claims.UserID})
	}

	created, err := h.Service.CreateProduct(r.Context(), in)
	h.handleServiceResponse(w, r, created, err, http.StatusCreated)
}

// ListProductsHandler lida com a requisição GET /products.
// @Summary Lista todos os produtos (mais novos primeiro)
// @Tags products
// @Produce json
// @Success 200 {array} domain.Product
// @Failure 500 {object} domain.ErrorResponse
// @Router /products [get]
func (h *Handler) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	products, err := h.Service.ListProducts(r.Context())
	h.handleServiceResponse(w, r, products, err, http.StatusOK)
}

// ListLowStockHandler lida com a requisição GET /products/low-stock.
// @Summary Lista produtos com estoque abaixo do limite
// @Description Produtos com low_stock_threshold não nulo e stock_quantity menor que ele, do menor estoque para o maior.
// @Tags products
// @Produce json
// @Success 200 {array} domain.Product
// @Failure 500 {object} domain.ErrorResponse
// @Router /products/low-stock [get]
func (h *Handler) ListLowStockHandler(w http.ResponseWriter, r *http.Request) {
	products, err := h.Service.ListLowStock(r.Context())
	h.handleServiceResponse(w, r, products, err, http.StatusOK)
}

// GetProductByIDHandler lida com a requisição GET /products/{id}.
// @Summary Busca um produto
// @Tags products
// @Produce json
// @Param id path string true "ID do produto (24 caracteres hex)"
// @Success 200 {object} domain.Product
// @Failure 400 {object} domain.ErrorResponse "ID inválido"
// @Failure 404 {object} domain.ErrorResponse "Produto não encontrado"
// @Router /products/{id} [get]
func (h *Handler) GetProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	product, err := h.Service.GetProductByID(r.Context(), r.PathValue("id"))
	h.handleServiceResponse(w, r, product, err, http.StatusOK)
}

// UpdateProductHandler lida com a requisição PUT /products/{id}.
// @Summary Atualiza parcialmente um produto
// @Description Campos ausentes ficam inalterados; low_stock_threshold null volta para 5.
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "ID do produto"
// @Param product body domain.ProductInput true "Campos a alterar"
// @Success 200 {object} domain.Product
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Router /products/{id} [put]
func (h *Handler) UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	var in domain.ProductInput
	if err := middleware.DecodeJSON(w, r, &in); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	updated, err := h.Service.UpdateProduct(r.Context(), r.PathValue("id"), in)
	h.handleServiceResponse(w, r, updated, err, http.StatusOK)
}

// DeleteProductHandler lida com a requisição DELETE /products/{id}.
// @Summary Remove um produto
// @Tags products
// @Param id path string true "ID do produto"
// @Success 204 "Sem corpo"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Router /products/{id} [delete]
func (h *Handler) DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	err := h.Service.DeleteProduct(r.Context(), r.PathValue("id"))
	h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)
}
