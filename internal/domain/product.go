package domain

import (
	"time"
)

// DefaultLowStockThreshold é o limite aplicado quando o cliente omite o campo na criação
// ou o envia como null numa atualização.
const DefaultLowStockThreshold int64 = 5

// Product representa um item de estoque (a Entidade).
// Não possui comportamento além do acesso aos campos: mutações passam pelo motor de
// ajuste de estoque (stock.go) ou pela substituição completa feita no Serviço.
type Product struct {
	ID                string    `json:"id" example:"652f1c2e9b1e8a3d4c5b6a79"`
	Name              string    `json:"name" example:"Widget"`
	Description       string    `json:"description" example:"Blue widget"`
	StockQuantity     int64     `json:"stock_quantity" example:"10"`
	LowStockThreshold *int64    `json:"low_stock_threshold" example:"5"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewProduct monta um Produto já normalizado com os valores padrão da entidade:
// estoque 0 e limite DefaultLowStockThreshold.
func NewProduct(name string) Product {
	return Product{
		Name:              name,
		LowStockThreshold: Threshold(DefaultLowStockThreshold),
	}
}

// Threshold devolve um ponteiro para v, útil ao preencher LowStockThreshold.
func Threshold(v int64) *int64 {
	return &v
}

// ProductInput é o payload de criação/atualização antes da validação.
// Cada campo guarda o JSON bruto e se ele estava presente, para que o validador
// diferencie "ausente" de "null".
type ProductInput struct {
	Name              RawField `json:"name" swaggertype:"string"`
	Description       RawField `json:"description" swaggertype:"string"`
	StockQuantity     RawField `json:"stock_quantity" swaggertype:"integer"`
	LowStockThreshold RawField `json:"low_stock_threshold" swaggertype:"integer"`
}

// ProductPatch contém apenas os campos já validados de uma atualização parcial.
// Um ponteiro nil significa "manter o valor atual".
type ProductPatch struct {
	Name              *string
	Description       *string
	StockQuantity     *int64
	LowStockThreshold *int64
}

// IsEmpty indica que nenhum campo foi enviado.
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.StockQuantity == nil && p.LowStockThreshold == nil
}

// Apply devolve uma cópia de product com os campos do patch aplicados.
func (p ProductPatch) Apply(product Product) Product {
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.StockQuantity != nil {
		product.StockQuantity = *p.StockQuantity
	}
	if p.LowStockThreshold != nil {
		product.LowStockThreshold = Threshold(*p.LowStockThreshold)
	}
	return product
}

// AdjustmentInput é o payload de increase-stock/decrease-stock.
type AdjustmentInput struct {
	Quantity RawField `json:"quantity" swaggertype:"integer"`
}

// --- Estruturas Auxiliares (Filtros e Contexto) ---

// ProductSort define a ordenação pedida à camada de Persistência.
type ProductSort int

const (
	// SortNewestFirst ordena por created_at decrescente.
	SortNewestFirst ProductSort = iota
	// SortStockAscending ordena por stock_quantity crescente.
	SortStockAscending
)

// ProductFilter define os parâmetros de busca (findAll / findWhere).
type ProductFilter struct {
	// LowStockOnly restringe o resultado aos produtos em que IsLowStock é verdadeiro.
	LowStockOnly bool
	Sort         ProductSort
}
