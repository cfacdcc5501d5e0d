package domain

import (
	"math"
	"time"

	apperror "stocktrack/internal/errors"
)

// IncreaseStock soma quantity ao estoque. quantity já deve ter sido validada como
// inteiro positivo. O único limite é o do int64: uma soma que estouraria é recusada
// com ValidationError e o produto volta sem alteração.
func IncreaseStock(product Product, quantity int64) (Product, error) {
	if quantity > math.MaxInt64-product.StockQuantity {
		return product, apperror.NewValidationError("Resulting stock quantity is too large")
	}
	product.StockQuantity += quantity
	return product, nil
}

// DecreaseStock subtrai quantity do estoque.
// Falha com InsufficientStockError quando o resultado seria negativo; nesse caso o
// produto de entrada é devolvido sem alteração.
func DecreaseStock(product Product, quantity int64) (Product, error) {
	if product.StockQuantity-quantity < 0 {
		return product, apperror.NewInsufficientStockError("Insufficient stock")
	}
	product.StockQuantity -= quantity
	return product, nil
}

// IsLowStock classifica o produto como estoque baixo: limite não nulo e
// stock_quantity estritamente menor que o limite.
func IsLowStock(product Product) bool {
	if product.LowStockThreshold == nil {
		return false
	}
	return product.StockQuantity < *product.LowStockThreshold
}

// CrossedLowStock indica que o ajuste levou o produto de "normal" para "estoque baixo".
func CrossedLowStock(before, after Product) bool {
	return !IsLowStock(before) && IsLowStock(after)
}

// LowStockAlert é a mensagem publicada quando um produto entra em estoque baixo.
type LowStockAlert struct {
	ProductID         string    `json:"product_id"`
	Name              string    `json:"name"`
	StockQuantity     int64     `json:"stock_quantity"`
	LowStockThreshold int64     `json:"low_stock_threshold"`
	AlertedAt         time.Time `json:"alerted_at"`
}

// NewLowStockAlert monta o alerta a partir do produto já ajustado.
// Só deve ser chamado quando IsLowStock(product) é verdadeiro.
func NewLowStockAlert(product Product, at time.Time) LowStockAlert {
	alert := LowStockAlert{
		ProductID:     product.ID,
		Name:          product.Name,
		StockQuantity: product.StockQuantity,
		AlertedAt:     at,
	}
	if product.LowStockThreshold != nil {
		alert.LowStockThreshold = *product.LowStockThreshold
	}
	return alert
}
