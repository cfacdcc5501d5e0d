package productrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"stocktrack/internal/domain"
	apperror "stocktrack/internal/errors"
)

// MemoryRepository guarda os produtos num mapa protegido por mutex.
// Usado com STORAGE_DRIVER=memory e nos testes de rota.
type MemoryRepository struct {
	mu       sync.RWMutex
	products map[string]domain.Product
	now      func() time.Time
}

// NewMemoryRepository cria um repositório vazio.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		products: make(map[string]domain.Product),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func clone(p domain.Product) domain.Product {
	if p.LowStockThreshold != nil {
		p.LowStockThreshold = domain.Threshold(*p.LowStockThreshold)
	}
	return p
}

func (m *MemoryRepository) Insert(ctx context.Context, product domain.Product) (domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	product.ID = primitive.NewObjectID().Hex()
	product.CreatedAt = m.now()
	product.UpdatedAt = product.CreatedAt
	m.products[product.ID] = clone(product)
	return clone(product), nil
}

func (m *MemoryRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	product, ok := m.products[id]
	if !ok {
		return domain.Product{}, apperror.NewNotFoundError("Product not found")
	}
	return clone(product), nil
}

func (m *MemoryRepository) Replace(ctx context.Context, id string, product domain.Product) (domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.products[id]
	if !ok {
		return domain.Product{}, apperror.NewNotFoundError("Product not found")
	}
	product.ID = id
	product.CreatedAt = current.CreatedAt
	product.UpdatedAt = m.now()
	m.products[id] = clone(product)
	return clone(product), nil
}

func (m *MemoryRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return apperror.NewNotFoundError("Product not found")
	}
	delete(m.products, id)
	return nil
}

// FindAll aplica domain.IsLowStock diretamente quando LowStockOnly está ativo.
func (m *MemoryRepository) FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	products := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		if filter.LowStockOnly && !domain.IsLowStock(p) {
			continue
		}
		products = append(products, clone(p))
	}

	switch filter.Sort {
	case domain.SortStockAscending:
		sort.Slice(products, func(i, j int) bool {
			if products[i].StockQuantity != products[j].StockQuantity {
				return products[i].StockQuantity < products[j].StockQuantity
			}
			return products[i].ID < products[j].ID
		})
	default:
		sort.Slice(products, func(i, j int) bool {
			if !products[i].CreatedAt.Equal(products[j].CreatedAt) {
				return products[i].CreatedAt.After(products[j].CreatedAt)
			}
			return products[i].ID > products[j].ID
		})
	}
	return products, nil
}
