package productrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"stocktrack/internal/domain"
	apperror "stocktrack/internal/errors"
	"stocktrack/internal/pkg/cache"
	"stocktrack/internal/pkg/logger"
)

// Define a chave de cache para produtos.
const productCacheKey = "product:%s"

// deletedMarker ocupa a chave de um produto removido até o TTL expirar, impedindo que
// uma leitura concorrente recoloque a linha antiga no cache. IDs não são reutilizados.
const deletedMarker = "deleted"

const productColumns = `id, name, description, stock_quantity, low_stock_threshold, created_at, updated_at`

// PostgresRepository implementa o contrato de Persistência de produtos sobre PostgreSQL,
// com cache-aside opcional em Redis para a busca por ID.
type PostgresRepository struct {
	DB        *sql.DB
	Cache     cache.Client // nil desativa o cache
	DBTimeout time.Duration
	CacheTTL  time.Duration
	logger    logger.Logger
}

// NewPostgresRepository cria e retorna uma nova instância do Repositório.
// Aqui injetamos as dependências de Infraestrutura (DB e Cache).
func NewPostgresRepository(db *sql.DB, cacheClient cache.Client, dbTimeout, cacheTTL time.Duration, log logger.Logger) *PostgresRepository {
	return &PostgresRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		CacheTTL:  cacheTTL,
		logger:    log,
	}
}

// rowScanner cobre *sql.Row e *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var (
		p         domain.Product
		threshold sql.NullInt64
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.StockQuantity, &threshold, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Product{}, err
	}
	if threshold.Valid {
		p.LowStockThreshold = domain.Threshold(threshold.Int64)
	}
	return p, nil
}

func nullThreshold(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

// Insert persiste um novo Produto, atribuindo id (ObjectID) e timestamps.
func (r *PostgresRepository) Insert(ctx context.Context, product domain.Product) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	product.ID = primitive.NewObjectID().Hex()
	now := time.Now().UTC()

	query := `
        INSERT INTO products (id, name, description, stock_quantity, low_stock_threshold, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $6)
        RETURNING ` + productColumns

	created, err := scanProduct(r.DB.QueryRowContext(ctxTimeout, query,
		product.ID,
		product.Name,
		product.Description,
		product.StockQuantity,
		nullThreshold(product.LowStockThreshold),
		now,
	))
	if err != nil {
		r.logger.Error("Falha ao inserir produto no DB.", err)
		return domain.Product{}, apperror.NewDBError("failed to insert product", err)
	}

	r.logger.Debug("Produto inserido.", map[string]interface{}{"id": created.ID})
	return created, nil
}

// FindByID busca um produto pelo ID, utilizando a estratégia Cache-Aside.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	key := fmt.Sprintf(productCacheKey, id)

	// Cache-Aside (READ)
	if r.Cache != nil {
		cached, err := r.Cache.Get(ctxTimeout, key)
		if err == nil && cached == deletedMarker {
			return domain.Product{}, apperror.NewNotFoundError("Product not found")
		}
		if err == nil {
			var product domain.Product
			if json.Unmarshal([]byte(cached), &product) == nil {
				return product, nil
			}
			r.logger.Warn("Entrada de cache inválida, consultando o DB.", map[string]interface{}{"key": key})
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			r.logger.Warn("Falha ao ler do cache Redis.", map[string]interface{}{"key": key, "error": err.Error()})
		}
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	product, err := scanProduct(r.DB.QueryRowContext(ctxTimeout, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, apperror.NewNotFoundError("Product not found")
	}
	if err != nil {
		r.logger.Error("Falha ao buscar produto no DB.", err)
		return domain.Product{}, apperror.NewDBError("failed to find product", err)
	}

	// Cache-Aside (WRITE). Só grava se a chave estiver livre: um Replace ou Delete
	// concorrente já terá escrito uma versão mais nova.
	r.cacheIfAbsent(ctxTimeout, product)
	return product, nil
}

// Replace substitui todos os campos mutáveis do registro.
func (r *PostgresRepository) Replace(ctx context.Context, id string, product domain.Product) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        UPDATE products
        SET name = $2, description = $3, stock_quantity = $4, low_stock_threshold = $5, updated_at = $6
        WHERE id = $1
        RETURNING ` + productColumns

	updated, err := scanProduct(r.DB.QueryRowContext(ctxTimeout, query,
		id,
		product.Name,
		product.Description,
		product.StockQuantity,
		nullThreshold(product.LowStockThreshold),
		time.Now().UTC(),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, apperror.NewNotFoundError("Product not found")
	}
	if err != nil {
		r.logger.Error("Falha ao atualizar produto no DB.", err)
		return domain.Product{}, apperror.NewDBError("failed to replace product", err)
	}

	r.refreshCache(ctxTimeout, updated)
	return updated, nil
}

// Delete remove o registro (sem tombstone).
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Falha ao deletar produto do DB.", err)
		return apperror.NewDBError("failed to delete product", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("failed to read affected rows", err)
	}
	if rowsAffected == 0 {
		return apperror.NewNotFoundError("Product not found")
	}

	r.markDeleted(ctxTimeout, id)
	return nil
}

// FindAll lista produtos segundo o filtro. Com LowStockOnly, aplica no SQL o mesmo
// predicado de domain.IsLowStock.
func (r *PostgresRepository) FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + productColumns + ` FROM products`
	if filter.LowStockOnly {
		query += ` WHERE low_stock_threshold IS NOT NULL AND stock_quantity < low_stock_threshold`
	}
	switch filter.Sort {
	case domain.SortStockAscending:
		query += ` ORDER BY stock_quantity ASC, id ASC`
	default:
		query += ` ORDER BY created_at DESC, id DESC`
	}

	rows, err := r.DB.QueryContext(ctxTimeout, query)
	if err != nil {
		r.logger.Error("Falha ao executar a listagem de produtos.", err)
		return nil, apperror.NewDBError("failed to list products", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, apperror.NewDBError("failed to scan product", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("failed iterating products", err)
	}

	return products, nil
}

// cacheIfAbsent grava o produto lido do DB apenas quando a chave está vazia.
func (r *PostgresRepository) cacheIfAbsent(ctx context.Context, product domain.Product) {
	if r.Cache == nil {
		return
	}
	payload, err := json.Marshal(product)
	if err != nil {
		return
	}
	if _, err := r.Cache.SetNX(ctx, fmt.Sprintf(productCacheKey, product.ID), payload, r.CacheTTL); err != nil {
		r.logger.Warn("Falha ao gravar produto no cache.", map[string]interface{}{"id": product.ID, "error": err.Error()})
	}
}

// refreshCache sobrescreve a entrada com a linha recém gravada. Se a escrita falhar,
// a chave é removida para não servir a versão anterior.
func (r *PostgresRepository) refreshCache(ctx context.Context, product domain.Product) {
	if r.Cache == nil {
		return
	}
	payload, err := json.Marshal(product)
	if err == nil {
		err = r.Cache.Set(ctx, fmt.Sprintf(productCacheKey, product.ID), payload, r.CacheTTL)
	}
	if err != nil {
		r.logger.Warn("Falha ao atualizar produto no cache.", map[string]interface{}{"id": product.ID, "error": err.Error()})
		r.evict(ctx, product.ID)
	}
}

func (r *PostgresRepository) markDeleted(ctx context.Context, id string) {
	if r.Cache == nil {
		return
	}
	if err := r.Cache.Set(ctx, fmt.Sprintf(productCacheKey, id), deletedMarker, r.CacheTTL); err != nil {
		r.logger.Warn("Falha ao marcar produto removido no cache.", map[string]interface{}{"id": id, "error": err.Error()})
		r.evict(ctx, id)
	}
}

func (r *PostgresRepository) evict(ctx context.Context, id string) {
	if r.Cache == nil {
		return
	}
	if err := r.Cache.Delete(ctx, fmt.Sprintf(productCacheKey, id)); err != nil {
		r.logger.Warn("Falha ao invalidar cache do produto.", map[string]interface{}{"id": id, "error": err.Error()})
	}
}
