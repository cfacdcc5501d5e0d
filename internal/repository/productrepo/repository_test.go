package productrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocktrack/internal/domain"
	apperror "stocktrack/internal/errors"
	"stocktrack/internal/pkg/cache"
	"stocktrack/internal/pkg/logger"
)

const testID = "652f1c2e9b1e8a3d4c5b6a79"

type fakeCache struct {
	data    map[string]string
	deleted []string
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	v, ok := f.data[key]
	if !ok {
		return "", cache.ErrCacheMiss
	}
	return v, nil
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	return nil
}

func (f *fakeCache) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	return true, f.Set(ctx, key, value, ttl)
}

func (f *fakeCache) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.data, key)
	return nil
}

func (f *fakeCache) Incr(context.Context, string) (int64, error) { return 1, nil }
func (f *fakeCache) Expire(context.Context, string, time.Duration) error { return nil }

func TestFindByID_CacheHitSkipsDB(t *testing.T) {
	stored := domain.Product{ID: testID, Name: "Widget", StockQuantity: 7, LowStockThreshold: domain.Threshold(5)}
	payload, err := json.Marshal(stored)
	require.NoError(t, err)

	fc := &fakeCache{data: map[string]string{"product:" + testID: string(payload)}}
	// DB nil: qualquer consulta causaria panic.
	repo := NewPostgresRepository(nil, fc, time.Second, time.Minute, logger.NewNop())

	got, err := repo.FindByID(context.Background(), testID)

	require.NoError(t, err)
	assert.Equal(t, "Widget", got.Name)
	assert.Equal(t, int64(7), got.StockQuantity)
	assert.Equal(t, int64(5), *got.LowStockThreshold)
}

func cachedStock(t *testing.T, fc *fakeCache) int64 {
	t.Helper()
	var p domain.Product
	require.NoError(t, json.Unmarshal([]byte(fc.data["product:"+testID]), &p))
	return p.StockQuantity
}

func TestCacheIfAbsentAndEvict(t *testing.T) {
	fc := &fakeCache{data: map[string]string{}}
	repo := NewPostgresRepository(nil, fc, time.Second, time.Minute, logger.NewNop())

	repo.cacheIfAbsent(context.Background(), domain.Product{ID: testID, Name: "Widget"})
	assert.Contains(t, fc.data, "product:"+testID)

	repo.evict(context.Background(), testID)
	assert.NotContains(t, fc.data, "product:"+testID)
	assert.Equal(t, []string{"product:" + testID}, fc.deleted)
}

// Uma leitura que começou antes do Replace não pode sobrescrever a linha nova no cache.
func TestCache_StaleReadDoesNotOverwriteReplace(t *testing.T) {
	fc := &fakeCache{data: map[string]string{}}
	repo := NewPostgresRepository(nil, fc, time.Second, time.Minute, logger.NewNop())

	stale := domain.Product{ID: testID, Name: "Widget", StockQuantity: 10}
	fresh := domain.Product{ID: testID, Name: "Widget", StockQuantity: 15}

	repo.refreshCache(context.Background(), fresh)
	repo.cacheIfAbsent(context.Background(), stale)

	assert.Equal(t, int64(15), cachedStock(t, fc))
}

func TestCache_DeletedMarker(t *testing.T) {
	fc := &fakeCache{data: map[string]string{}}
	// DB nil: o marcador precisa responder sem consultar o banco.
	repo := NewPostgresRepository(nil, fc, time.Second, time.Minute, logger.NewNop())

	repo.markDeleted(context.Background(), testID)
	repo.cacheIfAbsent(context.Background(), domain.Product{ID: testID, Name: "Widget"})

	_, err := repo.FindByID(context.Background(), testID)
	require.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
}

type fakeRow struct {
	values []interface{}
}

func (r fakeRow) Scan(dest ...interface{}) error {
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r.values[i].(string)
		case *int64:
			*p = r.values[i].(int64)
		case *sql.NullInt64:
			*p = r.values[i].(sql.NullInt64)
		case *time.Time:
			*p = r.values[i].(time.Time)
		}
	}
	return nil
}

func TestScanProduct_NullThreshold(t *testing.T) {
	now := time.Now().UTC()
	row := fakeRow{values: []interface{}{testID, "Widget", "", int64(3), sql.NullInt64{}, now, now}}

	p, err := scanProduct(row)

	require.NoError(t, err)
	assert.Nil(t, p.LowStockThreshold)
	assert.False(t, domain.IsLowStock(p))

	row.values[4] = sql.NullInt64{Int64: 5, Valid: true}
	p, err = scanProduct(row)
	require.NoError(t, err)
	assert.Equal(t, int64(5), *p.LowStockThreshold)
	assert.True(t, domain.IsLowStock(p))
}

func TestNullThreshold(t *testing.T) {
	assert.False(t, nullThreshold(nil).Valid)
	assert.Equal(t, sql.NullInt64{Int64: 9, Valid: true}, nullThreshold(domain.Threshold(9)))
}
