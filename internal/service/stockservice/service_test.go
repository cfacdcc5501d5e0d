package stockservice_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stocktrack/internal/domain"
	apperror "stocktrack/internal/errors"
	"stocktrack/internal/pkg/logger"
	"stocktrack/internal/service/stockservice"
)

const productID = "652f1c2e9b1e8a3d4c5b6a79"

// MockStockRepository é uma implementação mock da interface StockRepository
type MockStockRepository struct {
	mock.Mock
}

func (m *MockStockRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockStockRepository) Replace(ctx context.Context, id string, product domain.Product) (domain.Product, error) {
	args := m.Called(ctx, id, product)
	return args.Get(0).(domain.Product), args.Error(1)
}

// MockAlertPublisher registra os alertas publicados.
type MockAlertPublisher struct {
	mock.Mock
}

func (m *MockAlertPublisher) PublishLowStockAlert(ctx context.Context, alert domain.LowStockAlert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

func widget(stock int64) domain.Product {
	return domain.Product{
		ID:                productID,
		Name:              "Widget",
		StockQuantity:     stock,
		LowStockThreshold: domain.Threshold(5),
	}
}

// TestIncreaseStock_Success testa a soma simples ao estoque.
func TestIncreaseStock_Success(t *testing.T) {
	mockRepo := new(MockStockRepository)
	svc := stockservice.NewService(mockRepo, nil, logger.NewNop())

	mockRepo.On("FindByID", mock.Anything, productID).Return(widget(10), nil)
	mockRepo.On("Replace", mock.Anything, productID, widget(13)).Return(widget(13), nil)

	product, err := svc.IncreaseStock(context.Background(), productID, domain.AdjustmentInput{Quantity: domain.Value(3)})

	require.NoError(t, err)
	assert.Equal(t, int64(13), product.StockQuantity)
	mockRepo.AssertExpectations(t)
}

// TestDecreaseStock_Success testa a subtração até zero.
func TestDecreaseStock_Success(t *testing.T) {
	mockRepo := new(MockStockRepository)
	svc := stockservice.NewService(mockRepo, nil, logger.NewNop())

	mockRepo.On("FindByID", mock.Anything, productID).Return(widget(4), nil)
	mockRepo.On("Replace", mock.Anything, productID, widget(0)).Return(widget(0), nil)

	product, err := svc.DecreaseStock(context.Background(), productID, domain.AdjustmentInput{Quantity: domain.Value(4)})

	require.NoError(t, err)
	assert.Equal(t, int64(0), product.StockQuantity)
	mockRepo.AssertExpectations(t)
}

// TestDecreaseStock_Fail_Insufficient testa que nada é gravado quando falta estoque.
func TestDecreaseStock_Fail_Insufficient(t *testing.T) {
	mockRepo := new(MockStockRepository)
	svc := stockservice.NewService(mockRepo, nil, logger.NewNop())

	mockRepo.On("FindByID", mock.Anything, productID).Return(widget(2), nil)

	_, err := svc.DecreaseStock(context.Background(), productID, domain.AdjustmentInput{Quantity: domain.Value(3)})

	require.Error(t, err)
	assert.IsType(t, &apperror.InsufficientStockError{}, err)
	assert.Equal(t, "Insufficient stock", err.Error())
	mockRepo.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything, mock.Anything)
}

// TestAdjustStock_Fail_InvalidQuantity testa quantidades rejeitadas antes da leitura.
func TestAdjustStock_Fail_InvalidQuantity(t *testing.T) {
	cases := map[string]domain.AdjustmentInput{
		"missing":    {},
		"zero":       {Quantity: domain.Value(0)},
		"negative":   {Quantity: domain.Value(-4)},
		"fractional": {Quantity: domain.Value(1.5)},
		"string":     {Quantity: domain.Value("2")},
		"null":       {Quantity: domain.Null()},
	}

	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			mockRepo := new(MockStockRepository)
			svc := stockservice.NewService(mockRepo, nil, logger.NewNop())

			_, err := svc.IncreaseStock(context.Background(), productID, in)

			require.Error(t, err)
			assert.IsType(t, &apperror.ValidationError{}, err)
			assert.Equal(t, "quantity must be a positive integer", err.Error())
			mockRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
		})
	}
}

// TestAdjustStock_Fail_MalformedID testa que o id é validado antes da quantidade e da leitura.
func TestAdjustStock_Fail_MalformedID(t *testing.T) {
	mockRepo := new(MockStockRepository)
	svc := stockservice.NewService(mockRepo, nil, logger.NewNop())

	_, err := svc.DecreaseStock(context.Background(), "xyz", domain.AdjustmentInput{Quantity: domain.Value(0)})

	require.Error(t, err)
	assert.Equal(t, "Invalid product id", err.Error())
	mockRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

// TestAdjustStock_Fail_NotFound testa um id inexistente.
func TestAdjustStock_Fail_NotFound(t *testing.T) {
	mockRepo := new(MockStockRepository)
	svc := stockservice.NewService(mockRepo, nil, logger.NewNop())

	mockRepo.On("FindByID", mock.Anything, productID).Return(domain.Product{}, apperror.NewNotFoundError("Product not found"))

	_, err := svc.IncreaseStock(context.Background(), productID, domain.AdjustmentInput{Quantity: domain.Value(1)})

	require.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
	mockRepo.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything, mock.Anything)
}

// TestIncreaseStock_Fail_Overflow testa que uma soma além do int64 é recusada sem gravar.
func TestIncreaseStock_Fail_Overflow(t *testing.T) {
	mockRepo := new(MockStockRepository)
	svc := stockservice.NewService(mockRepo, nil, logger.NewNop())

	mockRepo.On("FindByID", mock.Anything, productID).Return(widget(math.MaxInt64-1), nil)

	_, err := svc.IncreaseStock(context.Background(), productID, domain.AdjustmentInput{Quantity: domain.Value(10)})

	require.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything, mock.Anything)
}

// TestAdjustStock_Fail_RepoError testa a conversão de erro genérico na gravação.
func TestAdjustStock_Fail_RepoError(t *testing.T) {
	mockRepo := new(MockStockRepository)
	svc := stockservice.NewService(mockRepo, nil, logger.NewNop())

	mockRepo.On("FindByID", mock.Anything, productID).Return(widget(10), nil)
	mockRepo.On("Replace", mock.Anything, productID, mock.Anything).Return(domain.Product{}, errors.New("connection reset"))

	_, err := svc.IncreaseStock(context.Background(), productID, domain.AdjustmentInput{Quantity: domain.Value(1)})

	require.Error(t, err)
	assert.IsType(t, &apperror.InternalError{}, err)
	assert.Contains(t, err.Error(), "Falha interna ao ajustar estoque.")
}

// TestDecreaseStock_PublishesAlertWhenCrossingThreshold testa o alerta de estoque baixo.
func TestDecreaseStock_PublishesAlertWhenCrossingThreshold(t *testing.T) {
	mockRepo := new(MockStockRepository)
	publisher := new(MockAlertPublisher)
	svc := stockservice.NewService(mockRepo, publisher, logger.NewNop())

	mockRepo.On("FindByID", mock.Anything, productID).Return(widget(6), nil)
	mockRepo.On("Replace", mock.Anything, productID, widget(4)).Return(widget(4), nil)
	publisher.On("PublishLowStockAlert", mock.Anything, mock.MatchedBy(func(a domain.LowStockAlert) bool {
		return a.ProductID == productID && a.StockQuantity == 4 && a.LowStockThreshold == 5 && !a.AlertedAt.IsZero()
	})).Return(nil)

	_, err := svc.DecreaseStock(context.Background(), productID, domain.AdjustmentInput{Quantity: domain.Value(2)})

	require.NoError(t, err)
	publisher.AssertExpectations(t)
}

// TestDecreaseStock_NoAlertWhenAlreadyLow testa que o alerta só dispara na transição.
func TestDecreaseStock_NoAlertWhenAlreadyLow(t *testing.T) {
	mockRepo := new(MockStockRepository)
	publisher := new(MockAlertPublisher)
	svc := stockservice.NewService(mockRepo, publisher, logger.NewNop())

	mockRepo.On("FindByID", mock.Anything, productID).Return(widget(3), nil)
	mockRepo.On("Replace", mock.Anything, productID, widget(2)).Return(widget(2), nil)

	_, err := svc.DecreaseStock(context.Background(), productID, domain.AdjustmentInput{Quantity: domain.Value(1)})

	require.NoError(t, err)
	publisher.AssertNotCalled(t, "PublishLowStockAlert", mock.Anything, mock.Anything)
}

// TestDecreaseStock_PublishFailureDoesNotFailRequest testa que erro do broker só é logado.
func TestDecreaseStock_PublishFailureDoesNotFailRequest(t *testing.T) {
	mockRepo := new(MockStockRepository)
	publisher := new(MockAlertPublisher)
	svc := stockservice.NewService(mockRepo, publisher, logger.NewNop())

	mockRepo.On("FindByID", mock.Anything, productID).Return(widget(5), nil)
	mockRepo.On("Replace", mock.Anything, productID, widget(0)).Return(widget(0), nil)
	publisher.On("PublishLowStockAlert", mock.Anything, mock.Anything).Return(errors.New("channel closed"))

	product, err := svc.DecreaseStock(context.Background(), productID, domain.AdjustmentInput{Quantity: domain.Value(5)})

	require.NoError(t, err)
	assert.Equal(t, int64(0), product.StockQuantity)
	publisher.AssertExpectations(t)
}
