package productservice

import (
	"context"
	"errors"

	"stocktrack/internal/domain"
	apperror "stocktrack/internal/errors"
	"stocktrack/internal/pkg/logger"
	"stocktrack/internal/validation"
)

// ProductRepository define o contrato (interface) que este Serviço espera
// da camada de Persistência (DB, Cache).
type ProductRepository interface {
	Insert(ctx context.Context, product domain.Product) (domain.Product, error)
	FindByID(ctx context.Context, id string) (domain.Product, error)
	Replace(ctx context.Context, id string, product domain.Product) (domain.Product, error)
	Delete(ctx context.Context, id string) error
	FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
}

// Service implementa os casos de uso de CRUD e a listagem de estoque baixo.
type Service struct {
	repo   ProductRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Produto.
func NewService(repo ProductRepository, log logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

// CreateProduct valida e normaliza o payload e persiste o Produto.
func (s *Service) CreateProduct(ctx context.Context, in domain.ProductInput) (domain.Product, error) {
	product, err := validation.ValidateCreate(in)
	if err != nil {
		s.logger.Debug("Payload de criação rejeitado.", map[string]interface{}{"error": err.Error()})
		return domain.Product{}, err
	}

	created, err := s.repo.Insert(ctx, product)
	if err != nil {
		return domain.Product{}, internal(err, "Falha interna ao criar produto.")
	}

	s.logger.Info("Produto criado com sucesso.", map[string]interface{}{"id": created.ID, "name": created.Name})
	return created, nil
}

// GetProductByID busca um produto; ids malformados são rejeitados antes da consulta.
func (s *Service) GetProductByID(ctx context.Context, id string) (domain.Product, error) {
	id, err := validation.ParseID(id)
	if err != nil {
		return domain.Product{}, err
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Product{}, internal(err, "Falha interna ao buscar produto.")
	}
	return product, nil
}

// ListProducts devolve todos os produtos, do mais novo para o mais antigo.
func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.FindAll(ctx, domain.ProductFilter{Sort: domain.SortNewestFirst})
	if err != nil {
		return nil, internal(err, "Falha interna ao buscar produtos.")
	}
	return products, nil
}

// UpdateProduct aplica uma atualização parcial. Todos os campos presentes são validados
// antes de qualquer escrita; se um falhar, nada é gravado.
func (s *Service) UpdateProduct(ctx context.Context, id string, in domain.ProductInput) (domain.Product, error) {
	id, err := validation.ParseID(id)
	if err != nil {
		return domain.Product{}, err
	}

	patch, err := validation.ValidateUpdate(in)
	if err != nil {
		s.logger.Debug("Payload de atualização rejeitado.", map[string]interface{}{"id": id, "error": err.Error()})
		return domain.Product{}, err
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Product{}, internal(err, "Falha interna ao buscar produto.")
	}
	if patch.IsEmpty() {
		return current, nil
	}

	updated, err := s.repo.Replace(ctx, id, patch.Apply(current))
	if err != nil {
		return domain.Product{}, internal(err, "Falha interna ao atualizar produto.")
	}

	s.logger.Info("Produto atualizado com sucesso.", map[string]interface{}{"id": id})
	return updated, nil
}

// DeleteProduct remove o produto definitivamente.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	id, err := validation.ParseID(id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return internal(err, "Falha interna ao deletar produto.")
	}

	s.logger.Info("Produto deletado com sucesso.", map[string]interface{}{"id": id})
	return nil
}

// ListLowStock devolve os produtos em estoque baixo, do menor estoque para o maior.
func (s *Service) ListLowStock(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.FindAll(ctx, domain.ProductFilter{
		LowStockOnly: true,
		Sort:         domain.SortStockAscending,
	})
	if err != nil {
		return nil, internal(err, "Falha interna ao buscar produtos com estoque baixo.")
	}
	return products, nil
}

// internal mantém erros já tipados e encapsula o resto num InternalError.
func internal(err error, msg string) error {
	var appErr apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.NewInternalError(msg, err)
}
