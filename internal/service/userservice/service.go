package userservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"stocktrack/internal/domain"
	apperror "stocktrack/internal/errors"
	"stocktrack/internal/pkg/logger"
)

// UserRepository é o contrato de persistência de usuários.
type UserRepository interface {
	Save(ctx context.Context, user domain.User) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
}

// TokenGenerator é o contrato da camada de token (internal/pkg/token).
type TokenGenerator interface {
	GenerateToken(user domain.User) (string, error)
}

// UserService implementa registro e login de operadores.
type UserService struct {
	repo       UserRepository
	tokens     TokenGenerator
	validate   *validator.Validate
	adminEmail string
	logger     logger.Logger
}

// NewService cria uma nova instância do UserService.
// O e-mail em adminEmail recebe o papel admin ao se registrar.
func NewService(repo UserRepository, tokens TokenGenerator, adminEmail string, log logger.Logger) *UserService {
	return &UserService{
		repo:       repo,
		tokens:     tokens,
		validate:   validator.New(),
		adminEmail: strings.ToLower(strings.TrimSpace(adminEmail)),
		logger:     log,
	}
}

// Register registra um novo usuário, gravando apenas o hash bcrypt da senha.
func (s *UserService) Register(ctx context.Context, registration domain.UserRegistration) (domain.User, error) {
	registration.Email = strings.ToLower(strings.TrimSpace(registration.Email))
	if err := s.validate.Struct(registration); err != nil {
		return domain.User{}, validationError(err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(registration.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}

	role := domain.RoleUser
	if s.adminEmail != "" && registration.Email == s.adminEmail {
		role = domain.RoleAdmin
	}

	now := time.Now().UTC()
	user, err := s.repo.Save(ctx, domain.User{
		Email:        registration.Email,
		PasswordHash: string(hashedPassword),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		var conflictErr *apperror.ConflictError
		if errors.As(err, &conflictErr) {
			return domain.User{}, apperror.NewConflictError(
				fmt.Sprintf("O email '%s' já está em uso.", registration.Email),
			)
		}
		return domain.User{}, err
	}

	s.logger.Info("Usuário registrado.", map[string]interface{}{"user_id": user.ID, "role": string(user.Role)})
	return user, nil
}

// Login autentica um usuário e devolve um JWT.
func (s *UserService) Login(ctx context.Context, credentials domain.UserCredentials) (string, error) {
	credentials.Email = strings.ToLower(strings.TrimSpace(credentials.Email))
	if err := s.validate.Struct(credentials); err != nil {
		return "", apperror.NewUnauthorizedError("Email e senha são obrigatórios.")
	}

	user, err := s.repo.FindByEmail(ctx, credentials.Email)
	if err != nil {
		// NotFound vira 401 para não revelar quais e-mails existem.
		var notFoundErr *apperror.NotFoundError
		if errors.As(err, &notFoundErr) {
			return "", apperror.NewUnauthorizedError("Credenciais inválidas.")
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credentials.Password)); err != nil {
		return "", apperror.NewUnauthorizedError("Credenciais inválidas.")
	}

	tokenString, err := s.tokens.GenerateToken(user)
	if err != nil {
		return "", apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	s.logger.Debug("Login realizado.", map[string]interface{}{"user_id": user.ID})
	return tokenString, nil
}

// validationError resume o primeiro campo rejeitado pelo validator.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return apperror.NewValidationError(fmt.Sprintf("Campo '%s' inválido (%s).", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return apperror.NewValidationError("Payload inválido.")
}
