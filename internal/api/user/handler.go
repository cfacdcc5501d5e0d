package user

import (
	"context"
	"net/http"

	"stocktrack/internal/domain"
	"stocktrack/internal/pkg/logger"
	"stocktrack/internal/pkg/middleware"
)

// UserService define o contrato para as operações de registro e login.
type UserService interface {
	Register(ctx context.Context, registration domain.UserRegistration) (domain.User, error)
	Login(ctx context.Context, credentials domain.UserCredentials) (string, error)
}

// LoginResponse é o corpo devolvido por um login bem-sucedido.
type LoginResponse struct {
	Token string `json:"token"`
}

// Handler agrupa todos os métodos de Handler do usuário.
type Handler struct {
	Service UserService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc UserService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

func (h *Handler) handleServiceResponse(w http.ResponseWriter, data interface{}, err error, successStatus int) {
	if err == nil {
		if jsonErr := middleware.WriteJSON(w, successStatus, data); jsonErr != nil {
			h.Logger.Error("Falha ao codificar JSON de resposta", jsonErr)
		}
		return
	}

	if status := middleware.WriteError(w, err); status >= http.StatusInternalServerError {
		h.Logger.Error("Erro interno no serviço de usuário:", err)
	}
}

// RegisterUserHandler lida com a requisição POST /register.
// @Summary Registra um novo usuário
// @Description Cria um novo usuário, hasheia a senha e salva no banco de dados.
// @Tags users
// @Accept json
// @Produce json
// @Param registration body domain.UserRegistration true "Credenciais de registro (email e senha)"
// @Success 201 {object} domain.User "Usuário criado com sucesso"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 409 {object} domain.ErrorResponse "Email já cadastrado"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /register [post]
func (h *Handler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var reg domain.UserRegistration
	if err := middleware.DecodeJSON(w, r, &reg); err != nil {
		h.handleServiceResponse(w, nil, err, http.StatusCreated)
		return
	}

	newUser, err := h.Service.Register(r.Context(), reg)
	h.handleServiceResponse(w, newUser, err, http.StatusCreated)
}

// LoginUserHandler lida com a requisição POST /login.
// @Summary Autentica um usuário e retorna um JWT
// @Tags users
// @Accept json
// @Produce json
// @Param login body domain.UserCredentials true "Credenciais do usuário (email e senha)"
// @Success 200 {object} LoginResponse "Token JWT emitido"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 401 {object} domain.ErrorResponse "Credenciais inválidas"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /login [post]
func (h *Handler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	var creds domain.UserCredentials
	if err := middleware.DecodeJSON(w, r, &creds); err != nil {
		h.handleServiceResponse(w, nil, err, http.StatusOK)
		return
	}

	token, err := h.Service.Login(r.Context(), creds)
	if err != nil {
		h.handleServiceResponse(w, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, LoginResponse{Token: token}, nil, http.StatusOK)
}
