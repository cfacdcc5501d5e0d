package domain

// ErrorResponse é a estrutura padronizada para respostas de erro na API.
// O campo Error repete a mensagem para clientes que leem apenas a chave "error".
// @Description Estrutura padronizada para respostas de erro na API.
type ErrorResponse struct {
	Code     int    `json:"code" example:"400"`
	Category string `json:"category" example:"VALIDATION_ERROR"`
	Message  string `json:"message" example:"Invalid or missing name"`
	Error    string `json:"error" example:"Invalid or missing name"`
}
