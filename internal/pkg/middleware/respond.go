package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"stocktrack/internal/domain"
	apperror "stocktrack/internal/errors"
)

// WriteJSON grava data como JSON com o status informado. data nil gera corpo vazio.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	if data == nil {
		w.WriteHeader(status)
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteError traduz err pelo apperror.MapToHTTPStatus e grava o corpo de erro padrão.
// Devolve o status usado.
func WriteError(w http.ResponseWriter, err error) int {
	status, category, message := apperror.MapToHTTPStatus(err)
	_ = WriteJSON(w, status, domain.ErrorResponse{
		Code:     status,
		Category: category,
		Message:  message,
		Error:    message,
	})
	return status
}

// maxBodyBytes limita o corpo das requisições JSON.
const maxBodyBytes = 1 << 20

// DecodeJSON lê o corpo da requisição em v. Corpo vazio equivale a "{}".
// O corpo deve conter um único valor JSON; qualquer coisa após ele é recusada.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errInvalidBody()
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errInvalidBody()
	}
	return nil
}

func errInvalidBody() error {
	return apperror.NewValidationError("Invalid JSON body")
}
