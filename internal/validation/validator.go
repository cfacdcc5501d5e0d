// Package validation converte os campos brutos das requisições em valores
// normalizados que satisfazem as invariantes do Produto, ou os rejeita.
// Nenhuma função deste pacote faz I/O.
package validation

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"stocktrack/internal/domain"
	apperror "stocktrack/internal/errors"
)

// Mensagens devolvidas ao cliente.
const (
	MsgInvalidID          = "Invalid product id"
	MsgMissingName        = "Invalid or missing name"
	MsgInvalidName        = "Invalid name"
	MsgInvalidDescription = "Invalid description"
	MsgInvalidStock       = "stock_quantity must be an integer >= 0"
	MsgInvalidThreshold   = "Invalid low_stock_threshold"
	MsgInvalidQuantity    = "quantity must be a positive integer"
)

var (
	errNotNumber   = errors.New("not a JSON number")
	errNotInteger  = errors.New("not an integer")
	errOutOfRange  = errors.New("out of int64 range")
	errNotFinite   = errors.New("not finite")
	errNotAString  = errors.New("not a JSON string")
	errEmptyString = errors.New("empty after trim")
)

// IsValidIdentifier verifica o formato do identificador da Persistência:
// 24 caracteres hexadecimais (ObjectID).
func IsValidIdentifier(id string) bool {
	return primitive.IsValidObjectID(id)
}

// ValidateID devolve ValidationError quando o id não tem o formato esperado.
func ValidateID(id string) error {
	if !IsValidIdentifier(id) {
		return apperror.NewValidationError(MsgInvalidID)
	}
	return nil
}

// ParseID valida o id e o devolve em minúsculas, a forma gravada pela Persistência.
func ParseID(id string) (string, error) {
	if err := ValidateID(id); err != nil {
		return "", err
	}
	return strings.ToLower(id), nil
}

// ValidateName exige uma string que não fique vazia após o trim.
func ValidateName(f domain.RawField) (string, error) {
	if !f.Set {
		return "", apperror.NewValidationError(MsgMissingName)
	}
	name, err := trimmedString(f)
	if err != nil {
		return "", apperror.NewValidationError(MsgMissingName)
	}
	return name, nil
}

// ValidateDescription normaliza a descrição.
// Na criação, ausência (ou null) vira string vazia. Na atualização, o campo presente
// precisa ser string.
func ValidateDescription(f domain.RawField, isCreate bool) (string, error) {
	if !f.Set || (isCreate && f.IsNull()) {
		return "", nil
	}
	desc, err := trimmedString(f)
	if err != nil && !errors.Is(err, errEmptyString) {
		return "", apperror.NewValidationError(MsgInvalidDescription)
	}
	return desc, nil
}

// ValidateNonNegativeInteger aceita apenas números JSON inteiros e >= 0.
// Strings, booleanos, null, frações e valores fora de int64 são rejeitados.
func ValidateNonNegativeInteger(f domain.RawField) (int64, error) {
	if !f.Set {
		return 0, apperror.NewValidationError(MsgInvalidStock)
	}
	n, err := parseInteger(f.Raw)
	if err != nil || n < 0 {
		return 0, apperror.NewValidationError(MsgInvalidStock)
	}
	return n, nil
}

// ValidateOptionalThreshold resolve o limite de estoque baixo.
//
// Na criação: ausente => DefaultLowStockThreshold; qualquer outro valor precisa ser
// inteiro >= 0. Na atualização: null => DefaultLowStockThreshold; ausente => nil
// (manter o valor atual); qualquer outro valor precisa ser inteiro >= 0.
func ValidateOptionalThreshold(f domain.RawField, isCreate bool) (*int64, error) {
	if !f.Set {
		if isCreate {
			return domain.Threshold(domain.DefaultLowStockThreshold), nil
		}
		return nil, nil
	}
	if f.IsNull() && !isCreate {
		return domain.Threshold(domain.DefaultLowStockThreshold), nil
	}
	n, err := parseInteger(f.Raw)
	if err != nil || n < 0 {
		return nil, apperror.NewValidationError(MsgInvalidThreshold)
	}
	return domain.Threshold(n), nil
}

// ValidateAdjustmentQuantity exige um inteiro estritamente positivo.
func ValidateAdjustmentQuantity(f domain.RawField) (int64, error) {
	if !f.Set {
		return 0, apperror.NewValidationError(MsgInvalidQuantity)
	}
	n, err := parseInteger(f.Raw)
	if err != nil || n <= 0 {
		return 0, apperror.NewValidationError(MsgInvalidQuantity)
	}
	return n, nil
}

// ValidateCreate valida um payload de criação e devolve o Produto normalizado,
// ainda sem id e timestamps.
func ValidateCreate(in domain.ProductInput) (domain.Product, error) {
	name, err := ValidateName(in.Name)
	if err != nil {
		return domain.Product{}, err
	}
	stock, err := ValidateNonNegativeInteger(in.StockQuantity)
	if err != nil {
		return domain.Product{}, err
	}
	threshold, err := ValidateOptionalThreshold(in.LowStockThreshold, true)
	if err != nil {
		return domain.Product{}, err
	}
	desc, err := ValidateDescription(in.Description, true)
	if err != nil {
		return domain.Product{}, err
	}

	product := domain.NewProduct(name)
	product.Description = desc
	product.StockQuantity = stock
	product.LowStockThreshold = threshold
	return product, nil
}

// ValidateUpdate valida cada campo presente de forma independente.
// Se qualquer campo falhar, nenhum valor é devolvido.
func ValidateUpdate(in domain.ProductInput) (domain.ProductPatch, error) {
	var patch domain.ProductPatch

	if in.Name.Set {
		name, err := trimmedString(in.Name)
		if err != nil {
			return domain.ProductPatch{}, apperror.NewValidationError(MsgInvalidName)
		}
		patch.Name = &name
	}
	if in.Description.Set {
		desc, err := ValidateDescription(in.Description, false)
		if err != nil {
			return domain.ProductPatch{}, err
		}
		patch.Description = &desc
	}
	if in.StockQuantity.Set {
		stock, err := ValidateNonNegativeInteger(in.StockQuantity)
		if err != nil {
			return domain.ProductPatch{}, err
		}
		patch.StockQuantity = &stock
	}
	threshold, err := ValidateOptionalThreshold(in.LowStockThreshold, false)
	if err != nil {
		return domain.ProductPatch{}, err
	}
	patch.LowStockThreshold = threshold

	return patch, nil
}

// trimmedString decodifica uma string JSON e aplica trim.
// Devolve errEmptyString junto com "" quando sobra apenas espaço.
func trimmedString(f domain.RawField) (string, error) {
	var s string
	if f.IsNull() || json.Unmarshal(f.Raw, &s) != nil {
		return "", errNotAString
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errEmptyString
	}
	return s, nil
}

// parseInteger interpreta o JSON bruto como número inteiro.
// Inteiros escritos como 10.0 ou 1e1 são aceitos; o resto é rejeitado.
func parseInteger(raw json.RawMessage) (int64, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || (s[0] != '-' && (s[0] < '0' || s[0] > '9')) {
		return 0, errNotNumber
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return n, nil
	}
	if errors.Is(err, strconv.ErrRange) {
		return 0, errOutOfRange
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, errNotFinite
		}
		return 0, errNotNumber
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, errNotFinite
	}
	if math.Trunc(v) != v {
		return 0, errNotInteger
	}
	if v < math.MinInt64 || v >= math.MaxInt64 {
		return 0, errOutOfRange
	}
	return int64(v), nil
}
