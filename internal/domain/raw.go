package domain

import (
	"bytes"
	"encoding/json"
)

// RawField guarda um membro de um objeto JSON sem interpretá-lo.
// Set fica verdadeiro sempre que a chave aparece no payload, inclusive com valor null.
type RawField struct {
	Set bool
	Raw json.RawMessage
}

// UnmarshalJSON implementa json.Unmarshaler. O decoder chama este método também
// para o literal null, o que permite distinguir null de ausência.
func (f *RawField) UnmarshalJSON(data []byte) error {
	f.Set = true
	f.Raw = append(f.Raw[:0], data...)
	return nil
}

// IsNull indica que a chave foi enviada com o literal null.
func (f RawField) IsNull() bool {
	return f.Set && bytes.Equal(bytes.TrimSpace(f.Raw), []byte("null"))
}

// Value constrói um RawField presente a partir de um valor Go qualquer.
// Usado em testes e em chamadas internas ao Serviço.
func Value(v interface{}) RawField {
	raw, err := json.Marshal(v)
	if err != nil {
		return RawField{Set: true, Raw: json.RawMessage(`{}`)}
	}
	return RawField{Set: true, Raw: raw}
}

// Null constrói um RawField presente com o literal null.
func Null() RawField {
	return RawField{Set: true, Raw: json.RawMessage("null")}
}
