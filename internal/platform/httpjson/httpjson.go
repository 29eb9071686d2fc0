// Package httpjson reúne helpers de request/response JSON compartidos por los handlers.
// Antes cada módulo tenía su propio writeJSON; con más de una docena de módulos se extrajo aquí.
package httpjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Reportar errores con el nombre JSON del campo.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ErrorBody es el cuerpo estándar de error.
type ErrorBody struct {
	Error string `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func Error(w http.ResponseWriter, status int, msg string) {
	if strings.TrimSpace(msg) == "" {
		msg = http.StatusText(status)
	}
	WriteJSON(w, status, ErrorBody{Error: msg})
}

// DecodeError indica body inválido (json mal formado o validación fallida).
type DecodeError struct {
	Msg string
}

func (e *DecodeError) Error() string { return e.Msg }

// Decode lee JSON del body (máx 1MB) y valida tags `validate`.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &DecodeError{Msg: "empty body"}
		}
		return &DecodeError{Msg: "invalid json"}
	}
	return Validate(dst)
}

// Validate aplica las reglas `validate:"..."` del struct.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &DecodeError{Msg: fmt.Sprintf("%s failed on %s", jsonFieldName(fe), fe.Tag())}
		}
		return &DecodeError{Msg: "invalid input"}
	}
	return nil
}

// DecodeOrFail decodifica y, si falla, responde 400. Devuelve false si ya respondió.
func DecodeOrFail(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := Decode(r, dst); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func jsonFieldName(fe validator.FieldError) string {
	if fe.Field() == "" {
		return "field"
	}
	return fe.Field()
}
