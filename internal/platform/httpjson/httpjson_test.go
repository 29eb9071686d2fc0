package httpjson

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	ProductID string `json:"product_id" validate:"required"`
	Qty       int    `json:"qty" validate:"gte=1"`
}

func TestDecode_Valid(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"product_id":"BTC-USD","qty":2}`))
	var s sample
	require.NoError(t, Decode(r, &s))
	assert.Equal(t, "BTC-USD", s.ProductID)
}

func TestDecode_ValidationMessageUsesSnakeCase(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"qty":2}`))
	var s sample
	err := Decode(r, &s)
	require.Error(t, err)
	assert.Equal(t, "product_id failed on required", err.Error())
}

func TestDecode_UnknownFieldRejected(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"product_id":"x","qty":1,"extra":true}`))
	var s sample
	err := Decode(r, &s)
	require.Error(t, err)
	assert.Equal(t, "invalid json", err.Error())
}

func TestDecodeOrFail_WritesJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	var s sample
	ok := DecodeOrFail(w, r, &s)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "empty body", body.Error)
}
