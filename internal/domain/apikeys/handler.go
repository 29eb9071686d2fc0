package apikeys

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"kennel-exchange/internal/middleware"
	"kennel-exchange/internal/platform/httpjson"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/api/keys", func(kr chi.Router) {
		kr.Get("/", listKeysHandler(svc))
		kr.Post("/", createKeyHandler(svc))
		kr.Delete("/{keyID}", deleteKeyHandler(svc))
	})
}

type createKeyRequest struct {
	Name       string `json:"name"`
	KeyName    string `json:"key_name" validate:"required"`
	PrivateKey string `json:"private_key" validate:"required"`
}

// keyResponse nunca incluye el secreto.
type keyResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	KeyName    string     `json:"key_name"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// createKeyHandler godoc
// @Summary Guardar API key de Coinbase
// @Description La clave privada se valida (EC/ES256) y se guarda cifrada. Nunca se devuelve.
// @Tags keys
// @Accept json
// @Produce json
// @Param payload body createKeyRequest true "Key name + PEM"
// @Success 201 {object} keyResponse
// @Failure 400 {object} httpjson.ErrorBody
// @Failure 409 {object} httpjson.ErrorBody "límite de keys"
// @Router /api/keys [post]
func createKeyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		var req createKeyRequest
		if !httpjson.DecodeOrFail(w, r, &req) {
			return
		}

		k, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Name:          req.Name,
			KeyName:       req.KeyName,
			PrivateKeyPEM: req.PrivateKey,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusCreated, toKeyResponse(k))
	}
}

func listKeysHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		items, err := svc.List(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]keyResponse, 0, len(items))
		for _, k := range items {
			out = append(out, toKeyResponse(k))
		}
		httpjson.WriteJSON(w, http.StatusOK, out)
	}
}

func deleteKeyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		if err := svc.Delete(r.Context(), claims.UserID, chi.URLParam(r, "keyID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		httpjson.Error(w, http.StatusBadRequest, "invalid key: key_name and an EC private key are required")
	case errors.Is(err, ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrLimitReached):
		httpjson.Error(w, http.StatusConflict, err.Error())
	default:
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
	}
}

func toKeyResponse(k Key) keyResponse {
	return keyResponse{
		ID:         k.ID,
		Name:       k.Name,
		KeyName:    MaskKeyName(k.KeyName),
		CreatedAt:  k.CreatedAt,
		LastUsedAt: k.LastUsedAt,
	}
}
