package siteconfig

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"kennel-exchange/internal/middleware"
	"kennel-exchange/internal/platform/httpjson"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/api/site-config", func(sr chi.Router) {
		sr.Get("/", listHandler(svc))
		sr.Put("/{key}", putHandler(svc))
		sr.Delete("/{key}", deleteHandler(svc))
	})
}

type putRequest struct {
	Value string `json:"value"`
}

// listHandler godoc
// @Summary Configuración pública del sitio
// @Tags site-config
// @Produce json
// @Success 200 {array} Entry
// @Router /api/site-config [get]
func listHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.All(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, items)
	}
}

// putHandler godoc
// @Summary Guardar clave (admin)
// @Tags site-config
// @Accept json
// @Produce json
// @Param key path string true "Clave [a-z0-9_.]"
// @Param payload body putRequest true "Valor"
// @Success 200 {object} Entry
// @Failure 403 {object} httpjson.ErrorBody
// @Router /api/site-config/{key} [put]
func putHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		var req putRequest
		if !httpjson.DecodeOrFail(w, r, &req) {
			return
		}
		e, err := svc.Set(r.Context(), claims, chi.URLParam(r, "key"), req.Value)
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, e)
	}
}

func deleteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		if err := svc.Delete(r.Context(), claims, chi.URLParam(r, "key")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		httpjson.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrForbidden):
		httpjson.Error(w, http.StatusForbidden, err.Error())
	default:
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
	}
}
