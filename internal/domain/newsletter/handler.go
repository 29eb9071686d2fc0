package newsletter

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"kennel-exchange/internal/middleware"
	"kennel-exchange/internal/platform/httpjson"
)

var errForbidden = errors.New("forbidden")

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/api/newsletter/preview", previewHandler(svc))
}

type previewResponse struct {
	Theme Theme `json:"theme"`
	Rendered
}

// previewHandler godoc
// @Summary Vista previa de la newsletter (admin)
// @Tags newsletter
// @Produce json
// @Param date query string false "YYYY-MM-DD (default hoy)"
// @Success 200 {object} previewResponse
// @Failure 403 {object} httpjson.ErrorBody
// @Router /api/newsletter/preview [get]
func previewHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		if !claims.IsAdmin() {
			httpjson.Error(w, http.StatusForbidden, errForbidden.Error())
			return
		}

		date := time.Now().UTC()
		if raw := r.URL.Query().Get("date"); raw != "" {
			d, err := time.Parse(time.DateOnly, raw)
			if err != nil {
				httpjson.Error(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
				return
			}
			date = d
		}

		theme, out, err := svc.Preview(r.Context(), date)
		if err != nil {
			httpjson.Error(w, http.StatusInternalServerError, "internal error")
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, previewResponse{Theme: theme, Rendered: out})
	}
}
