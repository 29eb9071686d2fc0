package breeders

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"kennel-exchange/internal/middleware"
	"kennel-exchange/internal/platform/httpjson"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/api/breeders", func(br chi.Router) {
		br.Post("/", applyHandler(svc))
		br.Get("/", listHandler(svc))
		br.Patch("/me", updateMeHandler(svc))
		br.Get("/{breederID}", getHandler(svc))
		br.Post("/{breederID}/verify", verifyHandler(svc))
	})
}

type applyRequest struct {
	KennelName string `json:"kennel_name" validate:"required"`
	Location   string `json:"location"`
	Bio        string `json:"bio"`
}

type updateRequest struct {
	KennelName *string `json:"kennel_name"`
	Location   *string `json:"location"`
	Bio        *string `json:"bio"`
}

type breederResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	KennelName string    `json:"kennel_name"`
	Location   string    `json:"location"`
	Bio        string    `json:"bio"`
	Verified   bool      `json:"verified"`
	CreatedAt  time.Time `json:"created_at"`
}

// applyHandler godoc
// @Summary Crear perfil de criadero
// @Description Un perfil por usuario. El rol del usuario pasa a breeder.
// @Tags breeders
// @Accept json
// @Produce json
// @Param payload body applyRequest true "Datos del criadero"
// @Success 201 {object} breederResponse
// @Failure 409 {object} httpjson.ErrorBody
// @Router /api/breeders [post]
func applyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		var req applyRequest
		if !httpjson.DecodeOrFail(w, r, &req) {
			return
		}
		b, err := svc.Apply(r.Context(), claims.UserID, ApplyInput{
			KennelName: req.KennelName,
			Location:   req.Location,
			Bio:        req.Bio,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusCreated, toResponse(b))
	}
}

func listHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		verifiedOnly := r.URL.Query().Get("verified") == "true"
		items, err := svc.List(r.Context(), verifiedOnly)
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]breederResponse, 0, len(items))
		for _, b := range items {
			out = append(out, toResponse(b))
		}
		httpjson.WriteJSON(w, http.StatusOK, out)
	}
}

func getHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := svc.Get(r.Context(), chi.URLParam(r, "breederID"))
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toResponse(b))
	}
}

func updateMeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		var req updateRequest
		if !httpjson.DecodeOrFail(w, r, &req) {
			return
		}
		b, err := svc.Update(r.Context(), claims.UserID, UpdateInput{
			KennelName: req.KennelName,
			Location:   req.Location,
			Bio:        req.Bio,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toResponse(b))
	}
}

func verifyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		b, err := svc.Verify(r.Context(), claims, chi.URLParam(r, "breederID"))
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toResponse(b))
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		httpjson.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrConflict):
		httpjson.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrForbidden):
		httpjson.Error(w, http.StatusForbidden, err.Error())
	default:
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
	}
}

func toResponse(b Breeder) breederResponse {
	return breederResponse{
		ID:         b.ID,
		UserID:     b.UserID,
		KennelName: b.KennelName,
		Location:   b.Location,
		Bio:        b.Bio,
		Verified:   b.Verified,
		CreatedAt:  b.CreatedAt,
	}
}
