package social

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"kennel-exchange/internal/middleware"
	"kennel-exchange/internal/platform/httpjson"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/api/hightable", func(hr chi.Router) {
		hr.Get("/access", accessHandler(svc))
		hr.Get("/posts", feedHandler(svc))
		hr.Post("/posts", createPostHandler(svc))
		hr.Post("/posts/{postID}/remove", removePostHandler(svc))
	})
}

// createPostRequest es el cuerpo para publicar en la High Table.
type createPostRequest struct {
	Body       string     `json:"body" validate:"required,max=2000"`
	ImageURL   string     `json:"image_url" validate:"omitempty,url"`
	Visibility Visibility `json:"visibility" enums:"members,friends"`
}

type postResponse struct {
	ID           string     `json:"id"`
	AuthorUserID string     `json:"author_user_id"`
	Body         string     `json:"body"`
	ImageURL     string     `json:"image_url,omitempty"`
	Visibility   Visibility `json:"visibility"`
	Status       Status     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	RemovedAt    *time.Time `json:"removed_at,omitempty"`
}

type accessResponse struct {
	Access bool `json:"access"`
}

// accessHandler godoc
// @Summary ¿Puedo entrar a la High Table?
// @Tags hightable
// @Produce json
// @Success 200 {object} accessResponse
// @Router /api/hightable/access [get]
func accessHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		has, err := svc.Access(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, accessResponse{Access: has})
	}
}

// createPostHandler godoc
// @Summary Publicar en la High Table
// @Description Requiere haber comprado un cachorro (o ser criadero verificado).
// @Tags hightable
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body createPostRequest true "Post"
// @Success 201 {object} postResponse
// @Failure 400 {object} httpjson.ErrorBody
// @Failure 403 {object} httpjson.ErrorBody
// @Router /api/hightable/posts [post]
func createPostHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		var req createPostRequest
		if !httpjson.DecodeOrFail(w, r, &req) {
			return
		}
		p, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Body:       req.Body,
			ImageURL:   req.ImageURL,
			Visibility: req.Visibility,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusCreated, toPostResponse(p))
	}
}

// feedHandler godoc
// @Summary Feed de la High Table
// @Description Posts activos, más recientes primero. Permite filtrar por autor, rango de fechas y texto.
// @Tags hightable
// @Produce json
// @Param limit query int false "Máximo de posts (1-200). Por defecto 50"
// @Param author query string false "ID del autor"
// @Param from query string false "created_at mínimo (RFC3339)"
// @Param to query string false "created_at máximo (RFC3339)"
// @Param q query string false "Texto de búsqueda"
// @Success 200 {array} postResponse
// @Failure 403 {object} httpjson.ErrorBody
// @Router /api/hightable/posts [get]
func feedHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		filter, err := parseListFilter(r)
		if err != nil {
			httpjson.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		items, err := svc.Feed(r.Context(), claims.UserID, filter)
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]postResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPostResponse(p))
		}
		httpjson.WriteJSON(w, http.StatusOK, out)
	}
}

func removePostHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		p, err := svc.Remove(r.Context(), claims, chi.URLParam(r, "postID"))
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toPostResponse(p))
	}
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	q := r.URL.Query()
	filter := ListFilter{
		Author: q.Get("author"),
		Query:  q.Get("q"),
	}

	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Limit = n
		}
	}

	// from/to RFC3339
	if v := strings.TrimSpace(q.Get("from")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("from must be RFC3339")
		}
		filter.From = &t
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("to must be RFC3339")
		}
		filter.To = &t
	}
	return filter, nil
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		httpjson.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrNoAccess):
		httpjson.Error(w, http.StatusForbidden, err.Error())
	default:
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
	}
}

func toPostResponse(p Post) postResponse {
	return postResponse{
		ID:           p.ID,
		AuthorUserID: p.AuthorUserID,
		Body:         p.Body,
		ImageURL:     p.ImageURL,
		Visibility:   p.Visibility,
		Status:       p.Status,
		CreatedAt:    p.CreatedAt,
		RemovedAt:    p.RemovedAt,
	}
}
