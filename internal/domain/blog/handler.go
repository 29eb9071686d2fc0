package blog

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"kennel-exchange/internal/middleware"
	"kennel-exchange/internal/platform/httpjson"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/api/blog", func(br chi.Router) {
		br.Get("/", listHandler(svc))
		br.Post("/", createHandler(svc))
		br.Post("/draft", draftHandler(svc))
		br.Get("/{slug}", getHandler(svc))
		br.Patch("/{postID}", updateHandler(svc))
		br.Delete("/{postID}", deleteHandler(svc))
		br.Post("/{postID}/publish", publishHandler(svc))
	})
}

type createRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Body    string `json:"body"`
	Publish bool   `json:"publish"`
}

type updateRequest struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
}

type draftRequest struct {
	Title string `json:"title" validate:"required,max=200"`
	Notes string `json:"notes"`
}

type draftResponse struct {
	Body string `json:"body"`
}

type postResponse struct {
	ID           string     `json:"id"`
	AuthorUserID string     `json:"author_user_id"`
	Title        string     `json:"title"`
	Slug         string     `json:"slug"`
	Body         string     `json:"body"`
	Status       Status     `json:"status"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// listHandler godoc
// @Summary Posts publicados
// @Tags blog
// @Produce json
// @Param limit query int false "Máx 100"
// @Param offset query int false "Offset"
// @Success 200 {array} postResponse
// @Router /api/blog [get]
func listHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		items, err := svc.ListPublished(r.Context(), limit, offset)
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]postResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toResponse(p))
		}
		httpjson.WriteJSON(w, http.StatusOK, out)
	}
}

// createHandler godoc
// @Summary Crear post
// @Description Solo criaderos y admins. El slug se deriva del título.
// @Tags blog
// @Accept json
// @Produce json
// @Param payload body createRequest true "Post"
// @Success 201 {object} postResponse
// @Failure 403 {object} httpjson.ErrorBody
// @Failure 409 {object} httpjson.ErrorBody
// @Router /api/blog [post]
func createHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		var req createRequest
		if !httpjson.DecodeOrFail(w, r, &req) {
			return
		}
		p, err := svc.Create(r.Context(), claims, CreateInput{
			Title:   req.Title,
			Body:    req.Body,
			Publish: req.Publish,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusCreated, toResponse(p))
	}
}

// draftHandler godoc
// @Summary Borrador asistido
// @Description Genera un cuerpo sugerido; no guarda nada.
// @Tags blog
// @Accept json
// @Produce json
// @Param payload body draftRequest true "Título y notas"
// @Success 200 {object} draftResponse
// @Failure 503 {object} httpjson.ErrorBody
// @Router /api/blog/draft [post]
func draftHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		var req draftRequest
		if !httpjson.DecodeOrFail(w, r, &req) {
			return
		}
		body, err := svc.Draft(r.Context(), claims, req.Title, req.Notes)
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, draftResponse{Body: body})
	}
}

func getHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Anónimo permitido: claims vacías.
		claims, _ := middleware.GetClaims(r.Context())
		p, err := svc.GetBySlug(r.Context(), claims, chi.URLParam(r, "slug"))
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toResponse(p))
	}
}

func updateHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		var req updateRequest
		if !httpjson.DecodeOrFail(w, r, &req) {
			return
		}
		p, err := svc.Update(r.Context(), claims, chi.URLParam(r, "postID"), UpdateInput{
			Title: req.Title,
			Body:  req.Body,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toResponse(p))
	}
}

func publishHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		p, err := svc.Publish(r.Context(), claims, chi.URLParam(r, "postID"))
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toResponse(p))
	}
}

func deleteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		if err := svc.Delete(r.Context(), claims, chi.URLParam(r, "postID")); err != nil {
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
	case errors.Is(err, ErrSlugTaken):
		httpjson.Error(w, http.StatusConflict, ErrSlugTaken.Error())
	case errors.Is(err, ErrUnavailable):
		httpjson.Error(w, http.StatusServiceUnavailable, ErrUnavailable.Error())
	default:
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
	}
}

func toResponse(p Post) postResponse {
	return postResponse{
		ID:           p.ID,
		AuthorUserID: p.AuthorUserID,
		Title:        p.Title,
		Slug:         p.Slug,
		Body:         p.Body,
		Status:       p.Status,
		PublishedAt:  p.PublishedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
