package messages

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
	r.Route("/api/messages", func(mr chi.Router) {
		mr.Get("/", inboxHandler(svc))
		mr.Get("/{userID}", conversationHandler(svc))
		mr.Post("/{userID}", sendHandler(svc))
		mr.Post("/{userID}/read", markReadHandler(svc))
	})
}

type sendRequest struct {
	Body string `json:"body" validate:"required,max=2000"`
}

type messageResponse struct {
	ID              string     `json:"id"`
	SenderUserID    string     `json:"sender_user_id"`
	RecipientUserID string     `json:"recipient_user_id"`
	Body            string     `json:"body"`
	CreatedAt       time.Time  `json:"created_at"`
	ReadAt          *time.Time `json:"read_at,omitempty"`
}

type threadResponse struct {
	WithUserID  string          `json:"with_user_id"`
	LastMessage messageResponse `json:"last_message"`
	Unread      int             `json:"unread"`
}

type markReadResponse struct {
	Marked int `json:"marked"`
}

// inboxHandler godoc
// @Summary Inbox
// @Description Una entrada por contraparte: último mensaje y no leídos.
// @Tags messages
// @Produce json
// @Success 200 {array} threadResponse
// @Router /api/messages [get]
func inboxHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		threads, err := svc.Inbox(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]threadResponse, 0, len(threads))
		for _, t := range threads {
			out = append(out, threadResponse{
				WithUserID:  t.WithUserID,
				LastMessage: toResponse(t.LastMessage),
				Unread:      t.Unread,
			})
		}
		httpjson.WriteJSON(w, http.StatusOK, out)
	}
}

// conversationHandler godoc
// @Summary Conversación con un usuario
// @Tags messages
// @Produce json
// @Param userID path string true "Contraparte"
// @Param before query string false "Paginar hacia atrás (RFC3339)"
// @Param limit query int false "Máx 200"
// @Success 200 {array} messageResponse
// @Router /api/messages/{userID} [get]
func conversationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		var before *time.Time
		if v := r.URL.Query().Get("before"); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				httpjson.Error(w, http.StatusBadRequest, "before must be RFC3339")
				return
			}
			before = &t
		}
		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				httpjson.Error(w, http.StatusBadRequest, "invalid limit")
				return
			}
			limit = n
		}

		items, err := svc.Conversation(r.Context(), claims.UserID, chi.URLParam(r, "userID"), before, limit)
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]messageResponse, 0, len(items))
		for _, m := range items {
			out = append(out, toResponse(m))
		}
		httpjson.WriteJSON(w, http.StatusOK, out)
	}
}

// sendHandler godoc
// @Summary Enviar mensaje directo
// @Description Solo entre amigos.
// @Tags messages
// @Accept json
// @Produce json
// @Param userID path string true "Destinatario"
// @Param payload body sendRequest true "Mensaje"
// @Success 201 {object} messageResponse
// @Failure 403 {object} httpjson.ErrorBody
// @Router /api/messages/{userID} [post]
func sendHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		var req sendRequest
		if !httpjson.DecodeOrFail(w, r, &req) {
			return
		}
		m, err := svc.Send(r.Context(), claims.UserID, chi.URLParam(r, "userID"), req.Body)
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusCreated, toResponse(m))
	}
}

func markReadHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		n, err := svc.MarkRead(r.Context(), claims.UserID, chi.URLParam(r, "userID"))
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, markReadResponse{Marked: n})
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		httpjson.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrForbidden):
		httpjson.Error(w, http.StatusForbidden, err.Error())
	default:
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
	}
}

func toResponse(m Message) messageResponse {
	return messageResponse{
		ID:              m.ID,
		SenderUserID:    m.SenderUserID,
		RecipientUserID: m.RecipientUserID,
		Body:            m.Body,
		CreatedAt:       m.CreatedAt,
		ReadAt:          m.ReadAt,
	}
}
