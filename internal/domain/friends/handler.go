package friends

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"kennel-exchange/internal/middleware"
	"kennel-exchange/internal/platform/httpjson"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/api/friends", listFriendsHandler(svc))

	r.Route("/api/friends/requests", func(fr chi.Router) {
		fr.Get("/", listRequestsHandler(svc))
		fr.Post("/", sendHandler(svc))
		fr.Post("/{requestID}/accept", actionHandler(svc.Accept))
		fr.Post("/{requestID}/decline", actionHandler(svc.Decline))
		fr.Post("/{requestID}/remove", actionHandler(svc.Remove))
	})
}

type sendRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

type requestResponse struct {
	ID              string     `json:"id"`
	RequesterUserID string     `json:"requester_user_id"`
	AddresseeUserID string     `json:"addressee_user_id"`
	Status          Status     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	RespondedAt     *time.Time `json:"responded_at,omitempty"`
}

type requestsResponse struct {
	Incoming []requestResponse `json:"incoming"`
	Outgoing []requestResponse `json:"outgoing"`
}

type friendResponse struct {
	UserID    string    `json:"user_id"`
	RequestID string    `json:"request_id"`
	Since     time.Time `json:"since"`
}

// listFriendsHandler godoc
// @Summary Mis amigos
// @Tags friends
// @Produce json
// @Success 200 {array} friendResponse
// @Router /api/friends [get]
func listFriendsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		items, err := svc.ListFriends(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]friendResponse, 0, len(items))
		for _, f := range items {
			out = append(out, friendResponse{UserID: f.UserID, RequestID: f.RequestID, Since: f.Since})
		}
		httpjson.WriteJSON(w, http.StatusOK, out)
	}
}

func listRequestsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		in, err := svc.ListIncoming(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		out, err := svc.ListOutgoing(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, requestsResponse{
			Incoming: toResponses(in),
			Outgoing: toResponses(out),
		})
	}
}

// sendHandler godoc
// @Summary Enviar solicitud de amistad
// @Description Si el otro ya me envió una pendiente, se acepta.
// @Tags friends
// @Accept json
// @Produce json
// @Param payload body sendRequest true "Destinatario"
// @Success 200 {object} requestResponse
// @Failure 400 {object} httpjson.ErrorBody
// @Failure 404 {object} httpjson.ErrorBody
// @Router /api/friends/requests [post]
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
		fr, err := svc.Send(r.Context(), claims.UserID, req.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toResponse(fr))
	}
}

// actionHandler cubre accept / decline / remove.
func actionHandler(action func(ctx context.Context, requestID, userID string) (Request, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		fr, err := action(r.Context(), chi.URLParam(r, "requestID"), claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toResponse(fr))
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
	case errors.Is(err, ErrBadState):
		httpjson.Error(w, http.StatusConflict, err.Error())
	default:
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
	}
}

func toResponses(items []Request) []requestResponse {
	out := make([]requestResponse, 0, len(items))
	for _, r := range items {
		out = append(out, toResponse(r))
	}
	return out
}

func toResponse(r Request) requestResponse {
	return requestResponse{
		ID:              r.ID,
		RequesterUserID: r.RequesterUserID,
		AddresseeUserID: r.AddresseeUserID,
		Status:          r.Status,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
		RespondedAt:     r.RespondedAt,
	}
}
