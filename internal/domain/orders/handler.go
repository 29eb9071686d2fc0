package orders

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"kennel-exchange/internal/middleware"
	"kennel-exchange/internal/platform/httpjson"
	"kennel-exchange/internal/ports/payments"
)

const maxWebhookBytes = 64 << 10

func RegisterRoutes(r chi.Router, svc *Service, pay payments.Checkout, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	r.Route("/api/puppy-orders", func(or chi.Router) {
		or.Post("/", createHandler(svc))
		or.Get("/", listHandler(svc))
		or.Get("/{orderID}", getHandler(svc))
		or.Post("/{orderID}/checkout", checkoutHandler(svc))
		or.Post("/{orderID}/cancel", cancelHandler(svc))
	})
	r.Post("/api/webhooks/stripe", webhookHandler(svc, pay, log))
}

type createRequest struct {
	PuppyIDs []string `json:"puppy_ids" validate:"required,min=1,max=5,dive,required"`
}

type itemResponse struct {
	PuppyID    string `json:"puppy_id"`
	PriceCents int64  `json:"price_cents"`
}

type orderResponse struct {
	ID          string         `json:"id"`
	Status      Status         `json:"status"`
	TotalCents  int64          `json:"total_cents"`
	Currency    string         `json:"currency"`
	Items       []itemResponse `json:"items"`
	CreatedAt   time.Time      `json:"created_at"`
	PaidAt      *time.Time     `json:"paid_at,omitempty"`
	CancelledAt *time.Time     `json:"cancelled_at,omitempty"`
}

type checkoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// createHandler godoc
// @Summary Reservar cachorros
// @Description Reserva de 1 a 5 cachorros disponibles y crea una orden PENDING.
// @Tags puppy-orders
// @Accept json
// @Produce json
// @Param payload body createRequest true "Cachorros"
// @Success 201 {object} orderResponse
// @Failure 409 {object} httpjson.ErrorBody
// @Router /api/puppy-orders [post]
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
		o, err := svc.Create(r.Context(), claims.UserID, req.PuppyIDs)
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusCreated, toResponse(o))
	}
}

func listHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		items, err := svc.ListByBuyer(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]orderResponse, 0, len(items))
		for _, o := range items {
			out = append(out, toResponse(o))
		}
		httpjson.WriteJSON(w, http.StatusOK, out)
	}
}

func getHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		o, err := svc.Get(r.Context(), claims.UserID, chi.URLParam(r, "orderID"))
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toResponse(o))
	}
}

// checkoutHandler godoc
// @Summary Iniciar pago
// @Description Crea la sesión de checkout y devuelve la URL a la que redirigir.
// @Tags puppy-orders
// @Produce json
// @Param orderID path string true "Order ID"
// @Success 200 {object} checkoutResponse
// @Failure 409 {object} httpjson.ErrorBody
// @Failure 503 {object} httpjson.ErrorBody
// @Router /api/puppy-orders/{orderID}/checkout [post]
func checkoutHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		sess, err := svc.Checkout(r.Context(), claims.UserID, claims.Email, chi.URLParam(r, "orderID"))
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, checkoutResponse{SessionID: sess.ID, URL: sess.URL})
	}
}

// cancelHandler godoc
// @Summary Cancelar orden
// @Description Solo PENDING. Los cachorros vuelven a available.
// @Tags puppy-orders
// @Produce json
// @Param orderID path string true "Order ID"
// @Success 200 {object} orderResponse
// @Failure 409 {object} httpjson.ErrorBody
// @Router /api/puppy-orders/{orderID}/cancel [post]
func cancelHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		o, err := svc.Cancel(r.Context(), claims.UserID, chi.URLParam(r, "orderID"))
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toResponse(o))
	}
}

// webhookHandler responde 2xx a todo evento verificado para que el proveedor no reintente
// eventos que no vamos a procesar.
func webhookHandler(svc *Service, pay payments.Checkout, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pay == nil {
			httpjson.Error(w, http.StatusServiceUnavailable, ErrNoPayments.Error())
			return
		}
		payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
		if err != nil {
			httpjson.Error(w, http.StatusBadRequest, "unreadable body")
			return
		}
		ev, err := pay.ParseEvent(payload, r.Header.Get("Stripe-Signature"))
		if err != nil {
			log.Warn("webhook rejected", zap.Error(err))
			httpjson.Error(w, http.StatusBadRequest, "invalid webhook")
			return
		}

		err = svc.HandlePaymentEvent(r.Context(), ev)
		switch {
		case err == nil:
		case errors.Is(err, ErrNotFound), errors.Is(err, ErrBadState):
			log.Warn("webhook ignored", zap.String("event_id", ev.ID), zap.String("type", string(ev.Type)), zap.Error(err))
		default:
			log.Error("webhook failed", zap.String("event_id", ev.ID), zap.Error(err))
			httpjson.Error(w, http.StatusInternalServerError, "internal error")
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, map[string]bool{"received": true})
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		httpjson.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrBadState), errors.Is(err, ErrUnavailable):
		httpjson.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrNoPayments):
		httpjson.Error(w, http.StatusServiceUnavailable, err.Error())
	default:
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
	}
}

func toResponse(o Order) orderResponse {
	out := orderResponse{
		ID:          o.ID,
		Status:      o.Status,
		TotalCents:  o.TotalCents,
		Currency:    o.Currency,
		Items:       make([]itemResponse, 0, len(o.Items)),
		CreatedAt:   o.CreatedAt,
		PaidAt:      o.PaidAt,
		CancelledAt: o.CancelledAt,
	}
	for _, it := range o.Items {
		out.Items = append(out.Items, itemResponse{PuppyID: it.PuppyID, PriceCents: it.PriceCents})
	}
	return out
}
