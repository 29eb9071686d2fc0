package coinbaseauth

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"kennel-exchange/internal/middleware"
	"kennel-exchange/internal/platform/httpjson"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/api/oauth/coinbase", func(or chi.Router) {
		or.Get("/authorize", authorizeHandler(svc))
		// Coinbase redirige aquí: no hay JWT, el state identifica al usuario.
		or.Get("/callback", callbackHandler(svc))
		or.Get("/status", statusHandler(svc))
		or.Delete("/", disconnectHandler(svc))
	})
}

type authorizeResponse struct {
	URL string `json:"url"`
}

// authorizeHandler godoc
// @Summary URL de autorización de Coinbase
// @Tags oauth
// @Produce json
// @Success 200 {object} authorizeResponse
// @Failure 503 {object} httpjson.ErrorBody "oauth no configurado"
// @Router /api/oauth/coinbase/authorize [get]
func authorizeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		url, err := svc.AuthorizeURL(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, authorizeResponse{URL: url})
	}
}

// callbackHandler godoc
// @Summary Callback OAuth de Coinbase
// @Description Valida state, canjea el code y redirige al frontend.
// @Tags oauth
// @Param code query string true "Authorization code"
// @Param state query string true "State emitido en /authorize"
// @Success 302
// @Failure 400 {object} httpjson.ErrorBody "state inválido"
// @Router /api/oauth/coinbase/callback [get]
func callbackHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if e := q.Get("error"); e != "" {
			// el usuario canceló en Coinbase; consumir el state igual
			_, _ = svc.states.GetDel(r.Context(), statePrefix+q.Get("state"))
			httpjson.Error(w, http.StatusBadRequest, "authorization denied: "+e)
			return
		}
		if _, err := svc.Callback(r.Context(), q.Get("code"), q.Get("state")); err != nil {
			writeError(w, err)
			return
		}
		http.Redirect(w, r, svc.ConnectedRedirect(), http.StatusFound)
	}
}

func statusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		st, err := svc.Status(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, st)
	}
}

func disconnectHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		if err := svc.Disconnect(r.Context(), claims.UserID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidState), errors.Is(err, ErrInvalidInput):
		httpjson.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotConfigured):
		httpjson.Error(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, ErrExchange):
		httpjson.Error(w, http.StatusBadGateway, "coinbase rejected the authorization code")
	case errors.Is(err, ErrNotConnected):
		httpjson.Error(w, http.StatusNotFound, err.Error())
	default:
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
	}
}
