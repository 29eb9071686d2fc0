package users

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"kennel-exchange/internal/middleware"
	"kennel-exchange/internal/platform/httpjson"
	"kennel-exchange/internal/ports/auth"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/api/register", registerHandler(svc))
	r.Post("/api/login", loginHandler(svc))

	r.Get("/api/me", meHandler(svc))
	r.Patch("/api/me", updateMeHandler(svc))

	// Admin
	r.Put("/api/users/{userID}/role", setRoleHandler(svc))
}

type registerRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	DisplayName string `json:"display_name"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	DisplayName     string    `json:"display_name"`
	Role            auth.Role `json:"role"`
	NewsletterOptIn bool      `json:"newsletter_opt_in"`
	CreatedAt       time.Time `json:"created_at"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
}

type updateMeRequest struct {
	DisplayName     *string `json:"display_name"`
	NewsletterOptIn *bool   `json:"newsletter_opt_in"`
}

type setRoleRequest struct {
	Role auth.Role `json:"role" validate:"required,oneof=user breeder admin"`
}

// registerHandler godoc
// @Summary Registrar usuario
// @Tags users
// @Accept json
// @Produce json
// @Param payload body registerRequest true "Datos de registro"
// @Success 201 {object} userResponse
// @Failure 400 {object} httpjson.ErrorBody
// @Failure 409 {object} httpjson.ErrorBody "email ya registrado"
// @Router /api/register [post]
func registerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if !httpjson.DecodeOrFail(w, r, &req) {
			return
		}

		u, err := svc.Register(r.Context(), RegisterInput{
			Email:       req.Email,
			Password:    req.Password,
			DisplayName: req.DisplayName,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusCreated, toUserResponse(u))
	}
}

// loginHandler godoc
// @Summary Login con email y password
// @Tags users
// @Accept json
// @Produce json
// @Param payload body loginRequest true "Credenciales"
// @Success 200 {object} loginResponse
// @Failure 401 {object} httpjson.ErrorBody
// @Router /api/login [post]
func loginHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if !httpjson.DecodeOrFail(w, r, &req) {
			return
		}

		sess, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, loginResponse{
			Token:     sess.Token,
			TokenType: "Bearer",
			ExpiresAt: sess.ExpiresAt,
			User:      toUserResponse(sess.User),
		})
	}
}

func meHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		u, err := svc.Get(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toUserResponse(u))
	}
}

func updateMeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		var req updateMeRequest
		if !httpjson.DecodeOrFail(w, r, &req) {
			return
		}
		u, err := svc.UpdateProfile(r.Context(), claims.UserID, UpdateProfileInput{
			DisplayName:     req.DisplayName,
			NewsletterOptIn: req.NewsletterOptIn,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toUserResponse(u))
	}
}

func setRoleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		var req setRoleRequest
		if !httpjson.DecodeOrFail(w, r, &req) {
			return
		}
		u, err := svc.SetRole(r.Context(), claims, chi.URLParam(r, "userID"), req.Role)
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toUserResponse(u))
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		httpjson.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		httpjson.Error(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrForbidden):
		httpjson.Error(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrConflict):
		httpjson.Error(w, http.StatusConflict, err.Error())
	default:
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
	}
}

func toUserResponse(u User) userResponse {
	return userResponse{
		ID:              u.ID,
		Email:           u.Email,
		DisplayName:     u.DisplayName,
		Role:            u.Role,
		NewsletterOptIn: u.NewsletterOptIn,
		CreatedAt:       u.CreatedAt,
	}
}
