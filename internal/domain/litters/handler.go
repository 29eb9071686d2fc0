package litters

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"kennel-exchange/internal/middleware"
	"kennel-exchange/internal/platform/httpjson"
)

const dateLayout = "2006-01-02"

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/api/litters", func(lr chi.Router) {
		lr.Post("/", createLitterHandler(svc))
		lr.Get("/", listLittersHandler(svc))
		lr.Get("/{litterID}", getLitterHandler(svc))
		lr.Post("/{litterID}/puppies", addPuppyHandler(svc))
	})
	r.Route("/api/puppies", func(pr chi.Router) {
		pr.Get("/", listPuppiesHandler(svc))
		pr.Get("/{puppyID}", getPuppyHandler(svc))
		pr.Patch("/{puppyID}", updatePuppyHandler(svc))
	})
}

type createLitterRequest struct {
	Breed      string `json:"breed" validate:"required"`
	DamName    string `json:"dam_name"`
	SireName   string `json:"sire_name"`
	BornOn     string `json:"born_on" validate:"omitempty,datetime=2006-01-02"`
	ExpectedOn string `json:"expected_on" validate:"omitempty,datetime=2006-01-02"`
	Notes      string `json:"notes"`
}

type addPuppyRequest struct {
	Name       string `json:"name" validate:"required"`
	Sex        string `json:"sex" validate:"required,oneof=male female"`
	Color      string `json:"color"`
	PriceCents int64  `json:"price_cents" validate:"gte=0"`
	Notes      string `json:"notes"`
}

type updatePuppyRequest struct {
	Name       *string `json:"name"`
	Color      *string `json:"color"`
	PriceCents *int64  `json:"price_cents"`
	Status     *string `json:"status"`
	Notes      *string `json:"notes"`
}

type litterResponse struct {
	ID         string    `json:"id"`
	BreederID  string    `json:"breeder_id"`
	Breed      string    `json:"breed"`
	DamName    string    `json:"dam_name,omitempty"`
	SireName   string    `json:"sire_name,omitempty"`
	BornOn     string    `json:"born_on,omitempty"`
	ExpectedOn string    `json:"expected_on,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type puppyResponse struct {
	ID         string      `json:"id"`
	LitterID   string      `json:"litter_id"`
	Name       string      `json:"name"`
	Sex        Sex         `json:"sex"`
	Color      string      `json:"color,omitempty"`
	PriceCents int64       `json:"price_cents"`
	Status     PuppyStatus `json:"status"`
	Notes      string      `json:"notes,omitempty"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

type litterDetailResponse struct {
	litterResponse
	Puppies []puppyResponse `json:"puppies"`
}

// createLitterHandler godoc
// @Summary Registrar camada
// @Description Requiere perfil de criadero. born_on o expected_on (YYYY-MM-DD).
// @Tags litters
// @Accept json
// @Produce json
// @Param payload body createLitterRequest true "Camada"
// @Success 201 {object} litterResponse
// @Failure 400 {object} httpjson.ErrorBody
// @Failure 403 {object} httpjson.ErrorBody
// @Router /api/litters [post]
func createLitterHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		var req createLitterRequest
		if !httpjson.DecodeOrFail(w, r, &req) {
			return
		}
		l, err := svc.CreateLitter(r.Context(), claims.UserID, CreateLitterInput{
			Breed:      req.Breed,
			DamName:    req.DamName,
			SireName:   req.SireName,
			BornOn:     parseDate(req.BornOn),
			ExpectedOn: parseDate(req.ExpectedOn),
			Notes:      req.Notes,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusCreated, toLitterResponse(l))
	}
}

// listLittersHandler godoc
// @Summary Listar camadas
// @Tags litters
// @Produce json
// @Param breeder_id query string false "Filtrar por criadero"
// @Success 200 {array} litterResponse
// @Router /api/litters [get]
func listLittersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListLitters(r.Context(), r.URL.Query().Get("breeder_id"))
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]litterResponse, 0, len(items))
		for _, l := range items {
			out = append(out, toLitterResponse(l))
		}
		httpjson.WriteJSON(w, http.StatusOK, out)
	}
}

func getLitterHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := svc.GetLitter(r.Context(), chi.URLParam(r, "litterID"))
		if err != nil {
			writeError(w, err)
			return
		}
		out := litterDetailResponse{
			litterResponse: toLitterResponse(d.Litter),
			Puppies:        make([]puppyResponse, 0, len(d.Puppies)),
		}
		for _, p := range d.Puppies {
			out.Puppies = append(out.Puppies, toPuppyResponse(p))
		}
		httpjson.WriteJSON(w, http.StatusOK, out)
	}
}

// addPuppyHandler godoc
// @Summary Agregar cachorro a una camada
// @Tags litters
// @Accept json
// @Produce json
// @Param litterID path string true "Litter ID"
// @Param payload body addPuppyRequest true "Cachorro"
// @Success 201 {object} puppyResponse
// @Failure 403 {object} httpjson.ErrorBody
// @Failure 404 {object} httpjson.ErrorBody
// @Router /api/litters/{litterID}/puppies [post]
func addPuppyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		var req addPuppyRequest
		if !httpjson.DecodeOrFail(w, r, &req) {
			return
		}
		p, err := svc.AddPuppy(r.Context(), claims.UserID, chi.URLParam(r, "litterID"), AddPuppyInput{
			Name:       req.Name,
			Sex:        req.Sex,
			Color:      req.Color,
			PriceCents: req.PriceCents,
			Notes:      req.Notes,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusCreated, toPuppyResponse(p))
	}
}

// listPuppiesHandler godoc
// @Summary Buscar cachorros
// @Tags puppies
// @Produce json
// @Param breed query string false "Raza"
// @Param sex query string false "male|female"
// @Param max_price_cents query int false "Precio máximo"
// @Param status query string false "available (default), reserved, sold"
// @Param limit query int false "Máx 200"
// @Success 200 {array} puppyResponse
// @Router /api/puppies [get]
func listPuppiesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := PuppyFilter{
			Breed:  q.Get("breed"),
			Sex:    Sex(q.Get("sex")),
			Status: PuppyStatus(q.Get("status")),
		}
		if v := q.Get("max_price_cents"); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				httpjson.Error(w, http.StatusBadRequest, "invalid max_price_cents")
				return
			}
			f.MaxPriceCents = n
		}
		if v := q.Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				httpjson.Error(w, http.StatusBadRequest, "invalid limit")
				return
			}
			f.Limit = n
		}

		items, err := svc.ListPuppies(r.Context(), f)
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]puppyResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPuppyResponse(p))
		}
		httpjson.WriteJSON(w, http.StatusOK, out)
	}
}

func getPuppyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetPuppy(r.Context(), chi.URLParam(r, "puppyID"))
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toPuppyResponse(p))
	}
}

// updatePuppyHandler godoc
// @Summary Editar cachorro
// @Description Solo el dueño de la camada. el estado lo manejan las órdenes; el precio de un reservado no cambia.
// @Tags puppies
// @Accept json
// @Produce json
// @Param puppyID path string true "Puppy ID"
// @Param payload body updatePuppyRequest true "Campos a cambiar"
// @Success 200 {object} puppyResponse
// @Failure 409 {object} httpjson.ErrorBody
// @Router /api/puppies/{puppyID} [patch]
func updatePuppyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		var req updatePuppyRequest
		if !httpjson.DecodeOrFail(w, r, &req) {
			return
		}
		p, err := svc.UpdatePuppy(r.Context(), claims.UserID, chi.URLParam(r, "puppyID"), UpdatePuppyInput{
			Name:       req.Name,
			Color:      req.Color,
			PriceCents: req.PriceCents,
			Status:     req.Status,
			Notes:      req.Notes,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toPuppyResponse(p))
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		httpjson.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrNotBreeder):
		httpjson.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrBadState), errors.Is(err, ErrUnavailable):
		httpjson.Error(w, http.StatusConflict, err.Error())
	default:
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
	}
}

// parseDate: el formato ya fue validado en el DTO.
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func toLitterResponse(l Litter) litterResponse {
	return litterResponse{
		ID:         l.ID,
		BreederID:  l.BreederID,
		Breed:      l.Breed,
		DamName:    l.DamName,
		SireName:   l.SireName,
		BornOn:     formatDate(l.BornOn),
		ExpectedOn: formatDate(l.ExpectedOn),
		Notes:      l.Notes,
		CreatedAt:  l.CreatedAt,
	}
}

func toPuppyResponse(p Puppy) puppyResponse {
	return puppyResponse{
		ID:         p.ID,
		LitterID:   p.LitterID,
		Name:       p.Name,
		Sex:        p.Sex,
		Color:      p.Color,
		PriceCents: p.PriceCents,
		Status:     p.Status,
		Notes:      p.Notes,
		UpdatedAt:  p.UpdatedAt,
	}
}
