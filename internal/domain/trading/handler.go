package trading

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"kennel-exchange/internal/middleware"
	"kennel-exchange/internal/platform/httpjson"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	// Market data (público)
	r.Get("/api/products", listProductsHandler(svc))
	r.Get("/api/products/{productID}", getProductHandler(svc))
	r.Get("/api/products/{productID}/book", getBookHandler(svc))
	r.Post("/api/quote", quoteHandler())

	// Cuenta Coinbase del usuario
	r.Get("/api/orders", listOrdersHandler(svc))
	r.Post("/api/orders", placeOrderHandler(svc))
	r.Get("/api/orders/{orderID}", getOrderHandler(svc))
	r.Post("/api/orders/{orderID}/cancel", cancelOrderHandler(svc))
	r.Get("/api/accounts", listAccountsHandler(svc))
}

type quoteRequest struct {
	Side   string `json:"side" validate:"required"`
	Amount string `json:"amount" validate:"required"`
	Price  string `json:"price" validate:"required"`
}

type placeOrderRequest struct {
	ProductID     string `json:"product_id" validate:"required"`
	Side          string `json:"side" validate:"required"`
	Type          string `json:"type"`
	Amount        string `json:"amount" validate:"required"`
	AmountInQuote bool   `json:"amount_in_quote"`
	LimitPrice    string `json:"limit_price"`
	PostOnly      bool   `json:"post_only"`
}

func listProductsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListProducts(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, items)
	}
}

func getProductHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetProduct(r.Context(), chi.URLParam(r, "productID"))
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, p)
	}
}

// getBookHandler godoc
// @Summary Order book (REST)
// @Description Bids desc / asks asc con profundidad acumulada. depth por defecto 20.
// @Tags market
// @Produce json
// @Param productID path string true "Product ID (BTC-USD)"
// @Param depth query int false "Niveles por lado"
// @Success 200 {object} orderbook.Snapshot
// @Failure 400 {object} httpjson.ErrorBody
// @Failure 502 {object} httpjson.ErrorBody
// @Router /api/products/{productID}/book [get]
func getBookHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		depth := 0
		if v := r.URL.Query().Get("depth"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				httpjson.Error(w, http.StatusBadRequest, "depth must be a positive integer")
				return
			}
			depth = n
		}
		book, err := svc.GetBook(r.Context(), chi.URLParam(r, "productID"), depth)
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, book)
	}
}

// quoteHandler godoc
// @Summary Calcular orden
// @Description subtotal = amount*price; fee 0.5%; BUY total = subtotal+fee, SELL total = subtotal-fee.
// @Tags trading
// @Accept json
// @Produce json
// @Param payload body quoteRequest true "side, amount, price"
// @Success 200 {object} QuoteResult
// @Failure 400 {object} httpjson.ErrorBody
// @Router /api/quote [post]
func quoteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req quoteRequest
		if !httpjson.DecodeOrFail(w, r, &req) {
			return
		}
		q, err := Quote(req.Side, req.Amount, req.Price)
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, q)
	}
}

// placeOrderHandler godoc
// @Summary Colocar orden en Coinbase
// @Description Usa el token OAuth del usuario o, si no hay, su API key.
// @Tags trading
// @Accept json
// @Produce json
// @Param payload body placeOrderRequest true "Orden"
// @Success 201 {object} PlacedOrder
// @Failure 400 {object} httpjson.ErrorBody
// @Failure 412 {object} httpjson.ErrorBody "sin credenciales"
// @Failure 422 {object} httpjson.ErrorBody "rechazada por Coinbase"
// @Router /api/orders [post]
func placeOrderHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		var req placeOrderRequest
		if !httpjson.DecodeOrFail(w, r, &req) {
			return
		}

		o, err := svc.PlaceOrder(r.Context(), claims.UserID, PlaceOrderInput{
			ProductID:     req.ProductID,
			Side:          req.Side,
			Type:          req.Type,
			Amount:        req.Amount,
			AmountInQuote: req.AmountInQuote,
			LimitPrice:    req.LimitPrice,
			PostOnly:      req.PostOnly,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusCreated, o)
	}
}

func listOrdersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		q := r.URL.Query()
		items, err := svc.ListOrders(r.Context(), claims.UserID, q.Get("product_id"), q.Get("status"))
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, items)
	}
}

func getOrderHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		o, err := svc.GetOrder(r.Context(), claims.UserID, chi.URLParam(r, "orderID"))
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, o)
	}
}

// cancelOrderHandler godoc
// @Summary Cancelar orden
// @Tags trading
// @Produce json
// @Param orderID path string true "Order ID"
// @Success 200 {object} CancelResult
// @Failure 412 {object} httpjson.ErrorBody
// @Router /api/orders/{orderID}/cancel [post]
func cancelOrderHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		res, err := svc.CancelOrder(r.Context(), claims.UserID, chi.URLParam(r, "orderID"))
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, res)
	}
}

func listAccountsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireClaims(w, r)
		if !ok {
			return
		}
		items, err := svc.ListAccounts(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, items)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		httpjson.Error(w, http.StatusBadRequest, "invalid input: amounts and prices must be positive numbers")
	case errors.Is(err, ErrNoCredentials):
		httpjson.Error(w, http.StatusPreconditionFailed, err.Error())
	case errors.Is(err, ErrOrderRejected):
		httpjson.Error(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrUpstream):
		httpjson.Error(w, http.StatusBadGateway, "coinbase unavailable")
	default:
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
	}
}
