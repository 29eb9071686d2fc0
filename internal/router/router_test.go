package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"kennel-exchange/internal/adapters/payments/fake"
	"kennel-exchange/internal/platform/config"
	"kennel-exchange/internal/router"
)

const webhookSecret = "whsec_router_test"

func newServer(t *testing.T, pay *fake.Checkout) *httptest.Server {
	t.Helper()

	var cfg config.Config
	cfg.App.Name = "kennel-exchange"
	cfg.App.FrontendURL = "http://localhost:5173"
	cfg.Coinbase.OAuthClientID = "client-id"
	cfg.Coinbase.OAuthRedirectURL = "http://localhost:8080/api/oauth/coinbase/callback"

	opts := router.Options{AuthVerifier: nil, Config: cfg}
	if pay != nil {
		opts.Payments = pay
	}
	ts := httptest.NewServer(router.NewRouter(opts))
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_PuppyPurchaseUnlocksHighTable(t *testing.T) {
	pay := fake.New(webhookSecret, "http://localhost:8080")
	ts := newServer(t, pay)

	breederID := register(t, ts.URL, "kennel@example.com")
	buyerID := register(t, ts.URL, "ana@example.com")
	otherID := register(t, ts.URL, "bob@example.com")

	// 1) Criadero con una camada y un cachorro
	mustStatus(t, ts.URL, "POST", "/api/breeders", breederID, map[string]any{
		"kennel_name": "Happy Paws",
	}, http.StatusCreated)
	litterID := createdID(t, ts.URL, "POST", "/api/litters", breederID, map[string]any{
		"breed":   "Beagle",
		"born_on": "2026-08-01",
	})
	puppyID := createdID(t, ts.URL, "POST", "/api/litters/"+litterID+"/puppies", breederID, map[string]any{
		"name":        "Luna",
		"sex":         "female",
		"price_cents": 150000,
	})

	// 2) Sin compra no hay High Table
	{
		st, body := doReq(t, ts.URL, "GET", "/api/hightable/access", buyerID, nil)
		if st != http.StatusOK || !bytes.Contains(body, []byte(`"access":false`)) {
			t.Fatalf("expected access=false before purchase, got %d body=%s", st, string(body))
		}
		mustStatus(t, ts.URL, "POST", "/api/hightable/posts", buyerID, map[string]any{"body": "hi"}, http.StatusForbidden)
	}

	// 3) Reserva, otro comprador no puede tomar el mismo cachorro
	orderID := createdID(t, ts.URL, "POST", "/api/puppy-orders", buyerID, map[string]any{
		"puppy_ids": []string{puppyID},
	})
	mustStatus(t, ts.URL, "POST", "/api/puppy-orders", otherID, map[string]any{
		"puppy_ids": []string{puppyID},
	}, http.StatusConflict)
	// el criadero no puede liberar a mano un cachorro reservado
	mustStatus(t, ts.URL, "PATCH", "/api/puppies/"+puppyID, breederID, map[string]any{
		"status": "available",
	}, http.StatusConflict)
	mustStatus(t, ts.URL, "POST", "/api/puppy-orders", otherID, map[string]any{
		"puppy_ids": []string{puppyID},
	}, http.StatusConflict)

	// 4) Cancelar libera el cachorro
	{
		st, body := doReq(t, ts.URL, "POST", "/api/puppy-orders/"+orderID+"/cancel", buyerID, nil)
		if st != http.StatusOK || !bytes.Contains(body, []byte(`"status":"CANCELLED"`)) {
			t.Fatalf("expected CANCELLED, got %d body=%s", st, string(body))
		}
		st, body = doReq(t, ts.URL, "GET", "/api/puppies/"+puppyID, buyerID, nil)
		if st != http.StatusOK || !bytes.Contains(body, []byte(`"status":"available"`)) {
			t.Fatalf("expected puppy available after cancel, got %d body=%s", st, string(body))
		}
	}

	// 5) Nueva orden + checkout + webhook firmado => PAID
	orderID = createdID(t, ts.URL, "POST", "/api/puppy-orders", buyerID, map[string]any{
		"puppy_ids": []string{puppyID},
	})
	var session struct {
		SessionID string `json:"session_id"`
		URL       string `json:"url"`
	}
	{
		st, body := doReq(t, ts.URL, "POST", "/api/puppy-orders/"+orderID+"/checkout", buyerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 checkout, got %d body=%s", st, string(body))
		}
		_ = json.Unmarshal(body, &session)
		if session.SessionID == "" {
			t.Fatalf("checkout: missing session id body=%s", string(body))
		}
	}
	{
		event, _ := json.Marshal(map[string]string{
			"id":         "evt_1",
			"type":       "checkout.session.completed",
			"session_id": session.SessionID,
			"order_id":   orderID,
		})

		st, _ := doRaw(t, ts.URL, "/api/webhooks/stripe", event, "bad-signature")
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 for bad signature, got %d", st)
		}
		st, body := doRaw(t, ts.URL, "/api/webhooks/stripe", event, pay.Sign(event))
		if st != http.StatusOK {
			t.Fatalf("expected 200 webhook, got %d body=%s", st, string(body))
		}
		// reentrega: idempotente
		st, _ = doRaw(t, ts.URL, "/api/webhooks/stripe", event, pay.Sign(event))
		if st != http.StatusOK {
			t.Fatalf("expected 200 on redelivery, got %d", st)
		}
	}
	{
		st, body := doReq(t, ts.URL, "GET", "/api/puppy-orders/"+orderID, buyerID, nil)
		if st != http.StatusOK || !bytes.Contains(body, []byte(`"status":"PAID"`)) {
			t.Fatalf("expected PAID, got %d body=%s", st, string(body))
		}
		mustStatus(t, ts.URL, "POST", "/api/puppy-orders/"+orderID+"/cancel", buyerID, nil, http.StatusConflict)
		// la orden ajena no existe para otro usuario
		mustStatus(t, ts.URL, "GET", "/api/puppy-orders/"+orderID, otherID, nil, http.StatusNotFound)
	}

	// 6) Ahora sí: High Table
	{
		st, body := doReq(t, ts.URL, "GET", "/api/hightable/access", buyerID, nil)
		if st != http.StatusOK || !bytes.Contains(body, []byte(`"access":true`)) {
			t.Fatalf("expected access=true after purchase, got %d body=%s", st, string(body))
		}
		mustStatus(t, ts.URL, "POST", "/api/hightable/posts", buyerID, map[string]any{
			"body": "Luna came home today!",
		}, http.StatusCreated)
		mustStatus(t, ts.URL, "GET", "/api/hightable/posts", buyerID, nil, http.StatusOK)
		mustStatus(t, ts.URL, "GET", "/api/hightable/posts", otherID, nil, http.StatusForbidden)
	}
}

func TestHTTP_DirectMessagesRequireFriendship(t *testing.T) {
	ts := newServer(t, nil)

	ana := register(t, ts.URL, "ana@example.com")
	bob := register(t, ts.URL, "bob@example.com")

	mustStatus(t, ts.URL, "POST", "/api/messages/"+bob, ana, map[string]any{"body": "hola"}, http.StatusForbidden)

	reqID := func() string {
		st, body := doReq(t, ts.URL, "POST", "/api/friends/requests", ana, map[string]any{"user_id": bob})
		if st != http.StatusOK {
			t.Fatalf("expected 200 friend request, got %d body=%s", st, string(body))
		}
		var resp struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(body, &resp)
		return resp.ID
	}()

	// solo el destinatario acepta
	mustStatus(t, ts.URL, "POST", "/api/friends/requests/"+reqID+"/accept", ana, nil, http.StatusForbidden)
	mustStatus(t, ts.URL, "POST", "/api/friends/requests/"+reqID+"/accept", bob, nil, http.StatusOK)

	mustStatus(t, ts.URL, "POST", "/api/messages/"+bob, ana, map[string]any{"body": "hola"}, http.StatusCreated)
	{
		st, body := doReq(t, ts.URL, "GET", "/api/messages", bob, nil)
		if st != http.StatusOK || !bytes.Contains(body, []byte(`"unread":1`)) {
			t.Fatalf("expected one unread thread, got %d body=%s", st, string(body))
		}
	}

	// al romper la amistad se corta el canal
	mustStatus(t, ts.URL, "POST", "/api/friends/requests/"+reqID+"/remove", bob, nil, http.StatusOK)
	mustStatus(t, ts.URL, "POST", "/api/messages/"+ana, bob, map[string]any{"body": "chau"}, http.StatusForbidden)
}

func TestHTTP_QuoteRejectsNonNumericAmount(t *testing.T) {
	ts := newServer(t, nil)

	mustStatus(t, ts.URL, "POST", "/api/quote", "", map[string]any{
		"side": "BUY", "amount": "ten", "price": "100",
	}, http.StatusBadRequest)

	st, body := doReq(t, ts.URL, "POST", "/api/quote", "", map[string]any{
		"side": "BUY", "amount": "0.5", "price": "100",
	})
	if st != http.StatusOK || !bytes.Contains(body, []byte(`"total":"50.25`)) {
		t.Fatalf("expected quote total 50.25, got %d body=%s", st, string(body))
	}
}

func TestHTTP_OAuthCallbackRejectsUnknownState(t *testing.T) {
	ts := newServer(t, nil)

	st, _ := doReq(t, ts.URL, "GET", "/api/oauth/coinbase/callback?code=abc&state=forged", "", nil)
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown state, got %d", st)
	}
}

func TestHTTP_HealthAndMetrics(t *testing.T) {
	ts := newServer(t, nil)

	mustStatus(t, ts.URL, "GET", "/health", "", nil, http.StatusOK)
	st, body := doReq(t, ts.URL, "GET", "/metrics", "", nil)
	if st != http.StatusOK || !bytes.Contains(body, []byte("kx_http_requests_total")) {
		t.Fatalf("expected prometheus output, got %d", st)
	}
}

func register(t *testing.T, baseURL, email string) string {
	t.Helper()
	return createdID(t, baseURL, "POST", "/api/register", "", map[string]any{
		"email":    email,
		"password": "correct-horse-1",
	})
}

func createdID(t *testing.T, baseURL, method, path, userID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, method, path, userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 %s %s, got %d body=%s", method, path, st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("%s %s: missing id body=%s", method, path, string(body))
	}
	return resp.ID
}

func mustStatus(t *testing.T, baseURL, method, path, userID string, payload any, want int) {
	t.Helper()

	st, body := doReq(t, baseURL, method, path, userID, payload)
	if st != want {
		t.Fatalf("expected %d %s %s, got %d body=%s", want, method, path, st, string(body))
	}
}

func doRaw(t *testing.T, baseURL, path string, payload []byte, signature string) (int, []byte) {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, baseURL+path, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Stripe-Signature", signature)

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
