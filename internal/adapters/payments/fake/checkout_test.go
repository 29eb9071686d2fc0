package fake

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kennel-exchange/internal/ports/payments"
)

func TestFakeCheckout(t *testing.T) {
	c := New("s3cret", "http://localhost:8080")

	s, err := c.CreateSession(context.Background(), payments.CheckoutInput{OrderID: "o1"})
	require.NoError(t, err)
	assert.Contains(t, s.URL, s.ID)
	in, ok := c.Session(s.ID)
	require.True(t, ok)
	assert.Equal(t, "o1", in.OrderID)

	body := []byte(`{"id":"evt_1","type":"checkout.session.completed","session_id":"` + s.ID + `","order_id":"o1"}`)
	ev, err := c.ParseEvent(body, c.Sign(body))
	require.NoError(t, err)
	assert.Equal(t, payments.EventCheckoutCompleted, ev.Type)
	assert.Equal(t, "o1", ev.OrderID)

	_, err = c.ParseEvent(body, "nope")
	assert.ErrorIs(t, err, payments.ErrInvalidSignature)
}
