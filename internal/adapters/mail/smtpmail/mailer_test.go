package smtpmail

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kennel-exchange/internal/ports/mail"
)

func TestNew_Validates(t *testing.T) {
	_, err := New(Config{From: "kx@example.com"})
	require.Error(t, err)

	m, err := New(Config{Host: "smtp.example.com", From: "kx@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 587, m.cfg.Port)
}

func TestSend_BuildsMultipart(t *testing.T) {
	m, err := New(Config{Host: "smtp.example.com", Port: 2525, User: "u", Password: "p", From: "kx@example.com"})
	require.NoError(t, err)

	var gotAddr string
	var gotTo []string
	var gotMsg []byte
	var gotAuth smtp.Auth
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotAuth, gotTo, gotMsg = addr, a, to, msg
		return nil
	}

	err = m.Send(context.Background(), mail.Message{
		To:       "ana@example.com",
		Subject:  "Cachorros de otoño",
		TextBody: "hola",
		HTMLBody: "<p>hola</p>",
	})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:2525", gotAddr)
	assert.Equal(t, []string{"ana@example.com"}, gotTo)
	assert.NotNil(t, gotAuth)
	raw := string(gotMsg)
	assert.Contains(t, raw, "To: ana@example.com\r\n")
	assert.Contains(t, raw, "Subject: =?utf-8?q?")
	assert.Contains(t, raw, "multipart/alternative")
	assert.Contains(t, raw, "text/plain; charset=utf-8")
	assert.Contains(t, raw, "<p>hola</p>")
}

func TestSend_WrapsError(t *testing.T) {
	m, err := New(Config{Host: "smtp.example.com", From: "kx@example.com"})
	require.NoError(t, err)
	boom := errors.New("421 try later")
	m.send = func(string, smtp.Auth, string, []string, []byte) error { return boom }

	err = m.Send(context.Background(), mail.Message{To: "ana@example.com", TextBody: "x"})
	assert.ErrorIs(t, err, boom)
}
