package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *APIClient {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return &APIClient{httpClient: ts.Client(), BaseURL: ts.URL, Token: "tok"}
}

func TestSendMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/sessions/s1/messages", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "menu", body["text"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"intent":"menu","reply":"Nuestro menú"}`))
	})

	turn, err := client.SendMessage("s1", "menu")
	require.NoError(t, err)
	assert.Equal(t, &Turn{Intent: "menu", Reply: "Nuestro menú"}, turn)
}

func TestCreateSession(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"s1","messages":[{"role":"assistant","content":"¡Hola!"}],"order":{"lines":[],"total":0}}`))
	})

	sess, err := client.CreateSession()
	require.NoError(t, err)
	assert.Equal(t, "s1", sess.ID)
	require.Len(t, sess.Messages, 1)
	assert.Equal(t, "assistant", sess.Messages[0].Role)
}

func TestConfirmOrder_Conflict(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"order is empty","message":"No hay ningún pedido para confirmar."}`))
	})

	message, err := client.ConfirmOrder("s1")
	require.Error(t, err)
	assert.Equal(t, "No hay ningún pedido para confirmar.", message)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
}

func TestGetOrder_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Session not found"}`))
	})

	_, err := client.GetOrder("missing")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Session not found", apiErr.Message)
}

func TestModelUpdate(t *testing.T) {
	m := initialModel(&APIClient{})

	next, _ := m.Update(sessionMsg{session: &Session{ID: "s1", Messages: []Message{{Role: "assistant", Content: "¡Hola!"}}}})
	m = next.(Model)
	assert.Equal(t, "s1", m.sessionID)
	assert.False(t, m.loading)

	next, cmd := m.Update(turnMsg{turn: &Turn{Intent: "order", Reply: "Has añadido 2 pizza(s)"}})
	m = next.(Model)
	assert.NotNil(t, cmd)
	require.Len(t, m.messages, 2)
	assert.Equal(t, "order", m.status)

	next, _ = m.Update(orderMsg{order: &Order{Lines: []OrderLine{{Item: "Pizza", Quantity: 2, Subtotal: 20}}, Total: 20}})
	m = next.(Model)
	assert.Equal(t, 20.0, m.order.Total)
	assert.Equal(t, []string{"Pizza", "2", "$20.00"}, []string(orderRows(m.order)[0]))
	assert.Contains(t, m.View(), "Total: $20.00")

	next, _ = m.Update(errorMsg{err: "boom"})
	m = next.(Model)
	assert.Equal(t, "boom", m.error)
}

func TestRenderTranscript(t *testing.T) {
	out := renderTranscript([]Message{
		{Role: "user", Content: "hola"},
		{Role: "assistant", Content: "bienvenido"},
	}, 40)
	assert.Contains(t, out, "hola")
	assert.Contains(t, out, "bienvenido")
}
