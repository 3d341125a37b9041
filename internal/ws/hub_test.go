package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	diag "github.com/coreman2200/funtimes-neosim/internal/diagnostics"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, b, err := conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, v))
}

func TestHelloThenFrames(t *testing.T) {
	h := NewHub()
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	var hi hello
	readJSON(t, conn, &hi)
	assert.Equal(t, "hello", hi.Type)
	assert.Equal(t, h.Session(), hi.Session)
	assert.NotEmpty(t, hi.Client)

	seq := h.Publish(Frame{Text: "R . \n", RGB: []byte{0, 255, 0}, Layout: "GRB"})
	assert.Equal(t, uint64(1), seq)

	var f Frame
	readJSON(t, conn, &f)
	assert.Equal(t, "frame", f.Type)
	assert.Equal(t, uint64(1), f.Seq)
	assert.Equal(t, h.Session(), f.Session)
	assert.Equal(t, "R . \n", f.Text)
	assert.Equal(t, []byte{0, 255, 0}, f.RGB)
	assert.Equal(t, 1, h.Clients())
}

func TestLateClientGetsLastFrame(t *testing.T) {
	h := NewHub()
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	h.Publish(Frame{Text: "first"})
	h.Publish(Frame{Text: "second"})

	conn := dial(t, srv)
	var hi hello
	readJSON(t, conn, &hi)
	var f Frame
	readJSON(t, conn, &f)
	assert.Equal(t, "second", f.Text)
	assert.Equal(t, uint64(2), f.Seq)
}

func TestHealth(t *testing.T) {
	h := NewHub()
	h.Health = func() []diag.Diagnostic {
		return []diag.Diagnostic{{Severity: diag.Warn, Code: "PIN.UNSET", Summary: "No data pin assigned"}}
	}
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()
	h.Publish(Frame{})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body struct {
		Session     string            `json:"session"`
		Seq         uint64            `json:"seq"`
		Status      string            `json:"status"`
		Diagnostics []diag.Diagnostic `json:"diagnostics"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, h.Session(), body.Session)
	assert.Equal(t, uint64(1), body.Seq)
	assert.Equal(t, "warning", body.Status)
	require.Len(t, body.Diagnostics, 1)
	assert.Equal(t, "PIN.UNSET", body.Diagnostics[0].Code)
}

func TestCloseDisconnectsClients(t *testing.T) {
	h := NewHub()
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	var hi hello
	readJSON(t, conn, &hi)
	require.Eventually(t, func() bool { return h.Clients() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, h.Close())
	assert.Equal(t, 0, h.Clients())
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)

	// Publishing after close is harmless.
	h.Publish(Frame{Text: "late"})
}
