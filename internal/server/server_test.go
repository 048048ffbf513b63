package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WhalePrompt/stiky-note-md/internal/logger"
	"github.com/WhalePrompt/stiky-note-md/internal/note"
	"github.com/WhalePrompt/stiky-note-md/internal/state"
	"github.com/WhalePrompt/stiky-note-md/internal/store"
	"github.com/WhalePrompt/stiky-note-md/internal/watch"
)

func newTestServer(t *testing.T) (*Server, *store.Store, *httptest.Server) {
	t.Helper()

	s := store.New(t.TempDir())
	srv := New(s, state.NewState(), note.DefaultTheme(), nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.hub.closeAll()
		ts.Close()
	})
	return srv, s, ts
}

func do(t *testing.T, method, url, body string) (*http.Response, string) {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}

func TestListNotes(t *testing.T) {
	srv, s, ts := newTestServer(t)
	require.NoError(t, s.WriteContent("a", "**Groceries**\n- milk"))
	require.NoError(t, s.WriteTheme("a", note.Palette[0]))
	require.NoError(t, s.WriteContent("b", "second"))
	srv.state.TogglePin("b")

	resp, body := do(t, "GET", ts.URL+"/notes", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Success bool      `json:"success"`
		Data    []Summary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	assert.True(t, out.Success)
	require.Len(t, out.Data, 2)

	assert.Equal(t, "a", out.Data[0].ID)
	assert.Equal(t, "Groceries", out.Data[0].Title)
	assert.Equal(t, note.Palette[0], out.Data[0].Theme)
	assert.Equal(t, note.DefaultGeometry(), out.Data[0].Geometry)
	assert.False(t, out.Data[0].Pinned)

	assert.Equal(t, note.DefaultTheme(), out.Data[1].Theme)
	assert.True(t, out.Data[1].Pinned)
}

func TestPreviewPage(t *testing.T) {
	_, s, ts := newTestServer(t)
	require.NoError(t, s.WriteContent("a", "Hello **world**"))
	require.NoError(t, s.WriteTheme("a", note.Palette[2]))

	resp, body := do(t, "GET", ts.URL+"/notes/a", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, body, "<strong>world</strong>")
	assert.Contains(t, body, "background-color: #FCE4EC;")
	assert.Contains(t, body, "new WebSocket(")
}

func TestMarkdownEndpoint(t *testing.T) {
	_, s, ts := newTestServer(t)
	require.NoError(t, s.WriteContent("a", "# Title"))

	resp, body := do(t, "GET", ts.URL+"/notes/a/markdown", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "# Title", body)
}

func TestMissingNote(t *testing.T) {
	_, _, ts := newTestServer(t)

	for _, path := range []string{"/notes/nope", "/notes/nope/markdown"} {
		resp, _ := do(t, "GET", ts.URL+path, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}

	resp, _ := do(t, "DELETE", ts.URL+"/notes/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestInvalidID(t *testing.T) {
	_, _, ts := newTestServer(t)

	resp, _ := do(t, "GET", ts.URL+"/notes/a%5Cb", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPutNormalizes(t *testing.T) {
	srv, s, ts := newTestServer(t)

	resp, body := do(t, "PUT", ts.URL+"/notes/n1", "__bold__\r\n- **milk**\n\n")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"id":"n1"`)

	content, err := s.ReadContent("n1")
	require.NoError(t, err)
	assert.Equal(t, "**bold**\n- milk", content)
	assert.True(t, srv.state.Unchanged("n1", content))
}

func TestDeleteNote(t *testing.T) {
	srv, s, ts := newTestServer(t)
	require.NoError(t, s.WriteContent("a", "x"))
	require.NoError(t, s.WriteGeometry("a", note.DefaultGeometry()))
	srv.state.TogglePin("a")

	resp, _ := do(t, "DELETE", ts.URL+"/notes/a", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.False(t, s.Exists("a"))
	assert.False(t, srv.state.IsPinned("a"))

	_, err := s.ReadGeometry("a")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func dialNote(t *testing.T, ts *httptest.Server, id string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/notes/" + id + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	var hello Message
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	require.NoError(t, conn.ReadJSON(&hello))
	require.Equal(t, Message{Type: TypeConnected, ID: id}, hello)
	return conn
}

func TestWebSocketReloadOnPut(t *testing.T) {
	_, s, ts := newTestServer(t)
	require.NoError(t, s.WriteContent("a", "old"))

	conn := dialNote(t, ts, "a")

	resp, _ := do(t, "PUT", ts.URL+"/notes/a", "new")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, Message{Type: TypeReload, ID: "a"}, msg)
}

func TestWebSocketForwardsWatchEvents(t *testing.T) {
	srv, s, ts := newTestServer(t)
	require.NoError(t, s.WriteContent("a", "x"))

	conn := dialNote(t, ts, "a")

	events := make(chan watch.Event, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Watch(ctx, events)

	events <- watch.Event{ID: "other", Op: watch.Changed}
	events <- watch.Event{ID: "a", Op: watch.Removed}

	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, Message{Type: TypeDeleted, ID: "a"}, msg)
}

func TestWebSocketMissingNote(t *testing.T) {
	_, _, ts := newTestServer(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/notes/nope/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebSocketRejectsForeignOrigin(t *testing.T) {
	_, s, ts := newTestServer(t)
	require.NoError(t, s.WriteContent("a", "x"))

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/notes/a/ws"
	header := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHubUnregisterOnClose(t *testing.T) {
	srv, s, ts := newTestServer(t)
	require.NoError(t, s.WriteContent("a", "x"))

	conn := dialNote(t, ts, "a")
	assert.Equal(t, 1, srv.hub.count("a"))

	conn.Close()
	assert.Eventually(t, func() bool {
		return srv.hub.count("a") == 0
	}, 3*time.Second, 10*time.Millisecond)
}

func TestHubDropsWhenClientIsFull(t *testing.T) {
	var buf bytes.Buffer
	h := newHub(logger.NewWithLevel(&buf, log.DebugLevel))

	c := &client{id: "a", send: make(chan []byte, 1)}
	h.register(c)

	h.send(c, Message{Type: TypeConnected, ID: "a"})
	h.send(c, Message{Type: TypeReload, ID: "a"})
	assert.Len(t, c.send, 1)
	assert.Contains(t, buf.String(), "dropping websocket message")

	buf.Reset()
	h.notify(Message{Type: TypeReload, ID: "a"})
	assert.Contains(t, buf.String(), "dropping websocket message")

	h.unregister(c)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	srv := New(store.New(t.TempDir()), nil, note.DefaultTheme(), nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	assert.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 3*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
