package wikidom

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *Counter) {
	t.Helper()
	c := &Counter{}
	srv := httptest.NewServer(&Handler{
		Meter: c,
		OnError: func(r *http.Request, err error) {
			t.Errorf("%s %s: %v", r.Method, r.URL, err)
		},
	})
	t.Cleanup(srv.Close)
	return srv, c
}

func TestHandler_Post(t *testing.T) {
	srv, c := newTestServer(t)

	resp, err := http.Post(srv.URL, "application/json", strings.NewReader(
		`[{"type":"tag","name":"p"},{"type":"text","data":"hello"},{"type":"endtag","name":"p"},{"type":"eof"}]`))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Empty(t, resp.Header.Get(WarningsHeader))
	assert.Contains(t, string(body), "hello</p>")
	assert.Equal(t, int64(4), c.Total())
}

func TestHandler_PostWarnings(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL, "application/json", strings.NewReader(`[{"type":"text","data":"x"}]`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(WarningsHeader), ErrTruncated.Error())
}

func TestHandler_PostErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, http.MethodPost, resp.Header.Get("Allow"))

	resp, err = http.Post(srv.URL, "application/json", strings.NewReader(`[{"type":"doctype"}]`))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "unknown token type")
}

func dialTestServer(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func TestHandler_Stream(t *testing.T) {
	srv, c := newTestServer(t)
	ws := dialTestServer(t, srv)

	require.NoError(t, ws.WriteJSON(message{Tokens: json.RawMessage(`[{"type":"tag","name":"table"},{"type":"tag","name":"tr"}]`)}))
	require.NoError(t, ws.WriteJSON(message{Tokens: json.RawMessage(`[{"type":"tag","name":"td"},{"type":"text","data":"cell"}]`)}))
	require.NoError(t, ws.WriteJSON(message{Tokens: json.RawMessage(`[{"type":"eof"}]`), End: true}))

	var res Result
	require.NoError(t, ws.ReadJSON(&res))
	assert.Empty(t, res.Warnings)
	assert.Contains(t, res.HTML, "cell</td>")
	assert.Contains(t, res.HTML, TypeFosterBox)

	_, _, err := ws.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
	assert.Equal(t, int64(5), c.Total())
}

func TestHandler_StreamTruncated(t *testing.T) {
	srv, _ := newTestServer(t)
	ws := dialTestServer(t, srv)

	require.NoError(t, ws.WriteJSON(message{Tokens: json.RawMessage(`[{"type":"text","data":"x"}]`)}))
	require.NoError(t, ws.WriteJSON(message{End: true}))

	var res Result
	require.NoError(t, ws.ReadJSON(&res))
	assert.Equal(t, []string{ErrTruncated.Error()}, res.Warnings)
	assert.Contains(t, res.HTML, "<body>x")
}

func TestHandler_StreamBadTokens(t *testing.T) {
	srv, _ := newTestServer(t)
	ws := dialTestServer(t, srv)

	require.NoError(t, ws.WriteJSON(message{Tokens: json.RawMessage(`[{"type":"bogus"}]`)}))

	_, _, err := ws.ReadMessage()
	require.True(t, websocket.IsCloseError(err, websocket.CloseUnsupportedData), "got %v", err)
	assert.Contains(t, err.Error(), "unknown token type")
}

func TestWarnings(t *testing.T) {
	assert.Nil(t, warnings(nil))
	assert.Equal(t, []string{"a"}, warnings(errString("a")))

	err := errors.Join(errString("a"), errors.Join(errString("b"), errString("c")))
	assert.Equal(t, []string{"a", "b", "c"}, warnings(err))
}

type errString string

func (e errString) Error() string { return string(e) }
