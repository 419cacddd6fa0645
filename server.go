package wikidom

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/net/html"

	"github.com/dpotapov/go-wikidom/token"
)

// WarningsHeader carries the non-fatal errors of a one-shot build, separated by "; ".
const WarningsHeader = "X-Wikidom-Warnings"

// wsUpgrader is a Gorilla WebSocket instance, used to respond HTTP requests with WebSocket.
var wsUpgrader = websocket.Upgrader{}

// Handler builds documents from token streams sent over HTTP.
//
// A WebSocket client sends messages of the form {"tokens":[...]} with consecutive batches of
// the stream, followed by {"end":true}. The server answers with a single Result message and
// closes the connection. A plain POST request carries the whole stream as a JSON array and
// receives the rendered document.
type Handler struct {
	// Logger configures logging for internal events.
	Logger *slog.Logger

	// Policy is passed on to every Adapter. Defaults to DefaultMetaPolicy().
	Policy *MetaPolicy

	// Meter, if set, is shared by all connections and must be safe for concurrent use.
	Meter Meter

	// OnError is a callback that is called when an error occurs while serving a request.
	OnError func(*http.Request, error)

	// init is used to initialize the handler only once.
	init sync.Once

	// logger is a private logger instance that is used to log internal events.
	logger *slog.Logger
}

// message is a client message of the WebSocket protocol.
type message struct {
	Tokens json.RawMessage `json:"tokens,omitempty"`
	End    bool            `json:"end,omitempty"`
}

// Result is the server message of the WebSocket protocol.
type Result struct {
	HTML     string   `json:"html"`
	Warnings []string `json:"warnings,omitempty"`
}

// ServeHTTP implements the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.init.Do(func() {
		h.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		if h.Logger != nil {
			h.logger = h.Logger
		}
	})

	if err := h.handleRequest(w, r); err != nil {
		h.logger.Error("Serve HTTP request", "url", r.URL.Redacted(), "error", err)

		if h.OnError != nil {
			h.OnError(r, err)
		}
	}
}

func (h *Handler) handleRequest(w http.ResponseWriter, r *http.Request) error {
	if websocket.IsWebSocketUpgrade(r) {
		return h.serveStream(w, r)
	}

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return nil
	}

	toks, err := token.Decode(r.Body)
	if err != nil {
		http.Error(w, fmt.Sprintf("decode tokens: %v", err), http.StatusBadRequest)
		return nil
	}

	ad := h.newAdapter(r)
	for _, tok := range toks {
		ad.ProcessToken(tok)
	}
	doc, buildErr := ad.Finish()
	if ws := warnings(buildErr); len(ws) > 0 {
		w.Header().Set(WarningsHeader, strings.Join(ws, "; "))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := html.Render(w, doc); err != nil {
		return fmt.Errorf("render HTML: %w", err)
	}
	return nil
}

func (h *Handler) serveStream(w http.ResponseWriter, r *http.Request) error {
	ws, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	var res *Result
	var renderErr error
	s := NewStream(h.newAdapter(r), SinkFunc(func(doc *html.Node, err error) {
		var sb strings.Builder
		renderErr = html.Render(&sb, doc)
		res = &Result{HTML: sb.String(), Warnings: warnings(err)}
	}))

	for {
		var msg message
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				// The client gave up, the document is never delivered.
				return nil
			}
			return fmt.Errorf("read websocket message: %w", err)
		}

		if len(msg.Tokens) > 0 {
			toks, err := token.Unmarshal(msg.Tokens)
			if err != nil {
				return h.closeWith(ws, websocket.CloseUnsupportedData, fmt.Sprintf("decode tokens: %v", err))
			}
			s.OnChunk(toks)
		}
		if msg.End {
			break
		}
	}

	s.OnEnd()
	if renderErr != nil {
		return fmt.Errorf("render HTML: %w", renderErr)
	}

	wr, err := ws.NextWriter(websocket.TextMessage)
	if err != nil {
		return fmt.Errorf("get websocket writer: %w", err)
	}
	if err := json.NewEncoder(wr).Encode(res); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	if err := wr.Close(); err != nil {
		return fmt.Errorf("close websocket writer: %w", err)
	}

	return h.closeWith(ws, websocket.CloseNormalClosure, "")
}

func (h *Handler) closeWith(ws *websocket.Conn, code int, text string) error {
	msg := websocket.FormatCloseMessage(code, text)
	if err := ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)); err != nil {
		return fmt.Errorf("close websocket: %w", err)
	}
	return nil
}

func (h *Handler) newAdapter(r *http.Request) *Adapter {
	ad := NewAdapter(nil, &Options{
		Logger: h.logger,
		Policy: h.Policy,
		Meter:  h.Meter,
	})
	h.logger.Debug("Start document", "page", ad.Page(), "remote", r.RemoteAddr)
	return ad
}

// warnings returns the messages of the errors joined in err.
func warnings(err error) []string {
	var out []string
	for _, e := range Errors(err) {
		out = append(out, e.Error())
	}
	return out
}

// IsTruncated reports whether err contains ErrTruncated.
func IsTruncated(err error) bool {
	return errors.Is(err, ErrTruncated)
}
