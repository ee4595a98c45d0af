package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"akhor/internal/buffer"
	"akhor/internal/engine"
	"akhor/internal/keymap"
)

const maxMessageBytes = 1 << 20

// KeyRequest carries a host's text surface and one keystroke. With Activate
// set, Key names a virtual key token and the combination rules are skipped.
type KeyRequest struct {
	Text     string `json:"text"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Key      string `json:"key"`
	Shift    bool   `json:"shift,omitempty"`
	Alt      bool   `json:"alt,omitempty"`
	Activate bool   `json:"activate,omitempty"`
}

type KeyResponse struct {
	Text    string `json:"text"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Token   string `json:"token,omitempty"`
	Glyph   string `json:"glyph,omitempty"`
	Changed bool   `json:"changed"`
	Error   string `json:"error,omitempty"`
}

// Apply runs one request through eng.
func Apply(eng *engine.Engine, req KeyRequest) KeyResponse {
	snap := buffer.Snapshot{Text: req.Text, Start: req.Start, End: req.End}
	var res engine.Result
	if req.Activate {
		res = eng.Activate(snap, keymap.Token(req.Key))
	} else {
		res = eng.HandleKey(snap, engine.KeyEvent{Key: req.Key, Shift: req.Shift, Alt: req.Alt})
	}
	return KeyResponse{
		Text:    res.Snapshot.Text,
		Start:   res.Snapshot.Start,
		End:     res.Snapshot.End,
		Token:   string(res.Token),
		Glyph:   res.Glyph,
		Changed: res.Changed,
	}
}

// WebsocketServer exposes the engine to browser hosts. Each message is a
// KeyRequest and is answered with a KeyResponse; the server keeps no text.
type WebsocketServer struct {
	src      EngineSource
	logger   *slog.Logger
	upgrader websocket.Upgrader
	http     *http.Server
	listener net.Listener
	errCh    chan error
}

// NewWebsocketServer builds a server. An empty origins list keeps the
// upgrader's same-host check, "*" accepts any origin, and otherwise the
// Origin header must match one entry.
func NewWebsocketServer(src EngineSource, origins []string, logger *slog.Logger) *WebsocketServer {
	if logger == nil {
		logger = slog.Default()
	}
	ws := &WebsocketServer{src: src, logger: logger, errCh: make(chan error, 1)}
	if len(origins) == 0 {
		return ws
	}
	ws.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			for _, allowed := range origins {
				if allowed == "*" || strings.EqualFold(origin, allowed) {
					return true
				}
			}
			return false
		},
	}
	return ws
}

func (ws *WebsocketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.logger.Info("websocket upgrade error", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageBytes)

	for {
		var req KeyRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			if isDecodeError(err) {
				if werr := conn.WriteJSON(KeyResponse{Error: fmt.Sprintf("bad request: %v", err)}); werr == nil {
					continue
				}
			}
			ws.logger.Debug("websocket closed", "remote", r.RemoteAddr, "error", err)
			return
		}
		if err := conn.WriteJSON(Apply(ws.src.Engine(), req)); err != nil {
			ws.logger.Debug("websocket write failed", "remote", r.RemoteAddr, "error", err)
			return
		}
	}
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}

// Start listens on addr and serves in the background.
func (ws *WebsocketServer) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/ws", ws)
	ws.listener = listener
	ws.http = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		err := ws.http.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		ws.errCh <- err
		close(ws.errCh)
	}()
	ws.logger.Info("websocket server listening", "addr", listener.Addr().String())
	return nil
}

func (ws *WebsocketServer) Addr() net.Addr {
	if ws.listener == nil {
		return nil
	}
	return ws.listener.Addr()
}

func (ws *WebsocketServer) Err() <-chan error {
	return ws.errCh
}

func (ws *WebsocketServer) Close() {
	if ws.http == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := ws.http.Shutdown(ctx); err != nil {
		ws.http.Close()
	}
}
