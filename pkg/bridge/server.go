package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vectora-ai/vectora/pkg/session"
)

// DefaultAddr is the loopback address the bridge listens on by default.
const DefaultAddr = "127.0.0.1:5050"

// maxMessageBytes leaves room for base64-encoded screenshots in image_url.
const maxMessageBytes = 16 << 20

const shutdownTimeout = 5 * time.Second

// Server serves a Router over HTTP:
//
//	POST /message  one JSON message, one JSON response
//	GET  /ws       WebSocket; each JSON message gets one JSON reply, in order
//	GET  /metrics  Prometheus metrics
//	GET  /healthz  liveness
type Server struct {
	router         *Router
	logger         *slog.Logger
	originPatterns []string
	mux            *http.ServeMux
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithOriginPatterns allows cross-origin WebSocket clients whose origin host
// matches one of patterns (path.Match syntax).
func WithOriginPatterns(patterns ...string) ServerOption {
	return func(s *Server) { s.originPatterns = append(s.originPatterns, patterns...) }
}

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) ServerOption {
	return func(s *Server) { s.logger = l }
}

// NewServer creates a Server for router.
func NewServer(router *Router, opts ...ServerOption) *Server {
	s := &Server{router: router, logger: slog.Default()}
	for _, o := range opts {
		o(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /message", s.handleMessage)
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	s.mux = mux

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.mux }

// Serve accepts connections on l until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	server := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("bridge listening", "addr", l.Addr().String())
		err := server.Serve(l)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down bridge")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	l, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, l)
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var msg Message

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageBytes))
	if err := dec.Decode(&msg); err != nil {
		writeJSON(w, http.StatusBadRequest, session.Response{Message: "invalid message: " + err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, s.router.Handle(r.Context(), msg))
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.originPatterns,
	})
	if err != nil {
		s.logger.Warn("websocket accept failed", "error", err)
		return
	}
	defer func() { _ = conn.CloseNow() }()

	conn.SetReadLimit(maxMessageBytes)

	ctx := r.Context()
	for {
		var msg Message
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				if ctx.Err() == nil {
					s.logger.Debug("websocket read ended", "error", err)
				}
			}
			return
		}

		reply := Reply{ID: msg.ID, Response: s.router.Handle(ctx, msg)}
		if err := wsjson.Write(ctx, conn, reply); err != nil {
			s.logger.Debug("websocket write failed", "error", err)
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
