package ws

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pcparts/notify-relay/internal/notify"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Mounter adds routes to the relay's HTTP router.
type Mounter interface {
	Mount(r *mux.Router)
}

type Server struct {
	router         *Router
	mounts         []Mounter
	log            *zap.Logger
	allowedOrigins map[string]bool
	allowedHosts   map[string]bool
}

func NewServer(router *Router, allowedOrigins []string, log *zap.Logger, mounts ...Mounter) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		router:         router,
		mounts:         mounts,
		log:            log,
		allowedOrigins: make(map[string]bool),
		allowedHosts:   make(map[string]bool),
	}

	for _, origin := range allowedOrigins {
		trimmed := strings.TrimRight(strings.TrimSpace(origin), "/")
		if trimmed == "" {
			continue
		}
		s.allowedOrigins[trimmed] = true
		if parsed, err := url.Parse(trimmed); err == nil && parsed.Host != "" {
			s.allowedHosts[parsed.Host] = true
		}
	}

	return s
}

// Handler builds the full HTTP surface: one WebSocket endpoint per channel,
// the metrics endpoint and every mounted route group.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	for _, ch := range notify.Channels {
		r.HandleFunc(ch.Path(), s.handleWS(ch)).Methods(http.MethodGet)
	}
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	for _, m := range s.mounts {
		m.Mount(r)
	}
	return securityHeaders(s.cors(r))
}

func (s *Server) handleWS(ch notify.Channel) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: s.checkOrigin,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		hub, ok := s.router.Hub(ch)
		if !ok {
			http.Error(w, "unknown channel", http.StatusNotFound)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.log.Warn("ws upgrade error", zap.String("channel", string(ch)), zap.Error(err))
			return
		}

		c, err := hub.Join(conn)
		if err != nil {
			s.log.Warn("ws connection rejected", zap.String("channel", string(ch)), zap.Error(err))
			msg := websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error())
			conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			conn.Close()
			return
		}

		s.log.Info("session connected",
			zap.String("channel", string(ch)),
			zap.String("session", c.id),
			zap.String("remote", r.RemoteAddr),
		)
		go func() {
			c.readPump()
			s.log.Info("session disconnected",
				zap.String("channel", string(ch)),
				zap.String("session", c.id),
			)
		}()
	}
}

func (s *Server) originAllowed(origin string) bool {
	if s.allowedOrigins[origin] {
		return true
	}
	if parsed, err := url.Parse(origin); err == nil && parsed.Host != "" {
		return s.allowedHosts[parsed.Host]
	}
	return false
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	if len(s.allowedOrigins) > 0 {
		return s.originAllowed(origin)
	}

	parsed, err := url.Parse(origin)
	if err != nil {
		return false
	}

	host := parsed.Host
	if host == "" {
		return false
	}

	if host == r.Host {
		return true
	}

	hostname := parsed.Hostname()
	return hostname == "localhost" || hostname == "127.0.0.1" || hostname == "::1"
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.originAllowed(origin) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Relay-Token")
			h.Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// ListenAndServe serves handler until ctx is cancelled, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, host string, port int, handler http.Handler, log *zap.Logger) error {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("relay listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
