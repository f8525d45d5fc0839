package status

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync/atomic"
	"time"

	"github.com/park285/xo-kakao-bot/internal/obslog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"
)

// Source reports live numbers for /status.
type Source interface {
	ActiveSessions(ctx context.Context) (int, error)
}

// Report is the /status body.
type Report struct {
	Status         string    `json:"status"`
	StartedAt      time.Time `json:"started_at"`
	UptimeSeconds  int64     `json:"uptime_seconds"`
	LastHeartbeat  time.Time `json:"last_heartbeat,omitempty"`
	TransportState string    `json:"transport_state,omitempty"`
	ActiveSessions int       `json:"active_sessions"`
	Error          string    `json:"error,omitempty"`
}

// Server exposes /healthz, /status and /metrics.
type Server struct {
	src       Source
	started   time.Time
	now       func() time.Time
	heartbeat atomic.Int64 // unix nanos
	transport atomic.Value // string
	metrics   fasthttp.RequestHandler
	srv       *fasthttp.Server
}

func New(src Source, gatherer prometheus.Gatherer) *Server {
	s := &Server{src: src, now: time.Now}
	s.started = s.now()
	s.transport.Store("")
	if gatherer != nil {
		s.metrics = fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	s.srv = &fasthttp.Server{
		Handler:      s.handle,
		Name:         "xo-bot",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// Beat records that the inbound stream delivered something.
func (s *Server) Beat() { s.heartbeat.Store(s.now().UnixNano()) }

// SetTransportState records the WebSocket state for /status.
func (s *Server) SetTransportState(state string) { s.transport.Store(state) }

func (s *Server) handle(ctx *fasthttp.RequestCtx) {
	switch string(ctx.Path()) {
	case "/healthz":
		ctx.SetContentType("text/plain; charset=utf-8")
		ctx.SetBodyString("ok")
	case "/status":
		s.writeStatus(ctx)
	case "/metrics":
		if s.metrics == nil {
			ctx.SetStatusCode(fasthttp.StatusNotFound)
			return
		}
		s.metrics(ctx)
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
	}
}

func (s *Server) writeStatus(ctx *fasthttp.RequestCtx) {
	now := s.now()
	r := Report{
		Status:         "ok",
		StartedAt:      s.started.UTC(),
		UptimeSeconds:  int64(now.Sub(s.started) / time.Second),
		TransportState: s.transport.Load().(string),
	}
	if hb := s.heartbeat.Load(); hb > 0 {
		r.LastHeartbeat = time.Unix(0, hb).UTC()
	}
	if s.src != nil {
		n, err := s.src.ActiveSessions(ctx)
		if err != nil {
			r.Status, r.Error = "degraded", err.Error()
			ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
		}
		r.ActiveSessions = n
	}
	body, err := json.Marshal(r)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}

// Serve blocks until ln is closed or Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	obslog.L().Info("status_listen", zap.String("addr", ln.Addr().String()))
	err := s.srv.Serve(ln)
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.ShutdownWithContext(ctx)
}
