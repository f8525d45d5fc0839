package status

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/park285/xo-kakao-bot/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

type fixedSource struct {
	n   int
	err error
}

func (f fixedSource) ActiveSessions(context.Context) (int, error) { return f.n, f.err }

func serve(t *testing.T, s *Server) *fasthttp.Client {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	go func() { _ = s.Serve(ln) }()
	t.Cleanup(func() { _ = ln.Close() })
	return &fasthttp.Client{Dial: func(string) (net.Conn, error) { return ln.Dial() }}
}

func get(t *testing.T, c *fasthttp.Client, path string) (int, string) {
	t.Helper()
	code, body, err := c.Get(nil, "http://status"+path)
	require.NoError(t, err)
	return code, string(body)
}

func TestHealthz(t *testing.T) {
	c := serve(t, New(nil, nil))
	code, body := get(t, c, "/healthz")
	assert.Equal(t, fasthttp.StatusOK, code)
	assert.Equal(t, "ok", body)

	code, _ = get(t, c, "/nope")
	assert.Equal(t, fasthttp.StatusNotFound, code)
	code, _ = get(t, c, "/metrics")
	assert.Equal(t, fasthttp.StatusNotFound, code)
}

func TestStatusReport(t *testing.T) {
	s := New(fixedSource{n: 4}, nil)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.started = base
	s.now = func() time.Time { return base.Add(90 * time.Second) }
	s.Beat()
	s.SetTransportState("connected")
	c := serve(t, s)

	code, body := get(t, c, "/status")
	require.Equal(t, fasthttp.StatusOK, code)
	var r Report
	require.NoError(t, json.Unmarshal([]byte(body), &r))
	assert.Equal(t, "ok", r.Status)
	assert.Equal(t, int64(90), r.UptimeSeconds)
	assert.Equal(t, 4, r.ActiveSessions)
	assert.Equal(t, "connected", r.TransportState)
	assert.True(t, r.LastHeartbeat.Equal(base.Add(90*time.Second)))
}

func TestStatusDegraded(t *testing.T) {
	c := serve(t, New(fixedSource{err: errors.New("redis down")}, nil))
	code, body := get(t, c, "/status")
	assert.Equal(t, fasthttp.StatusServiceUnavailable, code)
	assert.Contains(t, body, "redis down")
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.New()
	m.Move("ok")
	c := serve(t, New(nil, m.Registry))
	code, body := get(t, c, "/metrics")
	assert.Equal(t, fasthttp.StatusOK, code)
	assert.True(t, strings.Contains(body, `xo_moves_total{result="ok"} 1`), body)
}
