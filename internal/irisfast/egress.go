package irisfast

import (
	"context"
	"errors"

	"github.com/park285/xo-kakao-bot/internal/obslog"
	"go.uber.org/zap"
)

// Egress abstracts message/image sending over HTTP or WebSocket.
type Egress interface {
	SendText(ctx context.Context, room, message string) error
	SendImage(ctx context.Context, room, imageBase64 string) error
}

const (
	ModeHTTP = "http"
	ModeWS   = "ws"
	ModeAuto = "auto"
)

// frameWriter is the part of *WebSocket the egress needs.
type frameWriter interface {
	Connected() bool
	WriteJSON(ctx context.Context, v any) error
}

// NewEgress picks a transport by mode. In auto mode WS is preferred while it is
// connected and a failed WS write falls back to HTTP once. Dry run logs instead of sending.
func NewEgress(mode string, dryrun bool, c *Client, ws *WebSocket) Egress {
	var w frameWriter
	if ws != nil {
		w = ws
	}
	return newEgress(mode, dryrun, c, w)
}

func newEgress(mode string, dryrun bool, c *Client, w frameWriter) Egress {
	if dryrun {
		return dryRunEgress{mode: mode}
	}
	switch mode {
	case ModeWS:
		return &wsEgress{ws: w}
	case ModeAuto:
		return &autoEgress{ws: &wsEgress{ws: w}, http: &httpEgress{c: c}}
	default:
		return &httpEgress{c: c}
	}
}

type httpEgress struct{ c *Client }

func (h *httpEgress) SendText(ctx context.Context, room, message string) error {
	if h == nil || h.c == nil {
		return errors.New("http egress not available")
	}
	return h.c.SendMessage(ctx, room, message)
}

func (h *httpEgress) SendImage(ctx context.Context, room, imageBase64 string) error {
	if h == nil || h.c == nil {
		return errors.New("http egress not available")
	}
	return h.c.SendImage(ctx, room, imageBase64)
}

// wsEgress writes reply frames over the Iris socket.
type wsEgress struct{ ws frameWriter }

func (w *wsEgress) ready() bool { return w != nil && w.ws != nil && w.ws.Connected() }

func (w *wsEgress) SendText(ctx context.Context, room, message string) error {
	if w == nil || w.ws == nil {
		return errors.New("ws egress not available")
	}
	return w.ws.WriteJSON(ctx, &ReplyRequest{Type: "text", Room: room, Data: message})
}

func (w *wsEgress) SendImage(ctx context.Context, room, imageBase64 string) error {
	if w == nil || w.ws == nil {
		return errors.New("ws egress not available")
	}
	return w.ws.WriteJSON(ctx, &ImageReplyRequest{Type: "image", Room: room, Data: imageBase64})
}

type autoEgress struct {
	ws   *wsEgress
	http *httpEgress
}

func (a *autoEgress) SendText(ctx context.Context, room, message string) error {
	if a.ws.ready() {
		err := a.ws.SendText(ctx, room, message)
		if err == nil {
			return nil
		}
		obslog.L().Warn("egress_fallback", zap.String("type", "text"), zap.String("room", room), zap.Error(err))
	}
	return a.http.SendText(ctx, room, message)
}

func (a *autoEgress) SendImage(ctx context.Context, room, imageBase64 string) error {
	if a.ws.ready() {
		err := a.ws.SendImage(ctx, room, imageBase64)
		if err == nil {
			return nil
		}
		obslog.L().Warn("egress_fallback", zap.String("type", "image"), zap.String("room", room), zap.Error(err))
	}
	return a.http.SendImage(ctx, room, imageBase64)
}

type dryRunEgress struct{ mode string }

func (d dryRunEgress) SendText(_ context.Context, room, message string) error {
	obslog.L().Info("egress_dryrun", zap.String("mode", d.mode), zap.String("type", "text"), zap.String("room", room), zap.String("text", message))
	return nil
}

func (d dryRunEgress) SendImage(_ context.Context, room, imageBase64 string) error {
	obslog.L().Info("egress_dryrun", zap.String("mode", d.mode), zap.String("type", "image"), zap.String("room", room), zap.Int("bytes", len(imageBase64)))
	return nil
}
