package xopresenter

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/park285/xo-kakao-bot/internal/metrics"
	"github.com/park285/xo-kakao-bot/internal/obslog"
	"github.com/park285/xo-kakao-bot/internal/render"
	"github.com/park285/xo-kakao-bot/pkg/xodto"
	"go.uber.org/zap"
)

// Sender is the outbound half of the chat transport.
type Sender interface {
	SendText(ctx context.Context, room, message string) error
	SendImage(ctx context.Context, room, imageBase64 string) error
}

// Presenter delivers text and board images without coupling to the command layer.
// Kakao cannot edit a sent message, so every board update is a fresh send.
type Presenter struct {
	out      Sender
	renderer render.BoardRenderer
	metrics  *metrics.Metrics
}

// NewPresenter wires the sender. A nil renderer disables board images.
func NewPresenter(out Sender, renderer render.BoardRenderer, m *metrics.Metrics) *Presenter {
	return &Presenter{out: out, renderer: renderer, metrics: m}
}

// Text sends a plain message.
func (p *Presenter) Text(ctx context.Context, room, message string) error {
	if p == nil || p.out == nil || strings.TrimSpace(message) == "" {
		return nil
	}
	return p.out.SendText(ctx, room, message)
}

// Board sends message and then the rendered board image. A render failure is
// logged and counted but does not fail the call since the text already carries the grid.
func (p *Presenter) Board(ctx context.Context, room, message string, view *xodto.SessionView, hud render.RenderOptions) error {
	if p == nil {
		return nil
	}
	if err := p.Text(ctx, room, message); err != nil {
		return err
	}
	if view == nil || p.renderer == nil || p.out == nil {
		return nil
	}

	img := view.BoardImage
	if len(img) == 0 {
		var err error
		img, err = p.renderer.RenderPNG(ctx, view, hud)
		if err != nil {
			p.metrics.Render("error")
			obslog.L().Warn("xo_render_failed", zap.String("session_id", view.SessionID), zap.Error(err))
			return nil
		}
	}
	p.metrics.Render("ok")
	return p.out.SendImage(ctx, room, base64.StdEncoding.EncodeToString(img))
}
