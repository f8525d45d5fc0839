// irischeck probes the Iris endpoints the bot depends on and prints what arrives on the socket.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/park285/xo-kakao-bot/internal/bot"
	"github.com/park285/xo-kakao-bot/internal/irisfast"
	"github.com/park285/xo-kakao-bot/internal/obslog"
	"go.uber.org/zap"
)

func main() {
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer obslog.Sync()
	logger := obslog.L()

	baseURL := os.Getenv("IRIS_BASE_URL")
	wsURL := os.Getenv("IRIS_WS_URL")
	prefix := os.Getenv("BOT_PREFIX")
	if prefix == "" {
		prefix = "!xo"
	}
	if baseURL == "" {
		logger.Fatal("IRIS_BASE_URL is required")
	}

	headers := func() map[string]string {
		m := map[string]string{}
		for env, hdr := range map[string]string{"X_USER_ID": "X-User-Id", "X_USER_EMAIL": "X-User-Email", "X_SESSION_ID": "X-Session-Id"} {
			if v := os.Getenv(env); v != "" {
				m[hdr] = v
			}
		}
		return m
	}

	client := irisfast.NewClient(baseURL, irisfast.WithHeaderProvider(headers), irisfast.WithTimeout(8*time.Second), irisfast.WithRetry(1))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	cfg, err := client.GetConfig(ctx)
	if err != nil {
		logger.Error("iris_config_failed", zap.Error(err))
	} else {
		logger.Info("iris_config_ok", zap.Int("port", cfg.Port), zap.Int("polling", cfg.PollingSpeed),
			zap.Int("rate", cfg.MessageRate), zap.String("endpoint", cfg.WebserverEndpoint))
	}

	if wsURL == "" {
		logger.Info("IRIS_WS_URL not set; skipping WS check")
		return
	}

	ws := irisfast.NewWebSocket(wsURL, 0, time.Second)
	ws.SetHeaderProvider(headers)
	ws.OnStateChange(func(state irisfast.WebSocketState) {
		logger.Info("ws_state", zap.String("state", state.String()))
	})
	// Shows whether the bot would react, without touching any session.
	probe := bot.New(prefix, nil, nil, nil)
	ws.OnMessage(func(msg *irisfast.Message) {
		in := bot.FromIris(msg)
		fmt.Printf("WS msg room=%s user=%s command=%t text=%q\n", in.Room, in.UserID, probe.Accepts(in), in.Text)
	})

	cctx, ccancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer ccancel()
	if err := ws.Connect(cctx); err != nil {
		logger.Error("ws_connect_failed", zap.Error(err))
		return
	}

	time.Sleep(10 * time.Second)
	_ = ws.Close(context.Background())
}
