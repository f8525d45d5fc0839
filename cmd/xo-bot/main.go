package main

import (
    "context"
    "log"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/park285/xo-kakao-bot/internal/adapter/xopresenter"
    "github.com/park285/xo-kakao-bot/internal/bot"
    appcfg "github.com/park285/xo-kakao-bot/internal/config"
    "github.com/park285/xo-kakao-bot/internal/irisfast"
    "github.com/park285/xo-kakao-bot/internal/metrics"
    "github.com/park285/xo-kakao-bot/internal/msgcat"
    "github.com/park285/xo-kakao-bot/internal/obslog"
    "github.com/park285/xo-kakao-bot/internal/render"
    "github.com/park285/xo-kakao-bot/internal/status"
    "github.com/park285/xo-kakao-bot/internal/xobuilder"
    "go.uber.org/zap"
)

func main() {
    if err := obslog.InitFromEnv(); err != nil {
        log.Fatalf("logger init error: %v", err)
    }
    defer obslog.Sync()
    logger := obslog.L()

    cfg, err := appcfg.Load()
    if err != nil {
        logger.Fatal("config error", zap.Error(err))
    }

    headers := func() map[string]string {
        h := map[string]string{}
        if cfg.XUserID != "" { h["X-User-Id"] = cfg.XUserID }
        if cfg.XUserEmail != "" { h["X-User-Email"] = cfg.XUserEmail }
        if cfg.XSessionID != "" { h["X-Session-Id"] = cfg.XSessionID }
        return h
    }

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    mt := metrics.New()
    deps, err := xobuilder.New(ctx, cfg, mt)
    if err != nil {
        logger.Fatal("session store init error", zap.Error(err))
    }
    defer deps.Close()
    go deps.RunJanitor(ctx, time.Minute)

    cat, err := msgcat.New(cfg.MsgOverrideDir)
    if err != nil {
        logger.Fatal("message catalog error", zap.Error(err))
    }

    client := irisfast.NewClient(cfg.IrisBaseURL, irisfast.WithHeaderProvider(headers))
    ws := irisfast.NewWebSocket(cfg.IrisWSURL, 5, time.Second)
    ws.SetHeaderProvider(headers)
    egress := irisfast.NewEgress(cfg.EgressMode, cfg.EgressDryRun, client, ws)

    var renderer render.BoardRenderer
    if cfg.RenderImages {
        renderer = render.NewBoardRenderer()
    }
    presenter := xopresenter.NewPresenter(egress, renderer, mt)
    formatter := xopresenter.NewFormatter(cat, prefixProvider{prefix: cfg.BotPrefix})
    b := bot.New(cfg.BotPrefix, deps.Games, presenter, formatter,
        bot.WithGate(cfg),
        bot.WithMetrics(mt),
    )

    st := status.New(deps.Games, mt.Registry)
    go func() {
        if err := st.ListenAndServe(cfg.StatusAddr); err != nil {
            logger.Error("status server stopped", zap.Error(err))
        }
    }()

    ws.OnStateChange(func(state irisfast.WebSocketState) {
        st.SetTransportState(state.String())
        logger.Info("ws_state", zap.String("state", state.String()))
    })
    ws.OnMessage(func(msg *irisfast.Message) {
        st.Beat()
        in := bot.FromIris(msg)
        if !b.Accepts(in) {
            return
        }
        // keep the read loop free
        go b.Handle(ctx, in)
    })

    cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
    if err := ws.Connect(cctx); err != nil {
        cancel()
        logger.Fatal("ws connect error", zap.Error(err))
    }
    cancel()
    logger.Info("xo_bot_started", zap.String("prefix", cfg.BotPrefix), zap.String("store", cfg.StoreBackend),
        zap.String("egress", cfg.EgressMode), zap.String("reset_policy", string(cfg.ResetPolicy)))

    <-ctx.Done()

    sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer scancel()
    _ = ws.Close(sctx)
    _ = st.Shutdown(sctx)
}

type prefixProvider struct{ prefix string }

func (p prefixProvider) Prefix() string { return p.prefix }
