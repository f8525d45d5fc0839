package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/park285/xo-kakao-bot/internal/xo"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type AppConfig struct {
	IrisBaseURL string
	IrisWSURL   string

	BotPrefix string

	XUserID    string
	XUserEmail string
	XSessionID string

	EgressMode   string
	EgressDryRun bool

	StoreBackend string
	RedisURL     string
	SessionTTL   time.Duration

	ResetPolicy xo.ResetPolicy

	AllowedRooms []string

	StatusAddr     string
	MsgOverrideDir string
	RenderImages   bool
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		BotPrefix:    "!xo",
		EgressMode:   "auto",
		SessionTTL:   24 * time.Hour,
		ResetPolicy:  xo.ResetSwap,
		StatusAddr:   ":8080",
		RenderImages: true,
	}

	cfg.IrisBaseURL = strings.TrimSpace(os.Getenv("IRIS_BASE_URL"))
	cfg.IrisWSURL = strings.TrimSpace(os.Getenv("IRIS_WS_URL"))
	if v := strings.TrimSpace(os.Getenv("BOT_PREFIX")); v != "" {
		cfg.BotPrefix = v
	}

	cfg.XUserID = strings.TrimSpace(os.Getenv("X_USER_ID"))
	cfg.XUserEmail = strings.TrimSpace(os.Getenv("X_USER_EMAIL"))
	cfg.XSessionID = strings.TrimSpace(os.Getenv("X_SESSION_ID"))

	if v := strings.ToLower(strings.TrimSpace(os.Getenv("EGRESS_MODE"))); v != "" {
		cfg.EgressMode = v
	}
	cfg.EgressDryRun = envBool("EGRESS_DRYRUN", false)

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(os.Getenv("STORE_BACKEND")))
	if cfg.StoreBackend == "" {
		cfg.StoreBackend = StoreMemory
		if cfg.RedisURL != "" {
			cfg.StoreBackend = StoreRedis
		}
	}
	if v := strings.TrimSpace(os.Getenv("SESSION_TTL_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SessionTTL = time.Duration(n) * time.Second
		}
	}

	policy, err := xo.ParseResetPolicy(os.Getenv("RESET_POLICY"))
	if err != nil {
		return nil, err
	}
	cfg.ResetPolicy = policy

	cfg.AllowedRooms = splitList(os.Getenv("ALLOWED_ROOMS"))

	if v := strings.TrimSpace(os.Getenv("STATUS_ADDR")); v != "" {
		cfg.StatusAddr = v
	} else if p := strings.TrimSpace(os.Getenv("PORT")); p != "" {
		cfg.StatusAddr = ":" + p
	}
	cfg.MsgOverrideDir = strings.TrimSpace(os.Getenv("MSG_OVERRIDE_DIR"))
	cfg.RenderImages = envBool("RENDER_IMAGES", true)

	if cfg.IrisBaseURL == "" {
		return nil, errors.New("IRIS_BASE_URL is required")
	}
	// inbound messages only arrive over the socket, whatever the egress mode
	if cfg.IrisWSURL == "" {
		return nil, errors.New("IRIS_WS_URL is required")
	}
	switch cfg.EgressMode {
	case "http", "ws", "auto":
	default:
		return nil, fmt.Errorf("EGRESS_MODE must be http, ws or auto (got %q)", cfg.EgressMode)
	}
	switch cfg.StoreBackend {
	case StoreMemory:
	case StoreRedis:
		if cfg.RedisURL == "" {
			return nil, errors.New("REDIS_URL is required for STORE_BACKEND=redis")
		}
	default:
		return nil, fmt.Errorf("STORE_BACKEND must be memory or redis (got %q)", cfg.StoreBackend)
	}

	return cfg, nil
}

// RoomAllowed reports whether room may use the bot. An empty list allows every room.
func (c *AppConfig) RoomAllowed(room string) bool {
	if len(c.AllowedRooms) == 0 {
		return true
	}
	for _, r := range c.AllowedRooms {
		if r == room {
			return true
		}
	}
	return false
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
