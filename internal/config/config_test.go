package config

import (
	"testing"
	"time"

	"github.com/park285/xo-kakao-bot/internal/xo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBase(t *testing.T) {
	t.Setenv("IRIS_BASE_URL", "http://iris.local:3000")
	t.Setenv("IRIS_WS_URL", "ws://iris.local:3000/ws")
	for _, k := range []string{"BOT_PREFIX", "REDIS_URL", "STORE_BACKEND", "SESSION_TTL_SEC", "RESET_POLICY", "ALLOWED_ROOMS", "EGRESS_MODE", "STATUS_ADDR", "PORT", "RENDER_IMAGES"} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	setBase(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "!xo", cfg.BotPrefix)
	assert.Equal(t, StoreMemory, cfg.StoreBackend)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, xo.ResetSwap, cfg.ResetPolicy)
	assert.Equal(t, ":8080", cfg.StatusAddr)
	assert.True(t, cfg.RenderImages)
	assert.True(t, cfg.RoomAllowed("any"))
}

func TestLoadOverrides(t *testing.T) {
	setBase(t)
	t.Setenv("REDIS_URL", "redis://localhost:6379/2")
	t.Setenv("SESSION_TTL_SEC", "600")
	t.Setenv("RESET_POLICY", "same")
	t.Setenv("ALLOWED_ROOMS", " r1, ,r2 ")
	t.Setenv("PORT", "9090")
	t.Setenv("RENDER_IMAGES", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreRedis, cfg.StoreBackend)
	assert.Equal(t, 10*time.Minute, cfg.SessionTTL)
	assert.Equal(t, xo.ResetSame, cfg.ResetPolicy)
	assert.Equal(t, []string{"r1", "r2"}, cfg.AllowedRooms)
	assert.Equal(t, ":9090", cfg.StatusAddr)
	assert.False(t, cfg.RenderImages)
	assert.True(t, cfg.RoomAllowed("r2"))
	assert.False(t, cfg.RoomAllowed("r3"))
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]map[string]string{
		"missing base url":     {"IRIS_BASE_URL": ""},
		"bad policy":           {"RESET_POLICY": "shuffle"},
		"redis without url":    {"STORE_BACKEND": "redis"},
		"unknown backend":      {"STORE_BACKEND": "sqlite"},
		"unknown egress":       {"EGRESS_MODE": "carrier-pigeon"},
		"ws mode without ws":   {"EGRESS_MODE": "ws", "IRIS_WS_URL": ""},
		"http mode without ws": {"EGRESS_MODE": "http", "IRIS_WS_URL": ""},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			setBase(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
