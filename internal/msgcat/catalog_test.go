package msgcat

import (
    "os"
    "path/filepath"
    "strings"
    "testing"
)

func TestEmbeddedCatalogCoversErrorCodes(t *testing.T) {
    c, err := New("")
    if err != nil { t.Fatalf("New: %v", err) }
    codes := []string{
        "session_not_found", "already_seat1", "already_seat2", "session_full",
        "not_ready", "game_over", "not_your_turn", "cell_occupied", "out_of_range",
        "incomplete_roster", "invitation_not_found", "invalid_symbols",
    }
    for _, code := range codes {
        if !c.Has("errors." + code) {
            t.Fatalf("missing errors.%s", code)
        }
    }
}

func TestRenderMissingDataFails(t *testing.T) {
    c, err := New("")
    if err != nil { t.Fatalf("New: %v", err) }
    if _, err := c.Render("invite.created", map[string]any{"Token": "XO-ABCDEF"}); err == nil {
        t.Fatalf("expected missingkey error")
    }
    if got := c.Text("invite.created", nil, "fallback"); got != "fallback" {
        t.Fatalf("Text fallback = %q", got)
    }
    if got := c.Text("nope.nothing", nil, "fb"); got != "fb" {
        t.Fatalf("unknown key fallback = %q", got)
    }
}

func TestRenderInvitation(t *testing.T) {
    c, err := New("")
    if err != nil { t.Fatalf("New: %v", err) }
    out, err := c.Render("invite.created", map[string]any{
        "Token": "XO-ABCDEF", "First": "❌", "Second": "⭕", "Prefix": "!xo",
    })
    if err != nil { t.Fatalf("Render: %v", err) }
    if !strings.Contains(out, "!xo join XO-ABCDEF") {
        t.Fatalf("unexpected text: %q", out)
    }
}

func TestOverrideDir(t *testing.T) {
    dir := t.TempDir()
    if err := os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("move:\n  draw: \"DRAW!\"\n"), 0o644); err != nil {
        t.Fatal(err)
    }
    c, err := New(dir)
    if err != nil { t.Fatalf("New: %v", err) }
    if got := c.Text("move.draw", nil, ""); got != "DRAW!" {
        t.Fatalf("override not applied: %q", got)
    }
    if !c.Has("move.won") {
        t.Fatalf("embedded keys should survive overrides")
    }
}

func TestOverrideDuplicateKeyRejected(t *testing.T) {
    dir := t.TempDir()
    body := []byte("move:\n  draw: x\n")
    _ = os.WriteFile(filepath.Join(dir, "a.yaml"), body, 0o644)
    _ = os.WriteFile(filepath.Join(dir, "b.yml"), body, 0o644)
    if _, err := New(dir); err == nil {
        t.Fatalf("expected duplicate key error")
    }
}

func TestOverrideBrokenTemplateRejected(t *testing.T) {
    dir := t.TempDir()
    _ = os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("move:\n  draw: \"{{.Oops\"\n"), 0o644)
    if _, err := New(dir); err == nil {
        t.Fatalf("expected parse error")
    }
}
