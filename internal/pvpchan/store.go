package pvpchan

import (
    "context"
    "crypto/rand"
    "fmt"
    "strings"
    "time"
)

const (
    ttlInvitation = 24 * time.Hour
)

// Store persists invitations and the token → session binding.
type Store interface {
    // CreateInvitation stores inv unless the token is taken.
    CreateInvitation(ctx context.Context, inv *Invitation) (bool, error)
    LoadInvitation(ctx context.Context, token string) (*Invitation, error)
    SaveInvitation(ctx context.Context, inv *Invitation) error
    // Claim binds token to sessionID if nothing is bound yet and returns the winning id.
    Claim(ctx context.Context, token, sessionID string) (string, error)
    Bound(ctx context.Context, token string) (string, error)
    Forget(ctx context.Context, token string) error
    // Touch restarts the expiry of the invitation and its binding.
    Touch(ctx context.Context, token string) error

    AddLobby(ctx context.Context, token string) error
    RemoveLobby(ctx context.Context, token string) error
    LobbyTokens(ctx context.Context) ([]string, error)
}

// tokenGen returns `XO-` + 6 upper alnum without look-alike characters.
func tokenGen() (string, error) {
    const letters = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
    b := make([]byte, 6)
    if _, err := rand.Read(b); err != nil {
        return "", err
    }
    for i := range b {
        b[i] = letters[int(b[i])%len(letters)]
    }
    return fmt.Sprintf("XO-%s", string(b)), nil
}

// NormalizeToken accepts lower case and a missing prefix.
func NormalizeToken(raw string) string {
    t := strings.ToUpper(strings.TrimSpace(raw))
    if t == "" { return "" }
    if !strings.HasPrefix(t, "XO-") { t = "XO-" + t }
    return t
}

// LooksLikeToken reports whether raw has the shape produced by tokenGen.
func LooksLikeToken(raw string) bool {
    t := strings.ToUpper(strings.TrimSpace(raw))
    if !strings.HasPrefix(t, "XO-") || len(t) != 9 { return false }
    for _, r := range t[3:] {
        if !((r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) { return false }
    }
    return true
}
