package activation

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/elizabethadegbaju/crystalims/pkg/config"
	"github.com/elizabethadegbaju/crystalims/pkg/db/models"
)

// ErrInvalidToken is the single failure outcome for every bad token: expired,
// tampered, malformed, or already consumed. Callers must not distinguish.
var ErrInvalidToken = errors.New("invalid activation token")

// Generator mints and checks single-use activation tokens. The signature
// covers the user's id, active flag, password hash and last login, so any of
// those changing (activation itself included) invalidates outstanding tokens.
type Generator struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewGenerator builds a token generator from the activation configuration.
func NewGenerator(cfg config.ActivationConfig) (*Generator, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("activation secret is required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &Generator{
		secret: []byte(cfg.Secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// WithClock overrides the time source, for tests.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Make issues a token for the user's current state.
func (g *Generator) Make(user *models.User) (string, error) {
	if user == nil {
		return "", fmt.Errorf("user is required")
	}
	ts := g.now().UTC().Unix()
	sig := g.sign(user, ts)
	return fmt.Sprintf("%s-%s", strconv.FormatInt(ts, 36), sig), nil
}

// Check verifies a token against the user's current state. It returns
// ErrInvalidToken for every failure mode without detail.
func (g *Generator) Check(user *models.User, token string) error {
	if user == nil || token == "" {
		return ErrInvalidToken
	}
	parts := strings.SplitN(token, "-", 2)
	if len(parts) != 2 {
		return ErrInvalidToken
	}
	ts, err := strconv.ParseInt(parts[0], 36, 64)
	if err != nil {
		return ErrInvalidToken
	}

	issued := time.Unix(ts, 0).UTC()
	now := g.now().UTC()
	if issued.After(now) || now.Sub(issued) > g.ttl {
		return ErrInvalidToken
	}

	expected := g.sign(user, ts)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(parts[1])) != 1 {
		return ErrInvalidToken
	}
	return nil
}

func (g *Generator) sign(user *models.User, ts int64) string {
	lastLogin := ""
	if user.LastLoginAt != nil {
		lastLogin = user.LastLoginAt.UTC().Format(time.RFC3339Nano)
	}
	state := fmt.Sprintf("%s|%t|%s|%s|%d", user.ID, user.IsActive, user.PasswordHash, lastLogin, ts)

	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(state))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
