// Package auth issues and verifies the admin bearer tokens that gate writes.
//
// A token is "<username>:<expiry unix seconds>.<hex hmac-sha256 of the part
// before the dot>". Usernames may contain ':'; the expiry follows the last one.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultTTL is the token lifetime when none is configured.
const DefaultTTL = 24 * time.Hour

// Claims are the verified contents of a token.
type Claims struct {
	Username  string
	ExpiresAt time.Time
}

// Issuer signs and validates tokens with a shared secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option configures an Issuer.
type Option func(*Issuer)

// WithTTL sets the token lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(i *Issuer) {
		if ttl > 0 {
			i.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		if now != nil {
			i.now = now
		}
	}
}

// NewIssuer returns an Issuer for secret.
func NewIssuer(secret string, opts ...Option) (*Issuer, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	i := &Issuer{secret: []byte(secret), ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

func (i *Issuer) sign(payload string) string {
	mac := hmac.New(sha256.New, i.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// Issue returns a token for username expiring after the configured TTL.
func (i *Issuer) Issue(username string) (string, Claims) {
	exp := i.now().Add(i.ttl).Truncate(time.Second)
	payload := username + ":" + strconv.FormatInt(exp.Unix(), 10)
	return payload + "." + i.sign(payload), Claims{Username: username, ExpiresAt: exp}
}

// Validate verifies the signature and expiry of token.
func (i *Issuer) Validate(token string) (Claims, error) {
	dot := strings.LastIndex(token, ".")
	if dot < 0 {
		return Claims{}, ErrInvalidToken
	}
	payload, sig := token[:dot], token[dot+1:]
	if !hmac.Equal([]byte(sig), []byte(i.sign(payload))) {
		return Claims{}, ErrInvalidToken
	}

	colon := strings.LastIndex(payload, ":")
	if colon < 0 {
		return Claims{}, ErrInvalidToken
	}
	exp, err := strconv.ParseInt(payload[colon+1:], 10, 64)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: expiry: %v", ErrInvalidToken, err)
	}
	claims := Claims{Username: payload[:colon], ExpiresAt: time.Unix(exp, 0)}
	if i.now().Unix() > exp {
		return claims, ErrExpiredToken
	}
	return claims, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
