package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "https://cognito-idp.eu-west-1.amazonaws.com/eu-west-1_pool"
	testJWKSURL  = testIssuer + "/.well-known/jwks.json"
	testAudience = "client-123"
)

var (
	keyOnce sync.Once
	keyA    *rsa.PrivateKey
	keyB    *rsa.PrivateKey
)

func testKeys(t *testing.T) (*rsa.PrivateKey, *rsa.PrivateKey) {
	t.Helper()
	keyOnce.Do(func() {
		var err error
		keyA, err = rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
		keyB, err = rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
	})
	return keyA, keyB
}

// fakeFetcher serves a replaceable key set and counts fetches.
type fakeFetcher struct {
	mu      sync.Mutex
	keys    map[string]*rsa.PublicKey
	err     error
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func newFakeFetcher(keys map[string]*rsa.PublicKey) *fakeFetcher {
	return &fakeFetcher{keys: keys}
}

func (f *fakeFetcher) set(keys map[string]*rsa.PublicKey, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = keys
	f.err = err
}

func (f *fakeFetcher) FetchKeySet(ctx context.Context, _ string) (map[string]*rsa.PublicKey, error) {
	f.calls.Add(1)
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]*rsa.PublicKey, len(f.keys))
	for k, v := range f.keys {
		out[k] = v
	}
	return out, nil
}

var errFetch = errors.New("key endpoint down")

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type tokenSpec struct {
	kid      string
	key      *rsa.PrivateKey
	subject  string
	groups   []string
	use      string
	audience string
	clientID string
	issuer   string
	expires  time.Time
	method   jwt.SigningMethod
}

func signToken(t *testing.T, s tokenSpec) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":       s.subject,
		"iss":       s.issuer,
		"exp":       s.expires.Unix(),
		"token_use": s.use,
		"email":     s.subject + "@example.com",
	}
	if s.audience != "" {
		claims["aud"] = s.audience
	}
	if s.clientID != "" {
		claims["client_id"] = s.clientID
	}
	if s.groups != nil {
		claims["cognito:groups"] = s.groups
	}
	method := s.method
	if method == nil {
		method = jwt.SigningMethodRS256
	}
	tok := jwt.NewWithClaims(method, claims)
	if s.kid != "" {
		tok.Header["kid"] = s.kid
	}

	var signed string
	var err error
	if _, ok := method.(*jwt.SigningMethodHMAC); ok {
		signed, err = tok.SignedString([]byte("shared-secret"))
	} else {
		signed, err = tok.SignedString(s.key)
	}
	require.NoError(t, err)
	return signed
}
