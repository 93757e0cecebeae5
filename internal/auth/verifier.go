package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/SscSPs/family_bank/internal/apperrors"
	"github.com/SscSPs/family_bank/internal/core/domain"
	portssvc "github.com/SscSPs/family_bank/internal/core/ports/services"
	"github.com/golang-jwt/jwt/v5"
)

// Token uses issued by the identity provider.
const (
	TokenUseID     = "id"
	TokenUseAccess = "access"
)

// VerifierConfig names the issuer and the expected audience of accepted tokens.
type VerifierConfig struct {
	IssuerURL string
	JWKSURL   string // defaults to IssuerURL + "/.well-known/jwks.json"
	Audience  string // client ID
	TokenUse  string // defaults to TokenUseID
	Leeway    time.Duration
}

// CognitoIssuerURL builds the issuer of a Cognito user pool.
func CognitoIssuerURL(region, userPoolID string) string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", region, userPoolID)
}

// identityClaims are the claims read from identity-provider tokens.
type identityClaims struct {
	TokenUse string   `json:"token_use"`
	Groups   []string `json:"cognito:groups"`
	Email    string   `json:"email"`
	ClientID string   `json:"client_id"`
	jwt.RegisteredClaims
}

// Verifier validates RS256 bearer tokens against the issuer's published keys.
type Verifier struct {
	cfg    VerifierConfig
	cache  *KeyCache
	parser *jwt.Parser
}

// VerifierOption configures a Verifier.
type VerifierOption func(*verifierOptions)

type verifierOptions struct {
	now func() time.Time
}

// WithVerifierClock replaces time.Now for expiry checks.
func WithVerifierClock(now func() time.Time) VerifierOption {
	return func(o *verifierOptions) {
		o.now = now
	}
}

// NewVerifier creates a Verifier that resolves keys through cache.
func NewVerifier(cache *KeyCache, cfg VerifierConfig, opts ...VerifierOption) *Verifier {
	o := verifierOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	cfg.IssuerURL = strings.TrimRight(cfg.IssuerURL, "/")
	if cfg.JWKSURL == "" {
		cfg.JWKSURL = cfg.IssuerURL + "/.well-known/jwks.json"
	}
	if cfg.TokenUse == "" {
		cfg.TokenUse = TokenUseID
	}

	return &Verifier{
		cfg:   cfg,
		cache: cache,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithIssuer(cfg.IssuerURL),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(cfg.Leeway),
			jwt.WithTimeFunc(o.now),
		),
	}
}

var _ portssvc.TokenVerifier = (*Verifier)(nil)

// Verify checks the token's signature, expiry, issuer, intended use and audience.
// Failures wrap apperrors.ErrKeyNotFound, ErrInvalidSignature, ErrTokenExpired or
// ErrWrongAudienceOrUse.
func (v *Verifier) Verify(ctx context.Context, token string) (*domain.Principal, error) {
	claims := &identityClaims{}
	_, err := v.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("%w: token header has no kid", apperrors.ErrKeyNotFound)
		}
		return v.cache.Key(ctx, v.cfg.IssuerURL, v.cfg.JWKSURL, kid)
	})
	if err != nil {
		return nil, classifyTokenError(err)
	}

	if claims.TokenUse != v.cfg.TokenUse {
		return nil, fmt.Errorf("%w: token_use %q", apperrors.ErrWrongAudienceOrUse, claims.TokenUse)
	}
	if !v.audienceMatches(claims) {
		return nil, fmt.Errorf("%w: audience", apperrors.ErrWrongAudienceOrUse)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", apperrors.ErrInvalidSignature)
	}

	return &domain.Principal{
		SubjectID: claims.Subject,
		Groups:    claims.Groups,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// audienceMatches checks aud for ID tokens and client_id for access tokens.
func (v *Verifier) audienceMatches(c *identityClaims) bool {
	if v.cfg.Audience == "" {
		return false
	}
	if v.cfg.TokenUse == TokenUseAccess {
		return c.ClientID == v.cfg.Audience
	}
	return slices.Contains(c.Audience, v.cfg.Audience)
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, apperrors.ErrKeyNotFound):
		return err
	case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenNotValidYet):
		return fmt.Errorf("%w: %v", apperrors.ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer), errors.Is(err, jwt.ErrTokenInvalidAudience):
		return fmt.Errorf("%w: %v", apperrors.ErrWrongAudienceOrUse, err)
	default:
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidSignature, err)
	}
}
