package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/phisec-lab/panoptes/pkg/utils/errutil"
	"github.com/phisec-lab/panoptes/pkg/utils/logging"
)

// TokenVerifier validates an API bearer token and returns its subject.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (subject string, err error)
}

// JWKSVerifier verifies bearer tokens against the identity provider's
// published key set. The key set is cached and refreshed in the
// background.
type JWKSVerifier struct {
	jwksURL  string
	issuer   string
	audience string
	cache    *jwk.Cache
}

// NewJWKSVerifier registers the JWKS endpoint for background refresh.
// Issuer and audience are enforced when non-empty.
func NewJWKSVerifier(ctx context.Context, jwksURL, issuer, audience string) (*JWKSVerifier, error) {
	if jwksURL == "" {
		return nil, goerr.New("JWKS URL is required")
	}

	cache := jwk.NewCache(ctx)
	if err := cache.Register(jwksURL, jwk.WithMinRefreshInterval(15*time.Minute)); err != nil {
		return nil, goerr.Wrap(err, "failed to register JWKS endpoint", goerr.V("url", jwksURL))
	}

	return &JWKSVerifier{
		jwksURL:  jwksURL,
		issuer:   issuer,
		audience: audience,
		cache:    cache,
	}, nil
}

func (v *JWKSVerifier) Verify(ctx context.Context, raw string) (string, error) {
	keySet, err := v.cache.Get(ctx, v.jwksURL)
	if err != nil {
		return "", goerr.Wrap(err, "failed to fetch key set", goerr.V("url", v.jwksURL))
	}

	// Allow 10 seconds of clock skew.
	opts := []jwt.ParseOption{
		jwt.WithKeySet(keySet),
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(10 * time.Second),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	token, err := jwt.Parse([]byte(raw), opts...)
	if err != nil {
		return "", goerr.Wrap(err, "failed to verify token")
	}

	return token.Subject(), nil
}

func authMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				errutil.HandleHTTP(ctx, w, goerr.New("missing bearer token"), http.StatusUnauthorized)
				return
			}

			subject, err := verifier.Verify(ctx, token)
			if err != nil {
				errutil.HandleHTTP(ctx, w, err, http.StatusUnauthorized)
				return
			}

			ctx = logging.With(ctx, logging.From(ctx).With("subject", subject))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
