package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	httpctrl "github.com/phisec-lab/panoptes/pkg/controller/http"
	"github.com/urfave/cli/v3"
)

// Auth holds CLI flags for API authentication.
type Auth struct {
	jwksURL  string
	issuer   string
	audience string
	noAuth   bool
}

func (x *Auth) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "auth-jwks-url",
			Usage:       "JWKS endpoint of the identity provider",
			Category:    "Authentication",
			Sources:     cli.EnvVars("PANOPTES_AUTH_JWKS_URL"),
			Destination: &x.jwksURL,
		},
		&cli.StringFlag{
			Name:        "auth-issuer",
			Usage:       "Expected token issuer (not enforced when empty)",
			Category:    "Authentication",
			Sources:     cli.EnvVars("PANOPTES_AUTH_ISSUER"),
			Destination: &x.issuer,
		},
		&cli.StringFlag{
			Name:        "auth-audience",
			Usage:       "Expected token audience (not enforced when empty)",
			Category:    "Authentication",
			Sources:     cli.EnvVars("PANOPTES_AUTH_AUDIENCE"),
			Destination: &x.audience,
		},
		&cli.BoolFlag{
			Name:        "no-auth",
			Usage:       "Skip authentication (development only)",
			Category:    "Authentication",
			Sources:     cli.EnvVars("PANOPTES_NO_AUTH"),
			Destination: &x.noAuth,
		},
	}
}

// IsNoAuthMode reports whether authentication is explicitly disabled.
func (x *Auth) IsNoAuthMode() bool {
	return x.noAuth
}

// Configure builds the token verifier. Returns nil when running in
// no-auth mode.
func (x *Auth) Configure(ctx context.Context) (httpctrl.TokenVerifier, error) {
	if x.noAuth {
		return nil, nil
	}
	if x.jwksURL == "" {
		return nil, goerr.New("auth-jwks-url is required unless --no-auth is set")
	}
	return httpctrl.NewJWKSVerifier(ctx, x.jwksURL, x.issuer, x.audience)
}
