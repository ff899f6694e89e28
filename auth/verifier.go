package auth

import (
	"context"
	"crypto/x509"
	"encoding/pem"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/vireolabs/beacon/config"
	"github.com/vireolabs/beacon/errors"
)

// bearerScheme is the only accepted authorization scheme.
const bearerScheme = "Bearer"

// Verifier validates the primary bearer credential of a request.
//
// Key material comes from the operator-supplied static key when configured,
// otherwise from the primary issuer's JWKS endpoint via the key cache. The
// static key is preferred because it removes the network dependency from the
// primary verification path entirely.
type Verifier struct {
	cfg       config.AuthConfig
	cache     *KeyCache
	staticKey interface{} // parsed public key, nil when not configured
	log       *zap.SugaredLogger
}

// NewVerifier creates a credential verifier. The static key PEM, when set in
// the configuration, is parsed here so a bad key fails at startup rather than
// on the first request.
func NewVerifier(cfg config.AuthConfig, cache *KeyCache, log *zap.SugaredLogger) (*Verifier, error) {
	v := &Verifier{
		cfg:   cfg,
		cache: cache,
		log:   log,
	}

	if cfg.StaticKeyPEM != "" {
		key, err := parsePublicKeyPEM(cfg.StaticKeyPEM)
		if err != nil {
			return nil, errors.Wrap(err, "parse static verification key")
		}
		v.staticKey = key
	}

	return v, nil
}

// VerifyCredential validates a raw credential presented with the given
// authorization scheme and returns the authenticated identity.
//
// Failure classification:
//   - bad scheme or unparsable token: ErrMalformedCredential
//   - bad signature, expiry, issuer, or audience: ErrInvalidCredential
//   - key material unreachable: ErrKeyUnavailable (server-side fault)
func (v *Verifier) VerifyCredential(ctx context.Context, raw, scheme string) (Identity, error) {
	if !strings.EqualFold(scheme, bearerScheme) {
		return Identity{}, errors.Wrapf(errors.ErrMalformedCredential, "unsupported authorization scheme %q", scheme)
	}
	if raw == "" {
		return Identity{}, errors.Wrap(errors.ErrMalformedCredential, "empty credential")
	}

	keyfunc, err := v.keySource(ctx)
	if err != nil {
		return Identity{}, err
	}

	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods(signingMethods),
		jwt.WithExpirationRequired(),
	)
	token, err := parser.ParseWithClaims(raw, claims, keyfunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return Identity{}, errors.Wrap(errors.ErrMalformedCredential, err.Error())
		}
		return Identity{}, errors.Wrap(errors.ErrInvalidCredential, err.Error())
	}
	if !token.Valid {
		return Identity{}, errors.Wrap(errors.ErrInvalidCredential, "token validation failed")
	}

	if err := v.checkIssuer(claims.Issuer); err != nil {
		return Identity{}, err
	}
	if err := v.checkAudience(claims.Audience); err != nil {
		return Identity{}, err
	}

	return Identity{
		Authenticated: true,
		Subject:       claims.Subject,
		Issuer:        claims.Issuer,
	}, nil
}

// keySource resolves the verification key material for the primary
// credential. A failure to obtain it is a server-side fault, not a
// credential fault.
func (v *Verifier) keySource(ctx context.Context) (jwt.Keyfunc, error) {
	if v.staticKey != nil {
		return func(*jwt.Token) (interface{}, error) {
			return v.staticKey, nil
		}, nil
	}

	if v.cfg.JWKSURL == "" {
		return nil, errors.Wrap(errors.ErrKeyUnavailable, "no static key and no JWKS URL configured")
	}
	set, err := v.cache.Get(ctx, v.cfg.JWKSURL)
	if err != nil {
		return nil, errors.Wrap(errors.ErrKeyUnavailable, err.Error())
	}

	return func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		return keyFor(set, kid)
	}, nil
}

// checkIssuer enforces the issuer allow-list. An empty list accepts any
// issuer.
func (v *Verifier) checkIssuer(issuer string) error {
	if len(v.cfg.TrustedIssuers) == 0 {
		return nil
	}
	for _, trusted := range v.cfg.TrustedIssuers {
		if issuer == trusted {
			return nil
		}
	}
	return errors.Wrapf(errors.ErrInvalidCredential, "issuer %q is not trusted", issuer)
}

// checkAudience enforces the audience allow-list. An empty list disables
// audience checking entirely, a deliberate escape hatch for deployments whose
// issuers do not stamp a beacon-specific audience.
func (v *Verifier) checkAudience(audience jwt.ClaimStrings) error {
	if len(v.cfg.Audiences) == 0 {
		return nil
	}
	for _, allowed := range v.cfg.Audiences {
		for _, aud := range audience {
			if aud == allowed {
				return nil
			}
		}
	}
	return errors.Wrap(errors.ErrInvalidCredential, "token audience does not match any configured audience")
}

// parsePublicKeyPEM parses a PEM-encoded public key (PKIX or PKCS#1).
func parsePublicKeyPEM(pemData string) (interface{}, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, errors.New("no PEM block found")
	}
	if key, err := x509.ParsePKIXPublicKey(block.Bytes); err == nil {
		return key, nil
	}
	key, err := x509.ParsePKCS1PublicKey(block.Bytes)
	if err != nil {
		return nil, errors.Wrap(err, "unsupported public key encoding")
	}
	return key, nil
}
