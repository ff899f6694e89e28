package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/vireolabs/beacon/errors"
	"github.com/vireolabs/beacon/internal/httpclient"
)

// VisaValidator validates visa tokens independently of the primary
// credential. Each visa declares its own key server in its jku header and is
// verified against that issuer's keys.
//
// Per-visa fault isolation is the contract: a user may legitimately present
// a mix of valid and stale or foreign visas, and one bad visa must never
// erase the value of the good ones. Any per-visa failure is logged and the
// visa dropped; nothing propagates to the caller.
type VisaValidator struct {
	cache       *KeyCache
	client      *httpclient.SaferClient
	userinfoURL string
	timeout     time.Duration
	log         *zap.SugaredLogger
}

// NewVisaValidator creates a visa validator. timeout bounds the whole
// per-request validation pass; visas still unvalidated when it expires are
// dropped like any other failure.
func NewVisaValidator(cache *KeyCache, client *httpclient.SaferClient, userinfoURL string, timeout time.Duration, log *zap.SugaredLogger) *VisaValidator {
	return &VisaValidator{
		cache:       cache,
		client:      client,
		userinfoURL: userinfoURL,
		timeout:     timeout,
		log:         log,
	}
}

// FetchVisas retrieves the encoded visa tokens bundled with the given
// primary credential from the identity provider's userinfo endpoint. Single
// attempt, no retry.
func (v *VisaValidator) FetchVisas(ctx context.Context, accessToken string) ([]string, error) {
	if v.userinfoURL == "" {
		return nil, nil
	}

	var userinfo struct {
		Passport []string `json:"ga4gh_passport_v1"`
	}
	if err := v.client.GetJSON(ctx, v.userinfoURL, accessToken, &userinfo); err != nil {
		return nil, errors.Wrap(err, "fetch visas from userinfo endpoint")
	}
	return userinfo.Passport, nil
}

// ValidateAll validates each visa token concurrently and returns the visas
// that passed. The order of the result follows the order of the input for
// the tokens that survive. Failures are logged and dropped.
func (v *VisaValidator) ValidateAll(ctx context.Context, tokens []string) []Visa {
	if len(tokens) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	type result struct {
		idx  int
		visa Visa
		err  error
	}
	results := make(chan result, len(tokens))

	for i, token := range tokens {
		go func(idx int, raw string) {
			visa, err := v.validate(ctx, raw)
			results <- result{idx: idx, visa: visa, err: err}
		}(i, token)
	}

	validated := make([]Visa, len(tokens))
	ok := make([]bool, len(tokens))
	for range tokens {
		r := <-results
		if r.err != nil {
			v.log.Debugw("Dropping invalid visa",
				"index", r.idx,
				"error", r.err.Error(),
			)
			continue
		}
		validated[r.idx] = r.visa
		ok[r.idx] = true
	}

	visas := make([]Visa, 0, len(tokens))
	for i := range validated {
		if ok[i] {
			visas = append(visas, validated[i])
		}
	}
	return visas
}

// validate verifies a single visa token: peek at the unverified header and
// claims to discover the issuer-declared key server, fetch its keys, then
// verify the visa's own signature and claims against them.
func (v *VisaValidator) validate(ctx context.Context, raw string) (Visa, error) {
	unverified, _, err := jwt.NewParser().ParseUnverified(raw, &visaClaims{})
	if err != nil {
		return Visa{}, errors.Wrap(err, "parse visa token")
	}

	jku, _ := unverified.Header["jku"].(string)
	if jku == "" {
		return Visa{}, errors.New("visa header declares no key set URL")
	}

	set, err := v.cache.Get(ctx, jku)
	if err != nil {
		return Visa{}, errors.Wrap(err, "fetch visa issuer keys")
	}

	claims := &visaClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods(signingMethods),
		jwt.WithExpirationRequired(),
	)
	token, err := parser.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		return keyFor(set, kid)
	})
	if err != nil {
		return Visa{}, errors.Wrap(err, "verify visa signature")
	}
	if !token.Valid {
		return Visa{}, errors.New("visa validation failed")
	}
	if claims.Issuer == "" {
		return Visa{}, errors.New("visa has no issuer claim")
	}
	if claims.Visa.Type == "" {
		return Visa{}, errors.New("visa carries no ga4gh_visa_v1 assertion")
	}

	var expires time.Time
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	return Visa{
		Issuer:    claims.Issuer,
		Subject:   claims.Subject,
		ExpiresAt: expires,
		Assertion: claims.Visa,
	}, nil
}
