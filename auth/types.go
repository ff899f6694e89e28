// Package auth implements the beacon's credential and dataset-access policy
// core: primary-credential verification, per-visa validation with fault
// isolation, permission aggregation, and tier-based access resolution.
//
// The package holds no per-request state. The only shared mutable state is
// the JWKS key cache, which is constructor-injected so the policy core can
// be tested without network calls.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GA4GH visa assertion types recognized by the permission aggregator.
// Visas of other types are validated like any other but contribute nothing
// to the permission profile.
const (
	VisaControlledAccessGrants   = "ControlledAccessGrants"
	VisaAcceptedTermsAndPolicies = "AcceptedTermsAndPolicies"
	VisaResearcherStatus         = "ResearcherStatus"
)

// passportClaim is the userinfo claim carrying the encoded visa tokens.
const passportClaim = "ga4gh_passport_v1"

// signingMethods is the accepted signature algorithm set for both primary
// credentials and visas.
var signingMethods = []string{"RS256", "RS384", "RS512", "ES256", "ES384", "ES512"}

// Identity is the outcome of primary-credential verification.
type Identity struct {
	Authenticated bool
	Subject       string
	Issuer        string
}

// Anonymous is the identity of a request that presented no credential.
func Anonymous() Identity {
	return Identity{}
}

// VisaAssertion is the ga4gh_visa_v1 payload of a visa token.
type VisaAssertion struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Source   string `json:"source"`
	By       string `json:"by,omitempty"`
	Asserted int64  `json:"asserted"`
}

// Visa is a validated visa: its assertion plus the claims of the token that
// carried it. Only visas that survived signature and claim validation exist
// as this type.
type Visa struct {
	Issuer    string
	Subject   string
	ExpiresAt time.Time
	Assertion VisaAssertion
}

// visaClaims is the JWT claim set of an encoded visa token.
type visaClaims struct {
	jwt.RegisteredClaims
	Visa VisaAssertion `json:"ga4gh_visa_v1"`
}
