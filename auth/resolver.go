package auth

import (
	"github.com/vireolabs/beacon/errors"
)

// AccessTier is a dataset-level sensitivity classification. Every dataset
// in the catalogue belongs to exactly one tier.
type AccessTier int

const (
	TierPublic AccessTier = iota
	TierRegistered
	TierControlled
)

// String returns the canonical tier label.
func (t AccessTier) String() string {
	switch t {
	case TierPublic:
		return "PUBLIC"
	case TierRegistered:
		return "REGISTERED"
	case TierControlled:
		return "CONTROLLED"
	}
	return "UNKNOWN"
}

// ParseTier parses a canonical tier label.
func ParseTier(s string) (AccessTier, error) {
	switch s {
	case "PUBLIC":
		return TierPublic, nil
	case "REGISTERED":
		return TierRegistered, nil
	case "CONTROLLED":
		return TierControlled, nil
	}
	return 0, errors.Newf("unknown access tier %q", s)
}

// AccessRequest is a request's desired dataset IDs already partitioned by
// catalogue tier, plus the authentication state of the caller. IDs absent
// from the catalogue are dropped by the classifier before this point.
type AccessRequest struct {
	Public        []string
	Registered    []string
	Controlled    []string
	Authenticated bool
}

// AccessDecision is the visible portion of a request: the tier labels
// represented and the visible dataset IDs, ordered PUBLIC, REGISTERED,
// CONTROLLED.
type AccessDecision struct {
	Tiers      []AccessTier
	DatasetIDs []string
}

// ResolveAccess computes what the caller may see.
//
// Public datasets are always visible. Registered datasets are visible only
// to bona-fide researchers. Controlled datasets are visible only with an
// explicit per-dataset grant. A request degrades silently (inaccessible
// tiers are dropped while visible ones remain) and fails only when it asked
// for something beyond public data and none of it was granted: Unauthorized
// without a valid credential, Forbidden with one.
func ResolveAccess(req AccessRequest, profile PermissionProfile) (*AccessDecision, error) {
	visiblePublic := dedupe(req.Public)

	var visibleRegistered []string
	if profile.BonaFide {
		visibleRegistered = dedupe(req.Registered)
	}

	var visibleControlled []string
	for _, id := range dedupe(req.Controlled) {
		if profile.HasDataset(id) {
			visibleControlled = append(visibleControlled, id)
		}
	}

	total := len(visiblePublic) + len(visibleRegistered) + len(visibleControlled)
	if total == 0 && (len(req.Registered) > 0 || len(req.Controlled) > 0) {
		if !req.Authenticated {
			return nil, errors.Wrap(errors.ErrUnauthorized, "no requested datasets are visible without authentication")
		}
		return nil, errors.Wrap(errors.ErrForbidden, "no requested datasets are accessible to this user")
	}

	decision := &AccessDecision{
		DatasetIDs: make([]string, 0, total),
	}
	if len(visiblePublic) > 0 {
		decision.Tiers = append(decision.Tiers, TierPublic)
		decision.DatasetIDs = append(decision.DatasetIDs, visiblePublic...)
	}
	if len(visibleRegistered) > 0 {
		decision.Tiers = append(decision.Tiers, TierRegistered)
		decision.DatasetIDs = append(decision.DatasetIDs, visibleRegistered...)
	}
	if len(visibleControlled) > 0 {
		decision.Tiers = append(decision.Tiers, TierControlled)
		decision.DatasetIDs = append(decision.DatasetIDs, visibleControlled...)
	}

	return decision, nil
}

// dedupe removes duplicate IDs while preserving first-seen order.
func dedupe(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
