package auth

import (
	"sort"
	"strings"
)

// PermissionProfile is the per-request aggregate of a user's validated
// visas: the bona-fide researcher flag plus the set of dataset IDs with an
// explicit controlled-access grant. Computed fresh per request, never
// persisted.
type PermissionProfile struct {
	BonaFide           bool
	controlledDatasets map[string]struct{}
}

// CollectPermissions folds the validated visa list into a permission
// profile with a single scan.
//
// Each ControlledAccessGrants visa contributes the final path segment of its
// value URI as a dataset ID; duplicate and overlapping grants collapse.
// Bona-fide status requires both an AcceptedTermsAndPolicies visa and a
// ResearcherStatus visa; either alone is insufficient.
func CollectPermissions(visas []Visa) PermissionProfile {
	profile := PermissionProfile{
		controlledDatasets: make(map[string]struct{}),
	}

	var acceptedTerms, researcherStatus bool
	for _, visa := range visas {
		switch visa.Assertion.Type {
		case VisaControlledAccessGrants:
			if id := datasetIDFromValue(visa.Assertion.Value); id != "" {
				profile.controlledDatasets[id] = struct{}{}
			}
		case VisaAcceptedTermsAndPolicies:
			acceptedTerms = true
		case VisaResearcherStatus:
			researcherStatus = true
		}
	}
	profile.BonaFide = acceptedTerms && researcherStatus

	return profile
}

// HasDataset reports whether the profile carries a controlled-access grant
// for the given dataset ID.
func (p PermissionProfile) HasDataset(id string) bool {
	_, ok := p.controlledDatasets[id]
	return ok
}

// DatasetIDs returns the granted dataset IDs in sorted order.
func (p PermissionProfile) DatasetIDs() []string {
	ids := make([]string, 0, len(p.controlledDatasets))
	for id := range p.controlledDatasets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// datasetIDFromValue extracts the dataset ID from a grant value URI as its
// final path segment. Trailing slashes are ignored.
func datasetIDFromValue(value string) string {
	trimmed := strings.TrimRight(value, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return trimmed
	}
	return trimmed[idx+1:]
}
