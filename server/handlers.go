package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/vireolabs/beacon/auth"
	"github.com/vireolabs/beacon/errors"
	"github.com/vireolabs/beacon/variant"
	"github.com/vireolabs/beacon/version"
)

// queryRequest is the beacon query payload. The positional fields follow
// the zero-means-absent convention of the coordinate normalizer.
type queryRequest struct {
	DatasetIDs     []string `json:"datasetIds"`
	ReferenceName  string   `json:"referenceName"`
	ReferenceBases string   `json:"referenceBases"`
	AlternateBases string   `json:"alternateBases"`
	VariantType    string   `json:"variantType"`
	Start          uint64   `json:"start"`
	End            uint64   `json:"end"`
	StartMin       uint64   `json:"startMin"`
	StartMax       uint64   `json:"startMax"`
	EndMin         uint64   `json:"endMin"`
	EndMax         uint64   `json:"endMax"`
}

type mateResponse struct {
	Chromosome string `json:"chromosome"`
	Position   uint64 `json:"position"`
	Forward    bool   `json:"forward"`
}

type queryResponse struct {
	DatasetIDs     []string      `json:"datasetIds"`
	Tiers          []string      `json:"tiers"`
	ReferenceName  string        `json:"referenceName,omitempty"`
	CoordinateKind string        `json:"coordinateKind,omitempty"`
	VariantType    string        `json:"variantType,omitempty"`
	Mate           *mateResponse `json:"mate,omitempty"`
}

// handleQuery runs the full access pipeline: normalize the variant
// predicate, partition the requested datasets by tier, verify the
// credential and its visas, aggregate permissions, and resolve visibility.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "use POST")
		return
	}

	var req queryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := queryResponse{ReferenceName: req.ReferenceName}

	coords := variant.CoordinateParams{
		Start: req.Start, End: req.End,
		StartMin: req.StartMin, StartMax: req.StartMax,
		EndMin: req.EndMin, EndMax: req.EndMax,
	}
	if coords != (variant.CoordinateParams{}) {
		q, err := variant.NormalizeCoordinates(coords)
		if err != nil {
			writeAccessError(w, err)
			return
		}
		resp.CoordinateKind = q.Kind.String()
	}

	if cls, ok, err := classifyRequest(req); err != nil {
		writeAccessError(w, err)
		return
	} else if ok {
		resp.VariantType = string(cls.Type)
		if cls.Mate != nil {
			resp.Mate = &mateResponse{
				Chromosome: cls.Mate.Chromosome,
				Position:   cls.Mate.Position,
				Forward:    cls.Mate.Forward,
			}
		}
	}

	identity, profile, err := s.authenticate(r.Context(), r)
	if err != nil {
		writeAccessError(w, err)
		return
	}

	public, registered, controlled, err := s.catalog.Classify(r.Context(), req.DatasetIDs)
	if err != nil {
		s.log.Errorw("Dataset classification failed", "error", err)
		writeError(w, http.StatusInternalServerError, "catalogue unavailable")
		return
	}

	decision, err := auth.ResolveAccess(auth.AccessRequest{
		Public:        public,
		Registered:    registered,
		Controlled:    controlled,
		Authenticated: identity.Authenticated,
	}, profile)
	if err != nil {
		writeAccessError(w, err)
		return
	}

	resp.DatasetIDs = decision.DatasetIDs
	resp.Tiers = make([]string, len(decision.Tiers))
	for i, tier := range decision.Tiers {
		resp.Tiers[i] = tier.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

// classifyRequest normalizes the allele/variant-type portion of a query.
// The second return reports whether a variant predicate was present at all.
func classifyRequest(req queryRequest) (variant.Classification, bool, error) {
	switch {
	case req.VariantType != "":
		typ, err := variant.ClassifySymbolic(req.VariantType)
		if err != nil {
			return variant.Classification{}, false, err
		}
		return variant.Classification{Type: typ}, true, nil
	case req.AlternateBases != "":
		cls, err := variant.Classify(req.ReferenceBases, req.AlternateBases)
		if err != nil {
			return variant.Classification{}, false, err
		}
		return cls, true, nil
	}
	return variant.Classification{}, false, nil
}

// authenticate resolves the request's identity and permission profile.
//
// No credential yields the anonymous identity with an empty profile. A
// presented credential must verify (its failure is request-fatal), but visa
// retrieval and validation failures only shrink the profile, never fail the
// request.
func (s *Server) authenticate(ctx context.Context, r *http.Request) (auth.Identity, auth.PermissionProfile, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return auth.Anonymous(), auth.CollectPermissions(nil), nil
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return auth.Identity{}, auth.PermissionProfile{}, errors.Wrap(errors.ErrMalformedCredential, "authorization header is not scheme and credential")
	}
	scheme, raw := parts[0], parts[1]

	identity, err := s.verifier.VerifyCredential(ctx, raw, scheme)
	if err != nil {
		return auth.Identity{}, auth.PermissionProfile{}, err
	}

	tokens, err := s.visas.FetchVisas(ctx, raw)
	if err != nil {
		// An unreachable visa endpoint shrinks permissions to none; it does
		// not fail an otherwise authenticated request.
		s.log.Warnw("Visa retrieval failed", "error", err, "subject", identity.Subject)
		tokens = nil
	}

	validated := s.visas.ValidateAll(ctx, tokens)
	return identity, auth.CollectPermissions(validated), nil
}

type infoResponse struct {
	Name       string        `json:"name"`
	APIVersion string        `json:"apiVersion"`
	Version    string        `json:"version"`
	Datasets   []infoDataset `json:"datasets"`
}

type infoDataset struct {
	ID   string `json:"id"`
	Tier string `json:"tier"`
}

// handleInfo serves the beacon service document.
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	datasets, err := s.catalog.List(r.Context())
	if err != nil {
		s.log.Errorw("Dataset listing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "catalogue unavailable")
		return
	}

	resp := infoResponse{
		Name:       "beacon",
		APIVersion: "v1.0",
		Version:    version.Version,
		Datasets:   make([]infoDataset, len(datasets)),
	}
	for i, d := range datasets {
		resp.Datasets[i] = infoDataset{ID: d.ID, Tier: d.Tier.String()}
	}
	writeJSON(w, http.StatusOK, resp)
}

// decodeJSON decodes a bounded JSON request body, rejecting unknown fields.
func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrInvalidRequest, err.Error())
	}
	return nil
}
