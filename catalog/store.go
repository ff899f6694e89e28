// Package catalog is the dataset catalogue: immutable reference data mapping
// dataset IDs to access tiers. The classifier partitions a request's dataset
// IDs by tier before access resolution; IDs absent from the catalogue are
// silently dropped.
package catalog

import (
	"context"
	"database/sql"
	"strings"

	"go.uber.org/zap"

	"github.com/vireolabs/beacon/auth"
	"github.com/vireolabs/beacon/errors"
)

// Dataset is a catalogue entry.
type Dataset struct {
	ID          string
	Tier        auth.AccessTier
	Description string
}

// Store provides catalogue access over SQLite.
type Store struct {
	db  *sql.DB
	log *zap.SugaredLogger
}

// NewStore creates a catalogue store.
func NewStore(db *sql.DB, log *zap.SugaredLogger) *Store {
	return &Store{db: db, log: log}
}

// Classify partitions the requested dataset IDs by catalogue tier,
// preserving request order within each partition. Unknown IDs are dropped.
// An empty request classifies to the whole catalogue.
func (s *Store) Classify(ctx context.Context, ids []string) (public, registered, controlled []string, err error) {
	tiers, err := s.tiersFor(ctx, ids)
	if err != nil {
		return nil, nil, nil, err
	}

	if len(ids) == 0 {
		// No explicit selection: the request targets every catalogued dataset.
		all, err := s.List(ctx)
		if err != nil {
			return nil, nil, nil, err
		}
		ids = make([]string, 0, len(all))
		for _, d := range all {
			ids = append(ids, d.ID)
			tiers[d.ID] = d.Tier
		}
	}

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		tier, ok := tiers[id]
		if !ok {
			continue // unknown dataset, dropped silently
		}
		switch tier {
		case auth.TierPublic:
			public = append(public, id)
		case auth.TierRegistered:
			registered = append(registered, id)
		case auth.TierControlled:
			controlled = append(controlled, id)
		}
	}
	return public, registered, controlled, nil
}

// tiersFor looks up the tier of each requested ID.
func (s *Store) tiersFor(ctx context.Context, ids []string) (map[string]auth.AccessTier, error) {
	tiers := make(map[string]auth.AccessTier, len(ids))
	if len(ids) == 0 {
		return tiers, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	query := "SELECT id, tier FROM datasets WHERE id IN (" + placeholders[:len(placeholders)-1] + ")"
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query dataset tiers")
	}
	defer rows.Close()

	for rows.Next() {
		var id, tierLabel string
		if err := rows.Scan(&id, &tierLabel); err != nil {
			return nil, errors.Wrap(err, "scan dataset row")
		}
		tier, err := auth.ParseTier(tierLabel)
		if err != nil {
			// Violates the partition invariant; the CHECK constraint should
			// make this unreachable.
			return nil, errors.Wrapf(err, "dataset %s has invalid tier", id)
		}
		tiers[id] = tier
	}
	return tiers, rows.Err()
}

// List returns all catalogued datasets ordered by ID.
func (s *Store) List(ctx context.Context) ([]Dataset, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, tier, description FROM datasets ORDER BY id")
	if err != nil {
		return nil, errors.Wrap(err, "list datasets")
	}
	defer rows.Close()

	var datasets []Dataset
	for rows.Next() {
		var d Dataset
		var tierLabel string
		if err := rows.Scan(&d.ID, &tierLabel, &d.Description); err != nil {
			return nil, errors.Wrap(err, "scan dataset row")
		}
		d.Tier, err = auth.ParseTier(tierLabel)
		if err != nil {
			return nil, errors.Wrapf(err, "dataset %s has invalid tier", d.ID)
		}
		datasets = append(datasets, d)
	}
	return datasets, rows.Err()
}

// Upsert inserts or replaces a catalogue entry.
func (s *Store) Upsert(ctx context.Context, d Dataset) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO datasets (id, tier, description) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET tier = excluded.tier, description = excluded.description`,
		d.ID, d.Tier.String(), d.Description,
	)
	if err != nil {
		return errors.Wrapf(err, "upsert dataset %s", d.ID)
	}
	if s.log != nil {
		s.log.Debugw("Dataset upserted", "id", d.ID, "tier", d.Tier.String())
	}
	return nil
}
