package graph

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/agenthands/trellis/internal/driver"
)

// Upserter writes candidate triples into the store as one bulk
// create-or-update statement. Re-upserting an identical batch leaves the
// graph unchanged: entities are keyed by name, relations by
// (subject, predicate, object), and attribute writes simply overwrite.
type Upserter struct {
	Store *Store
}

func NewUpserter(store *Store) *Upserter {
	return &Upserter{Store: store}
}

func (u *Upserter) Upsert(ctx context.Context, triples []Triple) error {
	if len(triples) == 0 {
		return nil
	}
	if !u.Store.Ready() {
		log.Warn("Graph store unavailable, skipping triple ingestion", "triples", len(triples))
		return nil
	}

	batch := make([]map[string]interface{}, 0, len(triples))
	for _, t := range triples {
		var confidence interface{}
		if t.Confidence != nil {
			confidence = *t.Confidence
		}
		batch = append(batch, map[string]interface{}{
			"subject":    t.Subject,
			"predicate":  t.Predicate,
			"object":     t.Object,
			"confidence": confidence,
			"source_doc": t.SourceDoc,
			"span":       t.Span,
		})
	}

	params := map[string]interface{}{"triples": batch}
	if _, err := u.Store.Driver.ExecuteQuery(ctx, driver.UpsertTriplesQuery, params); err != nil {
		return fmt.Errorf("failed to upsert triples: %w", err)
	}

	return nil
}
