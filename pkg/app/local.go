package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rejonpardenilla/minderal/pkg/node"
	"github.com/rejonpardenilla/minderal/pkg/store"
)

// SelectionDocID holds the last selection of sessions opened with
// WithRememberSelection. It has no parent_id so it never shows in the tree.
const SelectionDocID = "_local/minderal-selection"

const selectedField = "selected"

// ErrLookup is returned by GetOrCreate when the lookup failed for a reason
// other than the document being missing.
var ErrLookup = errors.New("app: lookup failed")

// GetOrCreate returns the document stored under id, creating an empty one
// when it does not exist. Nothing is created when the lookup fails with any
// error other than store.ErrNotFound.
func GetOrCreate(ctx context.Context, db store.Database, id string) (store.Doc, error) {
	doc, err := db.Get(ctx, id)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s: %w", ErrLookup, id, err)
	}
	if err := db.Put(ctx, store.Doc{store.IDField: id}); err != nil {
		return nil, fmt.Errorf("app: create %s: %w", id, err)
	}
	return db.Get(ctx, id)
}

func (s *Session) restoreSelection(ctx context.Context) error {
	doc, err := GetOrCreate(ctx, s.db, SelectionDocID)
	if err != nil {
		return err
	}
	if id, ok := doc[selectedField].(string); ok && id != "" {
		s.view.Select(node.Ref(id))
		s.log.Debug().Str("selected", id).Msg("restored selection")
	}
	return nil
}

func (s *Session) saveSelection(ctx context.Context, p node.Parent) error {
	doc, err := GetOrCreate(ctx, s.db, SelectionDocID)
	if err != nil {
		return err
	}
	if cur, ok := doc[selectedField]; ok && cur == p.Value() {
		return nil
	}
	doc[selectedField] = p.Value()
	return s.db.Put(ctx, doc)
}
