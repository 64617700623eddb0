// Package repository defines the storage interfaces the services program
// against. The sqlite subpackage provides the concrete implementation;
// tests substitute in-memory mocks.
package repository

import (
	"context"

	"github.com/rmacedo/presenteio/internal/model"
)

// ListRepository stores gift lists. A list is a single document: its item
// sequence travels as one unit and is rewritten whole by ReplaceItems.
type ListRepository interface {
	Create(ctx context.Context, list *model.List) error
	GetByID(ctx context.Context, id string) (*model.List, error)
	// GetByCode expects an already-normalized (upper-cased) code.
	GetByCode(ctx context.Context, code string) (*model.List, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.List, error)
	Rename(ctx context.Context, id, name string) error
	// ReplaceItems persists the full rewritten item sequence. There is no
	// compare-and-swap: the last writer wins at the sequence level.
	ReplaceItems(ctx context.Context, id string, items []model.Item) error
	Delete(ctx context.Context, id string) error
	CodeExists(ctx context.Context, code string) (bool, error)
	// UpdateOwnerName rewrites the denormalized ownerName on every list the
	// principal owns, atomically as a batch, returning how many changed.
	UpdateOwnerName(ctx context.Context, ownerID, name string) (int64, error)
}

// ProfileRepository stores owner profiles keyed by principal ID.
type ProfileRepository interface {
	Get(ctx context.Context, id string) (*model.Profile, error)
	Save(ctx context.Context, profile *model.Profile) error
}
