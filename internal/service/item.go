package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rmacedo/presenteio/internal/apperror"
	"github.com/rmacedo/presenteio/internal/claim"
	"github.com/rmacedo/presenteio/internal/model"
)

// Item transition dispatch. Every operation here follows the same shape:
// load the full list, run one transition of the claim state machine against
// the in-memory copy, and persist the rewritten item sequence.
//
// There is no compare-and-swap between the load and the write. Two racing
// transitions on the same list — even on different items — can both read
// the same snapshot and the later write clobbers the earlier one. That is
// the store's last-write-wins contract surfacing; see the race test in
// item_test.go.

// UpsertItem creates (itemID empty) or fully edits an item; owner only.
func (s *ListService) UpsertItem(ctx context.Context, listID, itemID string, actor claim.Actor, req model.ItemRequest) (*model.List, error) {
	if err := validateItem(&req); err != nil {
		return nil, err
	}

	list, err := s.lists.GetByID(ctx, listID)
	if err != nil {
		return nil, err
	}

	id, err := claim.Upsert(list, itemID, req, actor)
	if err != nil {
		return nil, err
	}

	if err := s.persistItems(ctx, list); err != nil {
		return nil, err
	}

	s.logger.Info("item saved",
		slog.String("list", listID),
		slog.String("item", id),
		slog.Bool("created", itemID == ""),
	)
	return list, nil
}

// ClaimItem marks an available item as pledged by the actor.
func (s *ListService) ClaimItem(ctx context.Context, listID, itemID string, actor claim.Actor) (*model.List, error) {
	list, err := s.lists.GetByID(ctx, listID)
	if err != nil {
		return nil, err
	}

	if err := claim.Claim(list, itemID, actor); err != nil {
		return nil, err
	}

	if err := s.persistItems(ctx, list); err != nil {
		return nil, err
	}

	// The claimant's name is deliberately not logged next to the list owner's
	// id; logs shouldn't spoil the surprise either.
	s.logger.Info("item claimed",
		slog.String("list", listID),
		slog.String("item", itemID),
	)
	return list, nil
}

// UnclaimItem releases the actor's own pledge back to available.
func (s *ListService) UnclaimItem(ctx context.Context, listID, itemID string, actor claim.Actor) (*model.List, error) {
	list, err := s.lists.GetByID(ctx, listID)
	if err != nil {
		return nil, err
	}

	if err := claim.Unclaim(list, itemID, actor); err != nil {
		return nil, err
	}

	if err := s.persistItems(ctx, list); err != nil {
		return nil, err
	}

	s.logger.Info("item unclaimed",
		slog.String("list", listID),
		slog.String("item", itemID),
	)
	return list, nil
}

// ResetItem is the owner's unconditional claim reset.
func (s *ListService) ResetItem(ctx context.Context, listID, itemID string, actor claim.Actor) (*model.List, error) {
	list, err := s.lists.GetByID(ctx, listID)
	if err != nil {
		return nil, err
	}

	if err := claim.OwnerReset(list, itemID, actor); err != nil {
		return nil, err
	}

	if err := s.persistItems(ctx, list); err != nil {
		return nil, err
	}

	s.logger.Info("item claim reset",
		slog.String("list", listID),
		slog.String("item", itemID),
		slog.String("owner", actor.ID),
	)
	return list, nil
}

// RemoveItem permanently deletes an item ("already received"); owner only.
func (s *ListService) RemoveItem(ctx context.Context, listID, itemID string, actor claim.Actor) (*model.List, error) {
	list, err := s.lists.GetByID(ctx, listID)
	if err != nil {
		return nil, err
	}

	if err := claim.Remove(list, itemID, actor); err != nil {
		return nil, err
	}

	if err := s.persistItems(ctx, list); err != nil {
		return nil, err
	}

	s.logger.Info("item removed",
		slog.String("list", listID),
		slog.String("item", itemID),
	)
	return list, nil
}

func (s *ListService) persistItems(ctx context.Context, list *model.List) error {
	if err := s.lists.ReplaceItems(ctx, list.ID, list.Items); err != nil {
		s.logger.Error("failed to persist item sequence",
			slog.String("list", list.ID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("persisting items: %w", err)
	}
	s.notify(list)
	return nil
}

func validateItem(req *model.ItemRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return apperror.ValidationFailed("name", "item name is required")
	}
	if len(req.Name) > MaxItemNameLength {
		return apperror.ValidationFailed("name",
			fmt.Sprintf("item name must be %d characters or less", MaxItemNameLength))
	}
	if req.Price < 0 {
		return apperror.ValidationFailed("price", "price must be a non-negative number")
	}
	if req.Priority == "" {
		req.Priority = model.PriorityMedia
	}
	if !req.Priority.Valid() {
		return apperror.ValidationFailed("priority", fmt.Sprintf("unknown priority %q", req.Priority))
	}
	if req.Category != "" && !req.Category.Valid() {
		return apperror.ValidationFailed("category", fmt.Sprintf("unknown category %q", req.Category))
	}
	return nil
}
