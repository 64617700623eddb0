// Package service contains the business logic layer: the list registry, the
// item transition dispatch and the profile store. Services validate input,
// enforce ownership rules through the claim state machine, and return domain
// errors; they know nothing about HTTP.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rmacedo/presenteio/internal/apperror"
	"github.com/rmacedo/presenteio/internal/claim"
	"github.com/rmacedo/presenteio/internal/code"
	"github.com/rmacedo/presenteio/internal/model"
	"github.com/rmacedo/presenteio/internal/repository"
)

const (
	MaxListNameLength = 80
	MaxItemNameLength = 120

	// codeAttempts bounds the regenerate-on-collision loop. With ~17.5M
	// possible codes, hitting five collisions in a row means something else
	// is wrong.
	codeAttempts = 5
)

// Broadcaster fans an accepted write out to every live subscriber of the
// list. The realtime hub implements it; a nil broadcaster disables fan-out.
// ListDeleted is terminal: subscribers of the dead list get one last
// snapshot and their sessions end.
type Broadcaster interface {
	ListChanged(list *model.List)
	ListDeleted(list *model.List)
}

// ListService is the list registry plus the write path for item transitions.
type ListService struct {
	lists     repository.ListRepository
	broadcast Broadcaster
	logger    *slog.Logger
}

func NewListService(lists repository.ListRepository, broadcast Broadcaster, logger *slog.Logger) *ListService {
	return &ListService{
		lists:     lists,
		broadcast: broadcast,
		logger:    logger,
	}
}

// Create makes a new empty list for the owner, drawing a shareable code and
// regenerating on collision.
func (s *ListService) Create(ctx context.Context, owner claim.Actor, req model.CreateListRequest) (*model.List, error) {
	if !owner.Identified() {
		return nil, apperror.Unauthenticated("sign in to create a list")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "list name is required")
	}
	if len(name) > MaxListNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("list name must be %d characters or less", MaxListNameLength))
	}

	color := req.Color
	if color == "" {
		color = model.DefaultColor
	}
	if !color.Valid() {
		return nil, apperror.ValidationFailed("color", fmt.Sprintf("unknown color %q", color))
	}

	listCode, err := s.drawCode(ctx)
	if err != nil {
		return nil, err
	}

	list := &model.List{
		Code:      listCode,
		Name:      name,
		Color:     color,
		OwnerID:   owner.ID,
		OwnerName: owner.DisplayName,
		Items:     []model.Item{},
	}
	if err := s.lists.Create(ctx, list); err != nil {
		s.logger.Error("failed to create list",
			slog.String("owner", owner.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating list: %w", err)
	}

	s.logger.Info("list created",
		slog.String("id", list.ID),
		slog.String("code", list.Code),
		slog.String("owner", owner.ID),
	)
	return list, nil
}

// drawCode draws codes until one is unused. Codes are checked before insert;
// the UNIQUE constraint on the column is the backstop for the residual race.
func (s *ListService) drawCode(ctx context.Context) (string, error) {
	for i := 0; i < codeAttempts; i++ {
		candidate := code.New()
		exists, err := s.lists.CodeExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("checking code availability: %w", err)
		}
		if !exists {
			return candidate, nil
		}
		s.logger.Warn("code collision, regenerating", slog.String("code", candidate))
	}
	return "", apperror.Conflict("could not find a free list code; try again")
}

// Rename changes the list's name; owner only.
func (s *ListService) Rename(ctx context.Context, listID string, actor claim.Actor, req model.RenameListRequest) (*model.List, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "list name is required")
	}
	if len(name) > MaxListNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("list name must be %d characters or less", MaxListNameLength))
	}

	list, err := s.ownedList(ctx, listID, actor)
	if err != nil {
		return nil, err
	}

	if err := s.lists.Rename(ctx, listID, name); err != nil {
		return nil, fmt.Errorf("renaming list: %w", err)
	}
	list.Name = name

	s.logger.Info("list renamed", slog.String("id", listID))
	s.notify(list)
	return list, nil
}

// Delete removes the whole list document irreversibly; owner only. Live
// subscriptions on the list's code get a terminal snapshot and are closed.
func (s *ListService) Delete(ctx context.Context, listID string, actor claim.Actor) error {
	list, err := s.ownedList(ctx, listID, actor)
	if err != nil {
		return err
	}

	if err := s.lists.Delete(ctx, listID); err != nil {
		return fmt.Errorf("deleting list: %w", err)
	}

	s.logger.Info("list deleted", slog.String("id", listID), slog.String("owner", actor.ID))
	if s.broadcast != nil {
		s.broadcast.ListDeleted(list)
	}
	return nil
}

// FindByCode resolves a shareable code, case-insensitively, to its list.
func (s *ListService) FindByCode(ctx context.Context, rawCode string) (*model.List, error) {
	normalized := code.Normalize(rawCode)
	if !code.Valid(normalized) {
		return nil, apperror.CodeNotFound(rawCode)
	}
	return s.lists.GetByCode(ctx, normalized)
}

// ListsByOwner returns every list the principal owns.
func (s *ListService) ListsByOwner(ctx context.Context, ownerID string) ([]model.List, error) {
	if ownerID == "" {
		return nil, apperror.Unauthenticated("sign in to see your lists")
	}
	lists, err := s.lists.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing lists: %w", err)
	}
	return lists, nil
}

// ownedList loads a list and verifies the actor owns it.
func (s *ListService) ownedList(ctx context.Context, listID string, actor claim.Actor) (*model.List, error) {
	list, err := s.lists.GetByID(ctx, listID)
	if err != nil {
		return nil, err
	}
	if !actor.IsOwner(list) {
		return nil, apperror.Forbidden("only the list owner can do that")
	}
	return list, nil
}

func (s *ListService) notify(list *model.List) {
	if s.broadcast != nil {
		s.broadcast.ListChanged(list)
	}
}
