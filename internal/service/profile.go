package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rmacedo/presenteio/internal/apperror"
	"github.com/rmacedo/presenteio/internal/auth"
	"github.com/rmacedo/presenteio/internal/claim"
	"github.com/rmacedo/presenteio/internal/model"
	"github.com/rmacedo/presenteio/internal/repository"
)

const MaxDisplayNameLength = 60

// ProfileService is the identity resolver and the profile store: it maps an
// authenticated principal to a display profile, provisioning one lazily on
// first login, and owns the free-form preference data visitors see.
type ProfileService struct {
	profiles repository.ProfileRepository
	lists    repository.ListRepository
	logger   *slog.Logger
}

func NewProfileService(profiles repository.ProfileRepository, lists repository.ListRepository, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		lists:    lists,
		logger:   logger,
	}
}

// EnsureProfile runs on every sign-in: it returns the existing profile, or
// provisions one from the identity provider's data when absent. An existing
// profile missing a display name adopts the provider's name if there is one;
// otherwise the profile stays incomplete and claim actions remain blocked
// until the user fills the name in.
func (s *ProfileService) EnsureProfile(ctx context.Context, gu *auth.GoogleUser) (*model.Profile, error) {
	if gu == nil || gu.ID == "" {
		return nil, fmt.Errorf("service/profile: identity provider returned no principal")
	}

	profile, err := s.profiles.Get(ctx, gu.ID)
	switch {
	case err == nil:
		if profile.DisplayName == "" && gu.Name != "" {
			profile.DisplayName = gu.Name
			if err := s.profiles.Save(ctx, profile); err != nil {
				return nil, fmt.Errorf("service/profile: adopting provider name: %w", err)
			}
		}
		return profile, nil

	case errors.Is(err, apperror.ErrNotFound):
		profile = &model.Profile{
			ID:          gu.ID,
			DisplayName: gu.Name,
			PhotoURL:    gu.Picture,
		}
		if err := s.profiles.Save(ctx, profile); err != nil {
			return nil, fmt.Errorf("service/profile: provisioning profile: %w", err)
		}
		s.logger.Info("profile provisioned", slog.String("id", profile.ID))
		return profile, nil

	default:
		return nil, fmt.Errorf("service/profile: fetching profile %s: %w", gu.ID, err)
	}
}

// Get returns a profile by principal id. Profiles are publicly readable —
// visitors open the owner's profile to check sizes and preferences.
func (s *ProfileService) Get(ctx context.Context, id string) (*model.Profile, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperror.ValidationFailed("id", "profile id is required")
	}
	return s.profiles.Get(ctx, id)
}

// Actor resolves the principal into a claim.Actor with its display name.
// A missing profile yields an actor with an empty name, which the claim
// state machine turns into the "complete your profile" signal.
func (s *ProfileService) Actor(ctx context.Context, principalID string) (claim.Actor, error) {
	if principalID == "" {
		return claim.Actor{}, nil
	}
	profile, err := s.profiles.Get(ctx, principalID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return claim.Actor{ID: principalID}, nil
		}
		return claim.Actor{}, fmt.Errorf("service/profile: resolving actor %s: %w", principalID, err)
	}
	return claim.Actor{ID: principalID, DisplayName: profile.DisplayName}, nil
}

// Update saves the principal's own profile and, when the display name
// changed, fans the new name out to the denormalized ownerName on every
// owned list. The fan-out is atomic as a batch but independent of the
// profile write: if it fails, the profile save stands, the lists stay
// transiently stale, and the next save retries the rewrite.
func (s *ProfileService) Update(ctx context.Context, principalID string, req model.UpdateProfileRequest) (*model.Profile, error) {
	if principalID == "" {
		return nil, apperror.Unauthenticated("sign in to edit your profile")
	}

	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		return nil, apperror.ValidationFailed("displayName", "display name is required")
	}
	if len(name) > MaxDisplayNameLength {
		return nil, apperror.ValidationFailed("displayName",
			fmt.Sprintf("display name must be %d characters or less", MaxDisplayNameLength))
	}

	profile, err := s.profiles.Get(ctx, principalID)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/profile: fetching profile: %w", err)
	}
	if profile == nil {
		profile = &model.Profile{ID: principalID}
	}

	profile.DisplayName = name
	profile.PhotoURL = strings.TrimSpace(req.PhotoURL)
	profile.Likes = req.Likes
	profile.Dislikes = req.Dislikes
	profile.ShirtSize = strings.TrimSpace(req.ShirtSize)
	profile.PantsSize = strings.TrimSpace(req.PantsSize)
	profile.ShoeSize = strings.TrimSpace(req.ShoeSize)

	if err := s.profiles.Save(ctx, profile); err != nil {
		s.logger.Error("failed to save profile",
			slog.String("id", principalID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/profile: saving profile: %w", err)
	}

	if n, err := s.lists.UpdateOwnerName(ctx, principalID, name); err != nil {
		// Accepted staleness: the profile is saved, the lists catch up on the
		// next successful save.
		s.logger.Error("owner name fan-out failed",
			slog.String("id", principalID),
			slog.String("error", err.Error()),
		)
	} else if n > 0 {
		s.logger.Info("owner name fanned out",
			slog.String("id", principalID),
			slog.Int64("lists", n),
		)
	}

	return profile, nil
}
