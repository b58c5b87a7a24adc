package profiles

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"flumers-backend/internal/gateway"
	"flumers-backend/internal/models"
)

// Collection is the document-store collection profiles live in, keyed by
// the auth subject uid.
const Collection = "profiles"

var (
	ErrNotFound     = errors.New("profile not found")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrPersistence  = errors.New("persistence failure")
)

type Service struct {
	store    gateway.DocumentStore
	validate *validator.Validate
	now      func() time.Time
}

func NewService(store gateway.DocumentStore) *Service {
	return &Service{
		store:    store,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Onboard creates the actor's profile with a fixed role. Usernames are
// unique across all profiles; a collision is a validation failure, not a
// storage error.
func (s *Service) Onboard(ctx context.Context, actor string, req models.OnboardRequest) (models.Profile, error) {
	if actor == "" {
		return models.Profile{}, ErrUnauthorized
	}
	if err := s.validate.Struct(req); err != nil {
		return models.Profile{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	taken, err := s.usernameTaken(ctx, req.Username, actor)
	if err != nil {
		return models.Profile{}, err
	}
	if taken {
		return models.Profile{}, fmt.Errorf("%w: username %q is already taken", ErrValidation, req.Username)
	}

	profile := models.Profile{
		UID:         actor,
		Role:        req.Role,
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		Category:    req.Category,
		Platform:    req.Platform,
		Followers:   req.Followers,
		CreatedAt:   s.now().UTC(),
	}

	doc, err := gateway.Encode(profile)
	if err != nil {
		return models.Profile{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if err := s.store.Create(ctx, Collection, actor, doc); err != nil {
		if errors.Is(err, gateway.ErrAlreadyExists) {
			return models.Profile{}, fmt.Errorf("%w: profile already exists", ErrValidation)
		}
		return models.Profile{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	logrus.WithFields(logrus.Fields{
		"uid":      actor,
		"role":     profile.Role,
		"username": profile.Username,
	}).Info("profile onboarded")

	return profile, nil
}

// Get returns one profile by uid.
func (s *Service) Get(ctx context.Context, uid string) (models.Profile, error) {
	doc, err := s.store.Get(ctx, Collection, uid)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return models.Profile{}, ErrNotFound
		}
		return models.Profile{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	var profile models.Profile
	if err := gateway.Decode(doc, &profile); err != nil {
		return models.Profile{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return profile, nil
}

// Update merges mutable profile fields. Role and username are fixed after
// onboarding.
func (s *Service) Update(ctx context.Context, actor string, req models.UpdateProfileRequest) (models.Profile, error) {
	if actor == "" {
		return models.Profile{}, ErrUnauthorized
	}
	if err := s.validate.Struct(req); err != nil {
		return models.Profile{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	partial := gateway.Document{}
	if req.DisplayName != "" {
		partial["displayName"] = req.DisplayName
	}
	if req.Bio != "" {
		partial["bio"] = req.Bio
	}
	if req.Category != "" {
		partial["category"] = req.Category
	}
	if req.Platform != "" {
		partial["platform"] = req.Platform
	}
	if req.Followers > 0 {
		partial["followers"] = req.Followers
	}
	if len(partial) == 0 {
		return s.Get(ctx, actor)
	}

	if err := s.store.Update(ctx, Collection, actor, partial); err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return models.Profile{}, ErrNotFound
		}
		return models.Profile{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return s.Get(ctx, actor)
}

// SetAvatar records an uploaded avatar URL on the actor's profile.
func (s *Service) SetAvatar(ctx context.Context, actor, avatarURL string) error {
	if err := s.store.Update(ctx, Collection, actor, gateway.Document{"avatarUrl": avatarURL}); err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

// DiscoverFilter narrows the influencer listing. Category and platform are
// equality filters pushed down to the store; the follower floor is applied
// here since the store only supports equality.
type DiscoverFilter struct {
	Category     string
	Platform     string
	MinFollowers int
}

// Discover lists influencer profiles matching the filter, most-followed
// first.
func (s *Service) Discover(ctx context.Context, filter DiscoverFilter) ([]models.Profile, error) {
	where := []gateway.Where{{Field: "role", Value: models.RoleInfluencer}}
	if filter.Category != "" {
		where = append(where, gateway.Where{Field: "category", Value: filter.Category})
	}
	if filter.Platform != "" {
		where = append(where, gateway.Where{Field: "platform", Value: filter.Platform})
	}

	docs, err := s.store.Query(ctx, Collection, where...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	out := make([]models.Profile, 0, len(docs))
	for _, doc := range docs {
		var p models.Profile
		if err := gateway.Decode(doc, &p); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
		}
		if p.Followers < filter.MinFollowers {
			continue
		}
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Followers == out[j].Followers {
			return out[i].Username < out[j].Username
		}
		return out[i].Followers > out[j].Followers
	})
	return out, nil
}

func (s *Service) usernameTaken(ctx context.Context, username, selfUID string) (bool, error) {
	docs, err := s.store.Query(ctx, Collection, gateway.Where{Field: "username", Value: username})
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	for _, doc := range docs {
		var p models.Profile
		if err := gateway.Decode(doc, &p); err != nil {
			continue
		}
		if p.UID != selfUID {
			return true, nil
		}
	}
	return false, nil
}
