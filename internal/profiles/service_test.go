package profiles

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flumers-backend/internal/gateway"
	"flumers-backend/internal/models"
)

func newTestService() *Service {
	return NewService(gateway.NewMemoryStore(nil))
}

func influencerReq(username string, followers int) models.OnboardRequest {
	return models.OnboardRequest{
		Role:        models.RoleInfluencer,
		Username:    username,
		DisplayName: username,
		Category:    "fitness",
		Platform:    "instagram",
		Followers:   followers,
	}
}

func TestOnboard_CreatesProfile(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	profile, err := svc.Onboard(ctx, "uid-1", models.OnboardRequest{
		Role:        models.RoleBrand,
		Username:    "acme",
		DisplayName: "Acme Inc",
	})
	require.NoError(t, err)
	assert.Equal(t, "uid-1", profile.UID)
	assert.Equal(t, models.RoleBrand, profile.Role)
	assert.False(t, profile.CreatedAt.IsZero())

	got, err := svc.Get(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "acme", got.Username)
}

func TestOnboard_Validation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Onboard(ctx, "", influencerReq("someone", 100))
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Onboard(ctx, "uid-1", models.OnboardRequest{
		Role:        "admin",
		Username:    "someone",
		DisplayName: "Someone",
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Onboard(ctx, "uid-1", models.OnboardRequest{
		Role:        models.RoleBrand,
		Username:    "ab",
		DisplayName: "Too Short",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestOnboard_UsernameCollision(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Onboard(ctx, "uid-1", influencerReq("taken", 100))
	require.NoError(t, err)

	_, err = svc.Onboard(ctx, "uid-2", influencerReq("taken", 200))
	assert.ErrorIs(t, err, ErrValidation)

	// Re-onboarding the same uid is rejected as well, not stored twice.
	_, err = svc.Onboard(ctx, "uid-1", influencerReq("fresh", 100))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdate_MergesMutableFields(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Onboard(ctx, "uid-1", influencerReq("creator", 500))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "uid-1", models.UpdateProfileRequest{
		Bio:       "new bio",
		Followers: 750,
	})
	require.NoError(t, err)
	assert.Equal(t, "new bio", updated.Bio)
	assert.Equal(t, 750, updated.Followers)
	// Untouched fields survive the merge.
	assert.Equal(t, "creator", updated.Username)
	assert.Equal(t, "instagram", updated.Platform)
}

func TestUpdate_NotFound(t *testing.T) {
	svc := newTestService()
	_, err := svc.Update(context.Background(), "nobody", models.UpdateProfileRequest{Bio: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetAvatar(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Onboard(ctx, "uid-1", influencerReq("creator", 500))
	require.NoError(t, err)

	require.NoError(t, svc.SetAvatar(ctx, "uid-1", "https://cdn.example.com/a.png"))
	got, err := svc.Get(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a.png", got.AvatarURL)

	assert.ErrorIs(t, svc.SetAvatar(ctx, "nobody", "x"), ErrNotFound)
}

func TestDiscover_FiltersAndOrdering(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Onboard(ctx, "uid-1", influencerReq("alpha", 1000))
	require.NoError(t, err)
	_, err = svc.Onboard(ctx, "uid-2", influencerReq("beta", 5000))
	require.NoError(t, err)

	tiktok := influencerReq("gamma", 9000)
	tiktok.Platform = "tiktok"
	_, err = svc.Onboard(ctx, "uid-3", tiktok)
	require.NoError(t, err)

	// Brands never appear in discovery.
	_, err = svc.Onboard(ctx, "uid-4", models.OnboardRequest{
		Role:        models.RoleBrand,
		Username:    "brandco",
		DisplayName: "Brand Co",
	})
	require.NoError(t, err)

	all, err := svc.Discover(ctx, DiscoverFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "gamma", all[0].Username)
	assert.Equal(t, "beta", all[1].Username)
	assert.Equal(t, "alpha", all[2].Username)

	instagram, err := svc.Discover(ctx, DiscoverFilter{Platform: "instagram"})
	require.NoError(t, err)
	require.Len(t, instagram, 2)

	big, err := svc.Discover(ctx, DiscoverFilter{MinFollowers: 4000})
	require.NoError(t, err)
	require.Len(t, big, 2)
	assert.Equal(t, "gamma", big[0].Username)
}
