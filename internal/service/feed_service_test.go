package service

import (
	"context"
	"testing"
	"time"

	"pulse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createWithRewardFn func(context.Context, *models.Post, int) error
	getByIDFn          func(context.Context, string, string) (*models.Post, error)
	listFn             func(context.Context, int, int, string) ([]*models.Post, error)
	isLikedFn          func(context.Context, string, string) (bool, error)
	likeFn             func(context.Context, string, string) error
	unlikeFn           func(context.Context, string, string) error
	incrementSharesFn  func(context.Context, string) error
	addCommentFn       func(context.Context, *models.Comment) error
	giftPointsFn       func(context.Context, string, string, int) error
}

func (s *postRepoStub) CreateWithReward(ctx context.Context, post *models.Post, reward int) error {
	return s.createWithRewardFn(ctx, post, reward)
}
func (s *postRepoStub) GetByID(ctx context.Context, id, viewerID string) (*models.Post, error) {
	return s.getByIDFn(ctx, id, viewerID)
}
func (s *postRepoStub) List(ctx context.Context, limit, offset int, viewerID string) ([]*models.Post, error) {
	return s.listFn(ctx, limit, offset, viewerID)
}
func (s *postRepoStub) IsLiked(ctx context.Context, userID, postID string) (bool, error) {
	return s.isLikedFn(ctx, userID, postID)
}
func (s *postRepoStub) Like(ctx context.Context, userID, postID string) error {
	return s.likeFn(ctx, userID, postID)
}
func (s *postRepoStub) Unlike(ctx context.Context, userID, postID string) error {
	return s.unlikeFn(ctx, userID, postID)
}
func (s *postRepoStub) IncrementShares(ctx context.Context, postID string) error {
	return s.incrementSharesFn(ctx, postID)
}
func (s *postRepoStub) AddComment(ctx context.Context, comment *models.Comment) error {
	return s.addCommentFn(ctx, comment)
}
func (s *postRepoStub) GiftPoints(ctx context.Context, fromUserID, postID string, amount int) error {
	return s.giftPointsFn(ctx, fromUserID, postID, amount)
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn func(context.Context, string) (*models.User, error)
	ensureFn  func(context.Context, *models.User) (*models.User, error)
	updateFn  func(context.Context, string, map[string]interface{}) (*models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) Ensure(ctx context.Context, user *models.User) (*models.User, error) {
	return s.ensureFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, id string, updates map[string]interface{}) (*models.User, error) {
	return s.updateFn(ctx, id, updates)
}

type publisherSpy struct {
	events []string
}

func (p *publisherSpy) PublishFeedEvent(_ context.Context, kind, postID string) {
	p.events = append(p.events, kind+":"+postID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createWithRewardFn: func(_ context.Context, p *models.Post, _ int) error {
			p.ID = "new-post"
			return nil
		},
		getByIDFn: func(_ context.Context, id, _ string) (*models.Post, error) {
			return &models.Post{ID: id, UserID: "author"}, nil
		},
		listFn: func(_ context.Context, _, _ int, _ string) ([]*models.Post, error) {
			return nil, nil
		},
		isLikedFn:         func(_ context.Context, _, _ string) (bool, error) { return false, nil },
		likeFn:            func(_ context.Context, _, _ string) error { return nil },
		unlikeFn:          func(_ context.Context, _, _ string) error { return nil },
		incrementSharesFn: func(_ context.Context, _ string) error { return nil },
		addCommentFn:      func(_ context.Context, _ *models.Comment) error { return nil },
		giftPointsFn:      func(_ context.Context, _, _ string, _ int) error { return nil },
	}
}

func noopUserRepo(user *models.User) *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, _ string) (*models.User, error) { return user, nil },
		ensureFn:  func(_ context.Context, u *models.User) (*models.User, error) { return u, nil },
		updateFn: func(_ context.Context, _ string, _ map[string]interface{}) (*models.User, error) {
			return user, nil
		},
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok, "expected AppError, got %T", err)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestDailyReward(t *testing.T) {
	tests := []struct {
		streak int
		want   int
	}{
		{0, 10},
		{1, 20},
		{5, 60},
		{6, 70},
		{7, 70},
		{40, 70},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DailyReward(tt.streak), "streak %d", tt.streak)
	}
}

func TestCreatePost_RewardsAndPublishes(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	user := &models.User{ID: "u1", Username: "ada", PostsToday: 0}

	postRepo := noopPostRepo()
	var gotReward int
	postRepo.createWithRewardFn = func(_ context.Context, p *models.Post, reward int) error {
		p.ID = "p1"
		gotReward = reward
		return nil
	}
	pub := &publisherSpy{}
	svc := NewFeedService(postRepo, noopUserRepo(user), pub)
	svc.now = fixedClock(now)

	post, err := svc.CreatePost(context.Background(), CreatePostInput{UserID: "u1", Content: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "p1", post.ID)
	assert.Equal(t, PostReward, gotReward)
	assert.Equal(t, []string{"post_created:p1"}, pub.events)
}

func TestCreatePost_DailyCap(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	lastPost := now.Add(-time.Hour)
	user := &models.User{ID: "u1", Username: "ada", PostsToday: DailyPostCap, LastPostAt: &lastPost}

	postRepo := noopPostRepo()
	created := false
	postRepo.createWithRewardFn = func(_ context.Context, _ *models.Post, _ int) error {
		created = true
		return nil
	}
	svc := NewFeedService(postRepo, noopUserRepo(user), nil)
	svc.now = fixedClock(now)

	_, err := svc.CreatePost(context.Background(), CreatePostInput{UserID: "u1", Content: "one too many"})
	assertValidationError(t, err)
	assert.False(t, created, "capped post must not reach the store")
}

func TestCreatePost_CapResetsOnNewDay(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	user := &models.User{ID: "u1", Username: "ada", PostsToday: DailyPostCap, LastPostAt: &yesterday}

	postRepo := noopPostRepo()
	userRepo := noopUserRepo(user)
	var resetFields map[string]interface{}
	userRepo.updateFn = func(_ context.Context, _ string, updates map[string]interface{}) (*models.User, error) {
		resetFields = updates
		return user, nil
	}
	svc := NewFeedService(postRepo, userRepo, nil)
	svc.now = fixedClock(now)

	_, err := svc.CreatePost(context.Background(), CreatePostInput{UserID: "u1", Content: "fresh day"})
	require.NoError(t, err)
	require.NotNil(t, resetFields, "stale daily counter should be reset")
	assert.Equal(t, 0, resetFields["posts_today"])
}

func TestCreatePost_EmptyBody(t *testing.T) {
	svc := NewFeedService(noopPostRepo(), noopUserRepo(&models.User{ID: "u1"}), nil)

	_, err := svc.CreatePost(context.Background(), CreatePostInput{UserID: "u1", Content: "   "})
	assertValidationError(t, err)
}

func TestCreatePost_ResolvesEmbed(t *testing.T) {
	postRepo := noopPostRepo()
	var created *models.Post
	postRepo.createWithRewardFn = func(_ context.Context, p *models.Post, _ int) error {
		p.ID = "p1"
		created = p
		return nil
	}
	svc := NewFeedService(postRepo, noopUserRepo(&models.User{ID: "u1"}), nil)

	_, err := svc.CreatePost(context.Background(), CreatePostInput{
		UserID:  "u1",
		LinkURL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	})
	require.NoError(t, err)
	require.NotNil(t, created.Embed)
	assert.Equal(t, models.EmbedYouTube, created.Embed.Type)
	assert.Equal(t, "dQw4w9WgXcQ", created.Embed.VideoID)
	assert.Empty(t, created.LinkURL, "resolved links are stored as embeds")
}

func TestCreatePost_PlainLinkKept(t *testing.T) {
	postRepo := noopPostRepo()
	var created *models.Post
	postRepo.createWithRewardFn = func(_ context.Context, p *models.Post, _ int) error {
		p.ID = "p1"
		created = p
		return nil
	}
	svc := NewFeedService(postRepo, noopUserRepo(&models.User{ID: "u1"}), nil)

	_, err := svc.CreatePost(context.Background(), CreatePostInput{
		UserID:  "u1",
		LinkURL: "https://example.com/article",
	})
	require.NoError(t, err)
	assert.Nil(t, created.Embed)
	assert.Equal(t, "https://example.com/article", created.LinkURL)
}

func TestGiftPoints_Validation(t *testing.T) {
	svc := NewFeedService(noopPostRepo(), noopUserRepo(&models.User{ID: "u1"}), nil)
	ctx := context.Background()

	_, err := svc.GiftPoints(ctx, GiftPointsInput{UserID: "u1", PostID: "p1", Amount: 0})
	assertValidationError(t, err)

	_, err = svc.GiftPoints(ctx, GiftPointsInput{UserID: "u1", PostID: "p1", Amount: -5})
	assertValidationError(t, err)
}

func TestGiftPoints_SelfGiftRejected(t *testing.T) {
	postRepo := noopPostRepo()
	postRepo.getByIDFn = func(_ context.Context, id, _ string) (*models.Post, error) {
		return &models.Post{ID: id, UserID: "u1"}, nil
	}
	gifted := false
	postRepo.giftPointsFn = func(_ context.Context, _, _ string, _ int) error {
		gifted = true
		return nil
	}
	svc := NewFeedService(postRepo, noopUserRepo(&models.User{ID: "u1"}), nil)

	_, err := svc.GiftPoints(context.Background(), GiftPointsInput{UserID: "u1", PostID: "p1", Amount: 10})
	assertValidationError(t, err)
	assert.False(t, gifted)
}

func TestGiftPoints_Success(t *testing.T) {
	postRepo := noopPostRepo()
	var gotFrom, gotPost string
	var gotAmount int
	postRepo.giftPointsFn = func(_ context.Context, from, post string, amount int) error {
		gotFrom, gotPost, gotAmount = from, post, amount
		return nil
	}
	pub := &publisherSpy{}
	svc := NewFeedService(postRepo, noopUserRepo(&models.User{ID: "u2"}), pub)

	_, err := svc.GiftPoints(context.Background(), GiftPointsInput{UserID: "u2", PostID: "p1", Amount: 15})
	require.NoError(t, err)
	assert.Equal(t, "u2", gotFrom)
	assert.Equal(t, "p1", gotPost)
	assert.Equal(t, 15, gotAmount)
	assert.Equal(t, []string{"points_gifted:p1"}, pub.events)
}

func TestClaimDaily_FirstClaim(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	user := &models.User{ID: "u1", Points: 0, DailyStreak: 0}

	userRepo := noopUserRepo(user)
	var gotUpdates map[string]interface{}
	userRepo.updateFn = func(_ context.Context, _ string, updates map[string]interface{}) (*models.User, error) {
		gotUpdates = updates
		return user, nil
	}
	svc := NewFeedService(noopPostRepo(), userRepo, nil)
	svc.now = fixedClock(now)

	_, err := svc.ClaimDaily(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 10, gotUpdates["points"])
	assert.Equal(t, 1, gotUpdates["daily_streak"])
	assert.Equal(t, now, gotUpdates["last_claim_at"])
}

func TestClaimDaily_SameDayRejected(t *testing.T) {
	now := time.Date(2026, 3, 14, 23, 50, 0, 0, time.UTC)
	claimed := time.Date(2026, 3, 14, 0, 10, 0, 0, time.UTC)
	user := &models.User{ID: "u1", DailyStreak: 2, LastClaimAt: &claimed}

	svc := NewFeedService(noopPostRepo(), noopUserRepo(user), nil)
	svc.now = fixedClock(now)

	_, err := svc.ClaimDaily(context.Background(), "u1")
	assertValidationError(t, err)
}

func TestClaimDaily_ConsecutiveDayExtendsStreak(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 5, 0, 0, time.UTC)
	claimed := time.Date(2026, 3, 14, 23, 55, 0, 0, time.UTC)
	user := &models.User{ID: "u1", Points: 100, DailyStreak: 3, LastClaimAt: &claimed}

	userRepo := noopUserRepo(user)
	var gotUpdates map[string]interface{}
	userRepo.updateFn = func(_ context.Context, _ string, updates map[string]interface{}) (*models.User, error) {
		gotUpdates = updates
		return user, nil
	}
	svc := NewFeedService(noopPostRepo(), userRepo, nil)
	svc.now = fixedClock(now)

	_, err := svc.ClaimDaily(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, gotUpdates["daily_streak"])
	assert.Equal(t, 100+40, gotUpdates["points"], "reward comes from the pre-claim streak")
}

func TestClaimDaily_GapResetsStreak(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	claimed := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	user := &models.User{ID: "u1", Points: 0, DailyStreak: 6, LastClaimAt: &claimed}

	userRepo := noopUserRepo(user)
	var gotUpdates map[string]interface{}
	userRepo.updateFn = func(_ context.Context, _ string, updates map[string]interface{}) (*models.User, error) {
		gotUpdates = updates
		return user, nil
	}
	svc := NewFeedService(noopPostRepo(), userRepo, nil)
	svc.now = fixedClock(now)

	_, err := svc.ClaimDaily(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, gotUpdates["daily_streak"])
	assert.Equal(t, 70, gotUpdates["points"], "streak 6 pays the capped reward")
}

func TestToggleLike(t *testing.T) {
	postRepo := noopPostRepo()
	liked := false
	postRepo.isLikedFn = func(_ context.Context, _, _ string) (bool, error) { return liked, nil }
	postRepo.likeFn = func(_ context.Context, _, _ string) error {
		liked = true
		return nil
	}
	postRepo.unlikeFn = func(_ context.Context, _, _ string) error {
		liked = false
		return nil
	}
	pub := &publisherSpy{}
	svc := NewFeedService(postRepo, noopUserRepo(&models.User{ID: "u1"}), pub)
	ctx := context.Background()

	_, err := svc.ToggleLike(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.True(t, liked)

	_, err = svc.ToggleLike(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.False(t, liked)

	assert.Equal(t, []string{"post_liked:p1", "post_liked:p1"}, pub.events)
}

func TestAddComment(t *testing.T) {
	user := &models.User{ID: "u1", Username: "ada", Avatar: "a.png"}
	postRepo := noopPostRepo()
	var saved *models.Comment
	postRepo.addCommentFn = func(_ context.Context, c *models.Comment) error {
		saved = c
		return nil
	}
	svc := NewFeedService(postRepo, noopUserRepo(user), nil)

	_, err := svc.AddComment(context.Background(), AddCommentInput{UserID: "u1", PostID: "p1", Content: " hello "})
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "hello", saved.Content)
	assert.Equal(t, "ada", saved.Author.Username)

	_, err = svc.AddComment(context.Background(), AddCommentInput{UserID: "u1", PostID: "p1", Content: "  "})
	assertValidationError(t, err)
}

func TestEnsureViewer(t *testing.T) {
	userRepo := noopUserRepo(nil)
	var ensured *models.User
	userRepo.ensureFn = func(_ context.Context, u *models.User) (*models.User, error) {
		ensured = u
		return u, nil
	}
	svc := NewFeedService(noopPostRepo(), userRepo, nil)
	ctx := context.Background()

	_, err := svc.EnsureViewer(ctx, EnsureViewerInput{UserID: "u1", Username: "ada"})
	require.NoError(t, err)
	assert.Equal(t, "ada", ensured.Username)

	_, err = svc.EnsureViewer(ctx, EnsureViewerInput{UserID: "u2"})
	require.NoError(t, err)
	assert.Equal(t, "member-u2", ensured.Username)

	_, err = svc.EnsureViewer(ctx, EnsureViewerInput{UserID: "  "})
	assertValidationError(t, err)

	_, err = svc.EnsureViewer(ctx, EnsureViewerInput{UserID: "u3", Username: "has space"})
	assertValidationError(t, err)

	_, err = svc.EnsureViewer(ctx, EnsureViewerInput{UserID: "u4", Username: "admin"})
	assertValidationError(t, err)
}
