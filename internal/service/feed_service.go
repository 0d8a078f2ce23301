package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"pulse/internal/embedresolver"
	"pulse/internal/media"
	"pulse/internal/middleware"
	"pulse/internal/models"
	"pulse/internal/repository"
	"pulse/internal/validation"
)

// Feed event kinds published after successful writes.
const (
	EventPostCreated   = "post_created"
	EventPostLiked     = "post_liked"
	EventPostCommented = "post_commented"
	EventPostShared    = "post_shared"
	EventPointsGifted  = "points_gifted"
)

// FeedPublisher announces feed mutations so live watchers can re-read the
// snapshot. Implementations must not block the caller.
type FeedPublisher interface {
	PublishFeedEvent(ctx context.Context, kind, postID string)
}

// FeedService implements the points economy and feed mutations on top of the
// repositories. All write paths validate before touching the store, so a
// rejected operation leaves no partial state.
type FeedService struct {
	postRepo  repository.PostRepository
	userRepo  repository.UserRepository
	publisher FeedPublisher
	now       func() time.Time
}

type CreatePostInput struct {
	UserID  string
	Content string
	Image   string
	LinkURL string
	Feeling string
}

type AddCommentInput struct {
	UserID  string
	PostID  string
	Content string
}

type GiftPointsInput struct {
	UserID string
	PostID string
	Amount int
}

type EnsureViewerInput struct {
	UserID   string
	Username string
	Avatar   string
}

func NewFeedService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	publisher FeedPublisher,
) *FeedService {
	return &FeedService{
		postRepo:  postRepo,
		userRepo:  userRepo,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *FeedService) publish(ctx context.Context, kind, postID string) {
	if s.publisher != nil {
		s.publisher.PublishFeedEvent(ctx, kind, postID)
	}
}

// ListFeed returns the full feed, newest first, with the viewer's liked
// flags resolved.
func (s *FeedService) ListFeed(ctx context.Context, viewerID string, limit, offset int) ([]*models.Post, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	return s.postRepo.List(ctx, limit, offset, viewerID)
}

func (s *FeedService) GetPost(ctx context.Context, postID, viewerID string) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, postID, viewerID)
}

// postsToday returns the author's effective daily counter: the stored value
// if the last post fell on today's calendar day, otherwise zero.
func (s *FeedService) postsToday(user *models.User, now time.Time) int {
	if user.LastPostAt == nil || !sameCalendarDay(*user.LastPostAt, now) {
		return 0
	}
	return user.PostsToday
}

// CreatePost validates the submission, applies the posting reward and daily
// cap, and persists the post with its author snapshot.
func (s *FeedService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	posted := s.postsToday(user, now)
	if posted >= DailyPostCap {
		return nil, models.NewValidationError("Daily post limit reached")
	}

	post := &models.Post{
		UserID:  user.ID,
		Author:  user.Snapshot(),
		Content: strings.TrimSpace(in.Content),
		Image:   in.Image,
		Feeling: strings.TrimSpace(in.Feeling),
	}

	if link := strings.TrimSpace(in.LinkURL); link != "" {
		if embed, ok := embedresolver.Resolve(link); ok {
			post.Embed = embed
		} else {
			if _, err := url.ParseRequestURI(link); err != nil {
				return nil, models.NewValidationError("link_url must be a valid URL")
			}
			post.LinkURL = link
		}
	}

	if !post.HasBody() {
		return nil, models.NewValidationError("Post must have content, an image, a link or a feeling")
	}

	if post.Image != "" {
		if _, err := media.ValidateDataURI(post.Image); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}

	// Stale counter from a previous day is folded into this write: the
	// repository increments from zero again.
	if posted != user.PostsToday {
		if _, err := s.userRepo.Update(ctx, user.ID, map[string]interface{}{"posts_today": 0}); err != nil {
			return nil, err
		}
	}

	if err := s.postRepo.CreateWithReward(ctx, post, PostReward); err != nil {
		return nil, err
	}
	middleware.PointsAwarded.WithLabelValues("post_reward").Add(float64(PostReward))

	s.publish(ctx, EventPostCreated, post.ID)
	return s.postRepo.GetByID(ctx, post.ID, user.ID)
}

// GiftPoints spends the viewer's points onto a post. The amount accumulates
// in the post's gift map and leaves circulation; nothing is credited back.
func (s *FeedService) GiftPoints(ctx context.Context, in GiftPointsInput) (*models.Post, error) {
	if in.Amount <= 0 {
		return nil, models.NewValidationError("Gift amount must be positive")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}
	if post.UserID == in.UserID {
		return nil, models.NewValidationError("You cannot gift points to your own post")
	}

	if err := s.postRepo.GiftPoints(ctx, in.UserID, in.PostID, in.Amount); err != nil {
		return nil, err
	}
	middleware.PointsAwarded.WithLabelValues("gift").Add(float64(in.Amount))

	s.publish(ctx, EventPointsGifted, in.PostID)
	return s.postRepo.GetByID(ctx, in.PostID, in.UserID)
}

// ClaimDaily pays the streak reward at most once per calendar day.
func (s *FeedService) ClaimDaily(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if user.LastClaimAt != nil && sameCalendarDay(*user.LastClaimAt, now) {
		return nil, models.NewValidationError("Daily reward already claimed today")
	}

	newStreak := 1
	if user.LastClaimAt != nil && nextCalendarDay(*user.LastClaimAt, now) {
		newStreak = user.DailyStreak + 1
	}
	reward := DailyReward(user.DailyStreak)

	updated, err := s.userRepo.Update(ctx, userID, map[string]interface{}{
		"points":        user.Points + reward,
		"daily_streak":  newStreak,
		"last_claim_at": now,
	})
	if err != nil {
		return nil, err
	}
	middleware.PointsAwarded.WithLabelValues("daily_claim").Add(float64(reward))
	return updated, nil
}

// ToggleLike flips the viewer's like on a post and returns the fresh post.
func (s *FeedService) ToggleLike(ctx context.Context, userID, postID string) (*models.Post, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, userID); err != nil {
		return nil, err
	}

	liked, err := s.postRepo.IsLiked(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	if liked {
		err = s.postRepo.Unlike(ctx, userID, postID)
	} else {
		err = s.postRepo.Like(ctx, userID, postID)
	}
	if err != nil {
		return nil, err
	}

	s.publish(ctx, EventPostLiked, postID)
	return s.postRepo.GetByID(ctx, postID, userID)
}

// AddComment appends a comment with the commenter's snapshot.
func (s *FeedService) AddComment(ctx context.Context, in AddCommentInput) (*models.Post, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Comment content is required")
	}

	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if _, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:  in.PostID,
		UserID:  user.ID,
		Author:  user.Snapshot(),
		Content: content,
	}
	if err := s.postRepo.AddComment(ctx, comment); err != nil {
		return nil, err
	}

	s.publish(ctx, EventPostCommented, in.PostID)
	return s.postRepo.GetByID(ctx, in.PostID, in.UserID)
}

// Share bumps a post's share counter.
func (s *FeedService) Share(ctx context.Context, userID, postID string) (*models.Post, error) {
	if err := s.postRepo.IncrementShares(ctx, postID); err != nil {
		return nil, err
	}
	s.publish(ctx, EventPostShared, postID)
	return s.postRepo.GetByID(ctx, postID, userID)
}

// EnsureViewer bootstraps the viewer's user record on first contact and
// stamps the login time on every call.
func (s *FeedService) EnsureViewer(ctx context.Context, in EnsureViewerInput) (*models.User, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return nil, models.NewValidationError("User ID is required")
	}
	username := strings.TrimSpace(in.Username)
	if username == "" {
		username = "member-" + in.UserID
	} else if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	return s.userRepo.Ensure(ctx, &models.User{
		ID:       in.UserID,
		Username: username,
		Avatar:   in.Avatar,
	})
}

// GetViewer returns the viewer's own record.
func (s *FeedService) GetViewer(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}
