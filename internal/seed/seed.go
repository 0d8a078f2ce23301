package seed

import (
	"fmt"
	"log"

	"pulse/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	// MaxDays is how far back post timestamps are spread.
	MaxDays int
}

var postTypeWeights = []struct {
	postType string
	weight   int
}{
	{PostTypeText, 40},
	{PostTypeImage, 25},
	{PostTypeVideo, 15},
	{PostTypeLink, 10},
	{PostTypeFeeling, 10},
}

// Seed populates the database with demo users, posts, comments, likes and
// gifts so the feed renders with realistic variety.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Seeding %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := ClearAll(db); err != nil {
			log.Printf("Warning: could not clear existing data: %v", err)
		}
	}

	f := NewFactory(db, opts)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("%d users created", len(users))

	if len(users) == 0 {
		return nil
	}

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := users[f.rng.Intn(len(users))]
		post, err := f.CreatePostWithTemplate(author, f.pickPostType())
		if err != nil {
			return fmt.Errorf("create post: %w", err)
		}
		posts = append(posts, post)
	}
	log.Printf("%d posts created", len(posts))

	if err := f.decorate(users, posts); err != nil {
		return err
	}

	log.Println("Seeding complete")
	return nil
}

// pickPostType draws a post body type by weight.
func (f *Factory) pickPostType() string {
	total := 0
	for _, w := range postTypeWeights {
		total += w.weight
	}
	n := f.rng.Intn(total)
	for _, w := range postTypeWeights {
		if n < w.weight {
			return w.postType
		}
		n -= w.weight
	}
	return PostTypeText
}

// decorate spreads comments, likes and gifts over the seeded posts.
func (f *Factory) decorate(users []*models.User, posts []*models.Post) error {
	for _, post := range posts {
		for i, n := 0, f.rng.Intn(5); i < n; i++ {
			commenter := users[f.rng.Intn(len(users))]
			if _, err := f.CreateComment(commenter, post); err != nil {
				return fmt.Errorf("create comment: %w", err)
			}
		}

		for i, n := 0, f.rng.Intn(len(users)); i < n; i++ {
			if err := f.CreateLike(users[f.rng.Intn(len(users))], post); err != nil {
				return fmt.Errorf("create like: %w", err)
			}
		}

		// roughly one post in five gets a gift
		if f.rng.Intn(5) == 0 {
			gifter := users[f.rng.Intn(len(users))]
			if gifter.ID != post.UserID {
				amount := (f.rng.Intn(5) + 1) * 10
				if err := f.CreateGift(gifter, post, amount); err != nil {
					return fmt.Errorf("create gift: %w", err)
				}
			}
		}
	}
	return nil
}

// ClearAll deletes all seeded rows in dependency order.
func ClearAll(db *gorm.DB) error {
	log.Println("Clearing existing data...")
	for _, table := range []string{"gifts", "likes", "comments", "posts", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}
