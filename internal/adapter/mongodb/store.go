// Package mongodb is the transactional storage backend. Atomic multi-entity
// operations run inside a native multi-document transaction; when the server
// aborts on a write conflict the abort surfaces as repository.ErrTxConflict
// with no writes visible, and the caller may retry.
package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	usersCollection         = "users"
	productsCollection      = "products"
	categoriesCollection    = "categories"
	jobCategoriesCollection = "job_categories"
	cartsCollection         = "carts"
	ordersCollection        = "orders"
	jobsCollection          = "jobs"
	reviewsCollection       = "reviews"
	jobReviewsCollection    = "job_reviews"
	notificationsCollection = "notifications"
	favoritesCollection     = "favorites"
	activityCollection      = "activity_log"
	settingsCollection      = "settings"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewStore(client *mongo.Client, cfg config.MongoDBConfig) *Store {
	return &Store{
		client: client,
		db:     client.Database(cfg.Database),
	}
}

var _ repository.Store = (*Store)(nil)

func (s *Store) Users() repository.UserRepository {
	return &userRepo{coll: s.db.Collection(usersCollection)}
}

func (s *Store) Products() repository.ProductRepository {
	return &productRepo{coll: s.db.Collection(productsCollection)}
}

func (s *Store) Categories() repository.CategoryRepository {
	return &categoryRepo{coll: s.db.Collection(categoriesCollection)}
}

func (s *Store) JobCategories() repository.JobCategoryRepository {
	return &jobCategoryRepo{coll: s.db.Collection(jobCategoriesCollection)}
}

func (s *Store) Carts() repository.CartRepository {
	return &cartRepo{coll: s.db.Collection(cartsCollection)}
}

func (s *Store) Orders() repository.OrderRepository {
	return &orderRepo{coll: s.db.Collection(ordersCollection)}
}

func (s *Store) Jobs() repository.JobRepository {
	return &jobRepo{coll: s.db.Collection(jobsCollection)}
}

func (s *Store) Reviews() repository.ReviewRepository {
	return &reviewRepo{coll: s.db.Collection(reviewsCollection)}
}

func (s *Store) JobReviews() repository.JobReviewRepository {
	return &jobReviewRepo{coll: s.db.Collection(jobReviewsCollection)}
}

func (s *Store) Notifications() repository.NotificationRepository {
	return &notificationRepo{coll: s.db.Collection(notificationsCollection)}
}

func (s *Store) Favorites() repository.FavoriteRepository {
	return &favoriteRepo{coll: s.db.Collection(favoritesCollection)}
}

func (s *Store) Activity() repository.ActivityRepository {
	return &activityRepo{coll: s.db.Collection(activityCollection)}
}

func (s *Store) Settings() repository.SettingsRepository {
	return &settingsRepo{coll: s.db.Collection(settingsCollection)}
}

// WithinTx runs fn inside one multi-document transaction. Repository calls
// made with the callback's context join the session automatically.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start mongo session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil {
		if isTransientTxError(err) {
			return repository.ErrTxConflict
		}
		return err
	}
	return nil
}

func isTransientTxError(err error) bool {
	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) {
		return serverErr.HasErrorLabel("TransientTransactionError") ||
			serverErr.HasErrorLabel("UnknownTransactionCommitResult")
	}
	return false
}
