package repository

import "context"

// Store is the capability set every storage backend provides: per-entity
// CRUD plus one atomic-multi-write primitive. Business logic depends only on
// this interface; the backend is chosen once at startup.
type Store interface {
	Users() UserRepository
	Products() ProductRepository
	Categories() CategoryRepository
	JobCategories() JobCategoryRepository
	Carts() CartRepository
	Orders() OrderRepository
	Jobs() JobRepository
	Reviews() ReviewRepository
	JobReviews() JobReviewRepository
	Notifications() NotificationRepository
	Favorites() FavoriteRepository
	Activity() ActivityRepository
	Settings() SettingsRepository

	// WithinTx runs fn as a unit: either every repository write made through
	// the given context becomes visible, or none does. fn must be free of
	// side effects other than repository calls, since it may be retried or
	// rolled back. WithinTx calls must not nest.
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
