// Package memstore is the emulated-transaction storage backend. The
// underlying store is a plain in-process collection of JSON documents with no
// isolation primitive of its own; atomicity is emulated by executing every
// read-check-write sequence without yielding, under a single store mutex,
// with a snapshot journal restored on error so a failed operation leaves
// zero visible writes.
//
// The guarantee holds for callers within one process only. Multiple
// processes sharing a store are not isolated; deployments needing that must
// use the transactional backend instead.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
)

const (
	collUsers         = "users"
	collProducts      = "products"
	collCategories    = "categories"
	collJobCategories = "job_categories"
	collCarts         = "carts"
	collOrders        = "orders"
	collJobs          = "jobs"
	collReviews       = "reviews"
	collJobReviews    = "job_reviews"
	collNotifications = "notifications"
	collFavorites     = "favorites"
	collActivity      = "activity_log"
	collSettings      = "settings"
)

type Store struct {
	mu          sync.Mutex
	collections map[string]map[string][]byte
}

func NewStore() *Store {
	return &Store{collections: make(map[string]map[string][]byte)}
}

var _ repository.Store = (*Store)(nil)

func (s *Store) Users() repository.UserRepository                 { return &userRepo{s} }
func (s *Store) Products() repository.ProductRepository           { return &productRepo{s} }
func (s *Store) Categories() repository.CategoryRepository        { return &categoryRepo{s} }
func (s *Store) JobCategories() repository.JobCategoryRepository  { return &jobCategoryRepo{s} }
func (s *Store) Carts() repository.CartRepository                 { return &cartRepo{s} }
func (s *Store) Orders() repository.OrderRepository               { return &orderRepo{s} }
func (s *Store) Jobs() repository.JobRepository                   { return &jobRepo{s} }
func (s *Store) Reviews() repository.ReviewRepository             { return &reviewRepo{s} }
func (s *Store) JobReviews() repository.JobReviewRepository       { return &jobReviewRepo{s} }
func (s *Store) Notifications() repository.NotificationRepository { return &notificationRepo{s} }
func (s *Store) Favorites() repository.FavoriteRepository         { return &favoriteRepo{s} }
func (s *Store) Activity() repository.ActivityRepository          { return &activityRepo{s} }
func (s *Store) Settings() repository.SettingsRepository          { return &settingsRepo{s} }

type txKey struct{}

// txState journals the pre-transaction contents of every collection touched
// by a write, lazily, so rollback is a map swap.
type txState struct {
	saved map[string]map[string][]byte
}

// WithinTx holds the store mutex for the whole callback: the read-check-write
// sequence inside fn runs without yielding to any other store caller. On
// error every touched collection is restored from the journal.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fmt.Errorf("nested WithinTx is not supported")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &txState{saved: make(map[string]map[string][]byte)}
	err := fn(context.WithValue(ctx, txKey{}, tx))
	if err != nil {
		for name, snapshot := range tx.saved {
			s.collections[name] = snapshot
		}
	}
	return err
}

// run executes op with the store mutex held. Inside a transaction the mutex
// is already held by WithinTx and op joins its journal.
func (s *Store) run(ctx context.Context, op func(tx *txState) error) error {
	if tx, ok := ctx.Value(txKey{}).(*txState); ok {
		return op(tx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return op(nil)
}

func (s *Store) coll(name string) map[string][]byte {
	c, ok := s.collections[name]
	if !ok {
		c = make(map[string][]byte)
		s.collections[name] = c
	}
	return c
}

// journal snapshots a collection before its first mutation in a transaction.
func (s *Store) journal(tx *txState, name string) {
	if tx == nil {
		return
	}
	if _, ok := tx.saved[name]; ok {
		return
	}
	live := s.coll(name)
	snapshot := make(map[string][]byte, len(live))
	for id, doc := range live {
		snapshot[id] = doc
	}
	tx.saved[name] = snapshot
}

func (s *Store) put(ctx context.Context, name, id string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal document for %s: %w", name, err)
	}
	return s.run(ctx, func(tx *txState) error {
		s.journal(tx, name)
		s.coll(name)[id] = data
		return nil
	})
}

func (s *Store) insert(ctx context.Context, name, id string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal document for %s: %w", name, err)
	}
	return s.run(ctx, func(tx *txState) error {
		if _, ok := s.coll(name)[id]; ok {
			return repository.ErrAlreadyExists
		}
		s.journal(tx, name)
		s.coll(name)[id] = data
		return nil
	})
}

func (s *Store) get(ctx context.Context, name, id string, v interface{}) error {
	return s.run(ctx, func(*txState) error {
		data, ok := s.coll(name)[id]
		if !ok {
			return repository.ErrNotFound
		}
		return json.Unmarshal(data, v)
	})
}

func (s *Store) remove(ctx context.Context, name, id string) error {
	return s.run(ctx, func(tx *txState) error {
		if _, ok := s.coll(name)[id]; !ok {
			return repository.ErrNotFound
		}
		s.journal(tx, name)
		delete(s.coll(name), id)
		return nil
	})
}

// mutate reads a document and replaces it with the value produced by fn, as
// one non-yielding step.
func (s *Store) mutate(ctx context.Context, name, id string, fn func(raw []byte) (interface{}, error)) error {
	return s.run(ctx, func(tx *txState) error {
		data, ok := s.coll(name)[id]
		if !ok {
			return repository.ErrNotFound
		}
		v, err := fn(data)
		if err != nil {
			return err
		}
		out, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal document for %s: %w", name, err)
		}
		s.journal(tx, name)
		s.coll(name)[id] = out
		return nil
	})
}

// forEach visits every document of a collection in id order. fn must not
// mutate the store.
func (s *Store) forEach(ctx context.Context, name string, fn func(id string, raw []byte) error) error {
	return s.run(ctx, func(*txState) error {
		c := s.coll(name)
		ids := make([]string, 0, len(c))
		for id := range c {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			if err := fn(id, c[id]); err != nil {
				return err
			}
		}
		return nil
	})
}

// removeWhere deletes every document matched by pred inside one journaled
// mutation.
func (s *Store) removeWhere(ctx context.Context, name string, pred func(raw []byte) bool) error {
	return s.run(ctx, func(tx *txState) error {
		c := s.coll(name)
		var doomed []string
		for id, raw := range c {
			if pred(raw) {
				doomed = append(doomed, id)
			}
		}
		if len(doomed) == 0 {
			return nil
		}
		s.journal(tx, name)
		for _, id := range doomed {
			delete(c, id)
		}
		return nil
	})
}
