package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
)

type userRepo struct {
	store *Store
}

func (r *userRepo) Create(ctx context.Context, user *entity.User) error {
	return r.store.insert(ctx, collUsers, user.ID, user)
}

func (r *userRepo) GetByID(ctx context.Context, userID string) (*entity.User, error) {
	var user entity.User
	if err := r.store.get(ctx, collUsers, userID, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Update(ctx context.Context, user *entity.User) error {
	return r.store.mutate(ctx, collUsers, user.ID, func([]byte) (interface{}, error) {
		return user, nil
	})
}

type favoriteRepo struct {
	store *Store
}

func favoriteKey(userID, productID string) string {
	return userID + ":" + productID
}

func (r *favoriteRepo) Add(ctx context.Context, favorite *entity.Favorite) error {
	return r.store.insert(ctx, collFavorites, favoriteKey(favorite.UserID, favorite.ProductID), favorite)
}

func (r *favoriteRepo) Remove(ctx context.Context, userID, productID string) error {
	return r.store.remove(ctx, collFavorites, favoriteKey(userID, productID))
}

func (r *favoriteRepo) Exists(ctx context.Context, userID, productID string) (bool, error) {
	var favorite entity.Favorite
	err := r.store.get(ctx, collFavorites, favoriteKey(userID, productID), &favorite)
	if err == repository.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *favoriteRepo) ListByUser(ctx context.Context, userID string) ([]*entity.Favorite, error) {
	var all []*entity.Favorite
	err := r.store.forEach(ctx, collFavorites, func(_ string, raw []byte) error {
		var f entity.Favorite
		if err := json.Unmarshal(raw, &f); err != nil {
			return fmt.Errorf("failed to decode favorite: %w", err)
		}
		if f.UserID == userID {
			all = append(all, &f)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return all, nil
}

type notificationRepo struct {
	store *Store
}

func (r *notificationRepo) Create(ctx context.Context, notification *entity.Notification) error {
	return r.store.insert(ctx, collNotifications, notification.ID, notification)
}

func (r *notificationRepo) ListByUser(ctx context.Context, userID string) ([]*entity.Notification, error) {
	var all []*entity.Notification
	err := r.store.forEach(ctx, collNotifications, func(_ string, raw []byte) error {
		var n entity.Notification
		if err := json.Unmarshal(raw, &n); err != nil {
			return fmt.Errorf("failed to decode notification: %w", err)
		}
		if n.UserID == userID {
			all = append(all, &n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Unread first, then newest first within each group.
	sort.Slice(all, func(i, j int) bool {
		if all[i].IsRead != all[j].IsRead {
			return !all[i].IsRead
		}
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})
	return all, nil
}

func (r *notificationRepo) MarkRead(ctx context.Context, notificationID, userID string) error {
	return r.store.mutate(ctx, collNotifications, notificationID, func(raw []byte) (interface{}, error) {
		var n entity.Notification
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("failed to decode notification: %w", err)
		}
		if n.UserID != userID {
			return nil, repository.ErrNotFound
		}
		n.IsRead = true
		return &n, nil
	})
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	notifications, err := r.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, n := range notifications {
		if n.IsRead {
			continue
		}
		if err := r.MarkRead(ctx, n.ID, userID); err != nil {
			return err
		}
	}
	return nil
}

type activityRepo struct {
	store *Store
}

func (r *activityRepo) Append(ctx context.Context, entry *entity.ActivityEntry) error {
	return r.store.insert(ctx, collActivity, entry.ID, entry)
}

func (r *activityRepo) sorted(ctx context.Context) ([]*entity.ActivityEntry, error) {
	var all []*entity.ActivityEntry
	err := r.store.forEach(ctx, collActivity, func(_ string, raw []byte) error {
		var e entity.ActivityEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			return fmt.Errorf("failed to decode activity entry: %w", err)
		}
		all = append(all, &e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].Timestamp.Equal(all[j].Timestamp) {
			return all[i].Timestamp.After(all[j].Timestamp)
		}
		return all[i].ID > all[j].ID
	})
	return all, nil
}

func (r *activityRepo) List(ctx context.Context, limit int) ([]*entity.ActivityEntry, error) {
	all, err := r.sorted(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *activityRepo) Count(ctx context.Context) (int64, error) {
	all, err := r.sorted(ctx)
	if err != nil {
		return 0, err
	}
	return int64(len(all)), nil
}

func (r *activityRepo) DeleteOldest(ctx context.Context, n int) error {
	if n <= 0 {
		return nil
	}
	all, err := r.sorted(ctx)
	if err != nil {
		return err
	}
	if n > len(all) {
		n = len(all)
	}
	// sorted() is newest first; the oldest sit at the tail.
	doomed := all[len(all)-n:]
	for _, e := range doomed {
		if err := r.store.remove(ctx, collActivity, e.ID); err != nil {
			return err
		}
	}
	return nil
}

type settingsRepo struct {
	store *Store
}

type settingDoc struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (r *settingsRepo) Get(ctx context.Context, key string) (string, error) {
	var doc settingDoc
	if err := r.store.get(ctx, collSettings, key, &doc); err != nil {
		return "", err
	}
	return doc.Value, nil
}

func (r *settingsRepo) Set(ctx context.Context, key, value string) error {
	return r.store.put(ctx, collSettings, key, settingDoc{Key: key, Value: value})
}
