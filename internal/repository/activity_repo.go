package repository

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
)

type ActivityRepository interface {
	Append(ctx context.Context, entry *entity.ActivityEntry) error
	// List returns the most recent entries, newest first.
	List(ctx context.Context, limit int) ([]*entity.ActivityEntry, error)
	Count(ctx context.Context) (int64, error)
	// DeleteOldest evicts the n oldest entries.
	DeleteOldest(ctx context.Context, n int) error
}
