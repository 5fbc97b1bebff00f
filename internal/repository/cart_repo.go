package repository

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
)

type CartRepository interface {
	// GetByUserID returns the user's cart, or ErrNotFound when the user has
	// never had one. Callers create an empty cart in that case.
	GetByUserID(ctx context.Context, userID string) (*entity.Cart, error)
	Save(ctx context.Context, cart *entity.Cart) error
	DeleteByUserID(ctx context.Context, userID string) error
}
