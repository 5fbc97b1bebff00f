package repository

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
)

type ListOrdersParams struct {
	UserID   string
	Page     int
	PageSize int
}

type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, orderID string) (*entity.Order, error)
	List(ctx context.Context, params ListOrdersParams) ([]*entity.Order, int64, error)
}
