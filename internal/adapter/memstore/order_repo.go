package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
)

type orderRepo struct {
	store *Store
}

func (r *orderRepo) Create(ctx context.Context, order *entity.Order) error {
	return r.store.insert(ctx, collOrders, order.ID, order)
}

func (r *orderRepo) GetByID(ctx context.Context, orderID string) (*entity.Order, error) {
	var order entity.Order
	if err := r.store.get(ctx, collOrders, orderID, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) List(ctx context.Context, params repository.ListOrdersParams) ([]*entity.Order, int64, error) {
	var all []*entity.Order
	err := r.store.forEach(ctx, collOrders, func(_ string, raw []byte) error {
		var o entity.Order
		if err := json.Unmarshal(raw, &o); err != nil {
			return fmt.Errorf("failed to decode order: %w", err)
		}
		if params.UserID != "" && o.UserID != params.UserID {
			return nil
		}
		all = append(all, &o)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})
	total := int64(len(all))
	return paginate(all, params.Page, params.PageSize), total, nil
}

type cartRepo struct {
	store *Store
}

func (r *cartRepo) GetByUserID(ctx context.Context, userID string) (*entity.Cart, error) {
	var cart entity.Cart
	if err := r.store.get(ctx, collCarts, userID, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepo) Save(ctx context.Context, cart *entity.Cart) error {
	if cart == nil || cart.UserID == "" {
		return fmt.Errorf("cannot save nil cart or cart with empty userID")
	}
	return r.store.put(ctx, collCarts, cart.UserID, cart)
}

func (r *cartRepo) DeleteByUserID(ctx context.Context, userID string) error {
	err := r.store.remove(ctx, collCarts, userID)
	if err == repository.ErrNotFound {
		return nil
	}
	return err
}
