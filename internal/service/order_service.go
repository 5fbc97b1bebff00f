package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/nats"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
)

// OrderLine is one requested (product, quantity) pair for order placement.
type OrderLine struct {
	ProductID string
	Quantity  int
}

// OrderCreatedEvent is published after an order commits.
type OrderCreatedEvent struct {
	OrderID     string  `json:"order_id"`
	UserID      string  `json:"user_id"`
	TotalAmount float64 `json:"total_amount"`
	ItemCount   int     `json:"item_count"`
}

type OrderService interface {
	// PlaceOrder atomically validates stock for every line, decrements it,
	// and creates an immutable order snapshot. On any failure no stock
	// changes and no order exists.
	PlaceOrder(ctx context.Context, userID string, lines []OrderLine, shippingAddr entity.Address) (*entity.Order, error)
	// PlaceOrderFromCart places an order for every active line in the
	// user's cart and clears the purchased lines after commit.
	PlaceOrderFromCart(ctx context.Context, userID string, shippingAddr entity.Address) (*entity.Order, error)
	GetOrderByID(ctx context.Context, orderID, userID string) (*entity.Order, error)
	ListUserOrders(ctx context.Context, userID string, page, pageSize int) ([]*entity.Order, int64, error)
}

type orderService struct {
	store        repository.Store
	productCache repository.ProductDetailCache
	msgPublisher nats.MessagePublisher
	activity     ActivityService
	clock        Clock
	newID        IDGenerator
	log          logger.Logger
}

func NewOrderService(
	store repository.Store,
	productCache repository.ProductDetailCache,
	msgPublisher nats.MessagePublisher,
	activity ActivityService,
	clock Clock,
	newID IDGenerator,
	log logger.Logger,
) OrderService {
	return &orderService{
		store:        store,
		productCache: productCache,
		msgPublisher: msgPublisher,
		activity:     activity,
		clock:        clock,
		newID:        newID,
		log:          log,
	}
}

func (s *orderService) PlaceOrder(ctx context.Context, userID string, lines []OrderLine, shippingAddr entity.Address) (*entity.Order, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID is required", entity.ErrInvalidInput)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: order must contain at least one line", entity.ErrInvalidInput)
	}
	for _, line := range lines {
		if line.ProductID == "" || line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: order lines need a product ID and a positive quantity", entity.ErrInvalidInput)
		}
	}
	lines = coalesceLines(lines)

	order, err := s.placeOrderTx(ctx, userID, lines, shippingAddr)
	if err != nil {
		return nil, err
	}

	s.afterOrderCommit(ctx, order, lines)
	return order, nil
}

func (s *orderService) PlaceOrderFromCart(ctx context.Context, userID string, shippingAddr entity.Address) (*entity.Order, error) {
	cart, err := s.store.Carts().GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: cart is empty", entity.ErrInvalidInput)
		}
		return nil, fmt.Errorf("failed to load cart for user %s: %w", userID, err)
	}
	if len(cart.Items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", entity.ErrInvalidInput)
	}

	lines := make([]OrderLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		lines = append(lines, OrderLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return s.PlaceOrder(ctx, userID, lines, shippingAddr)
}

// coalesceLines merges lines that repeat a productID, summing quantities, so
// each product is validated and decremented exactly once. Order of first
// appearance is preserved.
func coalesceLines(lines []OrderLine) []OrderLine {
	index := make(map[string]int, len(lines))
	merged := make([]OrderLine, 0, len(lines))
	for _, line := range lines {
		if i, ok := index[line.ProductID]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(merged)
		merged = append(merged, line)
	}
	return merged
}

// placeOrderTx runs the three-phase placement: validate every line against
// current stock, apply all decrements, then write the order snapshot and the
// activity entry. Any failure aborts the transaction with no writes visible.
func (s *orderService) placeOrderTx(ctx context.Context, userID string, lines []OrderLine, shippingAddr entity.Address) (*entity.Order, error) {
	var order *entity.Order

	err := s.store.WithinTx(ctx, func(txCtx context.Context) error {
		now := s.clock.Now()
		products := make([]*entity.Product, len(lines))

		// Phase 1: validate.
		for i, line := range lines {
			product, err := s.store.Products().GetByID(txCtx, line.ProductID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return &entity.ProductNotFoundError{ProductID: line.ProductID}
				}
				return fmt.Errorf("failed to load product %s: %w", line.ProductID, err)
			}
			if product.Stock < line.Quantity {
				return &entity.InsufficientStockError{
					ProductID: line.ProductID,
					Available: product.Stock,
					Requested: line.Quantity,
				}
			}
			products[i] = product
		}

		// Phase 2: apply stock decrements and purchase counters.
		items := make([]entity.OrderItem, 0, len(lines))
		for i, line := range lines {
			product := products[i]
			product.Stock -= line.Quantity
			product.Purchases += int64(line.Quantity)
			product.UpdatedAt = now
			if err := s.store.Products().Update(txCtx, product); err != nil {
				return fmt.Errorf("failed to update stock for product %s: %w", product.ID, err)
			}

			item, err := entity.NewOrderItem(product.ID, product.Name, line.Quantity, product.Price, product.PrimaryImageID)
			if err != nil {
				return fmt.Errorf("failed to build order item for product %s: %w", product.ID, err)
			}
			items = append(items, *item)
		}

		// Phase 3: write the immutable snapshot.
		var err error
		order, err = entity.NewOrder(s.newID(), userID, items, shippingAddr, now)
		if err != nil {
			return fmt.Errorf("failed to build order: %w", err)
		}
		if err := s.store.Orders().Create(txCtx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		desc := fmt.Sprintf("order %s placed with %d items, total %.2f", order.ID, len(order.Items), order.TotalAmount)
		return s.activity.RecordTx(txCtx, userID, ActionOrderPlaced, desc)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// afterOrderCommit handles post-commit side effects: purchased lines leave
// the cart, cached product details are invalidated, and the event goes out.
// All of it is best-effort; the order is already durable.
func (s *orderService) afterOrderCommit(ctx context.Context, order *entity.Order, lines []OrderLine) {
	cart, err := s.store.Carts().GetByUserID(ctx, order.UserID)
	if err == nil {
		for _, line := range lines {
			_ = cart.RemoveItem(line.ProductID)
		}
		cart.UpdatedAt = s.clock.Now()
		if err := s.store.Carts().Save(ctx, cart); err != nil {
			s.log.Warnf("OrderService: failed to prune cart for user %s after order %s: %v", order.UserID, order.ID, err)
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.log.Warnf("OrderService: failed to load cart for user %s after order %s: %v", order.UserID, order.ID, err)
	}

	if s.productCache != nil {
		for _, line := range lines {
			if err := s.productCache.Delete(ctx, line.ProductID); err != nil {
				s.log.Debugf("OrderService: failed to invalidate product cache for %s: %v", line.ProductID, err)
			}
		}
	}

	if s.msgPublisher != nil {
		event := OrderCreatedEvent{
			OrderID:     order.ID,
			UserID:      order.UserID,
			TotalAmount: order.TotalAmount,
			ItemCount:   len(order.Items),
		}
		if err := s.msgPublisher.Publish(ctx, nats.SubjectOrderCreated, event); err != nil {
			s.log.Warnf("OrderService: failed to publish order created event for %s: %v", order.ID, err)
		}
	}
}

func (s *orderService) GetOrderByID(ctx context.Context, orderID, userID string) (*entity.Order, error) {
	if orderID == "" {
		return nil, fmt.Errorf("%w: order ID is required", entity.ErrInvalidInput)
	}
	order, err := s.store.Orders().GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order %s: %w", orderID, err)
	}
	if userID != "" && order.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return order, nil
}

func (s *orderService) ListUserOrders(ctx context.Context, userID string, page, pageSize int) ([]*entity.Order, int64, error) {
	if userID == "" {
		return nil, 0, fmt.Errorf("%w: user ID is required", entity.ErrInvalidInput)
	}
	orders, total, err := s.store.Orders().List(ctx, repository.ListOrdersParams{
		UserID:   userID,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders for user %s: %w", userID, err)
	}
	return orders, total, nil
}
