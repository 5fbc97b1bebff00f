package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
)

type CartService interface {
	// GetCart returns the user's cart, an empty one if none exists yet.
	GetCart(ctx context.Context, userID string) (*entity.Cart, error)
	// AddItem merges quantity into the active list after validating stock
	// against the merged amount. A saved-for-later line for the same
	// product folds into the active line.
	AddItem(ctx context.Context, userID, productID string, quantity int) (*entity.Cart, error)
	UpdateItemQuantity(ctx context.Context, userID, productID string, quantity int) (*entity.Cart, error)
	RemoveItem(ctx context.Context, userID, productID string) (*entity.Cart, error)
	// MoveToSavedForLater shifts an active line to the saved list. No stock
	// check; saved items reserve nothing.
	MoveToSavedForLater(ctx context.Context, userID, productID string) (*entity.Cart, error)
	// MoveToCartFromSaved shifts a saved line back into the active list.
	// Returns false with no changes when stock cannot cover the merged
	// quantity; the saved line stays where it was.
	MoveToCartFromSaved(ctx context.Context, userID, productID string) (*entity.Cart, bool, error)
	ClearCart(ctx context.Context, userID string) error
}

type cartService struct {
	store repository.Store
	clock Clock
	log   logger.Logger
}

func NewCartService(store repository.Store, clock Clock, log logger.Logger) CartService {
	return &cartService{
		store: store,
		clock: clock,
		log:   log,
	}
}

func (s *cartService) GetCart(ctx context.Context, userID string) (*entity.Cart, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID is required", entity.ErrInvalidInput)
	}
	cart, err := s.store.Carts().GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return entity.NewCart(userID, s.clock.Now()), nil
		}
		return nil, fmt.Errorf("failed to get cart for user %s: %w", userID, err)
	}
	return cart, nil
}

func (s *cartService) AddItem(ctx context.Context, userID, productID string, quantity int) (*entity.Cart, error) {
	if userID == "" || productID == "" {
		return nil, fmt.Errorf("%w: user ID and product ID are required", entity.ErrInvalidInput)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", entity.ErrInvalidInput)
	}

	var cart *entity.Cart
	err := s.store.WithinTx(ctx, func(txCtx context.Context) error {
		product, err := s.loadProduct(txCtx, productID)
		if err != nil {
			return err
		}

		cart, err = s.loadOrCreateCart(txCtx, userID)
		if err != nil {
			return err
		}

		// Stock must cover the merged quantity: existing active line plus
		// any saved line that will fold in plus the new amount.
		merged := quantity
		if line := cart.Item(productID); line != nil {
			merged += line.Quantity
		}
		if line := cart.SavedItem(productID); line != nil {
			merged += line.Quantity
		}
		if product.Stock < merged {
			return &entity.InsufficientStockError{ProductID: productID, Available: product.Stock, Requested: merged}
		}

		if err := cart.AddItem(productID, quantity); err != nil {
			return fmt.Errorf("%w: %v", entity.ErrInvalidInput, err)
		}
		s.refreshLine(cart, product)
		return s.saveCart(txCtx, cart)
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *cartService) UpdateItemQuantity(ctx context.Context, userID, productID string, quantity int) (*entity.Cart, error) {
	if userID == "" || productID == "" {
		return nil, fmt.Errorf("%w: user ID and product ID are required", entity.ErrInvalidInput)
	}

	var cart *entity.Cart
	err := s.store.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		cart, err = s.loadCart(txCtx, userID)
		if err != nil {
			return err
		}

		if quantity > 0 {
			product, err := s.loadProduct(txCtx, productID)
			if err != nil {
				return err
			}
			if product.Stock < quantity {
				return &entity.InsufficientStockError{ProductID: productID, Available: product.Stock, Requested: quantity}
			}
			s.refreshLine(cart, product)
		}

		if err := cart.UpdateItemQuantity(productID, quantity); err != nil {
			return fmt.Errorf("%w: %v", entity.ErrInvalidInput, err)
		}
		return s.saveCart(txCtx, cart)
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *cartService) RemoveItem(ctx context.Context, userID, productID string) (*entity.Cart, error) {
	if userID == "" || productID == "" {
		return nil, fmt.Errorf("%w: user ID and product ID are required", entity.ErrInvalidInput)
	}

	var cart *entity.Cart
	err := s.store.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		cart, err = s.loadCart(txCtx, userID)
		if err != nil {
			return err
		}
		if err := cart.RemoveItem(productID); err != nil {
			return fmt.Errorf("%w: %v", entity.ErrInvalidInput, err)
		}
		return s.saveCart(txCtx, cart)
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *cartService) MoveToSavedForLater(ctx context.Context, userID, productID string) (*entity.Cart, error) {
	if userID == "" || productID == "" {
		return nil, fmt.Errorf("%w: user ID and product ID are required", entity.ErrInvalidInput)
	}

	var cart *entity.Cart
	err := s.store.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		cart, err = s.loadCart(txCtx, userID)
		if err != nil {
			return err
		}
		if err := cart.MoveToSavedForLater(productID); err != nil {
			return fmt.Errorf("%w: %v", entity.ErrInvalidInput, err)
		}
		return s.saveCart(txCtx, cart)
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *cartService) MoveToCartFromSaved(ctx context.Context, userID, productID string) (*entity.Cart, bool, error) {
	if userID == "" || productID == "" {
		return nil, false, fmt.Errorf("%w: user ID and product ID are required", entity.ErrInvalidInput)
	}

	var cart *entity.Cart
	moved := false
	err := s.store.WithinTx(ctx, func(txCtx context.Context) error {
		moved = false
		var err error
		cart, err = s.loadCart(txCtx, userID)
		if err != nil {
			return err
		}

		saved := cart.SavedItem(productID)
		if saved == nil {
			return fmt.Errorf("%w: item not found in saved-for-later list", entity.ErrInvalidInput)
		}

		product, err := s.loadProduct(txCtx, productID)
		if err != nil {
			return err
		}

		merged := saved.Quantity
		if line := cart.Item(productID); line != nil {
			merged += line.Quantity
		}
		if product.Stock < merged {
			// Not an error: the caller is told the move did not happen and
			// the saved line is untouched.
			return nil
		}

		if err := cart.MoveToCart(productID); err != nil {
			return fmt.Errorf("%w: %v", entity.ErrInvalidInput, err)
		}
		s.refreshLine(cart, product)
		moved = true
		return s.saveCart(txCtx, cart)
	})
	if err != nil {
		return nil, false, err
	}
	return cart, moved, nil
}

func (s *cartService) ClearCart(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: user ID is required", entity.ErrInvalidInput)
	}
	return s.store.WithinTx(ctx, func(txCtx context.Context) error {
		cart, err := s.store.Carts().GetByUserID(txCtx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil
			}
			return fmt.Errorf("failed to load cart for user %s: %w", userID, err)
		}
		cart.Clear()
		return s.saveCart(txCtx, cart)
	})
}

func (s *cartService) loadProduct(ctx context.Context, productID string) (*entity.Product, error) {
	product, err := s.store.Products().GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &entity.ProductNotFoundError{ProductID: productID}
		}
		return nil, fmt.Errorf("failed to load product %s: %w", productID, err)
	}
	return product, nil
}

func (s *cartService) loadCart(ctx context.Context, userID string) (*entity.Cart, error) {
	cart, err := s.store.Carts().GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: cart is empty", entity.ErrInvalidInput)
		}
		return nil, fmt.Errorf("failed to load cart for user %s: %w", userID, err)
	}
	return cart, nil
}

func (s *cartService) loadOrCreateCart(ctx context.Context, userID string) (*entity.Cart, error) {
	cart, err := s.store.Carts().GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return entity.NewCart(userID, s.clock.Now()), nil
		}
		return nil, fmt.Errorf("failed to load cart for user %s: %w", userID, err)
	}
	return cart, nil
}

// refreshLine copies current display data onto the product's line wherever
// it sits. The cart never serves as a source of truth for these fields.
func (s *cartService) refreshLine(cart *entity.Cart, product *entity.Product) {
	for _, line := range []*entity.CartLine{cart.Item(product.ID), cart.SavedItem(product.ID)} {
		if line == nil {
			continue
		}
		line.Name = product.Name
		line.PricePerUnit = product.Price
		line.PrimaryImageID = product.PrimaryImageID
	}
}

func (s *cartService) saveCart(ctx context.Context, cart *entity.Cart) error {
	cart.UpdatedAt = s.clock.Now()
	if err := s.store.Carts().Save(ctx, cart); err != nil {
		return fmt.Errorf("failed to save cart for user %s: %w", cart.UserID, err)
	}
	return nil
}
