package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
)

type UserService interface {
	RegisterUser(ctx context.Context, name, email string) (*entity.User, error)
	GetUser(ctx context.Context, userID string) (*entity.User, error)
	UpdateUserProfile(ctx context.Context, userID, name, email string) (*entity.User, error)

	// AddFavorite rejects a duplicate with repository.ErrAlreadyExists.
	AddFavorite(ctx context.Context, userID, productID string) error
	RemoveFavorite(ctx context.Context, userID, productID string) error
	ListFavorites(ctx context.Context, userID string) ([]*entity.Favorite, error)

	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

type userService struct {
	store repository.Store
	clock Clock
	newID IDGenerator
	log   logger.Logger
}

func NewUserService(store repository.Store, clock Clock, newID IDGenerator, log logger.Logger) UserService {
	return &userService{
		store: store,
		clock: clock,
		newID: newID,
		log:   log,
	}
}

func (s *userService) RegisterUser(ctx context.Context, name, email string) (*entity.User, error) {
	user, err := entity.NewUser(s.newID(), name, email, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidInput, err)
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID is required", entity.ErrInvalidInput)
	}
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}
	return user, nil
}

func (s *userService) UpdateUserProfile(ctx context.Context, userID, name, email string) (*entity.User, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID is required", entity.ErrInvalidInput)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: user name is required", entity.ErrInvalidInput)
	}

	var user *entity.User
	err := s.store.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		user, err = s.store.Users().GetByID(txCtx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return repository.ErrNotFound
			}
			return fmt.Errorf("failed to load user %s: %w", userID, err)
		}
		user.Name = name
		user.Email = email
		user.UpdatedAt = s.clock.Now()
		if err := s.store.Users().Update(txCtx, user); err != nil {
			return fmt.Errorf("failed to update user %s: %w", userID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) AddFavorite(ctx context.Context, userID, productID string) error {
	if userID == "" || productID == "" {
		return fmt.Errorf("%w: user ID and product ID are required", entity.ErrInvalidInput)
	}
	return s.store.WithinTx(ctx, func(txCtx context.Context) error {
		if _, err := s.store.Products().GetByID(txCtx, productID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return &entity.ProductNotFoundError{ProductID: productID}
			}
			return fmt.Errorf("failed to load product %s: %w", productID, err)
		}

		favorite := &entity.Favorite{
			ID:        s.newID(),
			UserID:    userID,
			ProductID: productID,
			CreatedAt: s.clock.Now(),
		}
		if err := s.store.Favorites().Add(txCtx, favorite); err != nil {
			if errors.Is(err, repository.ErrAlreadyExists) {
				return repository.ErrAlreadyExists
			}
			return fmt.Errorf("failed to add favorite: %w", err)
		}
		return nil
	})
}

func (s *userService) RemoveFavorite(ctx context.Context, userID, productID string) error {
	if userID == "" || productID == "" {
		return fmt.Errorf("%w: user ID and product ID are required", entity.ErrInvalidInput)
	}
	if err := s.store.Favorites().Remove(ctx, userID, productID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

func (s *userService) ListFavorites(ctx context.Context, userID string) ([]*entity.Favorite, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID is required", entity.ErrInvalidInput)
	}
	favorites, err := s.store.Favorites().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites for user %s: %w", userID, err)
	}
	return favorites, nil
}

func (s *userService) GetSetting(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("%w: setting key is required", entity.ErrInvalidInput)
	}
	value, err := s.store.Settings().Get(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", repository.ErrNotFound
		}
		return "", fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, nil
}

func (s *userService) SetSetting(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("%w: setting key is required", entity.ErrInvalidInput)
	}
	if err := s.store.Settings().Set(ctx, key, value); err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}
