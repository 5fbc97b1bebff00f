package service

import (
	"context"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
)

// Action types recorded in the activity log.
const (
	ActionOrderPlaced     = "order_placed"
	ActionProductCreated  = "product_created"
	ActionProductUpdated  = "product_updated"
	ActionProductDeleted  = "product_deleted"
	ActionCategoryCreated = "category_created"
	ActionCategoryUpdated = "category_updated"
	ActionCategoryDeleted = "category_deleted"
	ActionJobCreated      = "job_created"
	ActionJobAccepted     = "job_accepted"
	ActionJobCompleted    = "job_completed"
	ActionJobDeleted      = "job_deleted"
	ActionReviewAdded     = "review_added"
	ActionReviewDeleted   = "review_deleted"
)

type ActivityService interface {
	// Record appends an entry outside any transaction. Failures are logged
	// and swallowed; the log is advisory.
	Record(ctx context.Context, actorID, actionType, description string)
	// RecordTx appends an entry using an already-open transaction context,
	// so the entry commits or rolls back with the operation it describes.
	RecordTx(ctx context.Context, actorID, actionType, description string) error
	List(ctx context.Context, limit int) ([]*entity.ActivityEntry, error)
}

type activityService struct {
	store      repository.Store
	maxEntries int
	clock      Clock
	newID      IDGenerator
	log        logger.Logger
}

func NewActivityService(store repository.Store, maxEntries int, clock Clock, newID IDGenerator, log logger.Logger) ActivityService {
	return &activityService{
		store:      store,
		maxEntries: maxEntries,
		clock:      clock,
		newID:      newID,
		log:        log,
	}
}

func (s *activityService) Record(ctx context.Context, actorID, actionType, description string) {
	err := s.store.WithinTx(ctx, func(txCtx context.Context) error {
		return s.append(txCtx, actorID, actionType, description)
	})
	if err != nil {
		s.log.Warnf("ActivityService.Record: failed to record %s by %s: %v", actionType, actorID, err)
	}
}

func (s *activityService) RecordTx(ctx context.Context, actorID, actionType, description string) error {
	return s.append(ctx, actorID, actionType, description)
}

// append writes the entry and evicts beyond the retention cap in the same
// transaction context, oldest entries first.
func (s *activityService) append(ctx context.Context, actorID, actionType, description string) error {
	entry, err := entity.NewActivityEntry(s.newID(), actorID, actionType, description, s.clock.Now())
	if err != nil {
		return fmt.Errorf("invalid activity entry: %w", err)
	}
	if err := s.store.Activity().Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to append activity entry: %w", err)
	}

	count, err := s.store.Activity().Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count activity entries: %w", err)
	}
	if excess := int(count) - s.maxEntries; excess > 0 {
		if err := s.store.Activity().DeleteOldest(ctx, excess); err != nil {
			return fmt.Errorf("failed to evict oldest activity entries: %w", err)
		}
	}
	return nil
}

func (s *activityService) List(ctx context.Context, limit int) ([]*entity.ActivityEntry, error) {
	if limit <= 0 || limit > s.maxEntries {
		limit = s.maxEntries
	}
	entries, err := s.store.Activity().List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity entries: %w", err)
	}
	return entries, nil
}
