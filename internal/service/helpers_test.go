package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/memstore"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeClock returns a fixed instant, advanced manually by tests.
type fakeClock struct {
	now atomic.Pointer[time.Time]
}

func newFakeClock(start time.Time) *fakeClock {
	c := &fakeClock{}
	c.now.Store(&start)
	return c
}

func (c *fakeClock) Now() time.Time { return *c.now.Load() }

func (c *fakeClock) Advance(d time.Duration) {
	next := c.Now().Add(d)
	c.now.Store(&next)
}

// sequentialIDs yields id-1, id-2, ... so fixtures are deterministic.
func sequentialIDs() IDGenerator {
	var n int64
	return func() string {
		return fmt.Sprintf("id-%d", atomic.AddInt64(&n, 1))
	}
}

type MockMessagePublisher struct {
	mock.Mock
}

func (m *MockMessagePublisher) Publish(ctx context.Context, subject string, message interface{}) error {
	args := m.Called(ctx, subject, message)
	return args.Error(0)
}

func (m *MockMessagePublisher) PublishRaw(ctx context.Context, subject string, data []byte) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) Send(ctx context.Context, to []string, subject, bodyHTML, bodyText string) error {
	args := m.Called(ctx, to, subject, bodyHTML, bodyText)
	return args.Error(0)
}

type MockBlobStorage struct {
	mock.Mock
}

func (m *MockBlobStorage) Upload(ctx context.Context, originalFileName string, data []byte) (string, error) {
	args := m.Called(ctx, originalFileName, data)
	return args.String(0), args.Error(1)
}

func (m *MockBlobStorage) Get(ctx context.Context, objectKey string) ([]byte, error) {
	args := m.Called(ctx, objectKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockBlobStorage) Delete(ctx context.Context, objectKey string) error {
	args := m.Called(ctx, objectKey)
	return args.Error(0)
}

// testEnv wires every service over a fresh in-memory store.
type testEnv struct {
	store         *memstore.Store
	clock         *fakeClock
	orders        OrderService
	catalog       CatalogService
	carts         CartService
	jobs          JobService
	reviews       ReviewService
	users         UserService
	notifications NotificationService
	activity      ActivityService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memstore.NewStore()
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	newID := sequentialIDs()
	log := logger.NewNop()

	activity := NewActivityService(store, 500, clock, newID, log)
	notifications := NewNotificationService(store, nil, clock, newID, log)

	return &testEnv{
		store:         store,
		clock:         clock,
		orders:        NewOrderService(store, nil, nil, activity, clock, newID, log),
		catalog:       NewCatalogService(store, nil, nil, activity, CatalogServiceConfig{}, clock, newID, log),
		carts:         NewCartService(store, clock, log),
		jobs:          NewJobService(store, nil, nil, notifications, activity, clock, newID, log),
		reviews:       NewReviewService(store, nil, activity, clock, newID, log),
		users:         NewUserService(store, clock, newID, log),
		notifications: notifications,
		activity:      activity,
	}
}

func (e *testEnv) mustCreateUser(t *testing.T, name string) *entity.User {
	t.Helper()
	user, err := e.users.RegisterUser(context.Background(), name, name+"@example.com")
	require.NoError(t, err)
	return user
}

func (e *testEnv) mustCreateCategory(t *testing.T, name string) *entity.Category {
	t.Helper()
	category, err := e.catalog.CreateCategory(context.Background(), "admin", name, "")
	require.NoError(t, err)
	return category
}

func (e *testEnv) mustCreateProduct(t *testing.T, name string, price float64, stock int, categoryID string) *entity.Product {
	t.Helper()
	product, err := e.catalog.CreateProduct(context.Background(), "admin", CreateProductInput{
		Name:       name,
		Price:      price,
		Stock:      stock,
		CategoryID: categoryID,
	})
	require.NoError(t, err)
	return product
}

func (e *testEnv) productStock(t *testing.T, productID string) int {
	t.Helper()
	product, err := e.store.Products().GetByID(context.Background(), productID)
	require.NoError(t, err)
	return product.Stock
}
