package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/subtrack-app/subtrack-backend/internal/cache"
	"github.com/subtrack-app/subtrack-backend/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) ListAll(ctx context.Context) ([]*models.Catalog, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Catalog), args.Error(1)
}
func (m *RepoMock) GetByID(ctx context.Context, id int64) (*models.Catalog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Catalog), args.Error(1)
}
func (m *RepoMock) ListPlans(ctx context.Context, catalogID int64) ([]*models.Plan, error) {
	args := m.Called(ctx, catalogID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Plan), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}
func (m *CacheMock) SetWithPriority(key string, value any, expiration time.Duration, priority cache.Priority) error {
	return m.Called(key, value, expiration, priority).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestCatalogService_ListAll(t *testing.T) {
	items := []*models.Catalog{
		{Entity: models.Entity{ID: 1}, Name: "Netflix", Category: "streaming"},
		{Entity: models.Entity{ID: 2}, Name: "Spotify", Category: "music"},
	}

	tests := []struct {
		name       string
		setupMocks func(r *RepoMock, c *CacheMock)
		want       []*models.Catalog
		wantErr    bool
	}{
		{
			name: "cache hit skips storage",
			setupMocks: func(_ *RepoMock, c *CacheMock) {
				c.On("Get", "catalog:all", mock.Anything).Run(func(args mock.Arguments) {
					*args.Get(1).(*[]*models.Catalog) = items
				}).Return(true, nil).Once()
			},
			want: items,
		},
		{
			name: "cache miss reads storage and refills with high priority",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				c.On("Get", "catalog:all", mock.Anything).Return(false, nil).Once()
				r.On("ListAll", mock.Anything).Return(items, nil).Once()
				c.On("SetWithPriority", "catalog:all", items, 12*time.Hour, cache.PriorityHigh).
					Return(nil).Once()
			},
			want: items,
		},
		{
			name: "storage error is not cached",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				c.On("Get", "catalog:all", mock.Anything).Return(false, nil).Once()
				r.On("ListAll", mock.Anything).Return(nil, errors.New("db down")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			c := new(CacheMock)
			svc := NewCatalogService(repo, c, newNoopLogger(), 12*time.Hour)

			tt.setupMocks(repo, c)

			got, err := svc.ListAll(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			repo.AssertExpectations(t)
			c.AssertExpectations(t)
		})
	}
}

func TestCatalogService_GetByID(t *testing.T) {
	item := &models.Catalog{Entity: models.Entity{ID: 3}, Name: "YouTube Premium"}

	repo := new(RepoMock)
	c := new(CacheMock)
	svc := NewCatalogService(repo, c, newNoopLogger(), 12*time.Hour)

	c.On("Get", "catalog:3", mock.Anything).Return(false, nil).Once()
	repo.On("GetByID", mock.Anything, int64(3)).Return(item, nil).Once()
	c.On("SetWithPriority", "catalog:3", item, 12*time.Hour, cache.PriorityHigh).Return(nil).Once()

	got, err := svc.GetByID(context.Background(), 3)
	assert.NoError(t, err)
	assert.Equal(t, item, got)

	repo.AssertExpectations(t)
	c.AssertExpectations(t)
}

func TestCatalogService_ListPlans(t *testing.T) {
	plans := []*models.Plan{
		{Entity: models.Entity{ID: 1}, CatalogID: 3, Name: "Standard", Price: 15.99, Currency: "USD"},
	}

	repo := new(RepoMock)
	c := new(CacheMock)
	svc := NewCatalogService(repo, c, newNoopLogger(), 12*time.Hour)

	c.On("Get", "catalog:3:plans", mock.Anything).Return(false, nil).Once()
	repo.On("ListPlans", mock.Anything, int64(3)).Return(plans, nil).Once()
	c.On("SetWithPriority", "catalog:3:plans", plans, 12*time.Hour, cache.PriorityHigh).Return(nil).Once()

	got, err := svc.ListPlans(context.Background(), 3)
	assert.NoError(t, err)
	assert.Equal(t, plans, got)

	repo.AssertExpectations(t)
	c.AssertExpectations(t)
}
