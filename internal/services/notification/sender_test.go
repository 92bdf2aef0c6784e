package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/subtrack-app/subtrack-backend/internal/lib/clock"
	"github.com/subtrack-app/subtrack-backend/internal/models"
)

type QueueSourceMock struct{ mock.Mock }

func (m *QueueSourceMock) FindDue(ctx context.Context, now time.Time, limit int) ([]*models.NotificationQueue, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.NotificationQueue), args.Error(1)
}
func (m *QueueSourceMock) MarkSent(ctx context.Context, n *models.NotificationQueue, at time.Time) error {
	return m.Called(ctx, n, at).Error(0)
}
func (m *QueueSourceMock) MarkFailed(ctx context.Context, n *models.NotificationQueue, deliveryErr string) error {
	return m.Called(ctx, n, deliveryErr).Error(0)
}

type BrokerMock struct{ mock.Mock }

func (m *BrokerMock) Publish(routingKey string, message any) error {
	return m.Called(routingKey, message).Error(0)
}

func TestSenderService_ProcessDue(t *testing.T) {
	now := time.Date(2026, time.March, 13, 9, 0, 0, 0, time.UTC)
	due := []*models.NotificationQueue{
		{Entity: models.Entity{ID: 1}, UserUID: "uid-1", Title: "t1", Message: "m1", ScheduledDate: now},
		{Entity: models.Entity{ID: 2}, UserUID: "uid-2", Title: "t2", Message: "m2", ScheduledDate: now},
	}

	tests := []struct {
		name       string
		setupMocks func(q *QueueSourceMock, b *BrokerMock)
		wantSent   int
		wantErr    bool
	}{
		{
			name: "publishes all due notifications",
			setupMocks: func(q *QueueSourceMock, b *BrokerMock) {
				q.On("FindDue", mock.Anything, now, 100).Return(due, nil).Once()
				b.On("Publish", "billing.upcoming", PushMessage{
					NotificationID: 1, UserUID: "uid-1", Title: "t1", Message: "m1",
				}).Return(nil).Once()
				b.On("Publish", "billing.upcoming", PushMessage{
					NotificationID: 2, UserUID: "uid-2", Title: "t2", Message: "m2",
				}).Return(nil).Once()
				q.On("MarkSent", mock.Anything, due[0], now).Return(nil).Once()
				q.On("MarkSent", mock.Anything, due[1], now).Return(nil).Once()
			},
			wantSent: 2,
		},
		{
			name: "failed publish marks error and keeps processing",
			setupMocks: func(q *QueueSourceMock, b *BrokerMock) {
				q.On("FindDue", mock.Anything, now, 100).Return(due, nil).Once()
				b.On("Publish", "billing.upcoming", mock.MatchedBy(func(msg PushMessage) bool {
					return msg.NotificationID == 1
				})).Return(errors.New("broker down")).Once()
				q.On("MarkFailed", mock.Anything, due[0], "broker down").Return(nil).Once()
				b.On("Publish", "billing.upcoming", mock.MatchedBy(func(msg PushMessage) bool {
					return msg.NotificationID == 2
				})).Return(nil).Once()
				q.On("MarkSent", mock.Anything, due[1], now).Return(nil).Once()
			},
			wantSent: 1,
		},
		{
			name: "queue read error stops the pass",
			setupMocks: func(q *QueueSourceMock, _ *BrokerMock) {
				q.On("FindDue", mock.Anything, now, 100).Return(nil, errors.New("db down")).Once()
			},
			wantErr: true,
		},
		{
			name: "empty queue is a no-op",
			setupMocks: func(q *QueueSourceMock, _ *BrokerMock) {
				q.On("FindDue", mock.Anything, now, 100).
					Return([]*models.NotificationQueue{}, nil).Once()
			},
			wantSent: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queue := new(QueueSourceMock)
			broker := new(BrokerMock)
			svc := NewSenderService(queue, broker, clock.Fixed(now), newNoopLogger(), 100)

			tt.setupMocks(queue, broker)

			sent, err := svc.ProcessDue(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantSent, sent)
			}

			queue.AssertExpectations(t)
			broker.AssertExpectations(t)
		})
	}
}
