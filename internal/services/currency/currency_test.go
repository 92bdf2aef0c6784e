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
	"github.com/subtrack-app/subtrack-backend/internal/config"
)

type SourceMock struct{ mock.Mock }

func (m *SourceMock) FetchRates(ctx context.Context, base string, symbols []string) (map[string]float64, error) {
	args := m.Called(ctx, base, symbols)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]float64), args.Error(1)
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

func newService(source *SourceMock, c *CacheMock) *CurrencyService {
	cfg := config.ExchangeRates{
		BaseCurrency: "TRY",
		FetchTimeout: time.Second,
	}
	return NewCurrencyService(source, c, newNoopLogger(), cfg, 30*time.Minute)
}

func TestCurrencyService_GetRates(t *testing.T) {
	fresh := map[string]float64{"USD": 35.10, "EUR": 38.00, "GBP": 44.25}

	tests := []struct {
		name       string
		setupMocks func(s *SourceMock, c *CacheMock)
		want       map[string]float64
	}{
		{
			name: "cache hit skips source",
			setupMocks: func(_ *SourceMock, c *CacheMock) {
				c.On("Get", "currency:rates", mock.Anything).Run(func(args mock.Arguments) {
					*args.Get(1).(*map[string]float64) = fresh
				}).Return(true, nil).Once()
			},
			want: fresh,
		},
		{
			name: "cache miss fetches and caches with high priority",
			setupMocks: func(s *SourceMock, c *CacheMock) {
				c.On("Get", "currency:rates", mock.Anything).Return(false, nil).Once()
				s.On("FetchRates", mock.Anything, "TRY", TrackedCurrencies).Return(fresh, nil).Once()
				c.On("SetWithPriority", "currency:rates", fresh, 30*time.Minute, cache.PriorityHigh).
					Return(nil).Once()
			},
			want: fresh,
		},
		{
			name: "source failure serves default table",
			setupMocks: func(s *SourceMock, c *CacheMock) {
				c.On("Get", "currency:rates", mock.Anything).Return(false, nil).Once()
				s.On("FetchRates", mock.Anything, "TRY", TrackedCurrencies).
					Return(nil, errors.New("api down")).Once()
			},
			want: DefaultRates(),
		},
		{
			name: "cache error falls through to source",
			setupMocks: func(s *SourceMock, c *CacheMock) {
				c.On("Get", "currency:rates", mock.Anything).Return(false, errors.New("redis down")).Once()
				s.On("FetchRates", mock.Anything, "TRY", TrackedCurrencies).Return(fresh, nil).Once()
				c.On("SetWithPriority", "currency:rates", fresh, 30*time.Minute, cache.PriorityHigh).
					Return(nil).Once()
			},
			want: fresh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := new(SourceMock)
			c := new(CacheMock)
			svc := newService(source, c)

			tt.setupMocks(source, c)

			got := svc.GetRates(context.Background())
			assert.Equal(t, tt.want, got)

			source.AssertExpectations(t)
			c.AssertExpectations(t)
		})
	}
}

func TestCurrencyService_DefaultRates(t *testing.T) {
	rates := DefaultRates()
	assert.Equal(t, 34.50, rates["USD"])
	assert.Equal(t, 37.20, rates["EUR"])
	assert.Equal(t, 43.10, rates["GBP"])
}

func TestCurrencyService_UpdateRates_Error(t *testing.T) {
	source := new(SourceMock)
	c := new(CacheMock)
	svc := newService(source, c)

	source.On("FetchRates", mock.Anything, "TRY", TrackedCurrencies).
		Return(nil, errors.New("api down")).Once()

	err := svc.UpdateRates(context.Background())
	assert.Error(t, err)

	source.AssertExpectations(t)
	c.AssertExpectations(t)
}

func TestCurrencyService_Convert(t *testing.T) {
	fresh := map[string]float64{"USD": 34.50}

	tests := []struct {
		name     string
		amount   float64
		currency string
		want     float64
	}{
		{name: "base currency unchanged", amount: 100, currency: "TRY", want: 100},
		{name: "empty currency unchanged", amount: 100, currency: "", want: 100},
		{name: "known currency converted", amount: 2, currency: "USD", want: 69.0},
		{name: "unknown currency unchanged", amount: 100, currency: "JPY", want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := new(SourceMock)
			c := new(CacheMock)
			svc := newService(source, c)

			if tt.currency != "" && tt.currency != "TRY" {
				c.On("Get", "currency:rates", mock.Anything).Run(func(args mock.Arguments) {
					*args.Get(1).(*map[string]float64) = fresh
				}).Return(true, nil).Once()
			}

			got := svc.Convert(context.Background(), tt.amount, tt.currency)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}
