package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Rrens/card-workbench/internal/domain"
	"github.com/Rrens/card-workbench/internal/repository/redis"
)

// MockCatalog mocks the Catalog interface
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) ListDomains(ctx context.Context) ([]domain.Domain, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Domain), args.Error(1)
}

func (m *MockCatalog) ListUsers(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockCatalog) ListCards(ctx context.Context) ([]domain.Card, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Card), args.Error(1)
}

func (m *MockCatalog) Feed(ctx context.Context, q domain.FeedQuery) (*domain.FeedPage, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FeedPage), args.Error(1)
}

func (m *MockCatalog) GetCardFull(ctx context.Context, id int64) (*domain.CardFull, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CardFull), args.Error(1)
}

func (m *MockCatalog) CreateCard(ctx context.Context, in domain.CardCreate) (*domain.Card, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Card), args.Error(1)
}

func (m *MockCatalog) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockCorpusCache mocks the CorpusCache interface
type MockCorpusCache struct {
	mock.Mock
}

func (m *MockCorpusCache) Get(ctx context.Context, driver string) (*redis.Corpus, error) {
	args := m.Called(ctx, driver)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*redis.Corpus), args.Error(1)
}

func (m *MockCorpusCache) Set(ctx context.Context, driver string, corpus *redis.Corpus) error {
	return m.Called(ctx, driver, corpus).Error(0)
}

func (m *MockCorpusCache) Invalidate(ctx context.Context, driver string) error {
	return m.Called(ctx, driver).Error(0)
}

func (m *MockCorpusCache) FlushAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
