package workbench

import (
	"context"

	"github.com/Rrens/card-workbench/internal/domain"
	"github.com/stretchr/testify/mock"
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

// MockResponder mocks the Responder interface
type MockResponder struct {
	mock.Mock
}

func (m *MockResponder) Reply(ctx context.Context, req domain.ReplyRequest) (*domain.Reply, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reply), args.Error(1)
}
