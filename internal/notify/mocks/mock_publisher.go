package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/PYTHTRADER/findtrader/internal/model"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, n model.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
