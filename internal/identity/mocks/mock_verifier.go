package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, authorization string) (string, error) {
	args := m.Called(ctx, authorization)
	return args.String(0), args.Error(1)
}
