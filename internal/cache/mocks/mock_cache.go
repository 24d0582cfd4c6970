package mocks

import (
	"context"

	"plagcheck/internal/similarity"

	"github.com/stretchr/testify/mock"
)

type MockComparisonCache struct {
	mock.Mock
}

func (m *MockComparisonCache) Get(ctx context.Context, main, other string) (similarity.Result, bool, error) {
	args := m.Called(ctx, main, other)
	return args.Get(0).(similarity.Result), args.Bool(1), args.Error(2)
}

func (m *MockComparisonCache) Set(ctx context.Context, main, other string, res similarity.Result) error {
	args := m.Called(ctx, main, other, res)
	return args.Error(0)
}
