package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"plagcheck/internal/model"
	"plagcheck/internal/service"
	"plagcheck/internal/storage"
)

type MockCheckService struct {
	mock.Mock
}

func (m *MockCheckService) Check(ctx context.Context, main model.UploadedFile, folder []model.UploadedFile) (*model.Report, error) {
	args := m.Called(ctx, main, folder)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Report), args.Error(1)
}

func (m *MockCheckService) List(ctx context.Context, limit, offset int) (*service.ReportListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReportListResult), args.Error(1)
}

func (m *MockCheckService) Get(ctx context.Context, id string) (*model.Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Report), args.Error(1)
}

func (m *MockCheckService) MainDocument(ctx context.Context, id string) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, storage.ObjectInfo{}, args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(storage.ObjectInfo), args.Error(2)
}

func (m *MockCheckService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
