package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"shipdesk/internal/domain"
	"shipdesk/internal/service"
)

// MockDraftService is a mock implementation of service.DraftService.
type MockDraftService struct {
	mock.Mock
}

func (m *MockDraftService) Get(ctx context.Context) service.DraftView {
	args := m.Called(ctx)
	return args.Get(0).(service.DraftView)
}

func (m *MockDraftService) SetMode(ctx context.Context, mode domain.EntryMode) (service.DraftView, error) {
	args := m.Called(ctx, mode)
	return args.Get(0).(service.DraftView), args.Error(1)
}

func (m *MockDraftService) Replace(ctx context.Context, d domain.ShipmentDraft) (service.DraftView, error) {
	args := m.Called(ctx, d)
	return args.Get(0).(service.DraftView), args.Error(1)
}

func (m *MockDraftService) Patch(ctx context.Context, patch json.RawMessage) (service.DraftView, error) {
	args := m.Called(ctx, patch)
	return args.Get(0).(service.DraftView), args.Error(1)
}

func (m *MockDraftService) Clear(ctx context.Context) (service.DraftView, error) {
	args := m.Called(ctx)
	return args.Get(0).(service.DraftView), args.Error(1)
}

func (m *MockDraftService) AutoFilled(ctx context.Context, path string) bool {
	args := m.Called(ctx, path)
	return args.Bool(0)
}

func (m *MockDraftService) Extract(ctx context.Context, files []service.UploadedFile) (*service.ExtractResult, error) {
	args := m.Called(ctx, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExtractResult), args.Error(1)
}

func (m *MockDraftService) Quote(ctx context.Context) domain.PriceBreakdown {
	args := m.Called(ctx)
	return args.Get(0).(domain.PriceBreakdown)
}
