package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"shipdesk/internal/domain"
)

// MockDraftRepo is a mock implementation of port.DraftRepository.
type MockDraftRepo struct {
	mock.Mock
}

func (m *MockDraftRepo) Load(ctx context.Context, namespace string) (*domain.DraftRecord, error) {
	args := m.Called(ctx, namespace)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DraftRecord), args.Error(1)
}

func (m *MockDraftRepo) Save(ctx context.Context, namespace string, rec *domain.DraftRecord) error {
	args := m.Called(ctx, namespace, rec)
	return args.Error(0)
}

func (m *MockDraftRepo) Delete(ctx context.Context, namespace string) error {
	args := m.Called(ctx, namespace)
	return args.Error(0)
}
