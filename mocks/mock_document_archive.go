package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"shipdesk/internal/port"
)

// MockDocumentArchive is a mock implementation of port.DocumentArchive.
type MockDocumentArchive struct {
	mock.Mock
}

func (m *MockDocumentArchive) Archive(ctx context.Context, input port.ArchiveInput) (*port.ArchiveOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ArchiveOutput), args.Error(1)
}

func (m *MockDocumentArchive) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
