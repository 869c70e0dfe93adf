package service

import (
	"context"

	"github.com/Rrens/smart-assistant/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockAuthAPI mocks the AuthAPI interface
type MockAuthAPI struct {
	mock.Mock
}

func (m *MockAuthAPI) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthResponse), args.Error(1)
}

func (m *MockAuthAPI) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthResponse), args.Error(1)
}

func (m *MockAuthAPI) CurrentUser(ctx context.Context) (*domain.AuthUser, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthUser), args.Error(1)
}

// MockKnowledgeBaseAPI mocks the KnowledgeBaseAPI interface
type MockKnowledgeBaseAPI struct {
	mock.Mock
}

func (m *MockKnowledgeBaseAPI) CreateKnowledgeBase(ctx context.Context, req domain.KnowledgeBaseCreate) (*domain.KnowledgeBase, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KnowledgeBase), args.Error(1)
}

func (m *MockKnowledgeBaseAPI) ListKnowledgeBases(ctx context.Context) ([]domain.KnowledgeBase, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.KnowledgeBase), args.Error(1)
}

func (m *MockKnowledgeBaseAPI) KnowledgeBaseStatus(ctx context.Context, id string) (*domain.KnowledgeBaseUpdate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KnowledgeBaseUpdate), args.Error(1)
}

func (m *MockKnowledgeBaseAPI) DeleteKnowledgeBase(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockResponder mocks llm.Responder
type MockResponder struct {
	mock.Mock
}

func (m *MockResponder) Name() string {
	return "mock"
}

func (m *MockResponder) IsConfigured() bool {
	return true
}

func (m *MockResponder) Reply(ctx context.Context, content string) (string, error) {
	args := m.Called(ctx, content)
	return args.String(0), args.Error(1)
}
