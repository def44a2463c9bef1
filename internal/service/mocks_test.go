package service

import (
	"context"
	"sync/atomic"

	"leadbridge/internal/models"
	"leadbridge/pkg/manychat/types"

	"github.com/stretchr/testify/mock"
)

type mockDatabase struct {
	mock.Mock
}

func (m *mockDatabase) SaveLead(ctx context.Context, lead *models.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *mockDatabase) GetLead(ctx context.Context, id string) (*models.Lead, error) {
	args := m.Called(ctx, id)
	if lead := args.Get(0); lead != nil {
		return lead.(*models.Lead), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDatabase) GetVisibleLeads(ctx context.Context) ([]models.Lead, error) {
	args := m.Called(ctx)
	if leads := args.Get(0); leads != nil {
		return leads.([]models.Lead), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDatabase) GetAllLeads(ctx context.Context) ([]models.Lead, error) {
	args := m.Called(ctx)
	if leads := args.Get(0); leads != nil {
		return leads.([]models.Lead), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDatabase) DeleteLead(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockDatabase) GetSyncState(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *mockDatabase) SetSyncState(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

type mockContactClient struct {
	mock.Mock
}

func (m *mockContactClient) GetContacts(ctx context.Context, page int, filter string) ([]types.Contact, error) {
	args := m.Called(ctx, page, filter)
	if contacts := args.Get(0); contacts != nil {
		return contacts.([]types.Contact), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockContactClient) GetContact(ctx context.Context, contactID string, includeHistory bool) (*types.ContactWithHistory, error) {
	args := m.Called(ctx, contactID, includeHistory)
	if contact := args.Get(0); contact != nil {
		return contact.(*types.ContactWithHistory), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockContactClient) GetContactByPhone(ctx context.Context, number string) (*types.Contact, error) {
	args := m.Called(ctx, number)
	if contact := args.Get(0); contact != nil {
		return contact.(*types.Contact), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockContactClient) CreateContact(ctx context.Context, number, name string) (*types.Contact, error) {
	args := m.Called(ctx, number, name)
	if contact := args.Get(0); contact != nil {
		return contact.(*types.Contact), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockContactClient) UpdateContact(ctx context.Context, contactID string, update types.UpdateContactRequest) (*types.Contact, error) {
	args := m.Called(ctx, contactID, update)
	if contact := args.Get(0); contact != nil {
		return contact.(*types.Contact), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockContactClient) SendMessage(ctx context.Context, contactID, message string) (*types.SendMessageResponse, error) {
	args := m.Called(ctx, contactID, message)
	if resp := args.Get(0); resp != nil {
		return resp.(*types.SendMessageResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockContactClient) SendText(ctx context.Context, number, text string) (*types.SendMessageResponse, error) {
	args := m.Called(ctx, number, text)
	if resp := args.Get(0); resp != nil {
		return resp.(*types.SendMessageResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

// countingNotifier records change notifications; safe for the concurrent
// reconciliation paths
type countingNotifier struct {
	count atomic.Int64
}

func (n *countingNotifier) NotifyChanged() {
	n.count.Add(1)
}

func (n *countingNotifier) Count() int64 {
	return n.count.Load()
}
