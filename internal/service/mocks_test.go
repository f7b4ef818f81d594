package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"verification_portal/internal/apperrors"
	"verification_portal/internal/messaging"
	"verification_portal/internal/model"
	"verification_portal/types"
)

var errConnRefused = apperrors.Transport("GET /api/data-verification", errors.New("connection refused"))

// Mock для VerificationRepository
type mockVerificationRepository struct {
	createFunc        func(ctx context.Context, draft model.Draft) (*model.Verification, error)
	getByIDFunc       func(ctx context.Context, id string) (*model.Verification, error)
	listMineFunc      func(ctx context.Context) (*model.VerificationList, error)
	listAllFunc       func(ctx context.Context, status string) (*model.VerificationList, error)
	updateFunc        func(ctx context.Context, id string, patch model.DraftPatch) (*model.Verification, error)
	submitFunc        func(ctx context.Context, id string) (*model.Verification, error)
	reviewFunc        func(ctx context.Context, id string, decision model.ReviewDecision) (*model.Verification, error)
	organizationsFunc func(ctx context.Context) (*model.OrganizationList, error)
	usersFunc         func(ctx context.Context) (*model.UserList, error)
	statsFunc         func(ctx context.Context) (model.Stats, error)

	mutations int
}

func (m *mockVerificationRepository) Create(ctx context.Context, draft model.Draft) (*model.Verification, error) {
	m.mutations++
	if m.createFunc != nil {
		return m.createFunc(ctx, draft)
	}
	return nil, errors.New("create not configured")
}

func (m *mockVerificationRepository) GetByID(ctx context.Context, id string) (*model.Verification, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockVerificationRepository) ListMine(ctx context.Context) (*model.VerificationList, error) {
	if m.listMineFunc != nil {
		return m.listMineFunc(ctx)
	}
	return &model.VerificationList{}, nil
}

func (m *mockVerificationRepository) ListAll(ctx context.Context, status string) (*model.VerificationList, error) {
	if m.listAllFunc != nil {
		return m.listAllFunc(ctx, status)
	}
	return &model.VerificationList{}, nil
}

func (m *mockVerificationRepository) Update(ctx context.Context, id string, patch model.DraftPatch) (*model.Verification, error) {
	m.mutations++
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, patch)
	}
	return nil, nil
}

func (m *mockVerificationRepository) Submit(ctx context.Context, id string) (*model.Verification, error) {
	m.mutations++
	if m.submitFunc != nil {
		return m.submitFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockVerificationRepository) Review(ctx context.Context, id string, decision model.ReviewDecision) (*model.Verification, error) {
	m.mutations++
	if m.reviewFunc != nil {
		return m.reviewFunc(ctx, id, decision)
	}
	return nil, nil
}

func (m *mockVerificationRepository) Organizations(ctx context.Context) (*model.OrganizationList, error) {
	if m.organizationsFunc != nil {
		return m.organizationsFunc(ctx)
	}
	return &model.OrganizationList{}, nil
}

func (m *mockVerificationRepository) Users(ctx context.Context) (*model.UserList, error) {
	if m.usersFunc != nil {
		return m.usersFunc(ctx)
	}
	return &model.UserList{}, nil
}

func (m *mockVerificationRepository) AdminUsers(ctx context.Context) (*model.UserList, error) {
	if m.usersFunc != nil {
		return m.usersFunc(ctx)
	}
	return &model.UserList{}, nil
}

func (m *mockVerificationRepository) Stats(ctx context.Context) (model.Stats, error) {
	if m.statsFunc != nil {
		return m.statsFunc(ctx)
	}
	return nil, nil
}

// Mock для CategoryRepository
type mockCategoryRepository struct {
	createFunc  func(ctx context.Context, draft model.CategoryDraft) (*model.OrganizationCategory, error)
	getByIDFunc func(ctx context.Context, id string) (*model.OrganizationCategory, error)
	listFunc    func(ctx context.Context, organizationID string) (*model.CategoryList, error)
	updateFunc  func(ctx context.Context, id string, draft model.CategoryDraft) (*model.OrganizationCategory, error)
	reviewFunc  func(ctx context.Context, id string, decision model.ReviewDecision) (*model.OrganizationCategory, error)

	mutations int
}

func (m *mockCategoryRepository) Create(ctx context.Context, draft model.CategoryDraft) (*model.OrganizationCategory, error) {
	m.mutations++
	if m.createFunc != nil {
		return m.createFunc(ctx, draft)
	}
	return nil, errors.New("create not configured")
}

func (m *mockCategoryRepository) GetByID(ctx context.Context, id string) (*model.OrganizationCategory, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockCategoryRepository) List(ctx context.Context, organizationID string) (*model.CategoryList, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, organizationID)
	}
	return &model.CategoryList{}, nil
}

func (m *mockCategoryRepository) Update(ctx context.Context, id string, draft model.CategoryDraft) (*model.OrganizationCategory, error) {
	m.mutations++
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, draft)
	}
	return nil, nil
}

func (m *mockCategoryRepository) Review(ctx context.Context, id string, decision model.ReviewDecision) (*model.OrganizationCategory, error) {
	m.mutations++
	if m.reviewFunc != nil {
		return m.reviewFunc(ctx, id, decision)
	}
	return nil, nil
}

// Хранилище снимков в памяти
type memorySnapshots struct {
	items   map[string][]byte
	loadErr error
}

func newMemorySnapshots() *memorySnapshots {
	return &memorySnapshots{items: make(map[string][]byte)}
}

func (m *memorySnapshots) Save(ctx context.Context, kind, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	m.items[kind+":"+key] = data
	return nil
}

func (m *memorySnapshots) Load(ctx context.Context, kind, key string) (*types.Snapshot, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	data, ok := m.items[kind+":"+key]
	if !ok {
		return nil, nil
	}
	return &types.Snapshot{Kind: kind, Key: key, Payload: data, CapturedAt: time.Now()}, nil
}

// Mock для EventPublisher
type mockPublisher struct {
	events []messaging.LifecycleEvent
	err    error
}

func (m *mockPublisher) PublishLifecycleEvent(ctx context.Context, event messaging.LifecycleEvent) error {
	m.events = append(m.events, event)
	return m.err
}

// scenarioDraft - полностью заполненный черновик
func scenarioDraft(id string) *model.Verification {
	return &model.Verification{
		ID:             id,
		VerificationID: "DV-001",
		Status:         model.VerificationStatusDraft,
		Country:        "Nigeria",
		State:          "Lagos",
		Lga:            "Ikeja",
		City:           "Ikeja",
		CityRegion:     "Allen Avenue",
		OrganizationID: "org-1",
		TargetUserID:   "user-1",
	}
}

func withStatus(v *model.Verification, status model.VerificationStatus) *model.Verification {
	v.Status = status
	return v
}

var (
	staff = model.Actor{ID: "user-1"}
	admin = model.Actor{ID: "admin-1", Privileged: true}
)
