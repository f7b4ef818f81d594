package repository

import (
	"context"
	"fmt"
	"net/url"

	"verification_portal/internal/model"

	"go.uber.org/zap"
)

const verificationBasePath = "/api/data-verification"

// Transport - HTTP клиент бэкенда, см. transport.Client
type Transport interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
}

type VerificationRepository interface {
	Create(ctx context.Context, draft model.Draft) (*model.Verification, error)
	GetByID(ctx context.Context, id string) (*model.Verification, error)
	ListMine(ctx context.Context) (*model.VerificationList, error)
	ListAll(ctx context.Context, status string) (*model.VerificationList, error)
	Update(ctx context.Context, id string, patch model.DraftPatch) (*model.Verification, error)
	Submit(ctx context.Context, id string) (*model.Verification, error)
	Review(ctx context.Context, id string, decision model.ReviewDecision) (*model.Verification, error)
	Organizations(ctx context.Context) (*model.OrganizationList, error)
	Users(ctx context.Context) (*model.UserList, error)
	AdminUsers(ctx context.Context) (*model.UserList, error)
	Stats(ctx context.Context) (model.Stats, error)
}

type verificationRepository struct {
	http   Transport
	logger *zap.Logger
}

func NewVerificationRepository(http Transport, logger *zap.Logger) VerificationRepository {
	return &verificationRepository{
		http:   http,
		logger: logger,
	}
}

type verificationData struct {
	Verification *model.Verification `json:"verification"`
}

type statsData struct {
	Stats model.Stats `json:"stats"`
}

func verificationPath(id string) string {
	return verificationBasePath + "/" + url.PathEscape(id)
}

func (r *verificationRepository) Create(ctx context.Context, draft model.Draft) (*model.Verification, error) {
	var data verificationData
	if err := r.http.Post(ctx, verificationBasePath, draft, &data); err != nil {
		return nil, fmt.Errorf("failed to create verification: %w", err)
	}
	if data.Verification == nil {
		return nil, fmt.Errorf("failed to create verification: empty response")
	}

	r.logger.Debug("verification created", zap.String("id", data.Verification.ID))
	return data.Verification, nil
}

func (r *verificationRepository) GetByID(ctx context.Context, id string) (*model.Verification, error) {
	var data verificationData
	if err := r.http.Get(ctx, verificationPath(id), &data); err != nil {
		return nil, fmt.Errorf("failed to get verification: %w", err)
	}
	return data.Verification, nil
}

func (r *verificationRepository) ListMine(ctx context.Context) (*model.VerificationList, error) {
	var list model.VerificationList
	if err := r.http.Get(ctx, verificationBasePath+"/my-verifications", &list); err != nil {
		return nil, fmt.Errorf("failed to get my verifications: %w", err)
	}
	return &list, nil
}

func (r *verificationRepository) ListAll(ctx context.Context, status string) (*model.VerificationList, error) {
	path := verificationBasePath + "/admin/all"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}

	var list model.VerificationList
	if err := r.http.Get(ctx, path, &list); err != nil {
		return nil, fmt.Errorf("failed to get all verifications: %w", err)
	}
	return &list, nil
}

func (r *verificationRepository) Update(ctx context.Context, id string, patch model.DraftPatch) (*model.Verification, error) {
	var data verificationData
	if err := r.http.Put(ctx, verificationPath(id), patch, &data); err != nil {
		return nil, fmt.Errorf("failed to update verification: %w", err)
	}
	return data.Verification, nil
}

func (r *verificationRepository) Submit(ctx context.Context, id string) (*model.Verification, error) {
	var data verificationData
	if err := r.http.Post(ctx, verificationPath(id)+"/submit", struct{}{}, &data); err != nil {
		return nil, fmt.Errorf("failed to submit verification: %w", err)
	}
	return data.Verification, nil
}

func (r *verificationRepository) Review(ctx context.Context, id string, decision model.ReviewDecision) (*model.Verification, error) {
	var data verificationData
	if err := r.http.Post(ctx, verificationPath(id)+"/review", decision, &data); err != nil {
		return nil, fmt.Errorf("failed to review verification: %w", err)
	}
	return data.Verification, nil
}

func (r *verificationRepository) Organizations(ctx context.Context) (*model.OrganizationList, error) {
	var list model.OrganizationList
	if err := r.http.Get(ctx, verificationBasePath+"/organizations", &list); err != nil {
		return nil, fmt.Errorf("failed to get organizations: %w", err)
	}
	return &list, nil
}

func (r *verificationRepository) Users(ctx context.Context) (*model.UserList, error) {
	var list model.UserList
	if err := r.http.Get(ctx, verificationBasePath+"/users", &list); err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	return &list, nil
}

func (r *verificationRepository) AdminUsers(ctx context.Context) (*model.UserList, error) {
	var list model.UserList
	if err := r.http.Get(ctx, verificationBasePath+"/admin/users", &list); err != nil {
		return nil, fmt.Errorf("failed to get verification users: %w", err)
	}
	return &list, nil
}

func (r *verificationRepository) Stats(ctx context.Context) (model.Stats, error) {
	var data statsData
	if err := r.http.Get(ctx, verificationBasePath+"/admin/stats", &data); err != nil {
		return nil, fmt.Errorf("failed to get verification stats: %w", err)
	}
	return data.Stats, nil
}
