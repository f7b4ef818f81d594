package repository

import (
	"context"
	"fmt"
	"net/url"

	"verification_portal/internal/model"

	"go.uber.org/zap"
)

const categoryBasePath = "/api/organization-categories"

type CategoryRepository interface {
	Create(ctx context.Context, draft model.CategoryDraft) (*model.OrganizationCategory, error)
	GetByID(ctx context.Context, id string) (*model.OrganizationCategory, error)
	List(ctx context.Context, organizationID string) (*model.CategoryList, error)
	Update(ctx context.Context, id string, draft model.CategoryDraft) (*model.OrganizationCategory, error)
	Review(ctx context.Context, id string, decision model.ReviewDecision) (*model.OrganizationCategory, error)
}

type categoryRepository struct {
	http   Transport
	logger *zap.Logger
}

func NewCategoryRepository(http Transport, logger *zap.Logger) CategoryRepository {
	return &categoryRepository{
		http:   http,
		logger: logger,
	}
}

type categoryData struct {
	Category *model.OrganizationCategory `json:"category"`
}

func categoryPath(id string) string {
	return categoryBasePath + "/" + url.PathEscape(id)
}

func (r *categoryRepository) Create(ctx context.Context, draft model.CategoryDraft) (*model.OrganizationCategory, error) {
	var data categoryData
	if err := r.http.Post(ctx, categoryBasePath, draft, &data); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	if data.Category == nil {
		return nil, fmt.Errorf("failed to create category: empty response")
	}

	r.logger.Debug("category created", zap.String("id", data.Category.ID))
	return data.Category, nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*model.OrganizationCategory, error) {
	var data categoryData
	if err := r.http.Get(ctx, categoryPath(id), &data); err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return data.Category, nil
}

func (r *categoryRepository) List(ctx context.Context, organizationID string) (*model.CategoryList, error) {
	path := categoryBasePath
	if organizationID != "" {
		path += "?organizationId=" + url.QueryEscape(organizationID)
	}

	var list model.CategoryList
	if err := r.http.Get(ctx, path, &list); err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return &list, nil
}

func (r *categoryRepository) Update(ctx context.Context, id string, draft model.CategoryDraft) (*model.OrganizationCategory, error) {
	var data categoryData
	if err := r.http.Put(ctx, categoryPath(id), draft, &data); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return data.Category, nil
}

func (r *categoryRepository) Review(ctx context.Context, id string, decision model.ReviewDecision) (*model.OrganizationCategory, error) {
	var data categoryData
	if err := r.http.Post(ctx, categoryPath(id)+"/review", decision, &data); err != nil {
		return nil, fmt.Errorf("failed to review category: %w", err)
	}
	return data.Category, nil
}
