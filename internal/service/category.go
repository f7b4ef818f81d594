package service

import (
	"context"

	"verification_portal/internal/apperrors"
	"verification_portal/internal/filter"
	"verification_portal/internal/lifecycle"
	"verification_portal/internal/messaging"
	"verification_portal/internal/metrics"
	"verification_portal/internal/model"
	"verification_portal/internal/repository"
	"verification_portal/internal/validation"
	"verification_portal/types"

	"go.uber.org/zap"
)

type CategoryService interface {
	Create(ctx context.Context, actor model.Actor, draft model.CategoryDraft) (*model.OrganizationCategory, error)
	GetByID(ctx context.Context, id string) (model.Result[*model.OrganizationCategory], error)
	List(ctx context.Context, organizationID string) (model.Result[[]model.OrganizationCategory], error)
	Update(ctx context.Context, actor model.Actor, id string, draft model.CategoryDraft) (*model.OrganizationCategory, error)
	Review(ctx context.Context, actor model.Actor, id string, decision model.ReviewDecision) (*model.OrganizationCategory, error)
}

type categoryService struct {
	repo      repository.CategoryRepository
	machine   *lifecycle.Machine[model.CategoryStatus]
	validator *validation.Validator
	events    EventPublisher
	fallback  *fallback
	logger    *zap.Logger
}

func NewCategoryService(
	repo repository.CategoryRepository,
	snapshots repository.SnapshotRepository,
	events EventPublisher,
	opts FallbackOptions,
	logger *zap.Logger,
) CategoryService {
	return &categoryService{
		repo:      repo,
		machine:   lifecycle.CategoryMachine(),
		validator: validation.New(),
		events:    events,
		fallback:  newFallback(opts, snapshots, logger),
		logger:    logger,
	}
}

func (s *categoryService) Create(ctx context.Context, actor model.Actor, draft model.CategoryDraft) (*model.OrganizationCategory, error) {
	draft = draft.Normalize()
	if err := validation.AsError("create category", s.validator.ValidateCategory(draft, true)); err != nil {
		return nil, s.rejected("create", "", err)
	}

	created, err := s.repo.Create(ctx, draft)
	if err != nil {
		s.logger.Error("failed to create category", zap.Error(err))
		return nil, err
	}

	s.logger.Info("category created", zap.String("id", created.ID), zap.String("name", created.CategoryName))
	s.publish(ctx, actor, "create", created)
	return created, nil
}

func (s *categoryService) GetByID(ctx context.Context, id string) (model.Result[*model.OrganizationCategory], error) {
	if err := requireID("get category", id); err != nil {
		return model.Result[*model.OrganizationCategory]{}, err
	}

	return read(ctx, s.fallback, source[*model.OrganizationCategory]{
		kind: types.SnapshotCategory,
		key:  id,
		live: func(ctx context.Context) (*model.OrganizationCategory, error) {
			return s.fetch(ctx, id)
		},
		demo: func() (*model.OrganizationCategory, bool) {
			return demoCategory(id)
		},
	})
}

func (s *categoryService) List(ctx context.Context, organizationID string) (model.Result[[]model.OrganizationCategory], error) {
	key := organizationID
	if key == "" {
		key = "-"
	}
	return read(ctx, s.fallback, source[[]model.OrganizationCategory]{
		kind: types.SnapshotCategories,
		key:  key,
		live: func(ctx context.Context) ([]model.OrganizationCategory, error) {
			list, err := s.repo.List(ctx, organizationID)
			if err != nil {
				return nil, err
			}
			return nonNil(list.Categories), nil
		},
		demo: func() ([]model.OrganizationCategory, bool) {
			return filter.Categories(demoCategories(), "", filter.All, organizationID), true
		},
	})
}

// Update разрешен только для категорий в статусе pending
func (s *categoryService) Update(ctx context.Context, actor model.Actor, id string, draft model.CategoryDraft) (*model.OrganizationCategory, error) {
	if err := requireID("update category", id); err != nil {
		return nil, err
	}

	current, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.machine.Next(current.Status, lifecycle.ActionUpdate, actor); err != nil {
		return nil, s.rejected(lifecycle.ActionUpdate, id, err)
	}

	draft = draft.Normalize()
	if err := validation.AsError("update category", s.validator.ValidateCategory(draft, false)); err != nil {
		return nil, s.rejected(lifecycle.ActionUpdate, id, err)
	}

	updated, err := s.repo.Update(ctx, id, draft)
	if err != nil {
		s.logger.Error("failed to update category", zap.Error(err), zap.String("id", id))
		return nil, err
	}
	if updated == nil {
		return nil, apperrors.NotFound("update category", "category not found: "+id)
	}

	s.logger.Info("category updated", zap.String("id", id))
	s.publish(ctx, actor, string(lifecycle.ActionUpdate), updated)
	return updated, nil
}

func (s *categoryService) Review(ctx context.Context, actor model.Actor, id string, decision model.ReviewDecision) (*model.OrganizationCategory, error) {
	if err := requireID("review category", id); err != nil {
		return nil, err
	}

	action, err := lifecycle.ReviewAction(decision.Status)
	if err != nil {
		return nil, s.rejected("review", id, err)
	}

	current, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.machine.Next(current.Status, action, actor); err != nil {
		return nil, s.rejected(action, id, err)
	}

	reviewed, err := s.repo.Review(ctx, id, decision)
	if err != nil {
		s.logger.Error("failed to review category", zap.Error(err), zap.String("id", id))
		return nil, err
	}
	if reviewed == nil {
		return nil, apperrors.NotFound("review category", "category not found: "+id)
	}

	s.logger.Info("category reviewed", zap.String("id", id), zap.String("status", decision.Status))
	s.publish(ctx, actor, string(action), reviewed)
	return reviewed, nil
}

func (s *categoryService) fetch(ctx context.Context, id string) (*model.OrganizationCategory, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get category from repository", zap.Error(err), zap.String("id", id))
		return nil, err
	}
	if c == nil {
		return nil, apperrors.NotFound("get category", "category not found: "+id)
	}
	return c, nil
}

func (s *categoryService) rejected(action lifecycle.Action, id string, err error) error {
	kind := apperrors.KindOf(err)
	metrics.LifecycleRejections.WithLabelValues("category_"+string(action), string(kind)).Inc()
	s.logger.Info("category operation rejected", zap.String("id", id), zap.String("action", string(action)), zap.String("kind", string(kind)), zap.Error(err))
	return err
}

func (s *categoryService) publish(ctx context.Context, actor model.Actor, action string, c *model.OrganizationCategory) {
	if s.events == nil {
		return
	}
	event := messaging.LifecycleEvent{
		Resource:       "category",
		VerificationID: c.ID,
		Status:         string(c.Status),
		Action:         action,
		ActorID:        actor.ID,
	}
	if err := s.events.PublishLifecycleEvent(ctx, event); err != nil {
		s.logger.Warn("failed to publish lifecycle event", zap.Error(err), zap.String("id", c.ID), zap.String("action", action))
	}
}
