package service

import (
	"context"
	"fmt"

	"verification_portal/internal/apperrors"
	"verification_portal/internal/lifecycle"
	"verification_portal/internal/messaging"
	"verification_portal/internal/metrics"
	"verification_portal/internal/model"
	"verification_portal/internal/repository"
	"verification_portal/internal/validation"
	"verification_portal/types"

	"go.uber.org/zap"
)

// EventPublisher - получатель событий жизненного цикла, обычно messaging.NATSClient
type EventPublisher interface {
	PublishLifecycleEvent(ctx context.Context, event messaging.LifecycleEvent) error
}

type VerificationService interface {
	Create(ctx context.Context, actor model.Actor, draft model.Draft) (*model.Verification, error)
	GetByID(ctx context.Context, id string) (model.Result[*model.Verification], error)
	ListMine(ctx context.Context) (model.Result[[]model.VerificationSummary], error)
	ListAll(ctx context.Context, actor model.Actor, status string) (model.Result[[]model.VerificationSummary], error)
	Update(ctx context.Context, actor model.Actor, id string, patch model.DraftPatch) (*model.Verification, error)
	Submit(ctx context.Context, actor model.Actor, id string) (*model.Verification, error)
	Review(ctx context.Context, actor model.Actor, id string, decision model.ReviewDecision) (*model.Verification, error)
	Organizations(ctx context.Context) (model.Result[[]model.Organization], error)
	Users(ctx context.Context) (model.Result[[]model.User], error)
	AdminUsers(ctx context.Context, actor model.Actor) (model.Result[[]model.User], error)
	Stats(ctx context.Context) (model.Stats, error)
}

type verificationService struct {
	repo      repository.VerificationRepository
	machine   *lifecycle.Machine[model.VerificationStatus]
	validator *validation.Validator
	events    EventPublisher
	fallback  *fallback
	logger    *zap.Logger
}

// NewVerificationService собирает сервис. snapshots и events могут быть nil.
func NewVerificationService(
	repo repository.VerificationRepository,
	snapshots repository.SnapshotRepository,
	events EventPublisher,
	opts FallbackOptions,
	logger *zap.Logger,
) VerificationService {
	return &verificationService{
		repo:      repo,
		machine:   lifecycle.VerificationMachine(),
		validator: validation.New(),
		events:    events,
		fallback:  newFallback(opts, snapshots, logger),
		logger:    logger,
	}
}

func requireID(op, id string) error {
	if id == "" {
		return apperrors.Validation(op, map[string]string{"id": "id is required"})
	}
	return nil
}

func (s *verificationService) Create(ctx context.Context, actor model.Actor, draft model.Draft) (*model.Verification, error) {
	created, err := s.repo.Create(ctx, draft)
	if err != nil {
		s.logger.Error("failed to create verification", zap.Error(err))
		return nil, err
	}

	s.logger.Info("verification created", zap.String("id", created.ID), zap.String("verification_id", created.VerificationID))
	s.publish(ctx, actor, "create", created)
	return created, nil
}

func (s *verificationService) GetByID(ctx context.Context, id string) (model.Result[*model.Verification], error) {
	if err := requireID("get verification", id); err != nil {
		return model.Result[*model.Verification]{}, err
	}

	return read(ctx, s.fallback, source[*model.Verification]{
		kind: types.SnapshotVerification,
		key:  id,
		live: func(ctx context.Context) (*model.Verification, error) {
			return s.fetch(ctx, id)
		},
		demo: func() (*model.Verification, bool) {
			return demoVerification(id), true
		},
	})
}

func (s *verificationService) ListMine(ctx context.Context) (model.Result[[]model.VerificationSummary], error) {
	return read(ctx, s.fallback, source[[]model.VerificationSummary]{
		kind: types.SnapshotMyVerifications,
		key:  "-",
		live: func(ctx context.Context) ([]model.VerificationSummary, error) {
			list, err := s.repo.ListMine(ctx)
			if err != nil {
				return nil, err
			}
			return nonNil(list.Verifications), nil
		},
		demo: func() ([]model.VerificationSummary, bool) {
			return demoVerifications(), true
		},
	})
}

// ListAll - список администратора. Снимок отдается только привилегированному вызывающему.
func (s *verificationService) ListAll(ctx context.Context, actor model.Actor, status string) (model.Result[[]model.VerificationSummary], error) {
	if status != "" && !model.VerificationStatus(status).IsValid() {
		return model.Result[[]model.VerificationSummary]{}, apperrors.Validation("list verifications", map[string]string{
			"status": fmt.Sprintf("unknown status %q", status),
		})
	}

	key := status
	if key == "" {
		key = "-"
	}
	return read(ctx, s.fallback, source[[]model.VerificationSummary]{
		kind:       types.SnapshotAllVerifications,
		key:        key,
		restricted: !actor.Privileged,
		live: func(ctx context.Context) ([]model.VerificationSummary, error) {
			list, err := s.repo.ListAll(ctx, status)
			if err != nil {
				return nil, err
			}
			return nonNil(list.Verifications), nil
		},
		demo: func() ([]model.VerificationSummary, bool) {
			items := demoVerifications()
			if status == "" {
				return items, true
			}
			out := make([]model.VerificationSummary, 0, len(items))
			for _, v := range items {
				if string(v.Status) == status {
					out = append(out, v)
				}
			}
			return out, true
		},
	})
}

// Update меняет только черновик. Статус проверяется до обращения к бэкенду.
func (s *verificationService) Update(ctx context.Context, actor model.Actor, id string, patch model.DraftPatch) (*model.Verification, error) {
	if err := requireID("update verification", id); err != nil {
		return nil, err
	}

	current, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.machine.Next(current.Status, lifecycle.ActionUpdate, actor); err != nil {
		return nil, s.rejected(lifecycle.ActionUpdate, id, err)
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		s.logger.Error("failed to update verification", zap.Error(err), zap.String("id", id))
		return nil, err
	}
	if updated == nil {
		return nil, apperrors.NotFound("update verification", "verification not found: "+id)
	}

	s.logger.Info("verification updated", zap.String("id", id), zap.Strings("fields", patch.Fields()))
	s.publish(ctx, actor, string(lifecycle.ActionUpdate), updated)
	return updated, nil
}

// Submit: сначала статус, потом обязательные поля, потом бэкенд
func (s *verificationService) Submit(ctx context.Context, actor model.Actor, id string) (*model.Verification, error) {
	if err := requireID("submit verification", id); err != nil {
		return nil, err
	}

	current, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.machine.Next(current.Status, lifecycle.ActionSubmit, actor); err != nil {
		return nil, s.rejected(lifecycle.ActionSubmit, id, err)
	}
	if err := validation.AsError("submit verification", s.validator.ValidateDraft(current.Draft())); err != nil {
		return nil, s.rejected(lifecycle.ActionSubmit, id, err)
	}

	submitted, err := s.repo.Submit(ctx, id)
	if err != nil {
		s.logger.Error("failed to submit verification", zap.Error(err), zap.String("id", id))
		return nil, err
	}
	if submitted == nil {
		return nil, apperrors.NotFound("submit verification", "verification not found: "+id)
	}

	s.logger.Info("verification submitted", zap.String("id", id))
	s.publish(ctx, actor, string(lifecycle.ActionSubmit), submitted)
	return submitted, nil
}

func (s *verificationService) Review(ctx context.Context, actor model.Actor, id string, decision model.ReviewDecision) (*model.Verification, error) {
	if err := requireID("review verification", id); err != nil {
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
		s.logger.Error("failed to review verification", zap.Error(err), zap.String("id", id))
		return nil, err
	}
	if reviewed == nil {
		return nil, apperrors.NotFound("review verification", "verification not found: "+id)
	}

	s.logger.Info("verification reviewed", zap.String("id", id), zap.String("status", decision.Status))
	s.publish(ctx, actor, string(action), reviewed)
	return reviewed, nil
}

func (s *verificationService) Organizations(ctx context.Context) (model.Result[[]model.Organization], error) {
	return read(ctx, s.fallback, source[[]model.Organization]{
		kind: types.SnapshotOrganizations,
		key:  "-",
		live: func(ctx context.Context) ([]model.Organization, error) {
			list, err := s.repo.Organizations(ctx)
			if err != nil {
				return nil, err
			}
			return nonNil(list.Organizations), nil
		},
		demo: func() ([]model.Organization, bool) {
			return demoOrganizations(), true
		},
	})
}

func (s *verificationService) Users(ctx context.Context) (model.Result[[]model.User], error) {
	return read(ctx, s.fallback, source[[]model.User]{
		kind: types.SnapshotUsers,
		key:  "-",
		live: func(ctx context.Context) ([]model.User, error) {
			list, err := s.repo.Users(ctx)
			if err != nil {
				return nil, err
			}
			return nonNil(list.Users), nil
		},
		demo: func() ([]model.User, bool) {
			return demoUsers(), true
		},
	})
}

func (s *verificationService) AdminUsers(ctx context.Context, actor model.Actor) (model.Result[[]model.User], error) {
	return read(ctx, s.fallback, source[[]model.User]{
		kind:       types.SnapshotUsers,
		key:        "admin",
		restricted: !actor.Privileged,
		live: func(ctx context.Context) ([]model.User, error) {
			list, err := s.repo.AdminUsers(ctx)
			if err != nil {
				return nil, err
			}
			return nonNil(list.Users), nil
		},
	})
}

// Stats не имеет резервного источника, агрегаты из снимка вводили бы в заблуждение
func (s *verificationService) Stats(ctx context.Context) (model.Stats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		s.logger.Error("failed to get verification stats", zap.Error(err))
		return nil, err
	}
	if stats == nil {
		stats = model.Stats{}
	}
	return stats, nil
}

// fetch читает запись напрямую, без резерва. Используется перед изменениями.
func (s *verificationService) fetch(ctx context.Context, id string) (*model.Verification, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get verification from repository", zap.Error(err), zap.String("id", id))
		return nil, err
	}
	if v == nil {
		return nil, apperrors.NotFound("get verification", "verification not found: "+id)
	}
	return v, nil
}

func (s *verificationService) rejected(action lifecycle.Action, id string, err error) error {
	kind := apperrors.KindOf(err)
	metrics.LifecycleRejections.WithLabelValues(string(action), string(kind)).Inc()
	s.logger.Info("verification operation rejected", zap.String("id", id), zap.String("action", string(action)), zap.String("kind", string(kind)), zap.Error(err))
	return err
}

func (s *verificationService) publish(ctx context.Context, actor model.Actor, action string, v *model.Verification) {
	if s.events == nil {
		return
	}
	event := messaging.LifecycleEvent{
		Resource:       "verification",
		VerificationID: v.ID,
		Status:         string(v.Status),
		Action:         action,
		ActorID:        actor.ID,
	}
	if err := s.events.PublishLifecycleEvent(ctx, event); err != nil {
		s.logger.Warn("failed to publish lifecycle event", zap.Error(err), zap.String("id", v.ID), zap.String("action", action))
	}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
