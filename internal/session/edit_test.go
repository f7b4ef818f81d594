package session

import (
	"context"
	"errors"
	"testing"

	"verification_portal/internal/apperrors"
	"verification_portal/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// Mock для Backend
type mockBackend struct {
	getByIDFunc func(ctx context.Context, id string) (model.Result[*model.Verification], error)
	updateFunc  func(ctx context.Context, actor model.Actor, id string, patch model.DraftPatch) (*model.Verification, error)
	submitFunc  func(ctx context.Context, actor model.Actor, id string) (*model.Verification, error)

	updates []model.DraftPatch
	submits int
}

func (m *mockBackend) GetByID(ctx context.Context, id string) (model.Result[*model.Verification], error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return model.Result[*model.Verification]{}, errors.New("not configured")
}

func (m *mockBackend) Update(ctx context.Context, actor model.Actor, id string, patch model.DraftPatch) (*model.Verification, error) {
	m.updates = append(m.updates, patch)
	if m.updateFunc != nil {
		return m.updateFunc(ctx, actor, id, patch)
	}
	return nil, errors.New("not configured")
}

func (m *mockBackend) Submit(ctx context.Context, actor model.Actor, id string) (*model.Verification, error) {
	m.submits++
	if m.submitFunc != nil {
		return m.submitFunc(ctx, actor, id)
	}
	return nil, errors.New("not configured")
}

func draftRecord() *model.Verification {
	return &model.Verification{
		ID:             "1",
		VerificationID: "DV-001",
		Status:         model.VerificationStatusDraft,
		Country:        "Nigeria",
		State:          "Lagos",
		Lga:            "",
		City:           "Ikeja",
		CityRegion:     "Allen Avenue",
		OrganizationID: "org-1",
		TargetUserID:   "user-1",
	}
}

func liveBackend() *mockBackend {
	return &mockBackend{
		getByIDFunc: func(ctx context.Context, id string) (model.Result[*model.Verification], error) {
			return model.Live(draftRecord()), nil
		},
		updateFunc: func(ctx context.Context, actor model.Actor, id string, patch model.DraftPatch) (*model.Verification, error) {
			d := patch.Apply(draftRecord().Draft())
			v := draftRecord()
			v.Lga = d.Lga
			v.City = d.City
			return v, nil
		},
		submitFunc: func(ctx context.Context, actor model.Actor, id string) (*model.Verification, error) {
			v := draftRecord()
			v.Lga = "Ikeja"
			v.Status = model.VerificationStatusSubmitted
			return v, nil
		},
	}
}

func strPtr(s string) *string {
	return &s
}

func TestEditSessionSubmitFlow(t *testing.T) {
	backend := liveBackend()
	s := NewEditSession(backend, NewTracker(), model.Actor{ID: "user-1"}, "1", zaptest.NewLogger(t))

	source, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.SourceLive, source)

	// lga пустой, отправка блокируется до сетевых вызовов
	_, err = s.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	assert.Equal(t, "LGA is required", s.Errors()["lga"])
	assert.Zero(t, backend.submits)
	assert.Empty(t, backend.updates)
	assert.Equal(t, model.VerificationStatusDraft, s.Record().Status)

	// ошибка поля снимается при вводе
	s.Set(model.DraftPatch{Lga: strPtr("Ikeja")})
	assert.NotContains(t, s.Errors(), "lga")
	assert.True(t, s.Dirty())

	submitted, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.VerificationStatusSubmitted, submitted.Status)
	require.Len(t, backend.updates, 1)
	assert.Equal(t, []string{"lga"}, backend.updates[0].Fields())
	assert.Equal(t, 1, backend.submits)
	assert.False(t, s.Dirty())
	assert.Equal(t, model.VerificationStatusSubmitted, s.Record().Status)
}

func TestEditSessionSaveMergesPatches(t *testing.T) {
	backend := liveBackend()
	s := NewEditSession(backend, NewTracker(), model.Actor{ID: "user-1"}, "1", zaptest.NewLogger(t))
	_, err := s.Load(context.Background())
	require.NoError(t, err)

	s.Set(model.DraftPatch{City: strPtr("Lekki")})
	s.Set(model.DraftPatch{City: strPtr("Yaba"), Lga: strPtr("Lagos Mainland")})
	assert.Equal(t, "Yaba", s.Draft().City)

	saved, err := s.Save(context.Background())
	require.NoError(t, err)
	require.Len(t, backend.updates, 1)
	assert.Equal(t, "Yaba", *backend.updates[0].City)
	assert.Equal(t, "Yaba", saved.City)

	// без изменений повторный Save не ходит на сервер
	_, err = s.Save(context.Background())
	require.NoError(t, err)
	assert.Len(t, backend.updates, 1)
}

func TestEditSessionSaveFailureKeepsDraft(t *testing.T) {
	backend := liveBackend()
	backend.updateFunc = func(ctx context.Context, actor model.Actor, id string, patch model.DraftPatch) (*model.Verification, error) {
		return nil, apperrors.InvalidState("PUT /api/data-verification/1", "Only draft verifications can be updated")
	}
	s := NewEditSession(backend, NewTracker(), model.Actor{ID: "user-1"}, "1", zaptest.NewLogger(t))
	_, err := s.Load(context.Background())
	require.NoError(t, err)

	s.Set(model.DraftPatch{City: strPtr("Yaba")})
	_, err = s.Save(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidState, apperrors.KindOf(err))
	assert.Equal(t, "Yaba", s.Draft().City)
	assert.True(t, s.Dirty())
	assert.Len(t, backend.updates, 1, "no automatic retry")
}

func TestEditSessionDiscardsStaleLoad(t *testing.T) {
	tracker := NewTracker()
	var s *EditSession
	backend := &mockBackend{
		getByIDFunc: func(ctx context.Context, id string) (model.Result[*model.Verification], error) {
			// запись изменилась, пока запрос был в пути
			tracker.Invalidate(id)
			return model.Live(draftRecord()), nil
		},
	}
	s = NewEditSession(backend, tracker, model.Actor{ID: "user-1"}, "1", zaptest.NewLogger(t))

	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, ErrStale)
	assert.Nil(t, s.Record())
}

func TestEditSessionClose(t *testing.T) {
	var s *EditSession
	backend := &mockBackend{
		getByIDFunc: func(ctx context.Context, id string) (model.Result[*model.Verification], error) {
			s.Close()
			return model.Live(draftRecord()), nil
		},
	}
	s = NewEditSession(backend, NewTracker(), model.Actor{ID: "user-1"}, "1", zaptest.NewLogger(t))

	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, ErrStale)
	assert.Nil(t, s.Record())

	_, err = s.Load(context.Background())
	assert.ErrorIs(t, err, ErrStale)
}

func TestEditSessionFallbackIsReadOnly(t *testing.T) {
	backend := liveBackend()
	backend.getByIDFunc = func(ctx context.Context, id string) (model.Result[*model.Verification], error) {
		return model.Result[*model.Verification]{Value: draftRecord(), Source: model.SourceDemo}, nil
	}
	s := NewEditSession(backend, NewTracker(), model.Actor{ID: "user-1"}, "1", zaptest.NewLogger(t))

	source, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.SourceDemo, source)

	s.Set(model.DraftPatch{Lga: strPtr("Ikeja")})
	_, err = s.Save(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidState, apperrors.KindOf(err))

	_, err = s.Submit(context.Background())
	require.Error(t, err)
	assert.Empty(t, backend.updates)
	assert.Zero(t, backend.submits)
}

func TestEditSessionValidate(t *testing.T) {
	s := NewEditSession(liveBackend(), NewTracker(), model.Actor{}, "1", zaptest.NewLogger(t))

	errs := s.Validate()
	assert.Len(t, errs, 7)
	assert.Equal(t, "Country is required", errs["country"])

	// копия, а не внутренняя карта
	errs["country"] = "changed"
	assert.Equal(t, "Country is required", s.Errors()["country"])
}

func TestEditSessionKeepsEditsMadeDuringSave(t *testing.T) {
	backend := liveBackend()
	serverUpdate := backend.updateFunc
	var s *EditSession
	backend.updateFunc = func(ctx context.Context, actor model.Actor, id string, patch model.DraftPatch) (*model.Verification, error) {
		if len(backend.updates) == 1 {
			// пользователь продолжает печатать, пока запрос в пути
			s.Set(model.DraftPatch{CityRegion: strPtr("Opebi")})
			assert.True(t, s.Dirty())
		}
		return serverUpdate(ctx, actor, id, patch)
	}
	s = NewEditSession(backend, NewTracker(), model.Actor{ID: "user-1"}, "1", zaptest.NewLogger(t))
	_, err := s.Load(context.Background())
	require.NoError(t, err)

	s.Set(model.DraftPatch{City: strPtr("Yaba")})
	saved, err := s.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Allen Avenue", saved.CityRegion)

	assert.Equal(t, "Yaba", s.Draft().City)
	assert.Equal(t, "Opebi", s.Draft().CityRegion)
	assert.True(t, s.Dirty())

	_, err = s.Save(context.Background())
	require.NoError(t, err)
	require.Len(t, backend.updates, 2)
	assert.Equal(t, []string{"city"}, backend.updates[0].Fields())
	assert.Equal(t, []string{"cityRegion"}, backend.updates[1].Fields())
	assert.False(t, s.Dirty())
}

func TestEditSessionFailedSaveKeepsLaterEdits(t *testing.T) {
	backend := liveBackend()
	var s *EditSession
	backend.updateFunc = func(ctx context.Context, actor model.Actor, id string, patch model.DraftPatch) (*model.Verification, error) {
		s.Set(model.DraftPatch{CityRegion: strPtr("Opebi")})
		return nil, apperrors.Transport("PUT /api/data-verification/1", errors.New("connection reset"))
	}
	s = NewEditSession(backend, NewTracker(), model.Actor{ID: "user-1"}, "1", zaptest.NewLogger(t))
	_, err := s.Load(context.Background())
	require.NoError(t, err)

	s.Set(model.DraftPatch{City: strPtr("Yaba")})
	_, err = s.Save(context.Background())
	require.Error(t, err)

	assert.Equal(t, "Yaba", s.Draft().City)
	assert.Equal(t, "Opebi", s.Draft().CityRegion)
	assert.True(t, s.Dirty())

	// повторная попытка отправляет оба поля
	backend.updateFunc = liveBackend().updateFunc
	_, err = s.Save(context.Background())
	require.NoError(t, err)
	require.Len(t, backend.updates, 2)
	assert.Equal(t, []string{"city", "cityRegion"}, backend.updates[1].Fields())
}
