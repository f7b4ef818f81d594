package session

import (
	"context"
	"errors"
	"sync"

	"verification_portal/internal/apperrors"
	"verification_portal/internal/model"
	"verification_portal/internal/validation"

	"go.uber.org/zap"
)

// ErrStale - результат пришел после закрытия сессии, более нового запроса
// или внешней инвалидации записи. Такой результат не применяется.
var ErrStale = errors.New("result discarded: session state is stale")

// Backend - операции сервиса проверок, нужные сессии
type Backend interface {
	GetByID(ctx context.Context, id string) (model.Result[*model.Verification], error)
	Update(ctx context.Context, actor model.Actor, id string, patch model.DraftPatch) (*model.Verification, error)
	Submit(ctx context.Context, actor model.Actor, id string) (*model.Verification, error)
}

// EditSession единолично владеет черновиком одной записи.
// Изменения локальны до Save, сервер не меняется без явного вызова.
type EditSession struct {
	mu sync.Mutex

	backend   Backend
	tracker   *Tracker
	validator *validation.Validator
	actor     model.Actor
	id        string
	logger    *zap.Logger

	seq     uint64
	closed  bool
	record  *model.Verification
	source  model.DataSource
	draft   model.Draft
	pending model.DraftPatch
	// inflight - изменения, отправленные текущим Save. pending копит правки, сделанные после отправки.
	inflight model.DraftPatch
	errors   map[string]string
}

func NewEditSession(backend Backend, tracker *Tracker, actor model.Actor, id string, logger *zap.Logger) *EditSession {
	return &EditSession{
		backend:   backend,
		tracker:   tracker,
		validator: validation.New(),
		actor:     actor,
		id:        id,
		logger:    logger.With(zap.String("verification_id", id)),
		errors:    make(map[string]string),
	}
}

// begin фиксирует номер запроса внутри сессии и билет записи
func (s *EditSession) begin() (uint64, Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, Ticket{}, ErrStale
	}
	s.seq++
	return s.seq, s.tracker.Begin(s.id), nil
}

// current вызывается под мьютексом
func (s *EditSession) current(seq uint64, ticket Ticket) bool {
	return !s.closed && s.seq == seq && ticket.Current()
}

// Load получает запись и заменяет ею черновик, несохраненные изменения теряются
func (s *EditSession) Load(ctx context.Context) (model.DataSource, error) {
	seq, ticket, err := s.begin()
	if err != nil {
		return "", err
	}

	res, err := s.backend.GetByID(ctx, s.id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.current(seq, ticket) {
		s.logger.Debug("discarding stale load", zap.String("key", ticket.Key()))
		return "", ErrStale
	}
	if err != nil {
		return "", err
	}

	s.apply(res.Value)
	s.source = res.Source
	return res.Source, nil
}

// apply заменяет локальное состояние записью сервера
func (s *EditSession) apply(v *model.Verification) {
	s.record = v
	s.draft = v.Draft()
	s.pending = model.DraftPatch{}
	s.inflight = model.DraftPatch{}
	s.errors = make(map[string]string)
}

func (s *EditSession) Draft() model.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.draft
}

// Record возвращает последнюю запись, полученную с сервера
func (s *EditSession) Record() *model.Verification {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.record
}

func (s *EditSession) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return !s.pending.IsEmpty() || !s.inflight.IsEmpty()
}

// Set меняет черновик локально. Ошибки измененных полей снимаются.
func (s *EditSession) Set(patch model.DraftPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.draft = patch.Apply(s.draft)
	s.pending = s.pending.Merge(patch)
	for _, field := range patch.Fields() {
		delete(s.errors, field)
	}
}

// Errors возвращает копию текущих ошибок полей
func (s *EditSession) Errors() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]string, len(s.errors))
	for k, v := range s.errors {
		out[k] = v
	}
	return out
}

// Validate пересчитывает ошибки по текущему черновику
func (s *EditSession) Validate() map[string]string {
	s.mu.Lock()
	s.errors = s.validator.ValidateDraft(s.draft)
	s.mu.Unlock()

	return s.Errors()
}

func (s *EditSession) editable(op string) error {
	if s.record == nil {
		return apperrors.InvalidState(op, "draft is not loaded")
	}
	if s.source != model.SourceLive {
		return apperrors.InvalidState(op, "record loaded from "+string(s.source)+" data is read-only")
	}
	return nil
}

// Save отправляет накопленные изменения. При ошибке черновик сохраняется для повторной попытки пользователем.
// Правки, сделанные пока запрос в пути, накладываются поверх ответа сервера и остаются несохраненными.
func (s *EditSession) Save(ctx context.Context) (*model.Verification, error) {
	s.mu.Lock()
	if err := s.editable("save draft"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if s.pending.IsEmpty() {
		record := s.record
		s.mu.Unlock()
		return record, nil
	}
	if s.closed {
		s.mu.Unlock()
		return nil, ErrStale
	}
	s.seq++
	seq, ticket := s.seq, s.tracker.Begin(s.id)
	patch := s.inflight.Merge(s.pending)
	s.inflight = patch
	s.pending = model.DraftPatch{}
	s.mu.Unlock()

	updated, err := s.backend.Update(ctx, s.actor, s.id, patch)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.current(seq, ticket) {
		s.logger.Debug("discarding stale save result", zap.String("key", ticket.Key()))
		if s.seq == seq {
			s.restore(patch)
		}
		return nil, ErrStale
	}
	if err != nil {
		s.logger.Warn("failed to save draft", zap.Error(err))
		s.restore(patch)
		return nil, err
	}

	late := s.pending
	s.apply(updated)
	if !late.IsEmpty() {
		s.draft = late.Apply(s.draft)
		s.pending = late
	}
	return updated, nil
}

// restore возвращает неотправленный патч в pending, более поздние правки остаются сверху.
// Вызывается под мьютексом.
func (s *EditSession) restore(sent model.DraftPatch) {
	s.pending = sent.Merge(s.pending)
	s.inflight = model.DraftPatch{}
}

// Submit проверяет обязательные поля до любого сетевого вызова,
// затем сохраняет изменения и отправляет запись на проверку.
func (s *EditSession) Submit(ctx context.Context) (*model.Verification, error) {
	s.mu.Lock()
	if err := s.editable("submit verification"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	errs := s.validator.ValidateDraft(s.draft)
	s.errors = errs
	s.mu.Unlock()

	if err := validation.AsError("submit verification", errs); err != nil {
		return nil, err
	}

	if _, err := s.Save(ctx); err != nil {
		return nil, err
	}

	seq, ticket, err := s.begin()
	if err != nil {
		return nil, err
	}

	submitted, err := s.backend.Submit(ctx, s.actor, s.id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.current(seq, ticket) {
		s.logger.Debug("discarding stale submit result", zap.String("key", ticket.Key()))
		return nil, ErrStale
	}
	if err != nil {
		if fields := apperrors.FieldsOf(err); len(fields) > 0 {
			s.errors = fields
		}
		return nil, err
	}

	s.apply(submitted)
	return submitted, nil
}

// Close завершает сессию. Ответы, пришедшие позже, отбрасываются.
func (s *EditSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
}
