// Package api - JSON шлюз над сервисами проверок и категорий.
package api

import (
	"net/http"
	"strings"
	"time"

	"verification_portal/internal/filter"
	"verification_portal/internal/lifecycle"
	"verification_portal/internal/model"
	"verification_portal/internal/service"
	"verification_portal/internal/session"
	"verification_portal/internal/transport"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	HeaderActorID   = "X-Actor-ID"
	HeaderActorRole = "X-Actor-Role"
	RoleAdmin       = "admin"
)

type Handler struct {
	verifications service.VerificationService
	categories    service.CategoryService
	tracker       *session.Tracker
	machine       *lifecycle.Machine[model.VerificationStatus]
	categoryRules *lifecycle.Machine[model.CategoryStatus]
	logger        *zap.Logger
}

func NewHandler(verifications service.VerificationService, categories service.CategoryService, tracker *session.Tracker, logger *zap.Logger) *Handler {
	return &Handler{
		verifications: verifications,
		categories:    categories,
		tracker:       tracker,
		machine:       lifecycle.VerificationMachine(),
		categoryRules: lifecycle.CategoryMachine(),
		logger:        logger,
	}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/verifications", h.listMine)
	mux.HandleFunc("POST /api/verifications", h.create)
	mux.HandleFunc("GET /api/verifications/{id}", h.get)
	mux.HandleFunc("PUT /api/verifications/{id}", h.update)
	mux.HandleFunc("POST /api/verifications/{id}/submit", h.submit)
	mux.HandleFunc("POST /api/verifications/{id}/review", h.review)

	mux.HandleFunc("GET /api/reference/organizations", h.organizations)
	mux.HandleFunc("GET /api/reference/users", h.users)

	mux.HandleFunc("GET /api/admin/verifications", h.listAll)
	mux.HandleFunc("GET /api/admin/users", h.adminUsers)
	mux.HandleFunc("GET /api/admin/stats", h.stats)

	mux.HandleFunc("GET /api/categories", h.listCategories)
	mux.HandleFunc("POST /api/categories", h.createCategory)
	mux.HandleFunc("GET /api/categories/{id}", h.getCategory)
	mux.HandleFunc("PUT /api/categories/{id}", h.updateCategory)
	mux.HandleFunc("POST /api/categories/{id}/review", h.reviewCategory)

	return h.withRequestContext(mux)
}

// withRequestContext логирует запрос и передает токен вызывающего в транспорт
func (h *Handler) withRequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok && token != "" {
			r = r.WithContext(transport.WithToken(r.Context(), token))
		}

		next.ServeHTTP(w, r)

		h.logger.Info("request handled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("actor_id", r.Header.Get(HeaderActorID)),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote_addr", r.RemoteAddr))
	})
}

// actorFrom читает результат внешней аутентификации из заголовков
func actorFrom(r *http.Request) model.Actor {
	return model.Actor{
		ID:         r.Header.Get(HeaderActorID),
		Privileged: strings.EqualFold(r.Header.Get(HeaderActorRole), RoleAdmin),
	}
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	res, err := h.verifications.ListMine(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	items := filter.Verifications(res.Value, q.Get("search"), q.Get("status"))
	writeData(w, http.StatusOK, map[string]any{
		"verifications": items,
		"total":         len(items),
		"source":        res.Source,
		"degraded":      res.Degraded(),
	}, "")
}

func (h *Handler) listAll(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := q.Get("status")
	serverStatus := status
	if serverStatus == filter.All {
		serverStatus = ""
	}

	res, err := h.verifications.ListAll(r.Context(), actorFrom(r), serverStatus)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	items := filter.Verifications(res.Value, q.Get("search"), status)
	writeData(w, http.StatusOK, map[string]any{
		"verifications": items,
		"total":         len(items),
		"source":        res.Source,
		"degraded":      res.Degraded(),
	}, "")
}

// get перечитывает запись один раз, если пока шел запрос пришло уведомление о ее рассмотрении
func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	ticket := h.tracker.Begin(id)
	res, err := h.verifications.GetByID(r.Context(), id)
	if err == nil && !ticket.Current() {
		h.logger.Debug("verification changed during read, reloading", zap.String("id", id))
		res, err = h.verifications.GetByID(r.Context(), id)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, h.verificationView(res), "")
}

// verificationView дополняет запись доступными действиями и итогами расходов
func (h *Handler) verificationView(res model.Result[*model.Verification]) map[string]any {
	v := res.Value
	return map[string]any{
		"verification":   v,
		"source":         res.Source,
		"degraded":       res.Degraded(),
		"allowedActions": h.machine.Allowed(v.Status),
		"editable":       !res.Degraded() && h.machine.CanTransition(v.Status, lifecycle.ActionUpdate),
		"final":          h.machine.IsTerminal(v.Status),
		"costTotals":     v.TransportationCost.Totals(),
	}
}

// openSession загружает запись в сессию редактирования на время запроса
func (h *Handler) openSession(r *http.Request) (*session.EditSession, error) {
	es := session.NewEditSession(h.verifications, h.tracker, actorFrom(r), r.PathValue("id"), h.logger)
	if _, err := es.Load(r.Context()); err != nil {
		es.Close()
		return nil, err
	}
	return es, nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var draft model.Draft
	if err := decode(r, &draft); err != nil {
		h.writeError(w, r, err)
		return
	}

	created, err := h.verifications.Create(r.Context(), actorFrom(r), draft)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, map[string]any{"verification": created}, "Verification created")
}

// update проходит через сессию редактирования: запись из резервного источника не изменяется,
// а ответ, пришедший после рассмотрения записи, отбрасывается
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var patch model.DraftPatch
	if err := decode(r, &patch); err != nil {
		h.writeError(w, r, err)
		return
	}

	es, err := h.openSession(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer es.Close()

	es.Set(patch)
	if !es.Dirty() {
		writeData(w, http.StatusOK, map[string]any{"verification": es.Record()}, "No changes")
		return
	}

	updated, err := es.Save(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"verification": updated}, "Verification updated")
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	es, err := h.openSession(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer es.Close()

	submitted, err := es.Submit(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"verification": submitted}, "Verification submitted")
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request) {
	var decision model.ReviewDecision
	if err := decode(r, &decision); err != nil {
		h.writeError(w, r, err)
		return
	}

	id := r.PathValue("id")
	reviewed, err := h.verifications.Review(r.Context(), actorFrom(r), id, decision)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.tracker.Invalidate(id)
	writeData(w, http.StatusOK, map[string]any{"verification": reviewed}, "Verification reviewed")
}

func (h *Handler) organizations(w http.ResponseWriter, r *http.Request) {
	res, err := h.verifications.Organizations(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"organizations": res.Value,
		"total":         len(res.Value),
		"source":        res.Source,
		"degraded":      res.Degraded(),
	}, "")
}

func (h *Handler) users(w http.ResponseWriter, r *http.Request) {
	res, err := h.verifications.Users(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"users":    res.Value,
		"total":    len(res.Value),
		"source":   res.Source,
		"degraded": res.Degraded(),
	}, "")
}

func (h *Handler) adminUsers(w http.ResponseWriter, r *http.Request) {
	res, err := h.verifications.AdminUsers(r.Context(), actorFrom(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"users":    res.Value,
		"total":    len(res.Value),
		"source":   res.Source,
		"degraded": res.Degraded(),
	}, "")
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.verifications.Stats(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"stats": stats}, "")
}
