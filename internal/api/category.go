package api

import (
	"net/http"

	"verification_portal/internal/filter"
	"verification_portal/internal/model"
)

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	organization := q.Get("organizationId")
	serverOrganization := organization
	if serverOrganization == filter.All {
		serverOrganization = ""
	}

	res, err := h.categories.List(r.Context(), serverOrganization)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	items := filter.Categories(res.Value, q.Get("search"), q.Get("status"), organization)
	writeData(w, http.StatusOK, map[string]any{
		"categories": items,
		"total":      len(items),
		"source":     res.Source,
		"degraded":   res.Degraded(),
	}, "")
}

func (h *Handler) getCategory(w http.ResponseWriter, r *http.Request) {
	res, err := h.categories.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"category":       res.Value,
		"source":         res.Source,
		"degraded":       res.Degraded(),
		"allowedActions": h.categoryRules.Allowed(res.Value.Status),
	}, "")
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var draft model.CategoryDraft
	if err := decode(r, &draft); err != nil {
		h.writeError(w, r, err)
		return
	}

	created, err := h.categories.Create(r.Context(), actorFrom(r), draft)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, map[string]any{"category": created}, "Category created")
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	var draft model.CategoryDraft
	if err := decode(r, &draft); err != nil {
		h.writeError(w, r, err)
		return
	}

	updated, err := h.categories.Update(r.Context(), actorFrom(r), r.PathValue("id"), draft)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"category": updated}, "Category updated")
}

func (h *Handler) reviewCategory(w http.ResponseWriter, r *http.Request) {
	var decision model.ReviewDecision
	if err := decode(r, &decision); err != nil {
		h.writeError(w, r, err)
		return
	}

	reviewed, err := h.categories.Review(r.Context(), actorFrom(r), r.PathValue("id"), decision)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"category": reviewed}, "Category reviewed")
}
