package filter

import (
	"strings"

	"verification_portal/internal/model"
)

// All - значение фильтра, которое пропускает всё
const All = "all"

type Predicate[T any] func(T) bool

// Apply оставляет элементы, прошедшие все предикаты. Порядок входа сохраняется.
func Apply[T any](items []T, preds ...Predicate[T]) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if matchAll(item, preds) {
			out = append(out, item)
		}
	}
	return out
}

func matchAll[T any](item T, preds []Predicate[T]) bool {
	for _, p := range preds {
		if !p(item) {
			return false
		}
	}
	return true
}

// Text - регистронезависимый поиск подстроки хотя бы в одном из полей. Пустой term пропускает всё.
func Text[T any](term string, fields ...func(T) string) Predicate[T] {
	if term == "" {
		return func(T) bool { return true }
	}
	needle := strings.ToLower(term)
	return func(item T) bool {
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f(item)), needle) {
				return true
			}
		}
		return false
	}
}

// Exact - точное совпадение, кроме "" и "all"
func Exact[T any](want string, field func(T) string) Predicate[T] {
	if want == "" || want == All {
		return func(T) bool { return true }
	}
	return func(item T) bool {
		return field(item) == want
	}
}

func Verifications(items []model.VerificationSummary, term, status string) []model.VerificationSummary {
	return Apply(items,
		Text(term,
			func(v model.VerificationSummary) string { return v.OrganizationName },
			func(v model.VerificationSummary) string { return v.VerificationID },
		),
		Exact(status, func(v model.VerificationSummary) string { return string(v.Status) }),
	)
}

func Categories(items []model.OrganizationCategory, term, status, organization string) []model.OrganizationCategory {
	return Apply(items,
		Text(term,
			func(c model.OrganizationCategory) string { return c.CategoryName },
			func(c model.OrganizationCategory) string { return c.OrganizationName },
			func(c model.OrganizationCategory) string { return c.Industry },
		),
		Exact(status, func(c model.OrganizationCategory) string { return string(c.Status) }),
		Exact(organization, func(c model.OrganizationCategory) string { return c.OrganizationID }),
	)
}
