package lifecycle

import (
	"fmt"
	"sort"

	"verification_portal/internal/apperrors"
	"verification_portal/internal/model"
)

type Action string

const (
	ActionUpdate  Action = "update"
	ActionSubmit  Action = "submit"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

type rule[S ~string] struct {
	to         S
	privileged bool
}

// Machine - таблица разрешенных переходов состояний
type Machine[S ~string] struct {
	name        string
	transitions map[S]map[Action]rule[S]
}

func newMachine[S ~string](name string) *Machine[S] {
	return &Machine[S]{
		name:        name,
		transitions: make(map[S]map[Action]rule[S]),
	}
}

func (m *Machine[S]) allow(from S, action Action, to S, privileged bool) *Machine[S] {
	if m.transitions[from] == nil {
		m.transitions[from] = make(map[Action]rule[S])
	}
	m.transitions[from][action] = rule[S]{to: to, privileged: privileged}
	return m
}

// VerificationMachine: draft -> submitted -> approved | rejected
func VerificationMachine() *Machine[model.VerificationStatus] {
	return newMachine[model.VerificationStatus]("verification").
		allow(model.VerificationStatusDraft, ActionUpdate, model.VerificationStatusDraft, false).
		allow(model.VerificationStatusDraft, ActionSubmit, model.VerificationStatusSubmitted, false).
		allow(model.VerificationStatusSubmitted, ActionApprove, model.VerificationStatusApproved, true).
		allow(model.VerificationStatusSubmitted, ActionReject, model.VerificationStatusRejected, true)
}

// CategoryMachine: pending -> approved | rejected, независим от проверок
func CategoryMachine() *Machine[model.CategoryStatus] {
	return newMachine[model.CategoryStatus]("category").
		allow(model.CategoryStatusPending, ActionUpdate, model.CategoryStatusPending, false).
		allow(model.CategoryStatusPending, ActionApprove, model.CategoryStatusApproved, true).
		allow(model.CategoryStatusPending, ActionReject, model.CategoryStatusRejected, true)
}

// Next возвращает целевое состояние или ошибку InvalidState/Forbidden. Ничего не изменяет.
func (m *Machine[S]) Next(from S, action Action, actor model.Actor) (S, error) {
	op := fmt.Sprintf("%s %s", m.name, action)

	r, ok := m.transitions[from][action]
	if !ok {
		return from, apperrors.InvalidState(op, fmt.Sprintf("cannot %s %s in status %q", action, m.name, string(from)))
	}
	if r.privileged && !actor.Privileged {
		return from, apperrors.Forbidden(op, fmt.Sprintf("%s requires a privileged actor", action))
	}
	return r.to, nil
}

// CanTransition проверяет, разрешено ли действие из состояния без учета прав
func (m *Machine[S]) CanTransition(from S, action Action) bool {
	_, ok := m.transitions[from][action]
	return ok
}

// Allowed возвращает действия, доступные из состояния, в отсортированном виде
func (m *Machine[S]) Allowed(from S) []Action {
	actions := make([]Action, 0, len(m.transitions[from]))
	for a := range m.transitions[from] {
		actions = append(actions, a)
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })
	return actions
}

func (m *Machine[S]) IsTerminal(s S) bool {
	return len(m.transitions[s]) == 0
}

// ReviewAction переводит решение ревьюера в действие
func ReviewAction(status string) (Action, error) {
	switch status {
	case "approved":
		return ActionApprove, nil
	case "rejected":
		return ActionReject, nil
	}
	return "", apperrors.Validation("review", map[string]string{
		"status": "Status must be approved or rejected",
	})
}
