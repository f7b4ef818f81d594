// Package apperrors описывает классы ошибок, которые видит вызывающий код.
package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type Kind string

const (
	KindTransport    Kind = "TRANSPORT_ERROR"
	KindValidation   Kind = "VALIDATION_ERROR"
	KindInvalidState Kind = "INVALID_STATE"
	KindNotFound     Kind = "NOT_FOUND"
	KindForbidden    Kind = "FORBIDDEN"
)

// Error - ошибка с классом. Fields заполняется только для KindValidation.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
		}
		b.WriteString(" (")
		b.WriteString(strings.Join(parts, "; "))
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is сравнивает только класс, поэтому errors.Is(err, ErrNotFound) работает для любой ошибки этого класса
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrTransport    = &Error{Kind: KindTransport, Message: "transport error"}
	ErrValidation   = &Error{Kind: KindValidation, Message: "validation error"}
	ErrInvalidState = &Error{Kind: KindInvalidState, Message: "invalid state"}
	ErrNotFound     = &Error{Kind: KindNotFound, Message: "not found"}
	ErrForbidden    = &Error{Kind: KindForbidden, Message: "forbidden"}
)

func Transport(op string, err error) *Error {
	return &Error{Kind: KindTransport, Op: op, Message: "request failed", Err: err}
}

// TransportMessage - неуспешный ответ без сетевой ошибки (success=false или неожиданный статус)
func TransportMessage(op, message string) *Error {
	if message == "" {
		message = "request failed"
	}
	return &Error{Kind: KindTransport, Op: op, Message: message}
}

func Validation(op string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: "validation failed", Fields: fields}
}

func ValidationMessage(op, message string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: message}
}

func InvalidState(op, message string) *Error {
	return &Error{Kind: KindInvalidState, Op: op, Message: message}
}

func NotFound(op, message string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: message}
}

func Forbidden(op, message string) *Error {
	return &Error{Kind: KindForbidden, Op: op, Message: message}
}

// KindOf возвращает класс ошибки. Всё, что не *Error, считается ошибкой транспорта.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindTransport
}

// FieldsOf возвращает ошибки полей, если это ошибка валидации
func FieldsOf(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindValidation {
		return e.Fields
	}
	return nil
}
