package model

import "encoding/json"

// Envelope - общий формат ответа бэкенда
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message"`
}

// RawEnvelope используется транспортом, data декодируется отдельно
type RawEnvelope = Envelope[json.RawMessage]

// DataSource показывает, откуда получены данные
type DataSource string

const (
	SourceLive     DataSource = "live"
	SourceSnapshot DataSource = "snapshot"
	SourceDemo     DataSource = "demo"
)

// Result - данные вместе с их источником. Всё, что не SourceLive, является деградированным режимом.
type Result[T any] struct {
	Value  T          `json:"value"`
	Source DataSource `json:"source"`
}

func (r Result[T]) Degraded() bool {
	return r.Source != SourceLive
}

func Live[T any](v T) Result[T] {
	return Result[T]{Value: v, Source: SourceLive}
}
