package types

import (
	"encoding/json"
	"time"
)

// Snapshot представляет запись в таблице verification_snapshots
type Snapshot struct {
	Kind       string          `json:"kind" db:"kind"`
	Key        string          `json:"key" db:"key"`
	Payload    json.RawMessage `json:"payload" db:"payload"`
	CapturedAt time.Time       `json:"captured_at" db:"captured_at"`
}

// Виды снимков
const (
	SnapshotVerification     = "verification"
	SnapshotMyVerifications  = "my-verifications"
	SnapshotAllVerifications = "all-verifications"
	SnapshotOrganizations    = "organizations"
	SnapshotUsers            = "users"
	SnapshotCategory         = "category"
	SnapshotCategories       = "categories"
)
