package model

import (
	"time"

	"github.com/google/uuid"
)

type PatientStatus string

const (
	PatientStatusActive   PatientStatus = "active"
	PatientStatusInactive PatientStatus = "inactive"
)

// Patient is read-only from the engine's perspective. OverridePrice, when
// set, takes precedence over the provider default during billing.
type Patient struct {
	ID            uuid.UUID     `db:"id" json:"id"`
	ProviderID    uuid.UUID     `db:"provider_id" json:"provider_id"`
	Name          string        `db:"name" json:"name"`
	OverridePrice *float64      `db:"override_price" json:"override_price,omitempty"`
	Status        PatientStatus `db:"status" json:"status"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}
