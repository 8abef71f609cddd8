package model

import (
	"time"

	"github.com/google/uuid"
)

// Provider is a clinician account. The engine only reads its identifier
// and the booking defaults; profile management lives elsewhere.
type Provider struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	DefaultPrice float64   `db:"default_price" json:"default_price"`
	SlotMinutes  int       `db:"slot_minutes" json:"slot_minutes"`
	WorkStart    string    `db:"work_start" json:"work_start"`
	WorkEnd      string    `db:"work_end" json:"work_end"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
