package model

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodPix      PaymentMethod = "pix"
)

// DefaultPaymentMethod is assigned to generated payments until an
// operator edits them.
const DefaultPaymentMethod = PaymentMethodCash

// Payment is either entered manually or generated by billing
// reconciliation. AppointmentID is set only for generated payments, and
// at most one payment may reference a given appointment.
type Payment struct {
	ID            uuid.UUID     `db:"id" json:"id"`
	PatientID     uuid.UUID     `db:"patient_id" json:"patient_id"`
	AppointmentID *uuid.UUID    `db:"appointment_id" json:"appointment_id,omitempty"`
	Value         float64       `db:"value" json:"value"`
	Method        PaymentMethod `db:"method" json:"method"`
	Status        PaymentStatus `db:"status" json:"status"`
	Date          time.Time     `db:"date" json:"date"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}
