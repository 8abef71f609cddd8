package reminder

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/meditrack/clinic-api/internal/clock"
	"github.com/meditrack/clinic-api/internal/model"
	"github.com/meditrack/clinic-api/internal/repository"
	"github.com/meditrack/clinic-api/internal/service/scheduling"
	"github.com/meditrack/clinic-api/pkg/logger"
)

type State string

const (
	// StateScheduled means the dispatch time is still in the future.
	StateScheduled State = "scheduled"
	// StateDue means the dispatch time has been reached and nothing has
	// been sent yet.
	StateDue State = "due"
	// StateSent means the appointment's reminder flag is set.
	StateSent State = "sent"
)

// Template placeholders.
const (
	PlaceholderPatient = "{patient}"
	PlaceholderDate    = "{date}"
	PlaceholderTime    = "{time}"

	// UnknownPatientName stands in when the patient record cannot be
	// resolved; the work item is still produced so the obligation stays
	// visible.
	UnknownPatientName = "(unknown patient)"

	dateLayout = "02/01/2006"
)

// WorkItem is a reminder task computed on demand from an appointment,
// the template, and the clock. It is never persisted; only the sent
// flag on the appointment is.
type WorkItem struct {
	Appointment model.Appointment `json:"appointment"`
	PatientName string            `json:"patient_name"`
	DispatchAt  time.Time         `json:"dispatch_at"`
	State       State             `json:"state"`
	Message     string            `json:"message"`
}

type Service struct {
	appointments repository.AppointmentRepository
	patients     repository.PatientRepository
	clock        clock.Clock
	logger       *logger.Logger
}

func NewService(
	appointments repository.AppointmentRepository,
	patients repository.PatientRepository,
	clk clock.Clock,
	log *logger.Logger,
) *Service {
	return &Service{
		appointments: appointments,
		patients:     patients,
		clock:        clk,
		logger:       log,
	}
}

// Worklist computes reminder work items for every future appointment of
// the provider, soonest dispatch first. Items with unresolvable patient
// references are rendered with placeholder text rather than dropped.
func (s *Service) Worklist(ctx context.Context, providerID uuid.UUID, template string, leadHours int) ([]WorkItem, error) {
	appointments, err := s.appointments.List(ctx, providerID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	now := s.clock.Now()
	lead := time.Duration(leadHours) * time.Hour

	items := make([]WorkItem, 0, len(appointments))
	for _, apt := range appointments {
		if scheduling.EffectiveStatus(apt, now) != model.AppointmentStatusScheduled {
			continue
		}

		name := s.patientName(ctx, apt.PatientID)
		dispatchAt := apt.Moment().Add(-lead)

		state := StateScheduled
		switch {
		case apt.ReminderSent:
			state = StateSent
		case !dispatchAt.After(now):
			state = StateDue
		}

		items = append(items, WorkItem{
			Appointment: *apt,
			PatientName: name,
			DispatchAt:  dispatchAt,
			State:       state,
			Message:     Render(template, name, apt.Date, apt.Slot),
		})
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].DispatchAt.Before(items[j].DispatchAt)
	})
	return items, nil
}

// MarkSent records that a reminder went out. One-way: re-marking an
// already-sent reminder changes nothing and is not an error.
func (s *Service) MarkSent(ctx context.Context, appointmentID uuid.UUID) error {
	if err := s.appointments.MarkReminderSent(ctx, appointmentID, s.clock.Now()); err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	return nil
}

func (s *Service) patientName(ctx context.Context, patientID uuid.UUID) string {
	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		if !errors.Is(err, repository.ErrPatientNotFound) {
			s.logger.Error(err, "failed to get patient for reminder",
				"patient_id", patientID.String())
		} else {
			s.logger.Warn("patient missing for reminder",
				"patient_id", patientID.String())
		}
		return UnknownPatientName
	}
	return patient.Name
}

// Render substitutes the three message placeholders. Unknown
// placeholders pass through untouched.
func Render(template, patientName string, date time.Time, slot string) string {
	r := strings.NewReplacer(
		PlaceholderPatient, patientName,
		PlaceholderDate, date.Format(dateLayout),
		PlaceholderTime, slot,
	)
	return r.Replace(template)
}
