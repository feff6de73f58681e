package wizard

import (
	"context"
	"time"

	"github.com/wolfman30/booking-wizard/internal/catalog"
	"github.com/wolfman30/booking-wizard/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Submission is a confirmed draft handed off at the end of step 3.
type Submission struct {
	Reference   string          `json:"reference"`
	SessionID   string          `json:"session_id"`
	Service     catalog.Service `json:"service"`
	Date        time.Time       `json:"date"`
	Time        string          `json:"time"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

// Submitter receives confirmed bookings.
type Submitter interface {
	Submit(ctx context.Context, sub Submission) error
}

// LogSubmitter records submissions as structured log lines. Nothing is
// persisted or sent anywhere else.
type LogSubmitter struct {
	logger *logging.Logger
	tracer trace.Tracer
}

// NewLogSubmitter creates a LogSubmitter.
func NewLogSubmitter(logger *logging.Logger) *LogSubmitter {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogSubmitter{
		logger: logger,
		tracer: otel.Tracer("booking-wizard.internal.wizard.submit"),
	}
}

func (s *LogSubmitter) Submit(ctx context.Context, sub Submission) error {
	_, span := s.tracer.Start(ctx, "wizard.submit")
	defer span.End()
	span.SetAttributes(
		attribute.String("wizard.reference", sub.Reference),
		attribute.Int("wizard.service_id", sub.Service.ID),
	)

	s.logger.InfoContext(ctx, "appointment submitted",
		"reference", sub.Reference,
		"session_id", sub.SessionID,
		"service", sub.Service.Name,
		"duration", sub.Service.DurationLabel,
		"date", DateKey(sub.Date),
		"time", sub.Time,
		"name", sub.Name,
		"email", sub.Email,
		"phone", sub.Phone,
	)
	return nil
}
