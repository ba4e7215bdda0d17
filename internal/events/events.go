// Package events publishes appointment lifecycle events over NATS.
// Delivery is best-effort: a failed publish is logged and never fails the
// scheduling operation that triggered it.
package events

import (
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/psyconnect/psyconnect_backend/internal/model"
)

const (
	SubjectAppointmentCreated   = "psyconnect.appointment.created"
	SubjectAppointmentConfirmed = "psyconnect.appointment.confirmed"
	SubjectAppointmentCancelled = "psyconnect.appointment.cancelled"
)

// Publisher emits appointment lifecycle events. Implementations must never
// block the caller on delivery.
type Publisher interface {
	AppointmentCreated(a *model.Appointment)
	AppointmentConfirmed(a *model.Appointment)
	AppointmentCancelled(a *model.Appointment)
}

type natsPublisher struct {
	nc *nats.Conn
}

func NewNatsPublisher(nc *nats.Conn) Publisher {
	return &natsPublisher{nc: nc}
}

func (p *natsPublisher) publish(subject string, a *model.Appointment) {
	full := subject + "." + a.ID.String()
	if err := p.nc.Publish(full, []byte(a.ID.String())); err != nil {
		slog.Warn("event publish failed", "subject", full, "err", err)
	}
}

func (p *natsPublisher) AppointmentCreated(a *model.Appointment)   { p.publish(SubjectAppointmentCreated, a) }
func (p *natsPublisher) AppointmentConfirmed(a *model.Appointment) { p.publish(SubjectAppointmentConfirmed, a) }
func (p *natsPublisher) AppointmentCancelled(a *model.Appointment) { p.publish(SubjectAppointmentCancelled, a) }

// NopPublisher drops all events. Used when NATS is disabled and in tests.
type NopPublisher struct{}

func (NopPublisher) AppointmentCreated(*model.Appointment)   {}
func (NopPublisher) AppointmentConfirmed(*model.Appointment) {}
func (NopPublisher) AppointmentCancelled(*model.Appointment) {}
