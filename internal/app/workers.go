package app

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/psyconnect/psyconnect_backend/config"
	"github.com/psyconnect/psyconnect_backend/internal/events"
	"github.com/psyconnect/psyconnect_backend/internal/model"
	"github.com/psyconnect/psyconnect_backend/internal/store"
	"github.com/psyconnect/psyconnect_backend/pkg/email"
	svcsms "github.com/psyconnect/psyconnect_backend/pkg/sms"
)

// WorkerModule registers all NATS event workers.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Lc           fx.Lifecycle
	Cfg          *config.Config
	NC           *nats.Conn
	Appointments *store.AppointmentStore
	Users        *store.UserStore
	Email        *email.Client
	SMS          *svcsms.Client
}

func RegisterWorkers(p WorkerParams) {
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			startNotificationWorker(p.NC, p.Appointments, p.Users, p.Email)
			startSMSWorker(p.Cfg, p.NC, p.Appointments, p.Users, p.SMS)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			// Drain handled by ProvideNatsClient
			return nil
		},
	})
}

// appointmentFromMsg loads the appointment named by an event payload together
// with both participants. Malformed payloads are dropped silently; load
// failures are logged by the caller.
func appointmentFromMsg(ctx context.Context, msg *nats.Msg, appts *store.AppointmentStore, users *store.UserStore) (*model.Appointment, *model.User, *model.User, error) {
	apptID, err := uuid.Parse(strings.TrimSpace(string(msg.Data)))
	if err != nil {
		return nil, nil, nil, err
	}

	appt, err := appts.GetByID(ctx, apptID)
	if err != nil {
		return nil, nil, nil, err
	}

	participants, err := users.GetMany(ctx, []uuid.UUID{appt.StudentID, appt.PsychologistID})
	if err != nil {
		return nil, nil, nil, err
	}

	return appt, participants[appt.StudentID], participants[appt.PsychologistID], nil
}

// ---------------------------------------------------------------------------
// notification_worker
// ---------------------------------------------------------------------------

func startNotificationWorker(nc *nats.Conn, appts *store.AppointmentStore, users *store.UserStore, emailCli *email.Client) {
	// Booking requests go to the psychologist
	_, err := nc.Subscribe(events.SubjectAppointmentCreated+".*", func(msg *nats.Msg) {
		ctx := context.Background()
		appt, student, psy, err := appointmentFromMsg(ctx, msg, appts, users)
		if err != nil {
			slog.Warn("notification_worker: load appointment failed", "subject", msg.Subject, "err", err)
			return
		}
		if psy == nil || psy.Email == "" {
			return
		}

		data := email.AppointmentEmailData{
			FirstName: psy.FirstName,
			Email:     psy.Email,
			Date:      appt.Date,
		}
		if student != nil {
			data.StudentName = student.DisplayName()
		}
		if err := emailCli.Send(ctx, email.BuildAppointmentBookedEmail(data)); err != nil {
			slog.Warn("notification_worker: send booked email failed", "appointment_id", appt.ID, "err", err)
		}
	})
	if err != nil {
		slog.Error("notification_worker: subscribe appointment.created failed", "err", err)
	}

	// Confirmations go to the student
	_, err = nc.Subscribe(events.SubjectAppointmentConfirmed+".*", func(msg *nats.Msg) {
		ctx := context.Background()
		appt, student, psy, err := appointmentFromMsg(ctx, msg, appts, users)
		if err != nil {
			slog.Warn("notification_worker: load appointment failed", "subject", msg.Subject, "err", err)
			return
		}
		if student == nil || student.Email == "" {
			return
		}

		data := email.AppointmentEmailData{
			FirstName: student.FirstName,
			Email:     student.Email,
			Date:      appt.Date,
		}
		if psy != nil {
			data.PsychologistName = psy.DisplayName()
		}
		if err := emailCli.Send(ctx, email.BuildAppointmentConfirmedEmail(data)); err != nil {
			slog.Warn("notification_worker: send confirmed email failed", "appointment_id", appt.ID, "err", err)
		}
	})
	if err != nil {
		slog.Error("notification_worker: subscribe appointment.confirmed failed", "err", err)
	}

	// Cancellations go to the student
	_, err = nc.Subscribe(events.SubjectAppointmentCancelled+".*", func(msg *nats.Msg) {
		ctx := context.Background()
		appt, student, psy, err := appointmentFromMsg(ctx, msg, appts, users)
		if err != nil {
			slog.Warn("notification_worker: load appointment failed", "subject", msg.Subject, "err", err)
			return
		}
		if student == nil || student.Email == "" {
			return
		}

		data := email.AppointmentEmailData{
			FirstName: student.FirstName,
			Email:     student.Email,
			Date:      appt.Date,
		}
		if psy != nil {
			data.PsychologistName = psy.DisplayName()
		}
		if appt.CancelReason != nil {
			data.Reason = *appt.CancelReason
		}
		if err := emailCli.Send(ctx, email.BuildAppointmentCancelledEmail(data)); err != nil {
			slog.Warn("notification_worker: send cancelled email failed", "appointment_id", appt.ID, "err", err)
		}
	})
	if err != nil {
		slog.Error("notification_worker: subscribe appointment.cancelled failed", "err", err)
	}

	slog.Info("notification_worker: started")
}

// ---------------------------------------------------------------------------
// sms_worker
// ---------------------------------------------------------------------------

// startSMSWorker alerts psychologists by SMS when an emergency booking lands.
// Regular bookings are covered by email alone.
func startSMSWorker(cfg *config.Config, nc *nats.Conn, appts *store.AppointmentStore, users *store.UserStore, smsCli *svcsms.Client) {
	if !smsCli.IsEnabled() {
		slog.Info("sms_worker: disabled, skipping")
		return
	}

	_, err := nc.Subscribe(events.SubjectAppointmentCreated+".*", func(msg *nats.Msg) {
		ctx := context.Background()
		appt, _, psy, err := appointmentFromMsg(ctx, msg, appts, users)
		if err != nil {
			slog.Warn("sms_worker: load appointment failed", "subject", msg.Subject, "err", err)
			return
		}
		if appt.Priority != model.PriorityEmergency {
			return
		}
		if psy == nil || psy.Phone == "" {
			slog.Warn("sms_worker: no phone for psychologist", "appointment_id", appt.ID)
			return
		}

		phone, err := svcsms.NormalizePhone(psy.Phone, "")
		if err != nil {
			slog.Warn("sms_worker: bad phone number", "appointment_id", appt.ID, "err", err)
			return
		}

		when := appt.Date.Format("2006-01-02 15:04")
		if err := smsCli.SendAppointmentAlert(ctx, phone, cfg.SMS.SMSIR.TemplateID, when); err != nil {
			slog.Warn("sms_worker: send alert failed", "appointment_id", appt.ID, "err", err)
		}
	})
	if err != nil {
		slog.Error("sms_worker: subscribe appointment.created failed", "err", err)
	}

	slog.Info("sms_worker: started")
}
