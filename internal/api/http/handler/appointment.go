package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/psyconnect/psyconnect_backend/internal/model"
	"github.com/psyconnect/psyconnect_backend/internal/service/appointment"
)

type AppointmentHandler struct {
	svc appointment.Service
}

func NewAppointmentHandler(svc appointment.Service) *AppointmentHandler {
	return &AppointmentHandler{svc: svc}
}

func mapAppointmentError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, appointment.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, appointment.ErrSlotBlocked):
		return conflict(c, err.Error())
	case errors.Is(err, appointment.ErrSlotTaken):
		return conflict(c, err.Error())
	case errors.Is(err, appointment.ErrAlreadyCancelled):
		return conflict(c, err.Error())
	case errors.Is(err, appointment.ErrInvalidPriority),
		errors.Is(err, appointment.ErrInvalidDate),
		errors.Is(err, appointment.ErrInvalidID),
		errors.Is(err, appointment.ErrInvalidRange):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

// GET /appointments
func (h *AppointmentHandler) List(c fiber.Ctx) error {
	var q struct {
		StudentID      string `query:"studentId"`
		PsychologistID string `query:"psychologistId"`
		Limit          int    `query:"limit"`
		Offset         int    `query:"offset"`
	}
	_ = c.Bind().Query(&q)

	req := appointment.ListRequest{
		Limit:  q.Limit,
		Offset: q.Offset,
	}
	if q.StudentID != "" {
		id, err := uuid.Parse(q.StudentID)
		if err != nil {
			return badRequest(c, "invalid studentId")
		}
		req.StudentID = &id
	}
	if q.PsychologistID != "" {
		id, err := uuid.Parse(q.PsychologistID)
		if err != nil {
			return badRequest(c, "invalid psychologistId")
		}
		req.PsychologistID = &id
	}

	appts, err := h.svc.List(c.Context(), req)
	if err != nil {
		return mapAppointmentError(c, err)
	}

	return ok(c, appts)
}

// GET /appointments/available
func (h *AppointmentHandler) Available(c fiber.Ctx) error {
	var q struct {
		PsychologistID string `query:"psychologistId"`
		Start          string `query:"start"`
		End            string `query:"end"`
	}
	_ = c.Bind().Query(&q)

	psychologistID, err := uuid.Parse(q.PsychologistID)
	if err != nil {
		return badRequest(c, "invalid psychologistId")
	}

	// Default window: the coming week.
	from := time.Now().UTC()
	to := from.AddDate(0, 0, 7)
	if q.Start != "" {
		if from, err = time.Parse(time.RFC3339, q.Start); err != nil {
			return badRequest(c, "invalid start")
		}
	}
	if q.End != "" {
		if to, err = time.Parse(time.RFC3339, q.End); err != nil {
			return badRequest(c, "invalid end")
		}
	}

	windows, err := h.svc.FreeSlots(c.Context(), psychologistID, from, to)
	if err != nil {
		return mapAppointmentError(c, err)
	}

	return ok(c, windows)
}

// GET /appointments/:id
func (h *AppointmentHandler) GetByID(c fiber.Ctx) error {
	apptID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid appointment id")
	}

	appt, err := h.svc.GetByID(c.Context(), apptID)
	if err != nil {
		return mapAppointmentError(c, err)
	}

	return ok(c, appt)
}

// POST /appointments/book
func (h *AppointmentHandler) Book(c fiber.Ctx) error {
	var body struct {
		StudentID      string    `json:"studentId"`
		PsychologistID string    `json:"psychologistId"`
		Date           time.Time `json:"date"`
		Priority       string    `json:"priority"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.PsychologistID == "" {
		return badRequest(c, "psychologistId is required")
	}

	psychologistID, err := uuid.Parse(body.PsychologistID)
	if err != nil {
		return badRequest(c, "invalid psychologistId")
	}

	// The student defaults to the caller; admins may book on behalf of
	// someone else by naming them.
	studentID, valid := userIDFromLocals(c)
	if body.StudentID != "" {
		if studentID, err = uuid.Parse(body.StudentID); err != nil {
			return badRequest(c, "invalid studentId")
		}
	} else if !valid {
		return unauthorized(c)
	}

	appt, err := h.svc.Book(c.Context(), appointment.BookRequest{
		StudentID:      studentID,
		PsychologistID: psychologistID,
		Date:           body.Date,
		Priority:       model.Priority(body.Priority),
	})
	if err != nil {
		return mapAppointmentError(c, err)
	}

	return created(c, appt)
}

// PUT /appointments/:id
func (h *AppointmentHandler) Modify(c fiber.Ctx) error {
	apptID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid appointment id")
	}

	var body struct {
		Date time.Time `json:"date"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	appt, err := h.svc.Modify(c.Context(), apptID, body.Date)
	if err != nil {
		return mapAppointmentError(c, err)
	}

	return ok(c, appt)
}

// PUT /appointments/confirm/:id
func (h *AppointmentHandler) Confirm(c fiber.Ctx) error {
	apptID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid appointment id")
	}

	appt, linkedCase, err := h.svc.Confirm(c.Context(), apptID)
	if err != nil {
		return mapAppointmentError(c, err)
	}

	return ok(c, fiber.Map{"appointment": appt, "case": linkedCase})
}

// DELETE /appointments/:id
func (h *AppointmentHandler) Cancel(c fiber.Ctx) error {
	apptID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid appointment id")
	}

	var body struct {
		Reason *string `json:"reasonForCancellation"`
	}
	// DELETE bodies are optional.
	_ = c.Bind().JSON(&body)

	appt, err := h.svc.Cancel(c.Context(), apptID, body.Reason)
	if err != nil {
		return mapAppointmentError(c, err)
	}

	return ok(c, appt)
}
