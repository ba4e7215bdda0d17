package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/psyconnect/psyconnect_backend/internal/service/scheduling"
)

type AvailabilityHandler struct {
	svc scheduling.Service
}

func NewAvailabilityHandler(svc scheduling.Service) *AvailabilityHandler {
	return &AvailabilityHandler{svc: svc}
}

func mapAvailabilityError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, scheduling.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, scheduling.ErrInvalidRange),
		errors.Is(err, scheduling.ErrInvalidStatus),
		errors.Is(err, scheduling.ErrReasonRequired):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

// POST /availability
func (h *AvailabilityHandler) Add(c fiber.Ctx) error {
	psychologistID, valid := userIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}

	var body scheduling.SlotRequest
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	slot, err := h.svc.AddSlot(c.Context(), psychologistID, body)
	if err != nil {
		return mapAvailabilityError(c, err)
	}

	return created(c, slot)
}

// GET /availability
func (h *AvailabilityHandler) List(c fiber.Ctx) error {
	var q struct {
		PsychologistID string `query:"psychologistId"`
		From           string `query:"from"`
		To             string `query:"to"`
	}
	_ = c.Bind().Query(&q)

	// Psychologists see their own calendar unless another is named.
	psychologistID, valid := userIDFromLocals(c)
	if q.PsychologistID != "" {
		var err error
		if psychologistID, err = uuid.Parse(q.PsychologistID); err != nil {
			return badRequest(c, "invalid psychologistId")
		}
	} else if !valid {
		return unauthorized(c)
	}

	var from, to *time.Time
	if q.From != "" {
		t, err := time.Parse(time.RFC3339, q.From)
		if err != nil {
			return badRequest(c, "invalid from")
		}
		from = &t
	}
	if q.To != "" {
		t, err := time.Parse(time.RFC3339, q.To)
		if err != nil {
			return badRequest(c, "invalid to")
		}
		to = &t
	}

	slots, err := h.svc.ListSlots(c.Context(), psychologistID, from, to)
	if err != nil {
		return mapAvailabilityError(c, err)
	}

	return ok(c, slots)
}

// PUT /availability/:id
func (h *AvailabilityHandler) Update(c fiber.Ctx) error {
	psychologistID, valid := userIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}

	slotID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid slot id")
	}

	var body scheduling.SlotRequest
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	slot, err := h.svc.UpdateSlot(c.Context(), psychologistID, slotID, body)
	if err != nil {
		return mapAvailabilityError(c, err)
	}

	return ok(c, slot)
}

// DELETE /availability/:id
func (h *AvailabilityHandler) Delete(c fiber.Ctx) error {
	psychologistID, valid := userIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}

	slotID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid slot id")
	}

	if err := h.svc.DeleteSlot(c.Context(), psychologistID, slotID); err != nil {
		return mapAvailabilityError(c, err)
	}

	return noContent(c)
}
