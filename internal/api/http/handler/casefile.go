package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/psyconnect/psyconnect_backend/internal/service/casefile"
)

type CaseHandler struct {
	svc casefile.Service
}

func NewCaseHandler(svc casefile.Service) *CaseHandler {
	return &CaseHandler{svc: svc}
}

func mapCaseError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, casefile.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, casefile.ErrArchived),
		errors.Is(err, casefile.ErrInvalidStatus),
		errors.Is(err, casefile.ErrNotConfirmed):
		return conflict(c, err.Error())
	default:
		return internalError(c)
	}
}

// GET /cases
func (h *CaseHandler) List(c fiber.Ctx) error {
	var q struct {
		StudentID      string `query:"studentId"`
		PsychologistID string `query:"psychologistId"`
		Archived       *bool  `query:"archived"`
		Limit          int    `query:"limit"`
		Offset         int    `query:"offset"`
	}
	_ = c.Bind().Query(&q)

	req := casefile.ListRequest{
		Archived: q.Archived,
		Limit:    q.Limit,
		Offset:   q.Offset,
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

	cases, err := h.svc.List(c.Context(), req)
	if err != nil {
		return mapCaseError(c, err)
	}

	return ok(c, cases)
}

// GET /cases/:id
func (h *CaseHandler) GetByID(c fiber.Ctx) error {
	caseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid case id")
	}

	cs, err := h.svc.GetByID(c.Context(), caseID)
	if err != nil {
		return mapCaseError(c, err)
	}

	return ok(c, cs)
}

// PUT /cases/:id/notes
func (h *CaseHandler) UpdateNotes(c fiber.Ctx) error {
	caseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid case id")
	}

	var body struct {
		Notes string `json:"notes"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	cs, err := h.svc.UpdateNotes(c.Context(), caseID, body.Notes)
	if err != nil {
		return mapCaseError(c, err)
	}

	return ok(c, cs)
}

// PUT /cases/:id/resolve
func (h *CaseHandler) Resolve(c fiber.Ctx) error {
	caseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid case id")
	}

	cs, err := h.svc.Resolve(c.Context(), caseID)
	if err != nil {
		return mapCaseError(c, err)
	}

	return ok(c, cs)
}

// DELETE /cases/:id
func (h *CaseHandler) Archive(c fiber.Ctx) error {
	caseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid case id")
	}

	if err := h.svc.Archive(c.Context(), caseID); err != nil {
		return mapCaseError(c, err)
	}

	return noContent(c)
}
