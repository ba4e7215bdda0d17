package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/psyconnect/psyconnect_backend/internal/service/directory"
)

type DirectoryHandler struct {
	svc directory.Service
}

func NewDirectoryHandler(svc directory.Service) *DirectoryHandler {
	return &DirectoryHandler{svc: svc}
}

// GET /appointments/psychiatres
func (h *DirectoryHandler) ListPsychologists(c fiber.Ctx) error {
	users, err := h.svc.ListPsychologists(c.Context())
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return notFound(c, err.Error())
		}
		return internalError(c)
	}

	return ok(c, users)
}
