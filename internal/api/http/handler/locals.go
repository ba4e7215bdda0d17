package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	pasetotoken "github.com/psyconnect/psyconnect_backend/pkg/paseto"
)

func userIDFromLocals(c fiber.Ctx) (uuid.UUID, bool) {
	claims, ok := pasetotoken.ClaimsFromFiber(c)
	if !ok || claims.UserID == uuid.Nil {
		return uuid.UUID{}, false
	}
	return claims.UserID, true
}
