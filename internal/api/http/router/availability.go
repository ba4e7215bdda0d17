package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/psyconnect/psyconnect_backend/internal/api/http/handler"
	"github.com/psyconnect/psyconnect_backend/pkg/authorize"
)

func (r *Router) registerAvailabilityRoutes(
	api fiber.Router,
	ah *handler.AvailabilityHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	slots := api.Group("/availability", authRequired)

	slots.Get("/", requirePerm(authorize.ResourceAvailabilitySlot, authorize.ActionList), ah.List)
	slots.Post("/", requirePerm(authorize.ResourceAvailabilitySlot, authorize.ActionCreate), ah.Add)
	slots.Put("/:id", requirePerm(authorize.ResourceAvailabilitySlot, authorize.ActionUpdate), ah.Update)
	slots.Delete("/:id", requirePerm(authorize.ResourceAvailabilitySlot, authorize.ActionDelete), ah.Delete)
}
