package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/psyconnect/psyconnect_backend/internal/api/http/handler"
	"github.com/psyconnect/psyconnect_backend/pkg/authorize"
)

func (r *Router) registerAppointmentRoutes(
	api fiber.Router,
	ah *handler.AppointmentHandler,
	dh *handler.DirectoryHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	appts := api.Group("/appointments", authRequired)

	appts.Get("/", requirePerm(authorize.ResourceAppointment, authorize.ActionList), ah.List)
	appts.Get("/available", requirePerm(authorize.ResourceAvailabilitySlot, authorize.ActionList), ah.Available)
	appts.Get("/psychiatres", requirePerm(authorize.ResourceUser, authorize.ActionList), dh.ListPsychologists)
	appts.Post("/book", requirePerm(authorize.ResourceAppointment, authorize.ActionCreate), ah.Book)
	appts.Put("/confirm/:id", requirePerm(authorize.ResourceAppointment, authorize.ActionConfirm), ah.Confirm)

	a := appts.Group("/:id")
	a.Get("/", requirePerm(authorize.ResourceAppointment, authorize.ActionRead), ah.GetByID)
	a.Put("/", requirePerm(authorize.ResourceAppointment, authorize.ActionUpdate), ah.Modify)
	a.Delete("/", requirePerm(authorize.ResourceAppointment, authorize.ActionDelete), ah.Cancel)
}
