package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/psyconnect/psyconnect_backend/internal/api/http/handler"
	"github.com/psyconnect/psyconnect_backend/pkg/authorize"
)

func (r *Router) registerCaseRoutes(
	api fiber.Router,
	ch *handler.CaseHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	cases := api.Group("/cases", authRequired)

	cases.Get("/", requirePerm(authorize.ResourceCase, authorize.ActionList), ch.List)

	cs := cases.Group("/:id")
	cs.Get("/", requirePerm(authorize.ResourceCase, authorize.ActionRead), ch.GetByID)
	cs.Put("/notes", requirePerm(authorize.ResourceCase, authorize.ActionUpdate), ch.UpdateNotes)
	cs.Put("/resolve", requirePerm(authorize.ResourceCase, authorize.ActionUpdate), ch.Resolve)
	cs.Delete("/", requirePerm(authorize.ResourceCase, authorize.ActionArchive), ch.Archive)
}
