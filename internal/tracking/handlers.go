package tracking

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, ctrl *Controller) {
	r.Post("/start", func(c *fiber.Ctx) error {
		if err := ctrl.Start(); err != nil {
			if errors.Is(err, ErrPermissionDenied) {
				return fiber.NewError(fiber.StatusForbidden, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(ctrl.Snapshot())
	})

	r.Post("/stop", func(c *fiber.Ctx) error {
		ctrl.Stop()
		return c.JSON(ctrl.Snapshot())
	})

	r.Get("/status", func(c *fiber.Ctx) error {
		return c.JSON(ctrl.Snapshot())
	})

	r.Post("/fixes", func(c *fiber.Ctx) error {
		var fix Fix
		if err := c.BodyParser(&fix); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		ctrl.HandleFix(fix)
		return c.SendStatus(fiber.StatusAccepted)
	})
}
