package syncer

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/wernerjr/gpstracker/internal/store"
)

func RegisterRoutes(r fiber.Router, engine *Engine, st *store.Store, pageSize int) {
	if pageSize < 1 {
		pageSize = 20
	}

	r.Post("/sync", func(c *fiber.Ctx) error {
		res := engine.Sync(c.Context())
		status := fiber.StatusOK
		if !res.Success {
			switch res.Error {
			case ErrSyncInProgress.Error():
				status = fiber.StatusConflict
			case ErrOffline.Error():
				status = fiber.StatusServiceUnavailable
			default:
				status = fiber.StatusBadGateway
			}
		}
		return c.Status(status).JSON(res)
	})

	r.Get("/records/unsynced", func(c *fiber.Ctx) error {
		page := c.QueryInt("page", 1)
		recs, err := st.GetUnsynced(c.Context(), page, pageSize)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if recs == nil {
			recs = []store.LocationRecord{}
		}
		return c.JSON(recs)
	})

	r.Get("/records/count", func(c *fiber.Ctx) error {
		count, err := st.GetUnsyncedCount(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"unsynced_count": count})
	})

	r.Delete("/records/:id", func(c *fiber.Ctx) error {
		id, err := strconv.ParseInt(c.Params("id"), 10, 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid record id")
		}
		if err := st.DeleteRecord(c.Context(), id); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Delete("/records", func(c *fiber.Ctx) error {
		if err := st.ClearAll(c.Context()); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
