package controllers

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/meinhoongagan/household-services/db"
	"github.com/meinhoongagan/household-services/models"
	"github.com/meinhoongagan/household-services/tasks"
	"github.com/meinhoongagan/household-services/utils"
)

type AdminRequestView struct {
	ID           uint        `json:"id"`
	Service      idName      `json:"service"`
	Customer     idUsername  `json:"customer"`
	Professional *idUsername `json:"professional"`
	Status       string      `json:"status"`
	Rating       *int        `json:"rating"`
}

// GetAllServiceRequests lists every request for the admin dashboard.
func GetAllServiceRequests(c *fiber.Ctx) error {
	var requests []models.ServiceRequest
	err := db.DB.Preload("Service").Preload("Customer").Preload("Professional").
		Order("id").
		Find(&requests).Error
	if err != nil {
		return utils.FailInternal(c, "Failed to fetch service requests", err)
	}

	views := make([]AdminRequestView, 0, len(requests))
	for _, r := range requests {
		views = append(views, AdminRequestView{
			ID:           r.ID,
			Service:      idName{ID: r.Service.ID, Name: r.Service.Name},
			Customer:     idUsername{ID: r.Customer.ID, Username: r.Customer.Username},
			Professional: professionalRef(r.Professional),
			Status:       string(r.Status),
			Rating:       r.Rating,
		})
	}
	return c.JSON(views)
}

// StartExport queues a CSV export of completed requests.
func StartExport(c *fiber.Ctx) error {
	id, err := deps.Queue.Enqueue(c.UserContext(), tasks.ExportServiceRequests)
	if err != nil {
		return utils.FailInternal(c, "Failed to start export", err)
	}
	log.WithField("task_id", id).Info("export queued")

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Export started",
		"task_id": id,
	})
}

// ExportStatus reports the progress of an export task.
func ExportStatus(c *fiber.Ctx) error {
	st, err := deps.Queue.Status(c.UserContext(), c.Params("task_id"))
	if err != nil {
		return utils.FailInternal(c, "Failed to fetch task status", err)
	}

	switch st.State {
	case tasks.StatePending:
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "Pending"})
	case tasks.StateSuccess:
		return c.JSON(fiber.Map{"status": "Completed", "file": "/download/" + st.Result})
	case tasks.StateFailure:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "Failed", "error": st.Error})
	default:
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": string(st.State)})
	}
}

// DownloadExport serves a finished CSV export as an attachment.
func DownloadExport(c *fiber.Ctx) error {
	name := c.Params("filename")
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) || name == ".." ||
		!strings.HasSuffix(name, ".csv") {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid file name")
	}

	path := filepath.Join(deps.ExportDir, name)
	if _, err := os.Stat(path); err != nil {
		return utils.Fail(c, fiber.StatusNotFound, "File not found")
	}
	return c.Download(path, name)
}
