package tasks

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/meinhoongagan/household-services/models"
)

var exportHeader = []string{"Service ID", "Service Name", "Customer Name", "Professional Name", "Rating"}

// ExportFileName is the CSV name for an export started at the given time.
func ExportFileName(ts string) string {
	return "service_requests_" + ts + ".csv"
}

// ExportServiceRequests writes completed requests to a timestamped CSV in the
// export dir and returns the file name.
func (j *Jobs) ExportServiceRequests(ctx context.Context) (string, error) {
	var requests []models.ServiceRequest
	err := j.DB.WithContext(ctx).
		Preload("Service").
		Preload("Customer").
		Preload("Professional").
		Where("status = ?", models.StatusCompleted).
		Order("id").
		Find(&requests).Error
	if err != nil {
		return "", fmt.Errorf("load completed requests: %w", err)
	}

	if err := os.MkdirAll(j.ExportDir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	filename := ExportFileName(j.now().Format("20060102150405"))
	f, err := os.Create(filepath.Join(j.ExportDir, filename))
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(exportHeader); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range requests {
		professional := "N/A"
		if r.Professional != nil {
			professional = r.Professional.Username
		}
		rating := ""
		if r.Rating != nil {
			rating = strconv.Itoa(*r.Rating)
		}
		row := []string{
			strconv.FormatUint(uint64(r.Service.ID), 10),
			r.Service.Name,
			r.Customer.Username,
			professional,
			rating,
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}

	log.WithFields(log.Fields{"file": filename, "rows": len(requests)}).Info("service requests exported")
	return filename, nil
}
