package tasks

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/meinhoongagan/household-services/models"
	"github.com/meinhoongagan/household-services/utils"
)

const reminderSubject = "New Service Requests Available!"

const reminderBody = `Hello %s,

You have %d new service requests available for your service.
Please check and accept them as soon as possible.

Best,
Household Services Team`

// SendDailyReminders emails every active professional whose service has
// unassigned pending requests.
func (j *Jobs) SendDailyReminders(ctx context.Context) (string, error) {
	var counts []struct {
		ServiceID uint
		Pending   int
	}
	err := j.DB.WithContext(ctx).
		Model(&models.ServiceRequest{}).
		Select("service_id, count(*) as pending").
		Where("status = ? AND professional_id IS NULL", models.StatusPending).
		Group("service_id").
		Scan(&counts).Error
	if err != nil {
		return "", fmt.Errorf("count pending requests: %w", err)
	}
	if len(counts) == 0 {
		log.Info("no unassigned service requests")
		return "no unassigned service requests", nil
	}

	pending := make(map[uint]int, len(counts))
	serviceIDs := make([]uint, 0, len(counts))
	for _, c := range counts {
		pending[c.ServiceID] = c.Pending
		serviceIDs = append(serviceIDs, c.ServiceID)
	}

	var professionals []models.User
	err = j.DB.WithContext(ctx).
		Where("role_id = (?)", j.DB.Model(&models.Role{}).Select("id").Where("name = ?", models.RoleProfessional)).
		Where("flagged = ? AND service_id IN ?", false, serviceIDs).
		Find(&professionals).Error
	if err != nil {
		return "", fmt.Errorf("load professionals: %w", err)
	}

	sent := 0
	for _, p := range professionals {
		count := pending[*p.ServiceID]
		err := j.Mailer.Send(utils.Email{
			To:      p.Email,
			Subject: reminderSubject,
			Text:    fmt.Sprintf(reminderBody, p.Username, count),
			Kind:    "daily_reminder",
		})
		if err != nil {
			log.WithError(err).WithField("to", p.Email).Warn("reminder not sent")
			continue
		}
		sent++
	}
	return formatCount(int64(sent), "reminder sent", "reminders sent"), nil
}

func formatCount(n int64, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}
