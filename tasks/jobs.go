package tasks

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/meinhoongagan/household-services/auth"
	"github.com/meinhoongagan/household-services/utils"
)

// Jobs holds what the background jobs need to run.
type Jobs struct {
	DB        *gorm.DB
	Mailer    utils.Mailer
	Denylist  *auth.Denylist
	ExportDir string
	Now       func() time.Time
}

func (j *Jobs) now() time.Time {
	if j.Now != nil {
		return j.Now()
	}
	return time.Now()
}

// Registry maps every task name to its job.
func (j *Jobs) Registry() Registry {
	return Registry{
		ExportServiceRequests: j.ExportServiceRequests,
		SendDailyReminders:    j.SendDailyReminders,
		SendMonthlyReport:     j.SendMonthlyReport,
		PurgeRevokedTokens:    j.PurgeRevokedTokens,
	}
}

// PurgeRevokedTokens drops denylist entries whose tokens have expired.
func (j *Jobs) PurgeRevokedTokens(ctx context.Context) (string, error) {
	n, err := j.Denylist.Purge(ctx, j.now())
	if err != nil {
		return "", err
	}
	return formatCount(n, "revoked token purged", "revoked tokens purged"), nil
}
