package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/meinhoongagan/household-services/models"
)

// Denylist records revoked token ids. The revoked_tokens table is the source
// of truth; Redis keys revoked:<jti> short-circuit lookups until the token
// would have expired anyway.
type Denylist struct {
	db  *gorm.DB
	rdb *goredis.Client
}

// NewDenylist builds a denylist. rdb may be nil, in which case every lookup
// goes to the database.
func NewDenylist(db *gorm.DB, rdb *goredis.Client) *Denylist {
	return &Denylist{db: db, rdb: rdb}
}

func revokedKey(jti string) string { return "revoked:" + jti }

// Revoke adds jti to the denylist. Revoking an already revoked jti is a no-op.
func (d *Denylist) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return ErrInvalidToken
	}

	entry := models.RevokedToken{JTI: jti, ExpiresAt: expiresAt}
	err := d.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "jti"}}, DoNothing: true}).
		Create(&entry).Error
	if err != nil {
		return fmt.Errorf("store revoked token: %w", err)
	}

	d.remember(ctx, jti, time.Until(expiresAt))
	return nil
}

// IsRevoked reports whether jti has been revoked.
func (d *Denylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}

	if d.rdb != nil {
		n, err := d.rdb.Exists(ctx, revokedKey(jti)).Result()
		if err == nil && n > 0 {
			return true, nil
		}
		if err != nil {
			log.WithError(err).Warn("denylist: redis lookup failed, falling back to database")
		}
	}

	var entry models.RevokedToken
	err := d.db.WithContext(ctx).Where("jti = ?", jti).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup revoked token: %w", err)
	}

	d.remember(ctx, jti, time.Until(entry.ExpiresAt))
	return true, nil
}

// Purge deletes entries whose tokens have expired. Expired tokens fail
// signature validation before the denylist is consulted.
func (d *Denylist) Purge(ctx context.Context, now time.Time) (int64, error) {
	res := d.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&models.RevokedToken{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge revoked tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (d *Denylist) remember(ctx context.Context, jti string, ttl time.Duration) {
	if d.rdb == nil || ttl <= 0 {
		return
	}
	if err := d.rdb.Set(ctx, revokedKey(jti), "1", ttl).Err(); err != nil {
		log.WithError(err).WithField("jti", jti).Warn("denylist: redis write failed")
	}
}
