package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/household-services/auth"
	"github.com/meinhoongagan/household-services/models"
	"github.com/meinhoongagan/household-services/redis"
	"github.com/meinhoongagan/household-services/tasks"
	"github.com/meinhoongagan/household-services/utils"
)

// Deps are the collaborators handlers use besides db.DB.
type Deps struct {
	Tokens        *auth.TokenService
	Denylist      *auth.Denylist
	Uploader      utils.Uploader
	Queue         *tasks.Queue
	ExportDir     string
	UsersCache    *redis.Cache[[]UserSummary]
	ServicesCache *redis.Cache[[]models.Service]
}

var deps Deps

// Configure installs the handler dependencies. Call once before serving.
func Configure(d Deps) {
	deps = d
}

func paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
