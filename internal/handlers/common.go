// internal/handlers/common.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lojinha/loja-backend/internal/services"
	"github.com/lojinha/loja-backend/internal/utils"
)

// actorFromContext builds the service-layer caller identity from the claims
// the auth middleware stored on the context.
func actorFromContext(c *gin.Context) (services.Actor, bool) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return services.Actor{}, false
	}
	roles, _ := utils.GetRolesFromContext(c)
	return services.Actor{ID: userID, Roles: roles}, true
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.BadRequestResponse(c, "Invalid "+name, nil)
		return 0, false
	}
	return uint(id), true
}
