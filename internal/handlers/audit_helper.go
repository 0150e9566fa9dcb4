package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/classicdental/dental-scheduler/internal/audit"
	"github.com/classicdental/dental-scheduler/internal/middleware"
)

// Auditor receives mutation events. *audit.Dispatcher satisfies it.
type Auditor interface {
	Dispatch(ev audit.Event)
}

// writeAudit records an action by the authenticated caller, if any.
func writeAudit(
	a Auditor,
	c *gin.Context,
	action string,
	entity string,
	entityID uint,
	meta any,
) {

	ev := audit.Event{
		Action:   action,
		Entity:   entity,
		Metadata: meta,
	}
	if uid := middleware.CurrentUserID(c); uid != 0 {
		ev.UserID = audit.Uint(uid)
	}
	if entityID != 0 {
		ev.EntityID = audit.Uint(entityID)
	}

	a.Dispatch(ev)
}
