package appointment

import (
	"time"

	"github.com/classicdental/dental-scheduler/internal/audit"
)

// Auditor receives mutation events; *audit.Dispatcher satisfies it.
type Auditor interface {
	Dispatch(ev audit.Event)
}

type Clock func() time.Time
