package contracts

import (
	"context"

	"github.com/julienschmidt/httprouter"
)

type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

// HealthChecker is one dependency reported by the readiness endpoint.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// DetailReporter is optionally implemented by a HealthChecker that has
// counters worth exposing next to its status.
type DetailReporter interface {
	Details() any
}
