package server

import (
	"context"
)

// DBHealthChecker is what the health endpoint and shutdown need from
// the database, narrowed so route tests can inject a mock.
type DBHealthChecker interface {
	HealthCheck(ctx context.Context) error
	Close()
}
