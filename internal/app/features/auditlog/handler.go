// internal/app/features/auditlog/handler.go
package auditlog

import (
	"context"

	uierrors "github.com/dalemusser/learnportal/internal/app/features/errors"
	"github.com/dalemusser/learnportal/internal/app/store/audit"
	"go.uber.org/zap"
)

// EventQuerier reads audit events. *audit.Store satisfies it.
type EventQuerier interface {
	Query(ctx context.Context, filter audit.QueryFilter) ([]audit.Event, error)
	Count(ctx context.Context, filter audit.QueryFilter) (int64, error)
}

type Handler struct {
	Events   EventQuerier
	PageSize int
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
}

// NewHandler constructs the audit log handler over the given event store.
func NewHandler(events EventQuerier, pageSize int, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Events:   events,
		PageSize: pageSize,
		Log:      logger,
		ErrLog:   errLog,
	}
}
