package audit

import (
	"context"

	"go.uber.org/zap"
)

// Appender persists an audit entry. *database.Service satisfies this.
type Appender interface {
	AppendAudit(ctx context.Context, tenantId, entry string) error
}

// Recorder writes human-readable audit entries after a financial operation
// has committed. Recording is best-effort: a failure is logged and swallowed
// so it can never fail the financial operation itself.
type Recorder struct {
	appender Appender
}

func NewRecorder(appender Appender) *Recorder {
	return &Recorder{appender: appender}
}

func (r *Recorder) Record(ctx context.Context, tenantId, entry string) {
	zap.L().Info("Audit", zap.String("tenant_id", tenantId), zap.String("entry", entry))

	if r.appender == nil {
		return
	}
	if err := r.appender.AppendAudit(ctx, tenantId, entry); err != nil {
		zap.L().Warn("Failed to persist audit entry",
			zap.String("tenant_id", tenantId),
			zap.String("entry", entry),
			zap.Error(err))
	}
}
