package ports

import (
	"context"

	"github.com/brightpath/school-portal/internal/core/domain"
)

// AuditRecorder persists security-relevant admission events.
type AuditRecorder interface {
	Record(ctx context.Context, event domain.AuditEvent) error
}

// AuditSink accepts events for asynchronous recording. Enqueue must never
// block the caller: recording is best-effort and admission decisions do not
// wait for it.
type AuditSink interface {
	Enqueue(event domain.AuditEvent)
}
