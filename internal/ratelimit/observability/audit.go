// Package observability provides audit logging helpers for the ratelimit module.
package observability

import (
	"context"
	"log/slog"

	"equityshield/pkg/platform/audit"
	"equityshield/pkg/requestcontext"
)

// LogAudit logs an audit event to the structured logger and, when publisher
// is non-nil, emits it. attrList carries extra log attributes and is copied
// into the event detail when the values are strings.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher audit.Emitter, action audit.AuditEvent, subject, reason string, attrList ...any) {
	requestID := requestcontext.RequestID(ctx)

	args := append([]any{
		"event", string(action),
		"log_type", "audit",
		"subject", subject,
		"reason", reason,
	}, attrList...)
	if requestID != "" {
		args = append(args, "request_id", requestID)
	}
	if logger != nil {
		logger.InfoContext(ctx, string(action), args...)
	}

	if publisher == nil {
		return
	}

	event := audit.NewEvent(action, requestcontext.Now(ctx))
	event.Subject = subject
	event.ClientIP = requestcontext.ClientIP(ctx)
	event.RequestID = requestID
	event.Reason = reason
	event.Detail = detail(attrList)
	if err := publisher.Emit(ctx, event); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit audit event", "event", string(action), "error", err)
	}
}

func detail(attrList []any) map[string]string {
	var out map[string]string
	for i := 0; i+1 < len(attrList); i += 2 {
		key, ok := attrList[i].(string)
		if !ok {
			continue
		}
		val, ok := attrList[i+1].(string)
		if !ok {
			continue
		}
		if out == nil {
			out = make(map[string]string)
		}
		out[key] = val
	}
	return out
}
