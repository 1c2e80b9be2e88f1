// Package audit provides security audit logging for SIEM consumption.
// It logs security-relevant events in structured JSON format for easy parsing
// and integration with security information and event management systems.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/sac-engine/pkg/auth"
	"github.com/ekaya-inc/sac-engine/pkg/logging"
	"github.com/ekaya-inc/sac-engine/pkg/models"
	"github.com/ekaya-inc/sac-engine/pkg/sql"
)

// SecurityEventType categorizes security-relevant events for filtering and alerting.
type SecurityEventType string

const (
	// EventSQLInjectionAttempt is logged when libinjection flags a filter or payload value.
	EventSQLInjectionAttempt SecurityEventType = "sql_injection_attempt"
	// EventValidationFailure is logged when a payload is rejected by business rules.
	EventValidationFailure SecurityEventType = "validation_failure"
	// EventLoginFailure is logged for rejected sign-in attempts.
	EventLoginFailure SecurityEventType = "login_failure"
	// EventRecordWrite is logged for committed upserts, deletes and bulk updates.
	EventRecordWrite SecurityEventType = "record_write"
)

// maxLoggedValue bounds how much of a suspicious value reaches the log.
const maxLoggedValue = 200

// SecurityEvent represents an auditable security event with all relevant context
// for SIEM ingestion and analysis.
type SecurityEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType SecurityEventType `json:"event_type"`
	Resource  string            `json:"resource"`
	UserID    string            `json:"user_id,omitempty"`
	ClientIP  string            `json:"client_ip,omitempty"`
	Details   any               `json:"details"`
	Severity  string            `json:"severity"` // info, warning, critical
}

// InjectionDetails contains specifics of a flagged value.
type InjectionDetails struct {
	Field       string `json:"field"`
	Value       string `json:"value"`
	Fingerprint string `json:"fingerprint"` // libinjection fingerprint for pattern analysis
}

// SecurityAuditor logs security events for SIEM consumption.
type SecurityAuditor struct {
	logger *zap.Logger
}

// NewSecurityAuditor creates a new security auditor logging under the
// "security_audit" namespace.
func NewSecurityAuditor(logger *zap.Logger) *SecurityAuditor {
	return &SecurityAuditor{logger: logger.Named("security_audit")}
}

func (a *SecurityAuditor) event(ctx context.Context, eventType SecurityEventType, resource, clientIP, severity string, details any) (SecurityEvent, string) {
	event := SecurityEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Resource:  resource,
		UserID:    auth.GetUserIDFromContext(ctx),
		ClientIP:  clientIP,
		Details:   details,
		Severity:  severity,
	}
	// Marshaling known types does not fail.
	eventJSON, _ := json.Marshal(event)
	return event, string(eventJSON)
}

// ScreenRow runs every value of row through libinjection and logs each hit.
// Values are always bound as parameters, so hits are recorded, not
// rejected. Returns the number of flagged values.
func (a *SecurityAuditor) ScreenRow(ctx context.Context, resource string, row *models.Row, clientIP string) int {
	results := sql.CheckRow(row)
	for _, result := range results {
		value, _ := result.ParamValue.(string)
		a.LogInjectionAttempt(ctx, resource, InjectionDetails{
			Field:       result.ParamName,
			Value:       logging.TruncateString(value, maxLoggedValue),
			Fingerprint: result.Fingerprint,
		}, clientIP)
	}
	return len(results)
}

// ScreenRows applies ScreenRow to every row.
func (a *SecurityAuditor) ScreenRows(ctx context.Context, resource string, rows []*models.Row, clientIP string) int {
	flagged := 0
	for _, row := range rows {
		flagged += a.ScreenRow(ctx, resource, row, clientIP)
	}
	return flagged
}

// LogInjectionAttempt records a flagged value at ERROR level with
// "critical" severity for immediate alerting.
func (a *SecurityAuditor) LogInjectionAttempt(ctx context.Context, resource string, details InjectionDetails, clientIP string) {
	event, eventJSON := a.event(ctx, EventSQLInjectionAttempt, resource, clientIP, "critical", details)

	a.logger.Error("SQL injection pattern detected",
		zap.String("event_json", eventJSON),
		zap.String("resource", resource),
		zap.String("field", details.Field),
		zap.String("fingerprint", details.Fingerprint),
		zap.String("client_ip", clientIP),
		zap.String("user_id", event.UserID),
		zap.String("severity", event.Severity),
	)
}

// LogValidationFailure records a payload rejected by business rules.
// This is logged at WARN level as these are typically user errors, not attacks.
func (a *SecurityAuditor) LogValidationFailure(ctx context.Context, resource string, errs []models.ValidationError, clientIP string) {
	event, eventJSON := a.event(ctx, EventValidationFailure, resource, clientIP, "warning", map[string]any{
		"errors": errs,
	})

	a.logger.Warn("Payload validation failed",
		zap.String("event_json", eventJSON),
		zap.String("resource", resource),
		zap.Int("error_count", len(errs)),
		zap.String("client_ip", clientIP),
		zap.String("user_id", event.UserID),
		zap.String("severity", event.Severity),
	)
}

// LogLoginFailure records a rejected sign-in.
func (a *SecurityAuditor) LogLoginFailure(ctx context.Context, email, clientIP string) {
	_, eventJSON := a.event(ctx, EventLoginFailure, "auth", clientIP, "warning", map[string]string{
		"email": email,
	})

	a.logger.Warn("Login failed",
		zap.String("event_json", eventJSON),
		zap.String("email", email),
		zap.String("client_ip", clientIP),
		zap.String("severity", "warning"),
	)
}

// LogWrite records a committed write for the audit trail.
func (a *SecurityAuditor) LogWrite(ctx context.Context, resource, operation string, count int, clientIP string) {
	event, eventJSON := a.event(ctx, EventRecordWrite, resource, clientIP, "info", map[string]any{
		"operation": operation,
		"count":     count,
	})

	a.logger.Info("Records written",
		zap.String("event_json", eventJSON),
		zap.String("resource", resource),
		zap.String("operation", operation),
		zap.Int("count", count),
		zap.String("client_ip", clientIP),
		zap.String("user_id", event.UserID),
	)
}
