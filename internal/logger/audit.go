package logger

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// AuditAction represents the type of action being audited
type AuditAction string

const (
	// Session lifecycle
	AuditActionSessionCreate AuditAction = "SESSION_CREATE"
	AuditActionSessionDelete AuditAction = "SESSION_DELETE"
	AuditActionSessionExpire AuditAction = "SESSION_EXPIRE"

	// Project editing
	AuditActionInputsUpdate    AuditAction = "INPUTS_UPDATE"
	AuditActionTaskUpdate      AuditAction = "TASK_UPDATE"
	AuditActionTaskRescale     AuditAction = "TASK_RESCALE"
	AuditActionWorkFrontCreate AuditAction = "WORK_FRONT_CREATE"
	AuditActionWorkFrontUpdate AuditAction = "WORK_FRONT_UPDATE"
	AuditActionWorkFrontDelete AuditAction = "WORK_FRONT_DELETE"

	// Team ledger
	AuditActionRoleCreate AuditAction = "ROLE_CREATE"
	AuditActionRoleUpdate AuditAction = "ROLE_UPDATE"
	AuditActionRoleDelete AuditAction = "ROLE_DELETE"

	// Export
	AuditActionLedgerExport AuditAction = "LEDGER_EXPORT"

	// WebSocket operations
	AuditActionWSConnect    AuditAction = "WS_CONNECT"
	AuditActionWSDisconnect AuditAction = "WS_DISCONNECT"

	// API operations
	AuditActionAPIRequest AuditAction = "API_REQUEST"
	AuditActionAPIError   AuditAction = "API_ERROR"
)

// AuditEvent represents an audit log entry
type AuditEvent struct {
	Action      AuditAction
	SessionID   string
	Resource    string
	ResourceID  string
	Details     map[string]interface{}
	ClientIP    string
	RequestID   string
	OperationID string
	Success     bool
	Error       string
	Duration    int64 // Duration in milliseconds
	Method      string
	Path        string
	StatusCode  int
}

// auditLogger is a specialized logger for audit events
var auditLogger zerolog.Logger

// InitAudit initializes the audit logger
func InitAudit() {
	auditLogger = globalLogger.With().Str("log_type", "audit").Logger()
}

// Audit logs an audit event
func Audit(ctx context.Context, event AuditEvent) {
	if event.RequestID == "" {
		event.RequestID = GetRequestID(ctx)
	}
	if event.OperationID == "" {
		event.OperationID = GetOperationID(ctx)
	}
	if event.SessionID == "" {
		event.SessionID = GetSessionID(ctx)
	}

	logEvent := auditLogger.Info()
	if !event.Success {
		logEvent = auditLogger.Warn()
	}

	logEvent.
		Str("action", string(event.Action)).
		Str("session_id", event.SessionID).
		Str("resource", event.Resource).
		Str("resource_id", event.ResourceID).
		Str("request_id", event.RequestID).
		Bool("success", event.Success).
		Time("timestamp", time.Now().UTC())

	if event.ClientIP != "" {
		logEvent.Str("client_ip", event.ClientIP)
	}

	if event.OperationID != "" {
		logEvent.Str("operation_id", event.OperationID)
	}

	if event.Error != "" {
		logEvent.Str("error", event.Error)
	}

	if event.Duration > 0 {
		logEvent.Int64("duration_ms", event.Duration)
	}

	if event.Method != "" {
		logEvent.Str("method", event.Method)
	}

	if event.Path != "" {
		logEvent.Str("path", event.Path)
	}

	if event.StatusCode > 0 {
		logEvent.Int("status_code", event.StatusCode)
	}

	if len(event.Details) > 0 {
		logEvent.Interface("details", event.Details)
	}

	logEvent.Msg("Audit event")
}

// AuditChange logs an editing operation on a session resource
func AuditChange(ctx context.Context, action AuditAction, resource, resourceID string, err error, details map[string]interface{}) {
	event := AuditEvent{
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Success:    err == nil,
		Details:    details,
	}
	if err != nil {
		event.Error = err.Error()
	}
	Audit(ctx, event)
}

// AuditRequest logs an API request audit event
func AuditRequest(ctx context.Context, method, path string, statusCode int, duration int64, clientIP string) {
	success := statusCode < 400
	action := AuditActionAPIRequest
	if !success {
		action = AuditActionAPIError
	}

	Audit(ctx, AuditEvent{
		Action:     action,
		Resource:   "api",
		ResourceID: path,
		Method:     method,
		Path:       path,
		StatusCode: statusCode,
		Duration:   duration,
		ClientIP:   clientIP,
		Success:    success,
	})
}

// AuditWebSocket logs WebSocket connection events
func AuditWebSocket(ctx context.Context, action AuditAction, sessionID, clientIP string, details map[string]interface{}) {
	Audit(ctx, AuditEvent{
		Action:    action,
		SessionID: sessionID,
		Resource:  "websocket",
		ClientIP:  clientIP,
		Success:   true,
		Details:   details,
	})
}
