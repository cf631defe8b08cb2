package models

import (
	"fmt"

	"github.com/RyRy79261/intake-tracker-sub000/internal/common"
)

// AuditAction identifies the kind of auditable event.
type AuditAction string

const (
	AuditRecordAdd      AuditAction = "record_add"
	AuditRecordUpdate   AuditAction = "record_update"
	AuditRecordDelete   AuditAction = "record_delete"
	AuditBulkImport     AuditAction = "bulk_import"
	AuditBulkExport     AuditAction = "bulk_export"
	AuditMigration      AuditAction = "migration"
	AuditRetentionPurge AuditAction = "retention_purge"
	AuditSettingsUpdate AuditAction = "settings_update"
	AuditModeSwitch     AuditAction = "mode_switch"
)

// MaxAuditDetails caps the free-text details attached to one audit entry.
const MaxAuditDetails = 100

// AuditLogEntry is one line of the audit trail.
type AuditLogEntry struct {
	ID        string      `json:"id"`
	Timestamp int64       `json:"timestamp"`
	Action    AuditAction `json:"action"`
	Details   string      `json:"details,omitempty"`
}

func (e AuditLogEntry) Validate() error {
	if e.ID == "" || e.Timestamp <= 0 {
		return fmt.Errorf("%w: incomplete audit entry", common.ErrValidation)
	}
	if e.Action == "" {
		return fmt.Errorf("%w: missing audit action", common.ErrValidation)
	}
	if len(e.Details) > MaxAuditDetails {
		return fmt.Errorf("%w: audit details exceed %d characters", common.ErrValidation, MaxAuditDetails)
	}
	return nil
}
