// Package backup implements bulk export and import of the record ledger:
// a versioned portable document, merge/replace import strategies with
// per-record validation, local↔remote migration built on the same contract,
// and an S3 archiver for off-device copies.
package backup

import (
	"encoding/json"
	"fmt"

	"github.com/RyRy79261/intake-tracker-sub000/internal/common"
	"github.com/RyRy79261/intake-tracker-sub000/internal/models"
)

const (
	// VersionFull is the current full-backup document version.
	VersionFull = 3
	// VersionIntakeOnly is the intake-only subset document version.
	VersionIntakeOnly = 2
	// versionLegacy marks a pre-versioning document upgraded on read.
	versionLegacy = 1
)

// Document is the portable backup shape. Records never carry a user id:
// the remote backend strips its tag before data crosses this boundary.
type Document struct {
	Version    int    `json:"version"`
	ExportedAt string `json:"exportedAt"`

	IntakeRecords        []models.IntakeRecord        `json:"intakeRecords"`
	WeightRecords        []models.WeightRecord        `json:"weightRecords,omitempty"`
	BloodPressureRecords []models.BloodPressureRecord `json:"bloodPressureRecords,omitempty"`
	EatingRecords        []models.EatingRecord        `json:"eatingRecords,omitempty"`
	UrinationRecords     []models.UrinationRecord     `json:"urinationRecords,omitempty"`

	Settings *models.Settings `json:"settings,omitempty"`
}

// rawDocument adds the legacy bare records[] array so both shapes parse.
type rawDocument struct {
	Document
	Records []json.RawMessage `json:"records"`
}

// Parse decodes a backup document, upgrading the legacy bare-records shape.
// Structural failure is the only hard error: a document that cannot be
// decoded aborts before anything is written.
func Parse(data []byte) (*Document, error) {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrMalformedDocument, err)
	}

	if raw.Version == 0 && len(raw.Records) > 0 {
		return upgradeLegacy(raw.Records)
	}

	switch raw.Version {
	case versionLegacy, VersionIntakeOnly, VersionFull:
		return &raw.Document, nil
	default:
		return nil, fmt.Errorf("%w: version %d", common.ErrUnsupportedVersion, raw.Version)
	}
}

// upgradeLegacy classifies each bare record by its field shape: an intake
// type tag, a weight field, or a systolic reading.
func upgradeLegacy(records []json.RawMessage) (*Document, error) {
	doc := &Document{Version: versionLegacy}

	for i, raw := range records {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(raw, &probe); err != nil {
			return nil, fmt.Errorf("%w: records[%d]: %w", common.ErrMalformedDocument, i, err)
		}

		switch {
		case hasKey(probe, "systolic"):
			var r models.BloodPressureRecord
			if err := json.Unmarshal(raw, &r); err != nil {
				return nil, fmt.Errorf("%w: records[%d]: %w", common.ErrMalformedDocument, i, err)
			}
			doc.BloodPressureRecords = append(doc.BloodPressureRecords, r)
		case hasKey(probe, "weight"):
			var r models.WeightRecord
			if err := json.Unmarshal(raw, &r); err != nil {
				return nil, fmt.Errorf("%w: records[%d]: %w", common.ErrMalformedDocument, i, err)
			}
			doc.WeightRecords = append(doc.WeightRecords, r)
		default:
			var r models.IntakeRecord
			if err := json.Unmarshal(raw, &r); err != nil {
				return nil, fmt.Errorf("%w: records[%d]: %w", common.ErrMalformedDocument, i, err)
			}
			doc.IntakeRecords = append(doc.IntakeRecords, r)
		}
	}
	return doc, nil
}

func hasKey(m map[string]json.RawMessage, key string) bool {
	_, ok := m[key]
	return ok
}

// Encode marshals the document for storage or transfer.
func (d *Document) Encode() ([]byte, error) {
	return json.Marshal(d)
}

// TotalRecords counts every record across all kinds.
func (d *Document) TotalRecords() int {
	return len(d.IntakeRecords) + len(d.WeightRecords) + len(d.BloodPressureRecords) +
		len(d.EatingRecords) + len(d.UrinationRecords)
}
