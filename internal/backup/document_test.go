package backup

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyRy79261/intake-tracker-sub000/internal/common"
)

func TestParse_FullDocument(t *testing.T) {
	data := []byte(`{
		"version": 3,
		"exportedAt": "2024-06-15T12:00:00Z",
		"intakeRecords": [
			{"id": "i1", "timestamp": 1000, "type": "water", "amount": 250, "source": "manual"}
		],
		"weightRecords": [
			{"id": "w1", "timestamp": 2000, "weight": 70.5}
		],
		"bloodPressureRecords": [
			{"id": "b1", "timestamp": 3000, "systolic": 120, "diastolic": 80, "position": "sitting", "arm": "left"}
		],
		"settings": {"waterLimit": 2000, "saltLimit": 6000, "waterIncrement": 250, "saltIncrement": 500, "dayStartHour": 2, "dataRetentionDays": 90}
	}`)

	doc, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, VersionFull, doc.Version)
	require.Len(t, doc.IntakeRecords, 1)
	assert.Equal(t, "i1", doc.IntakeRecords[0].ID)
	require.Len(t, doc.WeightRecords, 1)
	require.Len(t, doc.BloodPressureRecords, 1)
	require.NotNil(t, doc.Settings)
	assert.Equal(t, 2, doc.Settings.DayStartHour)
	assert.Equal(t, 3, doc.TotalRecords())
}

func TestParse_IntakeOnlyDocument(t *testing.T) {
	data := []byte(`{
		"version": 2,
		"exportedAt": "2024-06-15T12:00:00Z",
		"intakeRecords": [
			{"id": "i1", "timestamp": 1000, "type": "salt", "amount": 400}
		]
	}`)

	doc, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, VersionIntakeOnly, doc.Version)
	assert.Equal(t, 1, doc.TotalRecords())
	assert.Nil(t, doc.Settings)
}

func TestParse_LegacyBareRecordsUpgrade(t *testing.T) {
	data := []byte(`{
		"records": [
			{"id": "i1", "timestamp": 1000, "type": "water", "amount": 250},
			{"id": "w1", "timestamp": 2000, "weight": 71.2},
			{"id": "b1", "timestamp": 3000, "systolic": 118, "diastolic": 76, "position": "standing", "arm": "right"}
		]
	}`)

	doc, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, doc.IntakeRecords, 1)
	require.Len(t, doc.WeightRecords, 1)
	require.Len(t, doc.BloodPressureRecords, 1)
	assert.Equal(t, "i1", doc.IntakeRecords[0].ID)
	assert.Equal(t, "w1", doc.WeightRecords[0].ID)
	assert.Equal(t, "b1", doc.BloodPressureRecords[0].ID)
}

func TestParse_InvalidJSONIsHardFailure(t *testing.T) {
	_, err := Parse([]byte(`{"version": 3,`))
	assert.ErrorIs(t, err, common.ErrMalformedDocument)
}

func TestParse_UnknownVersionRejected(t *testing.T) {
	_, err := Parse([]byte(`{"version": 99}`))
	assert.ErrorIs(t, err, common.ErrUnsupportedVersion)
}

func TestEncode_OmitsUserFields(t *testing.T) {
	doc := &Document{Version: VersionFull, ExportedAt: "2024-06-15T12:00:00Z"}
	data, err := doc.Encode()
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.NotContains(t, string(data), "userId")
	assert.NotContains(t, string(data), "user_id")
}
