// Package models defines the health-event record types and their validation
// rules. Records are identified by ULIDs, timestamped in milliseconds since
// epoch, and carry no timezone: all "day" semantics are derived by callers.
package models

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/RyRy79261/intake-tracker-sub000/internal/common"
)

// Kind classifies a record collection.
type Kind string

const (
	KindIntake        Kind = "intake"
	KindWeight        Kind = "weight"
	KindBloodPressure Kind = "blood_pressure"
	KindEating        Kind = "eating"
	KindUrination     Kind = "urination"
)

// Kinds lists every record kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindIntake, KindWeight, KindBloodPressure, KindEating, KindUrination}
}

// IntakeType tags an intake record as water (ml) or salt (mg).
type IntakeType string

const (
	IntakeWater IntakeType = "water"
	IntakeSalt  IntakeType = "salt"
)

// Position is the body position during a blood-pressure measurement.
type Position string

const (
	PositionSitting  Position = "sitting"
	PositionStanding Position = "standing"
)

// Arm is the arm used for a blood-pressure measurement.
type Arm string

const (
	ArmLeft  Arm = "left"
	ArmRight Arm = "right"
)

// Sanity ceilings for numeric fields. These bound obvious garbage, they are
// not clinical validation.
const (
	MaxIntakeAmount = 50000 // ml of water or mg of salt in one entry
	MaxWeightKg     = 500
	MaxPressure     = 400
	MaxHeartRate    = 300
	MaxNoteLength   = 500
)

// NewID returns a new time-ordered unique record id. ULIDs sort
// lexicographically by creation time, which also makes them the
// deterministic tie-break key for keyset pagination.
func NewID() string {
	return ulid.Make().String()
}

// Record is implemented by every persisted record type.
type Record interface {
	RecordID() string
	RecordTimestamp() int64
	RecordKind() Kind
	Validate() error
}

// Base carries the fields shared by all record kinds.
type Base struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"`
	Note      string `json:"note,omitempty"`
}

func (b Base) RecordID() string       { return b.ID }
func (b Base) RecordTimestamp() int64 { return b.Timestamp }

func (b Base) validateBase() error {
	if b.ID == "" {
		return fmt.Errorf("%w: missing id", common.ErrValidation)
	}
	if b.Timestamp <= 0 {
		return fmt.Errorf("%w: missing timestamp", common.ErrValidation)
	}
	if len(b.Note) > MaxNoteLength {
		return fmt.Errorf("%w: note exceeds %d characters", common.ErrValidation, MaxNoteLength)
	}
	return nil
}

// NewBase returns a Base with a fresh id and the given timestamp, defaulting
// to the current time when ts is zero.
func NewBase(ts int64) Base {
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}
	return Base{ID: NewID(), Timestamp: ts}
}

// IntakeRecord is one fluid or sodium intake event.
type IntakeRecord struct {
	Base
	Type   IntakeType `json:"type"`
	Amount float64    `json:"amount"`
	Source string     `json:"source,omitempty"`
}

func (r IntakeRecord) RecordKind() Kind { return KindIntake }

func (r IntakeRecord) Validate() error {
	if err := r.validateBase(); err != nil {
		return err
	}
	if r.Type != IntakeWater && r.Type != IntakeSalt {
		return fmt.Errorf("%w: unknown intake type %q", common.ErrValidation, r.Type)
	}
	if r.Amount <= 0 || r.Amount > MaxIntakeAmount {
		return fmt.Errorf("%w: intake amount %v out of range", common.ErrValidation, r.Amount)
	}
	return nil
}

// WeightRecord is one body-weight measurement in kilograms.
type WeightRecord struct {
	Base
	Weight float64 `json:"weight"`
}

func (r WeightRecord) RecordKind() Kind { return KindWeight }

func (r WeightRecord) Validate() error {
	if err := r.validateBase(); err != nil {
		return err
	}
	if r.Weight <= 0 || r.Weight > MaxWeightKg {
		return fmt.Errorf("%w: weight %v out of range", common.ErrValidation, r.Weight)
	}
	return nil
}

// BloodPressureRecord is one blood-pressure measurement.
type BloodPressureRecord struct {
	Base
	Systolic  int      `json:"systolic"`
	Diastolic int      `json:"diastolic"`
	HeartRate int      `json:"heartRate,omitempty"`
	Position  Position `json:"position"`
	Arm       Arm      `json:"arm"`
}

func (r BloodPressureRecord) RecordKind() Kind { return KindBloodPressure }

func (r BloodPressureRecord) Validate() error {
	if err := r.validateBase(); err != nil {
		return err
	}
	if r.Systolic <= 0 || r.Systolic > MaxPressure {
		return fmt.Errorf("%w: systolic %d out of range", common.ErrValidation, r.Systolic)
	}
	if r.Diastolic <= 0 || r.Diastolic > MaxPressure {
		return fmt.Errorf("%w: diastolic %d out of range", common.ErrValidation, r.Diastolic)
	}
	if r.HeartRate < 0 || r.HeartRate > MaxHeartRate {
		return fmt.Errorf("%w: heart rate %d out of range", common.ErrValidation, r.HeartRate)
	}
	if r.Position != PositionSitting && r.Position != PositionStanding {
		return fmt.Errorf("%w: unknown position %q", common.ErrValidation, r.Position)
	}
	if r.Arm != ArmLeft && r.Arm != ArmRight {
		return fmt.Errorf("%w: unknown arm %q", common.ErrValidation, r.Arm)
	}
	return nil
}

// EatingRecord marks an eating event. Amount, when set, is a rough estimate
// and carries no unit guarantee.
type EatingRecord struct {
	Base
	Amount float64 `json:"amount,omitempty"`
}

func (r EatingRecord) RecordKind() Kind { return KindEating }

func (r EatingRecord) Validate() error {
	if err := r.validateBase(); err != nil {
		return err
	}
	if r.Amount < 0 {
		return fmt.Errorf("%w: negative amount", common.ErrValidation)
	}
	return nil
}

// UrinationRecord marks a urination event with an optional volume estimate in ml.
type UrinationRecord struct {
	Base
	Amount float64 `json:"amount,omitempty"`
}

func (r UrinationRecord) RecordKind() Kind { return KindUrination }

func (r UrinationRecord) Validate() error {
	if err := r.validateBase(); err != nil {
		return err
	}
	if r.Amount < 0 {
		return fmt.Errorf("%w: negative amount", common.ErrValidation)
	}
	return nil
}
