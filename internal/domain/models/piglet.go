package models

import "time"

// PigletStatus enumerates the growth stages of an individual piglet.
type PigletStatus string

const (
	PigletNursing PigletStatus = "NURSING"
	PigletWeaned  PigletStatus = "WEANED"
	PigletGrowing PigletStatus = "GROWING"
	PigletReady   PigletStatus = "READY"
	PigletSold    PigletStatus = "SOLD"
	PigletDead    PigletStatus = "DEAD"
)

// Gender of a piglet.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

// Piglet is one offspring of a farrowing. Its age is anchored to the farrowing date.
type Piglet struct {
	Base         `bson:",inline"`
	TagNumber    string       `bson:"tag_number" json:"tagNumber" validate:"required,max=50"`
	FarrowingID  string       `bson:"farrowing_id" json:"farrowingId" validate:"required"`
	BirthWeight  *float64     `bson:"birth_weight,omitempty" json:"birthWeight,omitempty" validate:"omitempty,min=0"`
	CurrentPenID *string      `bson:"current_pen_id,omitempty" json:"currentPenId,omitempty"`
	Status       PigletStatus `bson:"status" json:"status" validate:"omitempty,oneof=NURSING WEANED GROWING READY SOLD DEAD"`
	Gender       Gender       `bson:"gender,omitempty" json:"gender,omitempty" validate:"omitempty,oneof=MALE FEMALE"`
	DeathDate    *time.Time   `bson:"death_date,omitempty" json:"deathDate,omitempty"`
	DeathCause   string       `bson:"death_cause,omitempty" json:"deathCause,omitempty" validate:"max=255"`
}

// PenType describes what a pen is used for.
type PenType string

const (
	PenFarrowing PenType = "FARROWING"
	PenNursery   PenType = "NURSERY"
	PenGrowing   PenType = "GROWING"
	PenFinishing PenType = "FINISHING"
)

// Pen is a physical housing unit.
type Pen struct {
	Base         `bson:",inline"`
	PenNumber    string  `bson:"pen_number" json:"penNumber" validate:"required,max=50"`
	PenType      PenType `bson:"pen_type" json:"penType" validate:"required,oneof=FARROWING NURSERY GROWING FINISHING"`
	Capacity     int     `bson:"capacity" json:"capacity" validate:"min=0"`
	CurrentCount int     `bson:"current_count" json:"currentCount" validate:"min=0"`
	Notes        string  `bson:"notes,omitempty" json:"notes,omitempty"`
}
