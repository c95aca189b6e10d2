package models

import "time"

// GestationDays is the standard swine gestation used to derive expected farrowing dates.
const GestationDays = 114

// BreedingMethod describes how a mating was performed.
type BreedingMethod string

const (
	MethodNatural BreedingMethod = "NATURAL"
	MethodAI      BreedingMethod = "AI"
)

// Breeding is a recorded mating between one sow and one boar.
// Success is tri-state: nil means not yet known, false marks a failed breeding.
type Breeding struct {
	Base               `bson:",inline"`
	SowID              string         `bson:"sow_id" json:"sowId" validate:"required"`
	BoarID             string         `bson:"boar_id" json:"boarId" validate:"required"`
	BreedingDate       time.Time      `bson:"breeding_date" json:"breedingDate" validate:"required"`
	Method             BreedingMethod `bson:"method" json:"method" validate:"omitempty,oneof=NATURAL AI"`
	ExpectedFarrowDate *time.Time     `bson:"expected_farrow_date,omitempty" json:"expectedFarrowDate,omitempty"`
	Success            *bool          `bson:"success,omitempty" json:"success"`
	Notes              string         `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Failed reports whether the breeding is explicitly marked unsuccessful.
func (b Breeding) Failed() bool {
	return b.Success != nil && !*b.Success
}

// Farrowing is the birth event produced by exactly one breeding.
type Farrowing struct {
	Base               `bson:",inline"`
	SowID              string    `bson:"sow_id" json:"sowId" validate:"required"`
	BreedingID         string    `bson:"breeding_id" json:"breedingId" validate:"required"`
	FarrowingDate      time.Time `bson:"farrowing_date" json:"farrowingDate" validate:"required"`
	TotalBorn          *int      `bson:"total_born" json:"totalBorn" validate:"required,min=0"`
	BornAlive          *int      `bson:"born_alive" json:"bornAlive" validate:"required,min=0"`
	Stillborn          int       `bson:"stillborn" json:"stillborn" validate:"min=0"`
	Mummified          int       `bson:"mummified" json:"mummified" validate:"min=0"`
	AverageBirthWeight *float64  `bson:"average_birth_weight,omitempty" json:"averageBirthWeight,omitempty" validate:"omitempty,min=0"`
	Notes              string    `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Total returns totalBorn, treating an unset count as zero.
func (f Farrowing) Total() int {
	if f.TotalBorn == nil {
		return 0
	}
	return *f.TotalBorn
}

// Alive returns bornAlive, treating an unset count as zero.
func (f Farrowing) Alive() int {
	if f.BornAlive == nil {
		return 0
	}
	return *f.BornAlive
}
