package models

import "time"

// SowStatus enumerates the reproductive states of a sow.
type SowStatus string

const (
	SowActive    SowStatus = "ACTIVE"
	SowPregnant  SowStatus = "PREGNANT"
	SowLactating SowStatus = "LACTATING"
	SowWeaned    SowStatus = "WEANED"
	SowCulled    SowStatus = "CULLED"
	SowSold      SowStatus = "SOLD"
)

// BoarStatus enumerates the working states of a boar.
type BoarStatus string

const (
	BoarActive  BoarStatus = "ACTIVE"
	BoarResting BoarStatus = "RESTING"
	BoarCulled  BoarStatus = "CULLED"
	BoarSold    BoarStatus = "SOLD"
)

// Sow is a female breeding animal.
type Sow struct {
	Base      `bson:",inline"`
	TagNumber string    `bson:"tag_number" json:"tagNumber" validate:"required,max=50"`
	Breed     string    `bson:"breed" json:"breed" validate:"required,max=100"`
	BirthDate time.Time `bson:"birth_date" json:"birthDate" validate:"required"`
	Status    SowStatus `bson:"status" json:"status" validate:"omitempty,oneof=ACTIVE PREGNANT LACTATING WEANED CULLED SOLD"`
	Notes     string    `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Boar is a male breeding animal.
type Boar struct {
	Base      `bson:",inline"`
	TagNumber string     `bson:"tag_number" json:"tagNumber" validate:"required,max=50"`
	Breed     string     `bson:"breed" json:"breed" validate:"required,max=100"`
	BirthDate time.Time  `bson:"birth_date" json:"birthDate" validate:"required"`
	Status    BoarStatus `bson:"status" json:"status" validate:"omitempty,oneof=ACTIVE RESTING CULLED SOLD"`
	Notes     string     `bson:"notes,omitempty" json:"notes,omitempty"`
}
