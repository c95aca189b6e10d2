package models

import "time"

// HealthRecordType classifies a health event.
type HealthRecordType string

const (
	HealthVaccination HealthRecordType = "VACCINATION"
	HealthTreatment   HealthRecordType = "TREATMENT"
	HealthDisease     HealthRecordType = "DISEASE"
	HealthMortality   HealthRecordType = "MORTALITY"
)

// HealthRecord is attached to exactly one animal: a sow, a boar or a piglet.
type HealthRecord struct {
	Base        `bson:",inline"`
	RecordType  HealthRecordType `bson:"record_type" json:"recordType" validate:"required,oneof=VACCINATION TREATMENT DISEASE MORTALITY"`
	RecordDate  time.Time        `bson:"record_date" json:"recordDate" validate:"required"`
	SowID       *string          `bson:"sow_id,omitempty" json:"sowId,omitempty"`
	BoarID      *string          `bson:"boar_id,omitempty" json:"boarId,omitempty"`
	PigletID    *string          `bson:"piglet_id,omitempty" json:"pigletId,omitempty"`
	Description string           `bson:"description,omitempty" json:"description,omitempty" validate:"max=500"`
	Medication  string           `bson:"medication,omitempty" json:"medication,omitempty" validate:"max=255"`
	Cost        *float64         `bson:"cost,omitempty" json:"cost,omitempty" validate:"omitempty,min=0"`
}

// FeedRecord logs feed delivered to a pen.
type FeedRecord struct {
	Base       `bson:",inline"`
	RecordDate time.Time `bson:"record_date" json:"recordDate" validate:"required"`
	PenID      string    `bson:"pen_id" json:"penId" validate:"required"`
	FeedType   string    `bson:"feed_type" json:"feedType" validate:"required,max=100"`
	Quantity   float64   `bson:"quantity" json:"quantity" validate:"min=0"`
	Cost       *float64  `bson:"cost,omitempty" json:"cost,omitempty" validate:"omitempty,min=0"`
	Notes      string    `bson:"notes,omitempty" json:"notes,omitempty"`
}

// UserRole grants coarse permissions to farm staff.
type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
	RoleStaff UserRole = "STAFF"
)

// User is a farm operator. Authentication lives outside this service.
type User struct {
	Base     `bson:",inline"`
	Username string   `bson:"username" json:"username" validate:"required,max=50"`
	FullName string   `bson:"full_name" json:"fullName" validate:"max=100"`
	Role     UserRole `bson:"role" json:"role" validate:"omitempty,oneof=ADMIN STAFF"`
	Active   bool     `bson:"active" json:"active"`
}

// Activity actions written by the activity log writer.
const (
	ActionCreate = "CREATE"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
	ActionPurge  = "PURGE"
)

// ActivityLog is an audit entry for a successful mutating operation.
// CreatedAt (from Base) drives retention.
type ActivityLog struct {
	Base     `bson:",inline"`
	UserID   string `bson:"user_id" json:"userId"`
	Action   string `bson:"action" json:"action"`
	Module   string `bson:"module" json:"module"`
	EntityID string `bson:"entity_id,omitempty" json:"entityId,omitempty"`
	Details  string `bson:"details,omitempty" json:"details,omitempty"`
}

// SettingRetentionDays is the key of the durable retention window setting.
const SettingRetentionDays = "retention_days"

// Setting is a durable key/value configuration row. The key is the record id.
type Setting struct {
	Base  `bson:",inline"`
	Value string `bson:"value" json:"value"`
}
