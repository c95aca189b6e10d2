package models

import "time"

// Record is anything a store collection can hold.
type Record interface {
	Key() string
}

// Base carries the identity and audit timestamps shared by every stored record.
type Base struct {
	ID        string    `bson:"_id" json:"id"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Key returns the record id.
func (b Base) Key() string { return b.ID }

// Meta returns the identity block.
func (b Base) Meta() Base { return b }

// Init stamps a freshly created record.
func (b *Base) Init(id string, now time.Time) {
	b.ID = id
	b.CreatedAt = now
	b.UpdatedAt = now
}

// Carry copies identity and creation time from the stored version onto an
// edited payload.
func (b *Base) Carry(stored Base, now time.Time) {
	b.ID = stored.ID
	b.CreatedAt = stored.CreatedAt
	b.UpdatedAt = now
}
