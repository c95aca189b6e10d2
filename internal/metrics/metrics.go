// Package metrics computes derived statistics from a snapshot of the entity
// graph. Every function is pure and safe to call concurrently.
package metrics

import (
	"math"
	"time"

	"github.com/mamadbah2/pigfarm/internal/domain/models"
)

const (
	day   = 24 * time.Hour
	month = 30 * day
)

// AgeInMonths counts whole 30-day buckets since birth. Future dates give 0.
func AgeInMonths(birthDate, now time.Time) int {
	return wholeUnits(now.Sub(birthDate), month)
}

// AgeInDays counts whole days since the farrowing date shared by a litter.
func AgeInDays(farrowingDate, now time.Time) int {
	return wholeUnits(now.Sub(farrowingDate), day)
}

func wholeUnits(elapsed, unit time.Duration) int {
	if elapsed <= 0 {
		return 0
	}
	return int(elapsed / unit)
}

// OccupancyLevel buckets pen occupancy for display.
type OccupancyLevel string

const (
	OccupancyNormal   OccupancyLevel = "normal"
	OccupancyWarning  OccupancyLevel = "warning"
	OccupancyCritical OccupancyLevel = "critical"
)

// OccupancyPct returns currentCount/capacity as a percentage, 0 when capacity is 0.
func OccupancyPct(currentCount, capacity int) float64 {
	if capacity <= 0 {
		return 0
	}
	return float64(currentCount) / float64(capacity) * 100
}

// LevelFor maps a percentage to its display bucket.
func LevelFor(pct float64) OccupancyLevel {
	switch {
	case pct >= 90:
		return OccupancyCritical
	case pct >= 70:
		return OccupancyWarning
	default:
		return OccupancyNormal
	}
}

// PenOccupancy is one row of the occupancy view.
type PenOccupancy struct {
	PenID        string         `json:"penId"`
	PenNumber    string         `json:"penNumber"`
	PenType      models.PenType `json:"penType"`
	Capacity     int            `json:"capacity"`
	CurrentCount int            `json:"currentCount"`
	Percent      float64        `json:"percent"`
	Level        OccupancyLevel `json:"level"`
}

// Occupancy computes the occupancy row for every pen, in input order.
func Occupancy(pens []models.Pen) []PenOccupancy {
	out := make([]PenOccupancy, 0, len(pens))
	for _, p := range pens {
		pct := OccupancyPct(p.CurrentCount, p.Capacity)
		out = append(out, PenOccupancy{
			PenID:        p.ID,
			PenNumber:    p.PenNumber,
			PenType:      p.PenType,
			Capacity:     p.Capacity,
			CurrentCount: p.CurrentCount,
			Percent:      Round1(pct),
			Level:        LevelFor(pct),
		})
	}
	return out
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// rate returns part/whole*100 rounded, or 0 when whole is 0.
func rate(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return Round1(float64(part) / float64(whole) * 100)
}
