package metrics

import (
	"time"

	"github.com/mamadbah2/pigfarm/internal/domain/models"
)

// Snapshot is the slice of the entity graph the dashboard reads.
type Snapshot struct {
	Sows       []models.Sow
	Boars      []models.Boar
	Farrowings []models.Farrowing
	Piglets    []models.Piglet
	Pens       []models.Pen
	// Eligible holds the breedings still open for farrowing.
	Eligible []models.Breeding
}

// HerdSummary holds the headline counts of the dashboard.
type HerdSummary struct {
	Sows              int            `json:"sows"`
	SowsByStatus      map[string]int `json:"sowsByStatus"`
	Boars             int            `json:"boars"`
	BoarsByStatus     map[string]int `json:"boarsByStatus"`
	Piglets           int            `json:"piglets"`
	PigletsAlive      int            `json:"pigletsAlive"`
	PigletsByStatus   map[string]int `json:"pigletsByStatus"`
	Pens              int            `json:"pens"`
	TotalCapacity     int            `json:"totalCapacity"`
	TotalOccupants    int            `json:"totalOccupants"`
	OccupancyPct      float64        `json:"occupancyPct"`
	OccupancyLevel    OccupancyLevel `json:"occupancyLevel"`
	EligibleBreedings int            `json:"eligibleBreedings"`
	DueWithin7Days    int            `json:"dueWithin7Days"`
	Litters           LitterAverages `json:"litters"`
}

// Herd builds the dashboard summary from a snapshot.
func Herd(s Snapshot, now time.Time) HerdSummary {
	out := HerdSummary{
		Sows:            len(s.Sows),
		SowsByStatus:    make(map[string]int),
		Boars:           len(s.Boars),
		BoarsByStatus:   make(map[string]int),
		Piglets:         len(s.Piglets),
		PigletsByStatus: make(map[string]int),
		Pens:            len(s.Pens),
		Litters:         Litters(s.Farrowings),
	}

	for _, sow := range s.Sows {
		out.SowsByStatus[string(sow.Status)]++
	}
	for _, boar := range s.Boars {
		out.BoarsByStatus[string(boar.Status)]++
	}
	for _, p := range s.Piglets {
		out.PigletsByStatus[string(p.Status)]++
		if p.Status != models.PigletDead && p.Status != models.PigletSold {
			out.PigletsAlive++
		}
	}
	for _, pen := range s.Pens {
		out.TotalCapacity += pen.Capacity
		out.TotalOccupants += pen.CurrentCount
	}
	pct := OccupancyPct(out.TotalOccupants, out.TotalCapacity)
	out.OccupancyPct = Round1(pct)
	out.OccupancyLevel = LevelFor(pct)

	horizon := now.Add(7 * day)
	out.EligibleBreedings = len(s.Eligible)
	for _, b := range s.Eligible {
		due := ExpectedFarrowDate(b)
		if !due.Before(now) && !due.After(horizon) {
			out.DueWithin7Days++
		}
	}

	return out
}
