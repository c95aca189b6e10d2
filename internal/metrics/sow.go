package metrics

import (
	"time"

	"github.com/mamadbah2/pigfarm/internal/domain/models"
)

// SowStats summarises the lifetime productivity of one sow.
type SowStats struct {
	SowID             string   `json:"sowId"`
	Farrowings        int      `json:"farrowings"`
	TotalBorn         int      `json:"totalBorn"`
	BornAlive         int      `json:"bornAlive"`
	Stillborn         int      `json:"stillborn"`
	Mummified         int      `json:"mummified"`
	DeadPostFarrowing int      `json:"deadPostFarrowing"`
	Survivors         int      `json:"survivors"`
	SurvivalRate      float64  `json:"survivalRate"`
	MortalityRate     float64  `json:"mortalityRate"`
	AvgBirthWeight    *float64 `json:"avgBirthWeight"`
	AvgTotalBorn      float64  `json:"avgTotalBorn"`
	AvgBornAlive      float64  `json:"avgBornAlive"`
}

// SowLifetimeStats aggregates the farrowings of a sow and the piglets of
// those litters. Farrowings of other sows and piglets of other litters are
// ignored, so callers may pass whole collections.
func SowLifetimeStats(sowID string, farrowings []models.Farrowing, piglets []models.Piglet) SowStats {
	stats := SowStats{SowID: sowID}
	litters := make(map[string]struct{})

	var weightSum float64
	var weighed int

	for _, f := range farrowings {
		if f.SowID != sowID {
			continue
		}
		litters[f.ID] = struct{}{}
		stats.Farrowings++
		stats.TotalBorn += f.Total()
		stats.BornAlive += f.Alive()
		stats.Stillborn += f.Stillborn
		stats.Mummified += f.Mummified
		if f.AverageBirthWeight != nil {
			weightSum += *f.AverageBirthWeight
			weighed++
		}
	}

	for _, p := range piglets {
		if p.Status != models.PigletDead {
			continue
		}
		if _, ok := litters[p.FarrowingID]; ok {
			stats.DeadPostFarrowing++
		}
	}

	// Piglet rows may outnumber the recorded live births; clamp so rates stay in [0, 100].
	if stats.DeadPostFarrowing > stats.BornAlive {
		stats.DeadPostFarrowing = stats.BornAlive
	}

	stats.Survivors = stats.BornAlive - stats.DeadPostFarrowing
	stats.SurvivalRate = rate(stats.Survivors, stats.BornAlive)
	stats.MortalityRate = rate(stats.DeadPostFarrowing, stats.BornAlive)

	if weighed > 0 {
		avg := Round1(weightSum / float64(weighed))
		stats.AvgBirthWeight = &avg
	}
	if stats.Farrowings > 0 {
		stats.AvgTotalBorn = Round1(float64(stats.TotalBorn) / float64(stats.Farrowings))
		stats.AvgBornAlive = Round1(float64(stats.BornAlive) / float64(stats.Farrowings))
	}

	return stats
}

// LitterAverages summarises every farrowing on the farm.
type LitterAverages struct {
	Farrowings   int     `json:"farrowings"`
	AvgTotalBorn float64 `json:"avgTotalBorn"`
	AvgBornAlive float64 `json:"avgBornAlive"`
	AvgStillborn float64 `json:"avgStillborn"`
}

// Litters computes farm-wide litter averages.
func Litters(farrowings []models.Farrowing) LitterAverages {
	out := LitterAverages{Farrowings: len(farrowings)}
	if len(farrowings) == 0 {
		return out
	}

	var total, alive, still int
	for _, f := range farrowings {
		total += f.Total()
		alive += f.Alive()
		still += f.Stillborn
	}

	n := float64(len(farrowings))
	out.AvgTotalBorn = Round1(float64(total) / n)
	out.AvgBornAlive = Round1(float64(alive) / n)
	out.AvgStillborn = Round1(float64(still) / n)
	return out
}

// ExpectedFarrowDate derives the due date from the breeding date when none was recorded.
func ExpectedFarrowDate(b models.Breeding) time.Time {
	if b.ExpectedFarrowDate != nil {
		return *b.ExpectedFarrowDate
	}
	return b.BreedingDate.AddDate(0, 0, models.GestationDays)
}
