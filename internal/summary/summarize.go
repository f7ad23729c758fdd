package summary

import (
	"sort"

	"github.com/danielpatrickdp/runsummary/internal/record"
	"github.com/danielpatrickdp/runsummary/internal/threshold"
)

// #region extrema
type intStat struct {
	min, max *int64
	sum      int64
}

func (s *intStat) add(v int64) {
	if s.min == nil || v < *s.min {
		s.min = ptr(v)
	}
	if s.max == nil || v > *s.max {
		s.max = ptr(v)
	}
	s.sum += v
}

type floatStat struct {
	min, max *float64
	sum      float64
}

func (s *floatStat) add(v float64) {
	if s.min == nil || v < *s.min {
		s.min = ptr(v)
	}
	if s.max == nil || v > *s.max {
		s.max = ptr(v)
	}
	s.sum += v
}

func mean(sum float64, n int) *float64 {
	if n == 0 {
		return nil
	}
	return ptr(sum / float64(n))
}

func ptr[T any](v T) *T { return &v }
// #endregion extrema

// #region summarize
// Summarize walks a run's years in ascending order, skipping year 0, until
// the first threshold breach or the last year. Cumulative counters are read
// from the last year actually processed.
func Summarize(run record.RunRecord, years map[int64]record.YearRecord, th threshold.Thresholds) Record {
	order := make([]int64, 0, len(years))
	for y := range years {
		order = append(order, y)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	storesGrain := run.StoresGrain()

	var (
		cows               intStat
		harvests, woodland floatStat
		n                  int
		totalCropEatenKg   float64
		maxFractionEaten   float64
		reason             = ReasonEndOfSimulation
		last               *record.YearRecord
	)

	for _, y := range order {
		yr := years[y]
		// Keeps the initial-condition year as a fallback source of
		// cumulative fields when no later year exists.
		last = &yr
		if y == 0 {
			continue
		}
		n++

		cows.add(yr.CowCount)

		harvest := yr.MeanPreviousHarvests
		if !storesGrain {
			harvest = yr.CurrentHarvest
		}
		harvests.add(harvest)
		woodland.add(yr.WoodlandBiomass)

		if yr.CropEaten > 0 {
			totalCropEatenKg += yr.CropEaten * kgPerMetricTon
			if denom := yr.CropEaten + harvest; denom != 0 {
				if frac := yr.CropEaten / denom; frac > maxFractionEaten {
					maxFractionEaten = frac
				}
			}
		}

		if stop := breach(yr.CowCount, harvest, yr.WoodlandBiomass, th); stop != "" {
			reason = stop
			break
		}
	}

	rec := Record{
		RunID:                run.ID,
		Params:               selectParams(run.Params),
		MinCowsThreshold:     th.MinCows,
		MinHarvestThreshold:  th.MinHarvest,
		MinWoodlandThreshold: th.MinWoodland,
		Seed:                 th.Seed,
		YearsProcessed:       n,

		MinCowCount:  cows.min,
		MeanCowCount: mean(float64(cows.sum), n),
		MaxCowCount:  cows.max,

		MinHarvest:   harvests.min,
		MeanHarvest:  mean(harvests.sum, n),
		MaxHarvest:   harvests.max,
		TotalHarvest: harvests.sum,

		MinWoodland:  woodland.min,
		MeanWoodland: mean(woodland.sum, n),
		MaxWoodland:  woodland.max,

		MaxPercentCropEaten: 100 * maxFractionEaten,
		TerminationReason:   reason,
	}

	if cows.sum != 0 && last != nil {
		rec.ActualCowReproRate = ptr(float64(last.TotalBirths) / float64(cows.sum))
	}
	if last != nil {
		rec.EndYear = ptr(last.CalendarYear)
		rec.FinalYearTimer = ptr(last.Timer)
		rec.SubsidyUsed = ptr(last.SubsidyUsed)
		if halfHours := float64(last.CowsInCrops) * halfHoursPerTick; n > 0 && halfHours != 0 {
			rec.CropEatenPerHalfHourPerCow = ptr(totalCropEatenKg / halfHours)
		}
	}
	return rec
}

// breach applies the thresholds in fixed order: cows, harvest, woodland.
func breach(cows int64, harvest, woodland float64, th threshold.Thresholds) Reason {
	switch {
	case cows < int64(th.MinCows):
		return ReasonCowThreshold
	case harvest < th.MinHarvest:
		return ReasonHarvestThreshold
	case woodland < th.MinWoodland:
		return ReasonWoodlandThreshold
	}
	return ""
}
// #endregion summarize
