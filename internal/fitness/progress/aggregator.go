package progress

import (
	"sort"
	"time"

	"github.com/2beens/workoutlog/internal/fitness/workouts"
)

const DateLayout = "2006-01-02"

// DailyPoint is the per-day total used for the progress chart.
type DailyPoint struct {
	Date                 string `json:"date"`
	TotalDurationMinutes int    `json:"totalDurationMinutes"`
	WorkoutCount         int    `json:"workoutCount"`
}

type TypeTotals struct {
	WorkoutCount         int `json:"workoutCount"`
	TotalDurationMinutes int `json:"totalDurationMinutes"`
}

type Summary struct {
	// Series is ordered by date, oldest first.
	Series               []DailyPoint                 `json:"series"`
	TotalWorkouts        int                          `json:"totalWorkouts"`
	TotalDurationMinutes int                          `json:"totalDurationMinutes"`
	ByType               map[workouts.Type]TypeTotals `json:"byType"`
}

// Aggregator derives progress summaries from a workout log. It keeps
// no state between calls; the location only decides where a calendar
// day starts and ends.
type Aggregator struct {
	location *time.Location
}

func NewAggregator(location *time.Location) *Aggregator {
	if location == nil {
		location = time.Local
	}
	return &Aggregator{
		location: location,
	}
}

// Compute buckets the log per calendar day of each record's creation
// time. Durations that are not whole numbers count as zero minutes.
// The given log is only read.
func (a *Aggregator) Compute(workoutLog workouts.Log) Summary {
	summary := Summary{
		Series:        []DailyPoint{},
		TotalWorkouts: len(workoutLog),
		ByType:        make(map[workouts.Type]TypeTotals),
	}

	day2point := make(map[string]*DailyPoint)
	for _, r := range workoutLog {
		minutes := r.Duration.Minutes()
		date := r.CreatedAt.In(a.location).Format(DateLayout)

		point, ok := day2point[date]
		if !ok {
			point = &DailyPoint{Date: date}
			day2point[date] = point
		}
		point.TotalDurationMinutes += minutes
		point.WorkoutCount++

		typeTotals := summary.ByType[r.Type]
		typeTotals.WorkoutCount++
		typeTotals.TotalDurationMinutes += minutes
		summary.ByType[r.Type] = typeTotals

		summary.TotalDurationMinutes += minutes
	}

	for _, point := range day2point {
		summary.Series = append(summary.Series, *point)
	}
	// zero-padded dates sort chronologically as strings
	sort.Slice(summary.Series, func(i, j int) bool {
		return summary.Series[i].Date < summary.Series[j].Date
	})

	return summary
}
