package mart

import (
	"math"

	"moviemart/internal/config"
)

// Category and tier labels.
const (
	CategoryExcellent = "Excellent"
	CategoryVeryGood  = "Very Good"
	CategoryGood      = "Good"
	CategoryAverage   = "Average"
	CategoryPoor      = "Poor"

	TierElite     = "Elite"
	TierExcellent = "Excellent"
	TierGood      = "Good"
	TierAverage   = "Average"

	StageProlific    = "Prolific"
	StageEstablished = "Established"
	StageEmerging    = "Emerging"
	StageNewcomer    = "Newcomer"

	RoleLeading    = "Leading"
	RoleMixed      = "Mixed"
	RoleSupporting = "Supporting"
)

// RatingCategory buckets a movie rating. Bounds are inclusive.
func RatingCategory(rating float64, t config.MovieTiers) string {
	switch {
	case rating >= t.Excellent:
		return CategoryExcellent
	case rating >= t.VeryGood:
		return CategoryVeryGood
	case rating >= t.Good:
		return CategoryGood
	case rating >= t.Average:
		return CategoryAverage
	default:
		return CategoryPoor
	}
}

// PersonTier buckets a person's mean movie rating.
func PersonTier(avg float64, t config.PersonTiers) string {
	switch {
	case avg >= t.Elite:
		return TierElite
	case avg >= t.Excellent:
		return TierExcellent
	case avg >= t.Good:
		return TierGood
	default:
		return TierAverage
	}
}

// CareerStage buckets a movie count.
func CareerStage(movies int, s config.CareerStages) string {
	switch {
	case movies >= s.Prolific:
		return StageProlific
	case movies >= s.Established:
		return StageEstablished
	case movies >= s.Emerging:
		return StageEmerging
	default:
		return StageNewcomer
	}
}

// RoleType buckets an actor's lead-role percentage.
func RoleType(pct float64, r config.RoleTypes) string {
	switch {
	case pct >= r.Leading:
		return RoleLeading
	case pct >= r.Mixed:
		return RoleMixed
	default:
		return RoleSupporting
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
