package models

import (
	"math"
	"strconv"
	"strings"
)

// Input limits for set entry fields. Weight allows up to 6 integer digits and
// 2 decimals; reps up to 4 digits.
const (
	maxWeightIntDigits  = 6
	maxWeightFracDigits = 2
	maxRepsDigits       = 4
)

// FilterWeightInput strips a raw weight string down to digits and a single
// decimal point, capping integer and fractional length.
func FilterWeightInput(input string) string {
	var b strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' || r == '.' {
			b.WriteRune(r)
		}
	}
	filtered := b.String()

	// Keep only the first decimal point.
	if i := strings.Index(filtered, "."); i >= 0 {
		before := filtered[:i]
		after := strings.ReplaceAll(filtered[i+1:], ".", "")
		if len(before) > maxWeightIntDigits {
			before = before[:maxWeightIntDigits]
		}
		if len(after) > maxWeightFracDigits {
			after = after[:maxWeightFracDigits]
		}
		return before + "." + after
	}

	if len(filtered) > maxWeightIntDigits {
		filtered = filtered[:maxWeightIntDigits]
	}
	return filtered
}

// FilterRepsInput strips a raw reps string down to digits, capped in length.
func FilterRepsInput(input string) string {
	var b strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	filtered := b.String()
	if len(filtered) > maxRepsDigits {
		filtered = filtered[:maxRepsDigits]
	}
	return filtered
}

// ParseWeight converts user weight input to a non-negative decimal. Anything
// unparseable coerces to 0 rather than erroring.
func ParseWeight(input string) float64 {
	v, err := strconv.ParseFloat(FilterWeightInput(input), 64)
	if err != nil {
		return 0
	}
	return ClampWeight(v)
}

// ParseReps converts user reps input to a non-negative integer. Anything
// unparseable coerces to 0 rather than erroring.
func ParseReps(input string) int {
	v, err := strconv.Atoi(FilterRepsInput(input))
	if err != nil {
		return 0
	}
	return ClampReps(v)
}

// ClampReps coerces negative reps to 0.
func ClampReps(reps int) int {
	if reps < 0 {
		return 0
	}
	return reps
}

// ClampWeight coerces negative or non-finite weight to 0.
func ClampWeight(weight float64) float64 {
	if weight < 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
		return 0
	}
	return weight
}
