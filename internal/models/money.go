package models

import "math"

// Round2 rounds a USD amount to cents. Aggregates are accumulated raw
// and passed through this once, at the end.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
