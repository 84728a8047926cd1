// Package report renders a finished run: the colored terminal summary, the
// CSV exports, and the standalone HTML report. Every renderer consumes
// domain.SchulzeRecord rows and shares the numeric formatting rules below so
// the same value never prints two different ways.
package report

import (
	"fmt"
	"math"
	"strconv"

	"github.com/ahrav/go-langrank/internal/domain"
)

// absentCell marks a figure the underlying source never reported.
const absentCell = "-"

// FormatTrend renders a period-over-period delta with an explicit sign.
// Magnitudes below 0.005 flush to +0.00 so rounding noise never prints as a
// phantom movement. Absent trends render as "-".
func FormatTrend(trend *float64) string {
	if trend == nil {
		return absentCell
	}
	v := *trend
	if math.Abs(v) < 0.005 {
		v = 0
	}
	return fmt.Sprintf("%+.2f", v)
}

// TrendClass buckets a trend for styling: "up", "down", or "neutral".
// The same flush-to-zero threshold as FormatTrend applies, so a value that
// prints as +0.00 always classifies as neutral.
func TrendClass(trend *float64) string {
	if trend == nil {
		return "neutral"
	}
	switch v := *trend; {
	case v >= 0.005:
		return "up"
	case v <= -0.005:
		return "down"
	default:
		return "neutral"
	}
}

// FormatScore renders an optional performance score to two decimals.
// Nil and non-finite values render as "-".
func FormatScore(score *float64) string {
	if score == nil || math.IsNaN(*score) || math.IsInf(*score, 0) {
		return absentCell
	}
	return fmt.Sprintf("%.2f", *score)
}

// FormatRank renders an optional 1-based source rank. Absent ranks render
// as "-".
func FormatRank(rank *int) string {
	if rank == nil {
		return absentCell
	}
	return strconv.Itoa(*rank)
}

// FormatPerf renders the blended performance score for one record. The blend
// is only meaningful when at least one raw signal exists; without any it
// renders as "-".
func FormatPerf(r *domain.SchulzeRecord) string {
	if !r.HasPerfSignal() {
		return absentCell
	}
	return fmt.Sprintf("%.2f", r.PerfScore)
}
