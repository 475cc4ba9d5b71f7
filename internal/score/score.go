// Package score turns raw per-criterion ratings into section, subsection,
// and overall roll-up summaries.
//
// The rating scale is the HTASO convention: the label's leading digit runs
// 1 (best) to 5 (worst), while the internal value used for sums and
// percentages is the inverted 6-digit, so higher is better. The two numbers
// are tracked side by side and must never be conflated.
package score

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// NotObserved is the sentinel selection for criteria that were not rated.
// Ratings carrying it contribute to no aggregate.
const NotObserved = "Not Observed"

// Placeholder is the default dropdown selection before the evaluator picks
// a result. Treated the same as an empty selection.
const Placeholder = "Select result"

// maxPerItem is the maximum internal score a single rated criterion can
// contribute, regardless of how many labels the scale defines.
const maxPerItem = 5

// Labels of the rating scale, ordered best to worst.
var Labels = []string{
	"1 - Outstanding",
	"2 - Above Standard",
	"3 - Meets Standard",
	"4 - Below Standard",
	"5 - Unsatisfactory",
}

// Rating is one evaluator judgment on one form criterion.
type Rating struct {
	Key        string `json:"key"`
	Section    string `json:"section"`
	Subsection string `json:"subsection"`
	Prompt     string `json:"prompt"`
	Selection  string `json:"selection"`
	// Score is the internal (inverted) value attached by the form schema
	// at definition time. When nil it is derived from Selection.
	Score *int `json:"score,omitempty"`
}

var leadingDigit = regexp.MustCompile(`^\s*(\d+)`)

// values resolves a rating to its (raw digit, internal score) pair.
// ok is false for the Not Observed sentinel, placeholder or empty
// selections, and selections with no usable leading digit; such ratings
// are excluded from every aggregate rather than treated as errors.
func (r Rating) values() (raw, internal int, ok bool) {
	sel := strings.TrimSpace(r.Selection)
	if sel == "" || sel == NotObserved || sel == Placeholder {
		return 0, 0, false
	}
	if r.Score != nil {
		if *r.Score < 1 || *r.Score > maxPerItem {
			return 0, 0, false
		}
		return 6 - *r.Score, *r.Score, true
	}
	m := leadingDigit.FindStringSubmatch(sel)
	if m == nil {
		return 0, 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 || n > maxPerItem {
		return 0, 0, false
	}
	return n, 6 - n, true
}

// Rated reports whether the rating contributes to aggregates.
func (r Rating) Rated() bool {
	_, _, ok := r.values()
	return ok
}

// Tier is the three-way classification used for color-coding a summary.
type Tier int

const (
	TierNone Tier = iota // no rated items, nothing to classify
	TierBest             // rounded raw average <= 2
	TierMiddle           // rounded raw average == 3
	TierWorst            // rounded raw average >= 4
)

// Color returns the display color for the tier badge.
func (t Tier) Color() string {
	switch t {
	case TierBest:
		return "#2A9D8F"
	case TierMiddle:
		return "#F4A261"
	case TierWorst:
		return "#E76F51"
	default:
		return "#6C757D"
	}
}

func (t Tier) String() string {
	switch t {
	case TierBest:
		return "best"
	case TierMiddle:
		return "middle"
	case TierWorst:
		return "worst"
	default:
		return "none"
	}
}

// roundAvg rounds a raw average to the rank shown on reports. Halfway
// values break toward the even rank, so 2.5 ranks 2 and 3.5 ranks 4:
// a group sitting exactly on a tier boundary lands in the outer tier,
// never in the middle one.
func roundAvg(rawAverage float64) int {
	return int(math.RoundToEven(rawAverage))
}

// tierOf classifies the rounded raw average.
func tierOf(rawAverage float64) Tier {
	switch r := roundAvg(rawAverage); {
	case r <= 2:
		return TierBest
	case r == 3:
		return TierMiddle
	default:
		return TierWorst
	}
}

// SectionSummary aggregates all rated criteria sharing one
// (section, subsection) pair. Raw sums are the canonical representation;
// averages, percentages, and tiers are derived on demand.
type SectionSummary struct {
	Section       string `json:"section"`
	Subsection    string `json:"subsection"`
	RatedCount    int    `json:"rated_count"`
	RawTotal      int    `json:"raw_total"`
	InternalTotal int    `json:"internal_total"`
	PossibleTotal int    `json:"possible_total"`
}

// RawAverage is the mean of raw digits on the 1-5 scale.
// ok is false when no criteria in the group were rated.
func (s SectionSummary) RawAverage() (avg float64, ok bool) {
	if s.RatedCount == 0 {
		return 0, false
	}
	return float64(s.RawTotal) / float64(s.RatedCount), true
}

// Percentage is round(100 * internal_total / possible_total), or 0 when
// nothing was rated.
func (s SectionSummary) Percentage() int {
	if s.RatedCount == 0 {
		return 0
	}
	return int(math.Round(100 * float64(s.InternalTotal) / float64(s.PossibleTotal)))
}

// Tier classifies the rounded raw average, or TierNone when nothing was
// rated.
func (s SectionSummary) Tier() Tier {
	avg, ok := s.RawAverage()
	if !ok {
		return TierNone
	}
	return tierOf(avg)
}

// Rank is the rounded raw average shown next to the section badge.
func (s SectionSummary) Rank() (int, bool) {
	avg, ok := s.RawAverage()
	if !ok {
		return 0, false
	}
	return roundAvg(avg), true
}

// AverageDisplay formats the raw average for display, with a placeholder
// (never a numeric zero) when nothing was rated.
func (s SectionSummary) AverageDisplay() string {
	avg, ok := s.RawAverage()
	if !ok {
		return "—"
	}
	return fmt.Sprintf("%.2f", avg)
}

// Overall aggregates the entire rating set of a submission. It is derived
// independently from the full rating list, not from the per-section
// summaries, so it stays correct even for ratings outside any recognized
// section.
type Overall struct {
	RatedCount    int            `json:"rated_count"`
	RawTotal      int            `json:"raw_total"`
	InternalTotal int            `json:"internal_total"`
	PossibleTotal int            `json:"possible_total"`
	ScoreCounts   map[string]int `json:"score_counts"`
}

// TotalScore is the raw sum of internal scores.
func (o Overall) TotalScore() float64 { return float64(o.InternalTotal) }

// TotalPossible is 5 per rated criterion.
func (o Overall) TotalPossible() float64 { return float64(o.PossibleTotal) }

// AverageScore is the 0-1 ratio of internal total to possible total.
func (o Overall) AverageScore() float64 {
	if o.PossibleTotal == 0 {
		return 0
	}
	return float64(o.InternalTotal) / float64(o.PossibleTotal)
}

// Percentage is the average score rounded to a whole percent.
func (o Overall) Percentage() int {
	return int(math.Round(100 * o.AverageScore()))
}

// RawAverage is the mean raw digit over all rated criteria, the
// "HTASO average" shown on reports.
func (o Overall) RawAverage() (float64, bool) {
	if o.RatedCount == 0 {
		return 0, false
	}
	return float64(o.RawTotal) / float64(o.RatedCount), true
}

// Rank is the rounded raw average.
func (o Overall) Rank() (int, bool) {
	avg, ok := o.RawAverage()
	if !ok {
		return 0, false
	}
	return roundAvg(avg), true
}

// Tier classifies the overall rounded raw average.
func (o Overall) Tier() Tier {
	avg, ok := o.RawAverage()
	if !ok {
		return TierNone
	}
	return tierOf(avg)
}

// Summary is the result of aggregating one submission's ratings.
// Sections appear in first-encounter order.
type Summary struct {
	Sections []SectionSummary `json:"sections"`
	Overall  Overall          `json:"overall"`
}

// Section returns the summary for a (section, subsection) pair, or a zero
// summary when the pair never appeared.
func (s Summary) Section(section, subsection string) SectionSummary {
	for _, ss := range s.Sections {
		if ss.Section == section && ss.Subsection == subsection {
			return ss
		}
	}
	return SectionSummary{Section: section, Subsection: subsection}
}

// Aggregate computes section and overall summaries from a submission's
// ratings. It is a pure function: the input is not mutated, input order
// does not affect group contents, and repeated calls yield identical
// results. Summaries are always recomputed from scratch; there is no
// incremental update path.
func Aggregate(ratings []Rating) Summary {
	counts := make(map[string]int, len(Labels)+1)
	for _, label := range Labels {
		counts[label] = 0
	}
	counts[NotObserved] = 0

	var sections []SectionSummary
	index := make(map[[2]string]int)
	overall := Overall{ScoreCounts: counts}

	for _, r := range ratings {
		section := r.Section
		if section == "" {
			section = "General"
		}
		subsection := r.Subsection
		if subsection == "" {
			subsection = "Criteria"
		}

		key := [2]string{section, subsection}
		i, seen := index[key]
		if !seen {
			i = len(sections)
			index[key] = i
			sections = append(sections, SectionSummary{Section: section, Subsection: subsection})
		}

		if _, known := counts[strings.TrimSpace(r.Selection)]; known {
			counts[strings.TrimSpace(r.Selection)]++
		}

		raw, internal, ok := r.values()
		if !ok {
			continue
		}

		sections[i].RatedCount++
		sections[i].RawTotal += raw
		sections[i].InternalTotal += internal
		sections[i].PossibleTotal += maxPerItem

		overall.RatedCount++
		overall.RawTotal += raw
		overall.InternalTotal += internal
		overall.PossibleTotal += maxPerItem
	}

	return Summary{Sections: sections, Overall: overall}
}
