// Package form defines the evaluation criteria template: the sections,
// subsections, and rating items the evaluator form is built from, loaded
// either from a JSON file or from the Excel workbook the training
// committee maintains.
package form

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/htaso/evaluator/internal/score"
)

// Item is one rateable criterion on the form.
type Item struct {
	Key     string `json:"key"`
	Text    string `json:"text"`
	AllowNA bool   `json:"allow_na"`
}

// Subsection groups items under a scored heading.
type Subsection struct {
	Name     string `json:"name"`
	MaxScore int    `json:"max_score,omitempty"`
	Items    []Item `json:"items"`
}

// Section is a top-level form category such as "Plate Work".
type Section struct {
	Name        string       `json:"name"`
	RawName     string       `json:"raw_name,omitempty"`
	Subsections []Subsection `json:"subsections"`
}

// Template is the full criteria structure of the evaluation form.
type Template struct {
	Sections []Section `json:"sections"`
}

// Option is one selectable rating on the form. Value is the internal
// score attached at definition time so the aggregator does not have to
// parse it back out of the label; it is zero for the Not Observed option.
type Option struct {
	Label string `json:"label"`
	Value int    `json:"value,omitempty"`
}

// Options returns the rating dropdown choices, graded labels first.
// allowNA appends the Not Observed option.
func Options(allowNA bool) []Option {
	opts := make([]Option, 0, len(score.Labels)+1)
	for i, label := range score.Labels {
		opts = append(opts, Option{Label: label, Value: 5 - i})
	}
	if allowNA {
		opts = append(opts, Option{Label: score.NotObserved})
	}
	return opts
}

// Recommendations are the overall recommendation choices with their
// display colors.
var Recommendations = []struct {
	Label string
	Color string
}{
	{"Approved for Independent Evaluation", "#2A9D8F"},
	{"Approved with Additional Training Required", "#F4A261"},
	{"Requires Further Training Before Approval", "#F97316"},
	{"Not Approved - Significant Concerns", "#E76F51"},
}

// RecommendationColor returns the display color for a recommendation
// label, or a neutral gray for unknown labels.
func RecommendationColor(label string) string {
	for _, r := range Recommendations {
		if r.Label == label {
			return r.Color
		}
	}
	return "#6C757D"
}

// ValidRecommendation reports whether label is one of the offered
// recommendation choices.
func ValidRecommendation(label string) bool {
	for _, r := range Recommendations {
		if r.Label == label {
			return true
		}
	}
	return false
}

// Item looks up a criterion by key.
func (t *Template) Item(key string) (Item, Section, Subsection, bool) {
	for _, sec := range t.Sections {
		for _, sub := range sec.Subsections {
			for _, item := range sub.Items {
				if item.Key == key {
					return item, sec, sub, true
				}
			}
		}
	}
	return Item{}, Section{}, Subsection{}, false
}

// ItemCount returns the total number of criteria on the form.
func (t *Template) ItemCount() int {
	n := 0
	for _, sec := range t.Sections {
		for _, sub := range sec.Subsections {
			n += len(sub.Items)
		}
	}
	return n
}

// Ratings builds the rating skeleton for a submission: one Rating per
// criterion, with the evaluator's selection supplied by pick. Missing
// selections default to the placeholder and are excluded from aggregation.
func (t *Template) Ratings(pick func(key string) string) []score.Rating {
	var ratings []score.Rating
	for _, sec := range t.Sections {
		for _, sub := range sec.Subsections {
			for _, item := range sub.Items {
				sel := pick(item.Key)
				if sel == "" {
					sel = score.Placeholder
				}
				ratings = append(ratings, score.Rating{
					Key:        item.Key,
					Section:    sec.Name,
					Subsection: sub.Name,
					Prompt:     item.Text,
					Selection:  sel,
				})
			}
		}
	}
	return ratings
}

// LoadJSON reads a criteria template from a JSON file.
func LoadJSON(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read criteria file: %w", err)
	}
	return ParseJSON(data)
}

// ParseJSON decodes a criteria template and validates that it has at
// least one rateable item.
func ParseJSON(data []byte) (*Template, error) {
	var t Template
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse criteria JSON: %w", err)
	}
	if t.ItemCount() == 0 {
		return nil, fmt.Errorf("criteria template has no items")
	}
	return &t, nil
}

// Load reads a template from either a JSON file or an Excel workbook,
// chosen by file extension.
func Load(path string) (*Template, error) {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return LoadExcel(path)
	}
	return LoadJSON(path)
}
