package form

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// criteriaSheet is the worksheet the training committee keeps the
// criteria on. Other sheets in the workbook hold scoring notes and are
// ignored.
const criteriaSheet = "Eval. & Obser. Criteria"

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	anyNumber     = regexp.MustCompile(`(\d+)`)
	slugJunk      = regexp.MustCompile(`[^a-z0-9]+`)
	slugRuns      = regexp.MustCompile(`_+`)
	parenSuffix   = regexp.MustCompile(`(?i)\s*\(.*?\)\s*$`)
	titleCaser    = cases.Title(language.English)
)

// textReplacements maps typography the workbook picks up from Word
// pastes back to plain ASCII equivalents.
var textReplacements = strings.NewReplacer(
	"–", "-", // en dash
	"—", "-", // em dash
	"‘", "'", // left single quote
	"’", "'", // right single quote
	"“", `"`, // left double quote
	"”", `"`, // right double quote
	"�", "'", // replacement character
)

// cleanText normalizes a cell value: NFKC form, plain punctuation,
// collapsed whitespace.
func cleanText(value string) string {
	text := norm.NFKC.String(value)
	text = textReplacements.Replace(text)
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "\r", " ")
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}

// slugify builds a stable ASCII key from the given parts.
func slugify(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	joined := norm.NFKD.String(strings.Join(kept, "_"))
	var ascii strings.Builder
	for _, r := range joined {
		if r < 128 {
			ascii.WriteRune(r)
		}
	}
	slug := slugJunk.ReplaceAllString(strings.ToLower(ascii.String()), "_")
	slug = strings.Trim(slugRuns.ReplaceAllString(slug, "_"), "_")
	if slug == "" {
		return "criterion"
	}
	return slug
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return cleanText(row[i])
}

// connector prefixes that mark a numbered row as a continuation of the
// previous item rather than a new one.
var connectorPrefixes = []string{
	"and ", "or ", "nor ", "but ", "so ", "yet ",
	"to ", "from ", "with ", "without ", "into ",
	"onto ", "including ", "excluding ",
}

func startsWithConnector(text string) bool {
	lowered := strings.ToLower(strings.TrimLeft(text, " "))
	for _, p := range connectorPrefixes {
		if strings.HasPrefix(lowered, p) {
			return true
		}
	}
	return false
}

func startsLowercase(text string) bool {
	trimmed := strings.TrimLeft(text, " ")
	return trimmed != "" && trimmed[0] >= 'a' && trimmed[0] <= 'z'
}

func isNumericLabel(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// LoadExcel parses the criteria template out of the Excel workbook.
// The sheet layout is positional: section headings sit alone in column E,
// subsection rows carry a "Score" or "Pass or Fail" note, and items live
// in column B with their label (and optional N/A marker) in column A.
func LoadExcel(path string) (*Template, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open criteria workbook: %w", err)
	}
	defer wb.Close()

	idx, err := wb.GetSheetIndex(criteriaSheet)
	if err != nil || idx < 0 {
		return nil, fmt.Errorf("criteria workbook has no %q sheet", criteriaSheet)
	}

	rows, err := wb.GetRows(criteriaSheet)
	if err != nil {
		return nil, fmt.Errorf("read criteria sheet: %w", err)
	}

	t := parseRows(rows)
	if t.ItemCount() == 0 {
		return nil, fmt.Errorf("criteria workbook yielded no items")
	}
	return t, nil
}

func parseRows(rows [][]string) *Template {
	var sections []Section
	var curSection *Section
	var curSubsection *Subsection
	var lastItem *Item

	for _, row := range rows {
		colA := cell(row, 0)
		colB := cell(row, 1)
		colC := cell(row, 2)

		// Section headings have text in column E and nothing in A-C.
		colE := cell(row, 4)
		if colE != "" && colA == "" && colB == "" && colC == "" {
			lowered := strings.ToLower(colE)
			if strings.Contains(lowered, "score") ||
				strings.Contains(lowered, "out of") ||
				strings.Contains(lowered, "pass or fail") {
				continue // scoring note, not a heading
			}
			sections = append(sections, Section{
				Name:    titleCaser.String(strings.ToLower(colE)),
				RawName: colE,
			})
			curSection = &sections[len(sections)-1]
			curSubsection = nil
			lastItem = nil
			continue
		}

		if curSection == nil {
			continue
		}

		// Subsection rows name the group in column A and carry scoring
		// info in the remaining columns.
		var rest []string
		for i := 2; i < len(row); i++ {
			if c := cell(row, i); c != "" {
				rest = append(rest, c)
			}
		}
		infoLine := strings.ToLower(strings.Join(rest, " "))
		if colA != "" && (strings.Contains(infoLine, "score") || strings.Contains(infoLine, "pass or fail")) {
			maxScore := 0
			for i := 2; i < len(row); i++ {
				if m := anyNumber.FindString(cell(row, i)); m != "" {
					if n, err := strconv.Atoi(m); err == nil && n > maxScore {
						maxScore = n
					}
				}
			}
			curSection.Subsections = append(curSection.Subsections, Subsection{
				Name:     colA,
				MaxScore: maxScore,
			})
			curSubsection = &curSection.Subsections[len(curSection.Subsections)-1]
			lastItem = nil
			continue
		}

		if curSubsection == nil || colB == "" {
			continue
		}

		// Item rows: decide whether column B starts a new item or
		// continues the previous one across a row break.
		isNew := true
		if lastItem != nil {
			switch {
			case colA == "":
				isNew = false
			case isNumericLabel(colA):
				if startsLowercase(colB) || startsWithConnector(colB) {
					isNew = false
				}
			default:
				if startsLowercase(colB) {
					isNew = false
				}
			}
		}

		if isNew {
			key := slugify(
				curSection.Name,
				curSubsection.Name,
				fmt.Sprintf("%02d", len(curSubsection.Items)+1),
			)
			curSubsection.Items = append(curSubsection.Items, Item{
				Key:     key,
				Text:    colB,
				AllowNA: strings.Contains(strings.ToLower(colA), "n/a"),
			})
			lastItem = &curSubsection.Items[len(curSubsection.Items)-1]
		} else {
			joiner := " "
			if strings.HasSuffix(lastItem.Text, "—") || strings.HasSuffix(lastItem.Text, "-") {
				joiner = ""
			}
			lastItem.Text = strings.TrimSpace(lastItem.Text + joiner + colB)
		}
	}

	return &Template{Sections: mergeContinuedSections(sections)}
}

// mergeContinuedSections folds "Plate Work (Continued)" back into
// "Plate Work", preserving first-appearance order.
func mergeContinuedSections(sections []Section) []Section {
	var merged []Section
	index := make(map[string]int)

	for _, sec := range sections {
		canonical := strings.TrimSpace(parenSuffix.ReplaceAllString(sec.Name, ""))
		if i, ok := index[canonical]; ok {
			if !strings.Contains(merged[i].RawName, sec.RawName) {
				merged[i].RawName += ", " + sec.RawName
			}
			merged[i].Subsections = append(merged[i].Subsections, sec.Subsections...)
			continue
		}
		index[canonical] = len(merged)
		merged = append(merged, Section{
			Name:        canonical,
			RawName:     sec.RawName,
			Subsections: sec.Subsections,
		})
	}
	return merged
}
