// Package period standardizes and matches financial reporting period labels.
//
// Standard forms:
//   - full fiscal years: FY24 (two-digit year)
//   - quarters:          Q124 (quarter number + two-digit year)
//   - YTD/interim:       YTD-May-2025 (full year to avoid ambiguity)
//   - single months:     Jan-2025
//
// Standardize is idempotent: feeding it an already-standard label returns
// the label unchanged. Labels that cannot be recognized at all are also
// returned unchanged rather than guessed at.
package period

import (
	"fmt"
	"regexp"
	"strings"
)

// Type classifies what kind of reporting period a label names.
type Type string

const (
	TypeFiscalYear Type = "fiscal_year"
	TypeQuarter    Type = "quarter"
	TypeYTD        Type = "ytd"
	TypeMonth      Type = "month"
	TypeUnknown    Type = "unknown"
)

// monthPairs maps month spellings to canonical abbreviations. Longer
// spellings come first so substring matching finds them before their
// abbreviated prefixes.
var monthPairs = []struct{ key, abbrev string }{
	{"january", "Jan"}, {"jan", "Jan"},
	{"february", "Feb"}, {"feb", "Feb"},
	{"march", "Mar"}, {"mar", "Mar"},
	{"april", "Apr"}, {"apr", "Apr"},
	{"may", "May"},
	{"june", "Jun"}, {"jun", "Jun"},
	{"july", "Jul"}, {"jul", "Jul"},
	{"august", "Aug"}, {"aug", "Aug"},
	{"september", "Sep"}, {"sept", "Sep"}, {"sep", "Sep"},
	{"october", "Oct"}, {"oct", "Oct"},
	{"november", "Nov"}, {"nov", "Nov"},
	{"december", "Dec"}, {"dec", "Dec"},
}

var (
	fourDigitYearRe  = regexp.MustCompile(`(19|20)\d{2}`)
	apostropheYearRe = regexp.MustCompile("['`’](\\d{2})\\b")
	fyYearRe         = regexp.MustCompile(`fy\s*(\d{2})\b`)

	bareYearRe     = regexp.MustCompile(`^(fy\s?)?\d{2,4}$`)
	fyPrefixRe     = regexp.MustCompile(`^fy\s*\d{2,4}`)
	janToDecRe     = regexp.MustCompile(`(january|jan)\s*[-–—to\s]+(december|dec)`)
	twelveMonthsRe = regexp.MustCompile(`(12|twelve)\s*months?\s*(ended|ending)`)
	fullDateRangeRe = regexp.MustCompile(`(01|1)[/\-](01|1)[/\-]\d{4}\s*[-–—to]+\s*(12)[/\-](31)[/\-]\d{4}`)

	quarterNumRe = regexp.MustCompile(`q\s*([1-4])`)

	nMonthsEndedRe = regexp.MustCompile(`(\d+)\s*months?\s*(ended|ending)`)
	janThroughRe   = regexp.MustCompile(`(january|jan)\s*(?:[-–—]|to|through|thru)\s*(\w+)`)

	standardMonthRe = regexp.MustCompile(`^([a-z]{3,9})-((19|20)\d{2})$`)
)

// extractYear pulls a four-digit year out of a label, inferring the century
// for two-digit forms like '24 or FY24. Returns 0 when no year is present.
func extractYear(text string) int {
	if m := fourDigitYearRe.FindString(text); m != "" {
		return atoi(m)
	}
	lower := strings.ToLower(text)
	if m := apostropheYearRe.FindStringSubmatch(lower); m != nil {
		return expandYear(atoi(m[1]))
	}
	if m := fyYearRe.FindStringSubmatch(lower); m != nil {
		return expandYear(atoi(m[1]))
	}
	return 0
}

func expandYear(short int) int {
	if short < 50 {
		return 2000 + short
	}
	return 1900 + short
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

func shortYear(year int) string {
	return fmt.Sprintf("%02d", year%100)
}

// normalizeMonth finds the first month name mentioned anywhere in the text.
func normalizeMonth(text string) string {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, p := range monthPairs {
		if strings.Contains(lower, p.key) {
			return p.abbrev
		}
	}
	return ""
}

// isFullYear reports whether the label names a complete fiscal year:
// "2024", "FY24", "Year Ended December 31, 2024", "Jan - Dec 2024",
// "12 months ended ...", or a full 01/01-12/31 date range.
func isFullYear(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	switch {
	case bareYearRe.MatchString(lower),
		fyPrefixRe.MatchString(lower),
		strings.Contains(lower, "year ended"),
		strings.Contains(lower, "year ending"),
		janToDecRe.MatchString(lower),
		twelveMonthsRe.MatchString(lower),
		fullDateRangeRe.MatchString(lower):
		return true
	}
	return false
}

// detectQuarter returns (quarter, year) for labels like "Q1 2024",
// "First Quarter 2024", or "Three months ended March 31, 2024".
// ok is false when the label is not a quarter.
func detectQuarter(text string) (quarter, year int, ok bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	year = extractYear(text)
	if year == 0 {
		return 0, 0, false
	}

	if m := quarterNumRe.FindStringSubmatch(lower); m != nil {
		return atoi(m[1]), year, true
	}

	if strings.Contains(lower, "quarter") {
		ordinals := []struct {
			word string
			q    int
		}{
			{"first", 1}, {"1st", 1},
			{"second", 2}, {"2nd", 2},
			{"third", 3}, {"3rd", 3},
			{"fourth", 4}, {"4th", 4},
		}
		for _, o := range ordinals {
			if strings.Contains(lower, o.word) {
				return o.q, year, true
			}
		}
	}

	if strings.Contains(lower, "three months") || strings.Contains(lower, "3 months") {
		switch {
		case strings.Contains(lower, "mar"):
			return 1, year, true
		case strings.Contains(lower, "jun"):
			return 2, year, true
		case strings.Contains(lower, "sep"):
			return 3, year, true
		case strings.Contains(lower, "dec"):
			return 4, year, true
		}
	}

	return 0, 0, false
}

// detectYTD returns (month, year) for interim year-to-date labels:
// "YTD May 2025", "January through May 2025", "5 months ended May 31, 2025".
// Full-year labels are never YTD.
func detectYTD(text string) (month string, year int, ok bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	year = extractYear(text)
	if year == 0 || isFullYear(text) {
		return "", 0, false
	}

	if strings.Contains(lower, "ytd") {
		if m := normalizeMonth(lower); m != "" {
			return m, year, true
		}
	}

	if m := nMonthsEndedRe.FindStringSubmatch(lower); m != nil {
		if n := atoi(m[1]); n < 12 {
			if mo := normalizeMonth(lower); mo != "" {
				return mo, year, true
			}
		}
	}

	if m := janThroughRe.FindStringSubmatch(lower); m != nil {
		if end := normalizeMonth(m[2]); end != "" && end != "Dec" {
			return end, year, true
		}
	}

	return "", 0, false
}

// detectSingleMonth returns (month, year) for labels naming one month:
// "January 2025", "Month ended January 31, 2025", or the standard form
// "Jan-2025". Ranges and multi-month labels are excluded.
func detectSingleMonth(text string) (month string, year int, ok bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	year = extractYear(text)
	if year == 0 {
		return "", 0, false
	}

	// Already-standard "Mon-YYYY" form stays recognizable despite the
	// hyphen so standardization is idempotent.
	if m := standardMonthRe.FindStringSubmatch(lower); m != nil {
		if mo := normalizeMonth(m[1]); mo != "" {
			return mo, atoi(m[2]), true
		}
	}

	if !strings.Contains(lower, "ytd") {
		for _, marker := range []string{"through", "thru", " to ", "-", "–", "—", "months"} {
			if strings.Contains(lower, marker) {
				return "", 0, false
			}
		}
	}

	if mo := normalizeMonth(lower); mo != "" {
		return mo, year, true
	}

	return "", 0, false
}

// Standardize converts a raw period label from a document into the standard
// form. Quarters are checked first (most specific), then YTD (a partial year
// must win over the full-year patterns it resembles), then full years, then
// single months. A label with a recognizable year but no recognizable shape
// is assumed to be a fiscal year; anything else is returned unchanged.
func Standardize(label string) string {
	if label == "" {
		return label
	}
	stripped := strings.TrimSpace(label)

	if q, year, ok := detectQuarter(stripped); ok {
		return fmt.Sprintf("Q%d%s", q, shortYear(year))
	}
	if month, year, ok := detectYTD(stripped); ok {
		return fmt.Sprintf("YTD-%s-%d", month, year)
	}
	if isFullYear(stripped) {
		if year := extractYear(stripped); year != 0 {
			return "FY" + shortYear(year)
		}
	}
	if month, year, ok := detectSingleMonth(stripped); ok {
		return fmt.Sprintf("%s-%d", month, year)
	}
	if year := extractYear(stripped); year != 0 {
		return "FY" + shortYear(year)
	}
	return stripped
}

// NormalizeForMatching reduces a label to its core temporal components for
// equality comparison. More aggressive than Standardize.
func NormalizeForMatching(label string) string {
	if label == "" {
		return ""
	}
	lower := strings.ToLower(strings.TrimSpace(label))

	lower = regexp.MustCompile(`^(fy|fiscal\s*year)\s*`).ReplaceAllString(lower, "")
	lower = regexp.MustCompile(`(year\s*ended?|as\s*of)\s*`).ReplaceAllString(lower, "")
	lower = regexp.MustCompile(`\s*[-–—]\s*`).ReplaceAllString(lower, "-")
	lower = regexp.MustCompile(`\s+to\s+`).ReplaceAllString(lower, "-")
	lower = regexp.MustCompile(`\s+through\s+`).ReplaceAllString(lower, "-")
	lower = regexp.MustCompile(`\s+`).ReplaceAllString(lower, " ")

	for _, p := range monthPairs {
		lower = strings.ReplaceAll(lower, p.key, strings.ToLower(p.abbrev))
	}

	var yearFull, yearShort string
	if m := regexp.MustCompile(`(19|20)(\d{2})`).FindStringSubmatch(lower); m != nil {
		yearFull, yearShort = m[0], m[2]
	}

	if m := quarterNumRe.FindStringSubmatch(lower); m != nil {
		return "q" + m[1] + yearShort
	}
	if isFullYear(label) {
		if yearFull != "" {
			return yearFull
		}
		return yearShort
	}
	if month, year, ok := detectYTD(label); ok {
		return fmt.Sprintf("ytd-%s-%d", strings.ToLower(month), year)
	}
	if month, year, ok := detectSingleMonth(label); ok {
		return fmt.Sprintf("%s-%d", strings.ToLower(month), year)
	}
	if yearFull != "" {
		return yearFull
	}
	return strings.TrimSpace(lower)
}

// Match reports whether two labels refer to the same reporting period, e.g.
// "2023" matches "FY2023" and "Q1 2024" matches "First Quarter 2024".
func Match(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b)) {
		return true
	}
	if Standardize(a) == Standardize(b) {
		return true
	}
	if NormalizeForMatching(a) == NormalizeForMatching(b) {
		return true
	}

	yearA, yearB := extractYear(a), extractYear(b)
	if yearA == 0 || yearA != yearB {
		return false
	}
	if isFullYear(a) && isFullYear(b) {
		return true
	}
	if qa, ya, okA := detectQuarter(a); okA {
		if qb, yb, okB := detectQuarter(b); okB && qa == qb && ya == yb {
			return true
		}
	}
	return false
}

// TypeOf classifies a label's period kind.
func TypeOf(label string) Type {
	if label == "" {
		return TypeUnknown
	}
	if _, _, ok := detectQuarter(label); ok {
		return TypeQuarter
	}
	if isFullYear(label) {
		return TypeFiscalYear
	}
	if _, _, ok := detectYTD(label); ok {
		return TypeYTD
	}
	if _, _, ok := detectSingleMonth(label); ok {
		return TypeMonth
	}
	return TypeUnknown
}
