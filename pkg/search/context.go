package search

// Matcher decides whether one line matches. *query.Query implements it.
type Matcher interface {
	Matches(line string) bool
}

// LineRecord is one line selected for display.
type LineRecord struct {
	LineNumber int    `json:"line"` // 1-based
	Text       string `json:"text"`
	IsMatch    bool   `json:"match"`
}

// Assemble selects the lines to display for one document: every matching
// line plus up to radius lines of context on each side. Windows are clipped
// at the document bounds and overlapping windows are merged, so the result
// is sorted by line number with no duplicates. A document without matches
// yields no records regardless of radius.
func Assemble(lines []string, m Matcher, radius int) []LineRecord {
	// A window never needs to reach past the document, and clamping keeps
	// idx+radius from overflowing.
	radius = max(0, min(radius, len(lines)))

	var matched []int
	for i, line := range lines {
		if m.Matches(line) {
			matched = append(matched, i)
		}
	}
	if len(matched) == 0 {
		return nil
	}

	if radius == 0 {
		records := make([]LineRecord, len(matched))
		for i, idx := range matched {
			records[i] = LineRecord{LineNumber: idx + 1, Text: lines[idx], IsMatch: true}
		}
		return records
	}

	isMatch := make([]bool, len(lines))
	for _, idx := range matched {
		isMatch[idx] = true
	}

	last := len(lines) - 1
	records := make([]LineRecord, 0, min(len(lines), len(matched)*(2*radius+1)))
	next := 0 // first index not yet emitted
	for _, idx := range matched {
		start := max(idx-radius, next)
		end := min(idx+radius, last)
		for i := start; i <= end; i++ {
			records = append(records, LineRecord{LineNumber: i + 1, Text: lines[i], IsMatch: isMatch[i]})
		}
		next = max(next, end+1)
	}
	return records
}

// Groups splits sorted records into runs of consecutive line numbers. A
// renderer prints a separator between groups.
func Groups(records []LineRecord) [][]LineRecord {
	var groups [][]LineRecord
	start := 0
	for i := 1; i <= len(records); i++ {
		if i == len(records) || records[i].LineNumber-records[i-1].LineNumber > 1 {
			groups = append(groups, records[start:i])
			start = i
		}
	}
	return groups
}
