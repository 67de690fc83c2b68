package importer

import (
	"encoding/csv"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mkarvone/repsmith/internal/errors"
	"github.com/mkarvone/repsmith/internal/estimation"
)

// ErrNoRows means the document was readable but contained no resolvable
// training rows. It is a hard failure so callers never mistake a parser
// mismatch for an empty training history.
var ErrNoRows = errors.NewSentinel("no resolvable training rows in document")

// ErrMalformedDocument means the document could not be read at all, for
// example broken quoting in a delimited export. Like [ErrNoRows] it is the
// caller's problem to report, not a server fault.
var ErrMalformedDocument = errors.NewSentinel("malformed import document")

const (
	dialectTabular  = "tabular"
	dialectHTML     = "html"
	dialectFreeText = "freetext"
)

// Parse extracts historical training sessions from an exported document.
// The dialect (delimited table, HTML table, or free text) is detected from
// the content itself. Sessions come back ordered by date, then label, with
// Index assigned sequentially.
func Parse(document string) ([]TrainingSession, error) {
	dialect := detectDialect(document)

	var (
		sessions []TrainingSession
		err      error
	)
	switch dialect {
	case dialectHTML:
		sessions, err = parseHTML(document)
	case dialectTabular:
		sessions, err = parseTabular(document)
	default:
		sessions = parseFreeText(document)
	}
	if err != nil {
		return nil, errors.Wrap(errors.Join(ErrMalformedDocument, err), "parse document", slog.String("dialect", dialect))
	}
	if countSets(sessions) == 0 {
		return nil, errors.Wrap(ErrNoRows, "parse document", slog.String("dialect", dialect))
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		if !sessions[i].Date.Equal(sessions[j].Date) {
			return sessions[i].Date.Before(sessions[j].Date)
		}
		return sessions[i].Label < sessions[j].Label
	})
	for i := range sessions {
		sessions[i].Index = i
	}
	return sessions, nil
}

func detectDialect(document string) string {
	lowered := strings.ToLower(document)
	if strings.Contains(lowered, "<table") && strings.Contains(lowered, "</table>") {
		return dialectHTML
	}
	for _, line := range strings.Split(document, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if delim := detectDelimiter(line); delim != 0 && looksLikeHeader(line, delim) {
			return dialectTabular
		}
		break
	}
	return dialectFreeText
}

func detectDelimiter(headerLine string) rune {
	for _, delim := range []rune{'\t', ';', ','} {
		if strings.Count(headerLine, string(delim)) >= 2 {
			return delim
		}
	}
	return 0
}

func looksLikeHeader(line string, delim rune) bool {
	cols := columnIndexes(strings.Split(strings.ToLower(line), string(delim)))
	return cols.exercise >= 0 && cols.weight >= 0 && cols.reps >= 0
}

// columns maps header names to cell positions. Negative means absent.
type columns struct {
	date     int
	label    int
	exercise int
	weight   int
	reps     int
	sets     int
}

func columnIndexes(header []string) columns {
	cols := columns{date: -1, label: -1, exercise: -1, weight: -1, reps: -1, sets: -1}
	for i, name := range header {
		switch strings.TrimSpace(strings.ToLower(name)) {
		case "date", "day":
			cols.date = i
		case "workout", "session", "label", "routine":
			cols.label = i
		case "exercise", "movement", "lift", "exercise name":
			cols.exercise = i
		case "weight", "load", "kg", "weight (kg)", "lbs":
			cols.weight = i
		case "reps", "rep", "repetitions":
			cols.reps = i
		case "sets", "set":
			cols.sets = i
		}
	}
	return cols
}

func parseTabular(document string) ([]TrainingSession, error) {
	var headerLine string
	for _, line := range strings.Split(document, "\n") {
		if strings.TrimSpace(line) != "" {
			headerLine = line
			break
		}
	}
	delim := detectDelimiter(headerLine)

	reader := csv.NewReader(strings.NewReader(document))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "read delimited rows")
	}
	if len(records) < 2 {
		return nil, nil
	}
	return sessionsFromRows(records[0], records[1:]), nil
}

func parseHTML(document string) ([]TrainingSession, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return nil, errors.Wrap(err, "read html document")
	}

	var (
		header []string
		rows   [][]string
	)
	doc.Find("table tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if len(cells) == 0 {
			return
		}
		if header == nil {
			header = cells
			return
		}
		rows = append(rows, cells)
	})
	if header == nil {
		return nil, nil
	}
	return sessionsFromRows(header, rows), nil
}

// sessionsFromRows is the shared row pipeline for both table dialects. Blank
// date and label cells carry the previous row's values forward, matching how
// spreadsheet exports elide repeated group headers.
func sessionsFromRows(header []string, rows [][]string) []TrainingSession {
	cols := columnIndexes(header)
	if cols.exercise < 0 || cols.weight < 0 || cols.reps < 0 {
		return nil
	}

	type sessionKey struct {
		date  time.Time
		label string
	}
	grouped := map[sessionKey]*TrainingSession{}
	var order []sessionKey

	var (
		currentDate  time.Time
		currentLabel string
	)
	for _, row := range rows {
		if date, ok := cellDate(row, cols.date); ok {
			currentDate = date
		}
		if label := cell(row, cols.label); label != "" {
			currentLabel = label
		}
		name := cell(row, cols.exercise)
		weight, okW := cellFloat(row, cols.weight)
		reps, okR := cellInt(row, cols.reps)
		if name == "" || !okW || !okR || reps <= 0 {
			continue
		}
		setCount := 1
		if n, ok := cellInt(row, cols.sets); ok && n > 0 {
			setCount = n
		}

		key := sessionKey{date: currentDate, label: currentLabel}
		session, ok := grouped[key]
		if !ok {
			session = &TrainingSession{Date: currentDate, Label: currentLabel}
			grouped[key] = session
			order = append(order, key)
		}
		for range setCount {
			appendSet(session, name, estimation.Set{Weight: weight, Reps: reps})
		}
	}

	sessions := make([]TrainingSession, 0, len(order))
	for _, key := range order {
		sessions = append(sessions, *grouped[key])
	}
	return sessions
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func cellFloat(row []string, i int) (float64, bool) {
	raw := strings.TrimSuffix(strings.TrimSuffix(cell(row, i), "kg"), "lbs")
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	return v, err == nil && v >= 0
}

func cellInt(row []string, i int) (int, bool) {
	v, err := strconv.Atoi(cell(row, i))
	return v, err == nil
}

var dateLayouts = []string{"2006-01-02", "02.01.2006", "1/2/2006", "Jan 2, 2006", "Jan 2 2006"}

func cellDate(row []string, i int) (time.Time, bool) {
	raw := cell(row, i)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if date, err := time.Parse(layout, raw); err == nil {
			return date, true
		}
	}
	return time.Time{}, false
}

var (
	// e.g. "2026-01-05 - Push day" or "5.1.2026 Upper"
	freeTextDateRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}|\d{1,2}\.\d{1,2}\.\d{4}|\d{1,2}/\d{1,2}/\d{4})\s*[-–:]?\s*(.*)$`)
	// "3x5 @ 100" means sets x reps at weight.
	setGroupRe = regexp.MustCompile(`(\d+)\s*[xX×]\s*(\d+)\s*@\s*(\d+(?:[.,]\d+)?)`)
	// "100x5" means weight x reps.
	singleSetRe = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*[xX×]\s*(\d+)`)
)

// parseFreeText handles hand-written logs, one line per exercise with a name
// followed by set notations. Lines that parse to nothing are skipped rather
// than failing the whole document; the zero-row check in Parse catches
// documents where nothing resolved at all.
func parseFreeText(document string) []TrainingSession {
	var (
		sessions []TrainingSession
		current  *TrainingSession
	)
	ensureSession := func() *TrainingSession {
		if current == nil {
			sessions = append(sessions, TrainingSession{})
			current = &sessions[len(sessions)-1]
		}
		return current
	}

	for _, line := range strings.Split(document, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-"))
		if line == "" {
			continue
		}

		if m := freeTextDateRe.FindStringSubmatch(line); m != nil {
			if date, ok := parseAnyDate(m[1]); ok {
				sessions = append(sessions, TrainingSession{Date: date, Label: strings.TrimSpace(m[2])})
				current = &sessions[len(sessions)-1]
				continue
			}
		}

		name, sets := parseExerciseLine(line)
		if name == "" || len(sets) == 0 {
			continue
		}
		appendSet(ensureSession(), name, sets...)
	}

	var out []TrainingSession
	for _, s := range sessions {
		if len(s.Exercises) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func parseExerciseLine(line string) (string, []estimation.Set) {
	// Sets-x-reps-at-weight groups expand to repeated identical sets.
	var sets []estimation.Set
	rest := line
	if groups := setGroupRe.FindAllStringSubmatch(line, -1); groups != nil {
		rest = setGroupRe.ReplaceAllString(line, "")
		for _, g := range groups {
			n, _ := strconv.Atoi(g[1])
			reps, _ := strconv.Atoi(g[2])
			weight, err := strconv.ParseFloat(strings.ReplaceAll(g[3], ",", "."), 64)
			if err != nil || n <= 0 || reps <= 0 {
				continue
			}
			for range n {
				sets = append(sets, estimation.Set{Weight: weight, Reps: reps})
			}
		}
	} else if singles := singleSetRe.FindAllStringSubmatchIndex(line, -1); singles != nil {
		rest = line[:singles[0][0]]
		for _, idx := range singles {
			weight, errW := strconv.ParseFloat(strings.ReplaceAll(line[idx[2]:idx[3]], ",", "."), 64)
			reps, errR := strconv.Atoi(line[idx[4]:idx[5]])
			if errW != nil || errR != nil || reps <= 0 {
				continue
			}
			sets = append(sets, estimation.Set{Weight: weight, Reps: reps})
		}
	}

	name := strings.TrimSpace(strings.Trim(strings.TrimSpace(rest), ":-,"))
	return name, sets
}

func parseAnyDate(raw string) (time.Time, bool) {
	for _, layout := range append(dateLayouts, "2.1.2006") {
		if date, err := time.Parse(layout, raw); err == nil {
			return date, true
		}
	}
	return time.Time{}, false
}

func appendSet(session *TrainingSession, rawName string, sets ...estimation.Set) {
	for i := range session.Exercises {
		if strings.EqualFold(session.Exercises[i].RawName, rawName) {
			session.Exercises[i].Sets = append(session.Exercises[i].Sets, sets...)
			return
		}
	}
	session.Exercises = append(session.Exercises, ExercisePerformance{RawName: rawName, Sets: sets})
}

func countSets(sessions []TrainingSession) int {
	var n int
	for _, s := range sessions {
		for _, e := range s.Exercises {
			n += len(e.Sets)
		}
	}
	return n
}
