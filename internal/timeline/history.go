package timeline

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/unclebandit/journey-engine/internal/model"
)

// Legacy company-change markers live inside the free-text notes as
// "[HISTORY:MOVED:<ISO date>] <message>". Matching is global and not
// anchored to line starts. A message runs to the end of its line or to the
// next marker, so company names may contain brackets.
var (
	markerHeadRe = regexp.MustCompile(`\[HISTORY:MOVED:([^\]]+)\]`)
	markerLineRe = regexp.MustCompile(`(?m)^[ \t]*\[HISTORY:MOVED:[^\]]+\][^\n]*(\n|$)`)
)

type marker struct {
	date    string
	message string
	raw     string
}

func scanMarkers(notes string) []marker {
	idx := markerHeadRe.FindAllStringSubmatchIndex(notes, -1)
	out := make([]marker, 0, len(idx))
	for i, m := range idx {
		end := len(notes)
		if i+1 < len(idx) {
			end = idx[i+1][0]
		}
		if nl := strings.IndexByte(notes[m[1]:end], '\n'); nl >= 0 {
			end = m[1] + nl
		}
		out = append(out, marker{
			date:    notes[m[2]:m[3]],
			message: strings.TrimSpace(notes[m[1]:end]),
			raw:     strings.TrimRight(notes[m[0]:end], " \t\r"),
		})
	}
	return out
}

// dateLayouts are tried in order when reading a marker date.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseMarkers returns one entry per marker found in notes. Markers with
// an unreadable date are skipped.
func ParseMarkers(notes string) []model.HistoryEntry {
	var out []model.HistoryEntry
	for _, m := range scanMarkers(notes) {
		date, ok := parseDate(m.date)
		if !ok {
			continue
		}
		out = append(out, model.HistoryEntry{
			Date:    date,
			Kind:    model.HistoryMoved,
			Message: m.message,
		})
	}
	return out
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatMarker renders one marker line.
func FormatMarker(at time.Time, message string) string {
	return fmt.Sprintf("[HISTORY:MOVED:%s] %s", at.UTC().Format(time.RFC3339), message)
}

// MoveMessage is the message recorded when a contact changes company.
func MoveMessage(from, to string) string {
	return fmt.Sprintf("Moved from %s to %s", from, to)
}

// AppendMove appends a marker on its own line at the end of notes. Earlier
// text is never rewritten.
func AppendMove(notes, from, to string, at time.Time) string {
	line := FormatMarker(at, MoveMessage(from, to))
	if notes == "" {
		return line
	}
	if strings.HasSuffix(notes, "\n") {
		return notes + line
	}
	return notes + "\n" + line
}

// StripMarkers hides marker lines for display. The stored notes are not
// touched.
func StripMarkers(notes string) string {
	return strings.TrimRight(markerLineRe.ReplaceAllString(notes, ""), "\n")
}

// PreserveMarkers returns incoming with every marker of stored that it no
// longer contains appended on its own line, so edits cannot drop history
// from the notes.
func PreserveMarkers(incoming, stored string) string {
	out := incoming
	for _, m := range scanMarkers(stored) {
		if strings.Contains(out, m.raw) {
			continue
		}
		if out != "" && !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
		out += m.raw
	}
	return out
}

// MigrateLegacy lifts markers embedded in the notes into the structured
// history list. Each structured entry accounts for one marker with the same
// date and message. Notes are preserved verbatim; running it again adds
// nothing. It reports whether the history changed.
func MigrateLegacy(c *model.Contact) bool {
	pending := unmatchedMarkers(c)
	c.History = append(c.History, pending...)
	return len(pending) > 0
}

// RecordMove writes a company change both as a notes marker and as a
// structured history entry.
func RecordMove(c *model.Contact, from, to string, at time.Time) {
	c.Notes = AppendMove(c.Notes, from, to, at)
	c.History = append(c.History, model.HistoryEntry{
		Date:    at.UTC().Truncate(time.Second),
		Kind:    model.HistoryMoved,
		Message: MoveMessage(from, to),
	})
}

// Moves returns the structured move entries followed by every marker that
// no structured entry already accounts for.
func Moves(c *model.Contact) []model.HistoryEntry {
	out := make([]model.HistoryEntry, 0, len(c.History))
	for _, h := range c.History {
		if isMove(h) {
			out = append(out, h)
		}
	}
	return append(out, unmatchedMarkers(c)...)
}

// unmatchedMarkers parses the notes and drops one marker per structured
// entry with the same key. Identical markers are kept apart.
func unmatchedMarkers(c *model.Contact) []model.HistoryEntry {
	structured := make(map[string]int, len(c.History))
	for _, h := range c.History {
		if isMove(h) {
			structured[entryKey(h)]++
		}
	}
	var out []model.HistoryEntry
	for _, h := range ParseMarkers(c.Notes) {
		k := entryKey(h)
		if structured[k] > 0 {
			structured[k]--
			continue
		}
		out = append(out, h)
	}
	return out
}

func isMove(h model.HistoryEntry) bool {
	return h.Kind == "" || h.Kind == model.HistoryMoved
}

func entryKey(h model.HistoryEntry) string {
	return fmt.Sprintf("%d|%s", h.Date.Unix(), h.Message)
}
