// Package calendar builds iCalendar files for grant deadlines.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/grantflow/internal/grant"
)

// maxLineOctets is the RFC 5545 content line limit, excluding CRLF
const maxLineOctets = 75

// Event carries what a deadline entry needs beyond the grant itself
type Event struct {
	// UID uniquely identifies the entry, e.g. "<slug>@grantflow.vercel.app"
	UID string
	// PageURL links back to the grant's detail page
	PageURL string
}

// Entry pairs a grant with its calendar metadata
type Entry struct {
	Grant *grant.Grant
	Event Event
}

// GenerateDeadlineICS generates a calendar with one all-day entry on the
// grant's deadline. It returns false when the deadline is rolling, missing
// or cannot be parsed.
func GenerateDeadlineICS(g *grant.Grant, ev Event, brand string, now time.Time) (string, bool) {
	if g.DeadlineTime().IsZero() {
		return "", false
	}

	var ics strings.Builder
	writeHeader(&ics, brand, "")
	writeEvent(&ics, g, ev, now)
	writeLine(&ics, "END:VCALENDAR")

	return ics.String(), true
}

// GenerateDeadlinesICS generates one calendar holding every dated deadline
// in entries. Entries without a usable deadline are skipped; if none are
// left the result is empty.
func GenerateDeadlinesICS(entries []Entry, brand, calendarName string, now time.Time) string {
	var events strings.Builder
	count := 0
	for _, e := range entries {
		if e.Grant.DeadlineTime().IsZero() {
			continue
		}
		writeEvent(&events, e.Grant, e.Event, now)
		count++
	}
	if count == 0 {
		return ""
	}

	var ics strings.Builder
	writeHeader(&ics, brand, calendarName)
	ics.WriteString(events.String())
	writeLine(&ics, "END:VCALENDAR")

	return ics.String()
}

func writeHeader(ics *strings.Builder, brand, calendarName string) {
	if brand == "" {
		brand = "GrantFlow"
	}
	writeLine(ics, "BEGIN:VCALENDAR")
	writeLine(ics, "VERSION:2.0")
	writeLine(ics, fmt.Sprintf("PRODID:-//%s//grantflow//EN", brand))
	writeLine(ics, "CALSCALE:GREGORIAN")
	writeLine(ics, "METHOD:PUBLISH")
	if calendarName != "" {
		writeLine(ics, "X-WR-CALNAME:"+escapeICS(calendarName))
	}
}

func writeEvent(ics *strings.Builder, g *grant.Grant, ev Event, now time.Time) {
	deadline := g.DeadlineTime()

	writeLine(ics, "BEGIN:VEVENT")
	writeLine(ics, "UID:"+ev.UID)
	writeLine(ics, "DTSTAMP:"+formatICSTime(now))

	// All-day entry: DTEND is exclusive
	writeLine(ics, "DTSTART;VALUE=DATE:"+formatICSDate(deadline))
	writeLine(ics, "DTEND;VALUE=DATE:"+formatICSDate(deadline.AddDate(0, 0, 1)))

	writeLine(ics, "SUMMARY:"+escapeICS("Deadline: "+g.Title))
	writeLine(ics, "DESCRIPTION:"+escapeICS(description(g, ev.PageURL)))
	if g.Link != "" {
		writeLine(ics, "URL:"+g.Link)
	}

	writeLine(ics, "STATUS:CONFIRMED")
	writeLine(ics, "SEQUENCE:0")
	writeLine(ics, "TRANSP:TRANSPARENT")

	// Reminder one week ahead
	writeLine(ics, "BEGIN:VALARM")
	writeLine(ics, "ACTION:DISPLAY")
	writeLine(ics, "DESCRIPTION:"+escapeICS(g.Title+" closes in one week"))
	writeLine(ics, "TRIGGER:-P7D")
	writeLine(ics, "END:VALARM")

	writeLine(ics, "END:VEVENT")
}

func description(g *grant.Grant, pageURL string) string {
	var parts []string
	if g.Source != "" {
		parts = append(parts, "Source: "+g.Source)
	}
	if g.HasAmount() {
		parts = append(parts, "Amount: "+string(g.Amount))
	}
	if g.Eligibility != "" {
		parts = append(parts, "Eligibility: "+g.Eligibility)
	}
	if g.Link != "" {
		parts = append(parts, "Apply at: "+g.Link)
	}
	if pageURL != "" {
		parts = append(parts, "Details: "+pageURL)
	}
	return strings.Join(parts, "\n")
}

// writeLine writes one content line, folded at maxLineOctets
func writeLine(b *strings.Builder, line string) {
	limit := maxLineOctets
	for len(line) > limit {
		cut := limit
		// Never split a UTF-8 sequence
		for cut > 0 && !isRuneStart(line[cut]) {
			cut--
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
		// Continuation lines start with a space
		limit = maxLineOctets - 1
	}
	b.WriteString(line)
	b.WriteString("\r\n")
}

func isRuneStart(c byte) bool {
	return c&0xC0 != 0x80
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// formatICSDate formats the calendar date of t
func formatICSDate(t time.Time) string {
	return t.Format("20060102")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
