// Package domain holds the core wire types and token rules for snapshot
// diff streams
package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// LevelOffset shifts signed change levels into the non-negative range used
// to name bucket files
const LevelOffset = 513

// StartCookie addresses the first page of a stream
const StartCookie = "0"

// Marker classifies stream framing lines
type Marker uint8

const (
	// MarkerNone means the line is an ordinary record
	MarkerNone Marker = iota
	// MarkerEOB closes a page with more pages to follow
	MarkerEOB
	// MarkerEOF closes the final page of the stream
	MarkerEOF
)

// String renders the wire token for the marker
func (m Marker) String() string {
	switch m {
	case MarkerEOB:
		return "EOB"
	case MarkerEOF:
		return "EOF"
	default:
		return "none"
	}
}

// MarkerOf classifies a tokenized line: the third field names the marker
func MarkerOf(toks []string) Marker {
	if len(toks) < 3 {
		return MarkerNone
	}
	switch toks[2] {
	case "EOB":
		return MarkerEOB
	case "EOF":
		return MarkerEOF
	}
	return MarkerNone
}

// Record is a single parsed change record
type Record struct {
	Level    int
	ObjectID string
	Payload  []string
}

// BucketLevel returns the shifted level that groups records of equal depth
func (r Record) BucketLevel() int { return r.Level + LevelOffset }

// Line is one tokenized line of the diff stream
type Line struct {
	Marker Marker
	Cookie string // token after the marker when present
	Record Record // populated when Marker is MarkerNone
}

// ParseLine tokenizes one stream line. Fields are whitespace separated:
// change level, object id, then payload. A line whose third field is EOB
// or EOF is a page marker; the field after the marker, when present,
// carries the continuation cookie.
func ParseLine(raw string) (Line, error) {
	toks := strings.Fields(raw)
	if m := MarkerOf(toks); m != MarkerNone {
		ln := Line{Marker: m}
		if len(toks) > 3 {
			ln.Cookie = toks[3]
		}
		return ln, nil
	}

	if len(toks) == 0 {
		return Line{}, fmt.Errorf("blank line")
	}
	level, err := strconv.Atoi(toks[0])
	if err != nil {
		return Line{}, fmt.Errorf("change level %q: %w", toks[0], err)
	}
	rec := Record{Level: level}
	if len(toks) > 1 {
		rec.ObjectID = toks[1]
	}
	if len(toks) > 2 {
		rec.Payload = toks[2:]
	}
	return Line{Record: rec}, nil
}
