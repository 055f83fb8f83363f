// Package valueparser implements CalKu's value parser: promoting a
// raw lexeme string captured by the lexer into a typed value.Value, trying
// number, boolean, null/undefined, and the ISO8601/US-date grammars in
// turn before falling back to String.
package valueparser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cwbudde/go-calku/internal/token"
	"github.com/cwbudde/go-calku/internal/value"
)

var (
	numberRe = regexp.MustCompile(`^-?\d*(\.\d+)?$`)
	boolRe   = regexp.MustCompile(`(?i)^(true|false)$`)

	iso8601Re = regexp.MustCompile(
		`^(\d{4})-(\d{2})-(\d{2})` +
			`(?:[T ](\d{1,2}):(\d{2})(?::(\d{2})(?:\.(\d{1,3}))?)?)?` +
			`(?:\s*(?:GMT)?(Z|[+-]\d{2}:\d{2}))?$`)

	usDateRe = regexp.MustCompile(
		`(?i)^(\d{1,2})/(\d{1,2})/(\d{4})` +
			`(?:\s+(\d{1,2}):(\d{2})(?::(\d{2})(?:\.(\d{1,3}))?)?\s*(AM|PM))?` +
			`(?:\s*(?:GMT)?(Z|[+-]\d{2}:\d{2}))?$`)
)

// ZoneResolver resolves an IANA zone name to its current "±HH:MM" offset,
// used when a lexeme carries no embedded offset.
type ZoneResolver func(zone string) (offset string, err error)

// UTCResolver is the default resolver: everything maps to "+00:00".
func UTCResolver(string) (string, error) { return "+00:00", nil }

// Parse promotes raw (the lexeme text, with quoting already stripped by
// the lexer) into a typed Value:
//  1. quoted literals are always String, never re-typed
//  2. naked literals try: number, boolean, null/undefined, date; anything
//     else passes through as a String
func Parse(raw string, style token.LiteralStyle, zone string, resolve ZoneResolver) value.Value {
	if style == token.Quoted {
		return value.String{Val: raw}
	}

	if numberRe.MatchString(raw) && raw != "" && raw != "-" {
		n, err := strconv.ParseFloat(raw, 64)
		if err == nil && !math.IsNaN(n) {
			return value.Number{Val: n}
		}
	}

	if boolRe.MatchString(raw) {
		return value.Boolean{Val: strings.EqualFold(raw, "true")}
	}

	if strings.EqualFold(raw, "null") {
		return value.Null{}
	}
	if strings.EqualFold(raw, "undefined") {
		return value.Undefined{}
	}

	if d, ok := parseDate(raw, zone, resolve); ok {
		return d
	}

	return value.String{Val: raw}
}

func parseDate(raw, zone string, resolve ZoneResolver) (value.Date, bool) {
	if m := iso8601Re.FindStringSubmatch(raw); m != nil {
		return buildDate(
			m[1], m[2], m[3], m[4], m[5], m[6], m[7], m[8],
			false, "", zone, resolve,
		)
	}
	if m := usDateRe.FindStringSubmatch(raw); m != nil {
		// US grammar: month, day, year, hour, minute, second, millis, ampm, offset
		return buildDate(
			m[3], m[1], m[2], m[4], m[5], m[6], m[7], m[9],
			true, m[8], zone, resolve,
		)
	}
	return value.Date{}, false
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func buildDate(yearS, monthS, dayS, hourS, minS, secS, msS, offsetS string,
	isUS bool, ampm, zone string, resolve ZoneResolver) (value.Date, bool) {

	year, err1 := strconv.Atoi(yearS)
	month, err2 := strconv.Atoi(monthS)
	day, err3 := strconv.Atoi(dayS)
	if err1 != nil || err2 != nil || err3 != nil {
		return value.Date{}, false
	}

	hour := atoiOr(hourS, 0)
	minute := atoiOr(minS, 0)
	second := atoiOr(secS, 0)
	millis := 0
	if msS != "" {
		padded := (msS + "000")[:3]
		millis = atoiOr(padded, 0)
	}

	if isUS && ampm != "" {
		switch strings.ToUpper(ampm) {
		case "PM":
			if hour != 12 {
				hour += 12
			}
		case "AM":
			if hour == 12 {
				hour = 0
			}
		}
	}

	offset := offsetS
	if offset == "" {
		var err error
		offset, err = resolve(zone)
		if err != nil {
			offset = "+00:00"
		}
	}

	loc, locOffsetSeconds, ok := parseOffset(offset)
	if !ok {
		return value.Date{}, false
	}

	instant := time.Date(year, time.Month(month), day, hour, minute, second, millis*1_000_000, time.FixedZone(loc, locOffsetSeconds))
	return value.Date{Instant: instant.UTC(), Offset: offset}, true
}

// parseOffset turns "Z" or "+HH:MM"/"-HH:MM" into a zone name and a
// seconds-east-of-UTC value for time.FixedZone.
func parseOffset(offset string) (name string, seconds int, ok bool) {
	if strings.EqualFold(offset, "Z") || offset == "" {
		return "UTC", 0, true
	}
	if len(offset) != 6 || (offset[0] != '+' && offset[0] != '-') {
		return "", 0, false
	}
	hh, err1 := strconv.Atoi(offset[1:3])
	mm, err2 := strconv.Atoi(offset[4:6])
	if err1 != nil || err2 != nil {
		return "", 0, false
	}
	total := hh*3600 + mm*60
	if offset[0] == '-' {
		total = -total
	}
	return offset, total, true
}
