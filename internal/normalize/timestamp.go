package normalize

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/soc-intake/internal/domain"
)

// SourceLocation is the wall-clock zone of naive appliance timestamps:
// Argentina, UTC-3, no daylight saving.
var SourceLocation = time.FixedZone("ART", -3*60*60)

const (
	displayTimeLayout  = "Mon Jan 2 15:04:05 2006"
	dateTimeLayout     = "2006-01-02 15:04:05"
	syslogHeaderLayout = "Jan 2 15:04:05 2006"
)

var (
	datePattern         = regexp.MustCompile(`date="?(\d{4}-\d{2}-\d{2})"?`)
	timePattern         = regexp.MustCompile(`time="?(\d{2}:\d{2}:\d{2})"?`)
	clockPattern        = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`)
	syslogHeaderPattern = regexp.MustCompile(`([A-Za-z]{3}\s+\d{1,2}\s+\d{2}:\d{2}:\d{2})`)
)

// TimestampInput carries everything the resolver stages may look at.
type TimestampInput struct {
	// DisplayTime is the vendor formatted time, XML payloads only.
	DisplayTime Field

	// RawLog is the literal device output.
	RawLog string

	// CurrentYear completes syslog headers, which carry no year.
	CurrentYear int
}

// timestampStage is one attempt in the fallback chain. Stages never fail;
// they either produce a UTC instant or report false.
type timestampStage struct {
	source  domain.TimestampSource
	resolve func(TimestampInput) (time.Time, bool)
}

var timestampStages = []timestampStage{
	{source: domain.TimestampDisplayTime, resolve: fromDisplayTime},
	{source: domain.TimestampDateTime, resolve: fromDateTimePair},
	{source: domain.TimestampSyslogHeader, resolve: fromSyslogHeader},
}

// ResolveTimestamp returns the first instant produced by the stages, in
// priority order, along with the stage that produced it. When no stage
// succeeds it returns false and the caller substitutes processing time.
func ResolveTimestamp(in TimestampInput) (time.Time, domain.TimestampSource, bool) {
	for _, stage := range timestampStages {
		if t, ok := stage.resolve(in); ok {
			return t, stage.source, true
		}
	}
	return time.Time{}, "", false
}

func fromDisplayTime(in TimestampInput) (time.Time, bool) {
	display, ok := in.DisplayTime.Get()
	if !ok {
		return time.Time{}, false
	}

	// Only a zone token after the clock field is dropped; weekday and
	// month names may be upper case too.
	fields := strings.Fields(display)
	clock := slices.IndexFunc(fields, clockPattern.MatchString)
	if clock < 0 {
		return time.Time{}, false
	}
	kept := slices.Clone(fields[:clock+1])
	for _, tok := range fields[clock+1:] {
		if !isZoneAbbreviation(tok) {
			kept = append(kept, tok)
		}
	}

	return parseLocal(displayTimeLayout, strings.Join(kept, " "))
}

func fromDateTimePair(in TimestampInput) (time.Time, bool) {
	d := datePattern.FindStringSubmatch(in.RawLog)
	t := timePattern.FindStringSubmatch(in.RawLog)
	if d == nil || t == nil {
		return time.Time{}, false
	}
	return parseLocal(dateTimeLayout, d[1]+" "+t[1])
}

func fromSyslogHeader(in TimestampInput) (time.Time, bool) {
	m := syslogHeaderPattern.FindString(in.RawLog)
	if m == "" {
		return time.Time{}, false
	}
	value := strings.Join(strings.Fields(m), " ") + " " + strconv.Itoa(in.CurrentYear)
	return parseLocal(syslogHeaderLayout, value)
}

func parseLocal(layout, value string) (time.Time, bool) {
	t, err := time.ParseInLocation(layout, value, SourceLocation)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// isZoneAbbreviation reports whether tok looks like "ART" or "UTC".
func isZoneAbbreviation(tok string) bool {
	if len(tok) < 2 {
		return false
	}
	for _, r := range tok {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
