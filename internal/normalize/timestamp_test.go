package normalize

import (
	"testing"
	"time"

	"github.com/soc-intake/internal/domain"
)

func TestResolveTimestamp(t *testing.T) {
	utc := func(y int, mo time.Month, d, h, mi, s int) time.Time {
		return time.Date(y, mo, d, h, mi, s, 0, time.UTC)
	}

	tests := []struct {
		name       string
		in         TimestampInput
		want       time.Time
		wantSource domain.TimestampSource
		wantOK     bool
	}{
		{
			name:       "display time with zone before year",
			in:         TimestampInput{DisplayTime: Present("Wed May 01 14:30:00 ART 2024")},
			want:       utc(2024, time.May, 1, 17, 30, 0),
			wantSource: domain.TimestampDisplayTime,
			wantOK:     true,
		},
		{
			name:       "display time with trailing zone",
			in:         TimestampInput{DisplayTime: Present("Wed May 1 14:30:00 2024 ART")},
			want:       utc(2024, time.May, 1, 17, 30, 0),
			wantSource: domain.TimestampDisplayTime,
			wantOK:     true,
		},
		{
			name:       "upper case display time",
			in:         TimestampInput{DisplayTime: Present("WED MAY 01 14:30:00 ART 2024")},
			want:       utc(2024, time.May, 1, 17, 30, 0),
			wantSource: domain.TimestampDisplayTime,
			wantOK:     true,
		},
		{
			name:       "upper case display time with trailing zone",
			in:         TimestampInput{DisplayTime: Present("THU JAN 04 23:15:00 2024 UTC")},
			want:       utc(2024, time.January, 5, 2, 15, 0),
			wantSource: domain.TimestampDisplayTime,
			wantOK:     true,
		},
		{
			name: "display time beats raw log",
			in: TimestampInput{
				DisplayTime: Present("Thu Jan 04 23:15:00 ART 2024"),
				RawLog:      `date=2020-01-01 time=00:00:00`,
			},
			want:       utc(2024, time.January, 5, 2, 15, 0),
			wantSource: domain.TimestampDisplayTime,
			wantOK:     true,
		},
		{
			name: "bad display time falls through to date and time",
			in: TimestampInput{
				DisplayTime: Present("yesterday afternoon"),
				RawLog:      `date="2024-05-01" time="14:30:00" level=high`,
			},
			want:       utc(2024, time.May, 1, 17, 30, 0),
			wantSource: domain.TimestampDateTime,
			wantOK:     true,
		},
		{
			name:       "unquoted date and time",
			in:         TimestampInput{RawLog: `date=2024-05-01 time=14:30:00 level=critical`},
			want:       utc(2024, time.May, 1, 17, 30, 0),
			wantSource: domain.TimestampDateTime,
			wantOK:     true,
		},
		{
			name:       "date and time crossing midnight",
			in:         TimestampInput{RawLog: `time=22:10:05 date=2023-12-31`},
			want:       utc(2024, time.January, 1, 1, 10, 5),
			wantSource: domain.TimestampDateTime,
			wantOK:     true,
		},
		{
			name:       "invalid date falls through to syslog header",
			in:         TimestampInput{RawLog: `date=2024-13-01 time=14:30:00 Jan 5 10:00:00 fw01`, CurrentYear: 2023},
			want:       utc(2023, time.January, 5, 13, 0, 0),
			wantSource: domain.TimestampSyslogHeader,
			wantOK:     true,
		},
		{
			name:       "date without time uses syslog header",
			in:         TimestampInput{RawLog: `<190>May  1 14:30:00 fw01 date=2024-05-01`, CurrentYear: 2024},
			want:       utc(2024, time.May, 1, 17, 30, 0),
			wantSource: domain.TimestampSyslogHeader,
			wantOK:     true,
		},
		{
			name:       "syslog header rolls into next year in UTC",
			in:         TimestampInput{RawLog: `Dec 31 23:30:00 host sshd: fail`, CurrentYear: 2023},
			want:       utc(2024, time.January, 1, 2, 30, 0),
			wantSource: domain.TimestampSyslogHeader,
			wantOK:     true,
		},
		{
			name:   "impossible syslog date",
			in:     TimestampInput{RawLog: `Feb 29 10:00:00 host`, CurrentYear: 2023},
			wantOK: false,
		},
		{
			name:   "unknown month abbreviation",
			in:     TimestampInput{RawLog: `Foo 12 10:00:00`, CurrentYear: 2024},
			wantOK: false,
		},
		{
			name:   "nothing to resolve",
			in:     TimestampInput{RawLog: "", CurrentYear: 2024},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, source, ok := ResolveTimestamp(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ResolveTimestamp() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if !got.Equal(tt.want) {
				t.Errorf("ResolveTimestamp() = %v, want %v", got, tt.want)
			}
			if got.Location() != time.UTC {
				t.Errorf("ResolveTimestamp() location = %v, want UTC", got.Location())
			}
			if source != tt.wantSource {
				t.Errorf("source = %q, want %q", source, tt.wantSource)
			}
		})
	}
}

func TestIsZoneAbbreviation(t *testing.T) {
	for tok, want := range map[string]bool{
		"ART":  true,
		"UTC":  true,
		"Wed":  false,
		"2024": false,
		"A":    false,
	} {
		if got := isZoneAbbreviation(tok); got != want {
			t.Errorf("isZoneAbbreviation(%q) = %v, want %v", tok, got, want)
		}
	}
}
