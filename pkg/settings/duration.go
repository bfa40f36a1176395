package settings

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Duration wraps time.Duration so job_timeout (and any future duration
// field) can be written in config files as a Go duration string
// ("45m"), a timecode ("01:00:00"), or ISO 8601 ("PT1H").
type Duration struct {
	time.Duration
}

// Milliseconds returns the wrapped duration in whole milliseconds.
func (d Duration) Milliseconds() int64 {
	return d.Duration.Milliseconds()
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// ParseDuration accepts a Go duration string ("1h30m"), a timecode
// ("01:30:00" or "00:05:30.500"), or ISO 8601 ("PT1H30M").
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	if d, err := parseTimecode(s); err == nil {
		return d, nil
	}
	if strings.HasPrefix(s, "PT") {
		return parseISO8601(s)
	}

	return 0, fmt.Errorf("invalid duration format: %s", s)
}

var timecodePattern = regexp.MustCompile(`^(\d{1,2}):(\d{2}):(\d{2})(?:\.(\d{1,3}))?$`)

func parseTimecode(s string) (time.Duration, error) {
	matches := timecodePattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("invalid timecode format")
	}

	hours, _ := strconv.Atoi(matches[1])
	minutes, _ := strconv.Atoi(matches[2])
	seconds, _ := strconv.Atoi(matches[3])

	d := time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second

	if matches[4] != "" {
		ms := matches[4]
		for len(ms) < 3 {
			ms += "0"
		}
		millis, _ := strconv.Atoi(ms)
		d += time.Duration(millis) * time.Millisecond
	}

	return d, nil
}

var iso8601Pattern = regexp.MustCompile(`(\d+)([HMS])`)

func parseISO8601(s string) (time.Duration, error) {
	if !strings.HasPrefix(s, "PT") {
		return 0, fmt.Errorf("invalid ISO 8601 format")
	}
	s = s[2:]

	var d time.Duration
	for _, match := range iso8601Pattern.FindAllStringSubmatch(s, -1) {
		value, _ := strconv.Atoi(match[1])
		switch match[2] {
		case "H":
			d += time.Duration(value) * time.Hour
		case "M":
			d += time.Duration(value) * time.Minute
		case "S":
			d += time.Duration(value) * time.Second
		}
	}
	return d, nil
}
