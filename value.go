package formser

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sosodev/duration"
)

// Kind identifies one of the scalar value categories that have a canonical
// text form on the wire.
type Kind int

// The scalar kinds. Each has one canonical text form, the one written by the
// matching Writer method and accepted by the matching Node getter.
const (
	KindString Kind = iota
	KindBool
	KindInt8
	KindByte
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindUUID
	KindTime
	KindDateOnly
	KindTimeOnly
	KindDuration
	KindBytes
)

var kindNames = [...]string{
	KindString:   "string",
	KindBool:     "bool",
	KindInt8:     "int8",
	KindByte:     "byte",
	KindInt32:    "int32",
	KindInt64:    "int64",
	KindFloat32:  "float32",
	KindFloat64:  "float64",
	KindUUID:     "uuid",
	KindTime:     "date-time",
	KindDateOnly: "date",
	KindTimeOnly: "time",
	KindDuration: "duration",
	KindBytes:    "bytes",
}

// String returns the name of the kind, or Kind(n) for unknown values.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// dateTimeLayout always renders a numeric offset, so UTC is written as +00:00
// rather than Z.
const dateTimeLayout = "2006-01-02T15:04:05.999999999-07:00"

// Layouts accepted when reading a date-time. Fractional seconds are accepted
// by all of them even though only the first names them.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
}

// DateOnly is a calendar date without a time of day or location.
type DateOnly struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDateOnly returns the calendar date of t in t's location.
func NewDateOnly(t time.Time) DateOnly {
	y, m, d := t.Date()
	return DateOnly{Year: y, Month: m, Day: d}
}

// ParseDateOnly parses an ISO-8601 YYYY-MM-DD date.
func ParseDateOnly(s string) (DateOnly, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return DateOnly{}, errors.Wrapf(err, "form: invalid date %q", s)
	}
	return NewDateOnly(t), nil
}

// String renders the date as YYYY-MM-DD.
func (d DateOnly) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time returns midnight UTC of the date.
func (d DateOnly) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// TimeOnly is a time of day without a date or location.
type TimeOnly struct {
	Hour       int
	Minute     int
	Second     int
	Nanosecond int
}

// NewTimeOnly returns the time of day of t.
func NewTimeOnly(t time.Time) TimeOnly {
	return TimeOnly{
		Hour:       t.Hour(),
		Minute:     t.Minute(),
		Second:     t.Second(),
		Nanosecond: t.Nanosecond(),
	}
}

// ParseTimeOnly parses an ISO-8601 HH:MM:SS time with an optional fraction of
// any precision.
func ParseTimeOnly(s string) (TimeOnly, error) {
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		return TimeOnly{}, errors.Wrapf(err, "form: invalid time %q", s)
	}
	return NewTimeOnly(t), nil
}

// String renders HH:MM:SS, followed by six fractional digits when the
// microsecond part is non-zero. Nanoseconds below a microsecond are truncated.
func (t TimeOnly) String() string {
	s := fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
	if micro := t.Nanosecond / 1000; micro != 0 {
		s += fmt.Sprintf(".%06d", micro)
	}
	return s
}

func formatFloat(f float64, bits int) string {
	s := strconv.FormatFloat(f, 'f', -1, bits)
	if math.IsInf(f, 0) || math.IsNaN(f) || strings.ContainsRune(s, '.') {
		return s
	}
	return s + ".0"
}

func formatTime(t time.Time) string {
	return t.Format(dateTimeLayout)
}

// formatDuration renders d with day, hour, minute and second designators only.
// Years, months and weeks have no fixed length and are never written.
func formatDuration(d time.Duration) string {
	iso := &duration.Duration{Negative: d < 0}
	if d < 0 {
		d = -d
	}
	iso.Days = float64(d / (24 * time.Hour))
	d %= 24 * time.Hour
	iso.Hours = float64(d / time.Hour)
	d %= time.Hour
	iso.Minutes = float64(d / time.Minute)
	d %= time.Minute
	iso.Seconds = d.Seconds()
	return iso.String()
}

func formatBytes(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// formatScalar returns the canonical text of v when v is one of the scalar
// kinds or an enum. Pointers are not followed.
func formatScalar(v interface{}) (string, bool, error) {
	switch x := v.(type) {
	case string:
		return x, true, nil
	case bool:
		return strconv.FormatBool(x), true, nil
	case int:
		return strconv.Itoa(x), true, nil
	case int8:
		return strconv.FormatInt(int64(x), 10), true, nil
	case int16:
		return strconv.FormatInt(int64(x), 10), true, nil
	case int32:
		return strconv.FormatInt(int64(x), 10), true, nil
	case int64:
		return strconv.FormatInt(x, 10), true, nil
	case uint:
		return strconv.FormatUint(uint64(x), 10), true, nil
	case uint8:
		return strconv.FormatUint(uint64(x), 10), true, nil
	case uint16:
		return strconv.FormatUint(uint64(x), 10), true, nil
	case uint32:
		return strconv.FormatUint(uint64(x), 10), true, nil
	case uint64:
		return strconv.FormatUint(x, 10), true, nil
	case float32:
		return formatFloat(float64(x), 32), true, nil
	case float64:
		return formatFloat(x, 64), true, nil
	case uuid.UUID:
		return x.String(), true, nil
	case time.Time:
		return formatTime(x), true, nil
	case DateOnly:
		return x.String(), true, nil
	case TimeOnly:
		return x.String(), true, nil
	case time.Duration:
		return formatDuration(x), true, nil
	case []byte:
		if x == nil {
			return "", false, nil
		}
		return formatBytes(x), true, nil
	case Marshaler:
		s, err := x.MarshalForm()
		if err != nil {
			return "", false, err
		}
		return s, true, nil
	}
	return "", false, nil
}

func parseTime(s string) (time.Time, error) {
	var err error
	for _, layout := range dateTimeLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Wrapf(err, "form: invalid date-time %q", s)
}

// parseDuration accepts an ISO-8601 duration (PT30S) or a clock duration
// (H:MM:SS[.ffffff]) optionally prefixed with a day count ("2 days, 1:00:00").
func parseDuration(s string) (time.Duration, error) {
	if strings.HasPrefix(s, "P") || strings.HasPrefix(s, "-P") {
		d, err := duration.Parse(s)
		if err != nil {
			return 0, errors.Wrapf(err, "form: invalid duration %q", s)
		}
		return d.ToTimeDuration(), nil
	}
	return parseClockDuration(s)
}

func parseClockDuration(s string) (time.Duration, error) {
	invalid := errors.Errorf("form: invalid duration %q", s)

	var total time.Duration
	clock := s
	if i := strings.Index(s, ", "); i >= 0 {
		fields := strings.Fields(s[:i])
		if len(fields) != 2 || (fields[1] != "day" && fields[1] != "days") {
			return 0, invalid
		}
		days, err := strconv.Atoi(fields[0])
		if err != nil {
			return 0, invalid
		}
		total = time.Duration(days) * 24 * time.Hour
		clock = s[i+2:]
	}

	neg := strings.HasPrefix(clock, "-")
	clock = strings.TrimPrefix(clock, "-")

	parts := strings.Split(clock, ":")
	if len(parts) != 3 {
		return 0, invalid
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, invalid
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m > 59 {
		return 0, invalid
	}

	secs, frac := parts[2], ""
	if i := strings.IndexByte(secs, '.'); i >= 0 {
		secs, frac = secs[:i], secs[i+1:]
	}
	sec, err := strconv.Atoi(secs)
	if err != nil || sec > 59 {
		return 0, invalid
	}
	var nanos int
	if frac != "" {
		if len(frac) > 9 {
			frac = frac[:9]
		}
		frac += strings.Repeat("0", 9-len(frac))
		if nanos, err = strconv.Atoi(frac); err != nil {
			return 0, invalid
		}
	}

	clockDur := time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(sec)*time.Second +
		time.Duration(nanos)
	if neg {
		clockDur = -clockDur
	}
	return total + clockDur, nil
}

func parseBytes(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, errors.Wrapf(err, "form: invalid base64 value %q", s)
	}
	return b, nil
}

// parseScalar converts s into the Go type of kind. Integers and floats use the
// bit size of the kind so out of range values are rejected.
func parseScalar(kind Kind, s string) (interface{}, error) {
	switch kind {
	case KindString:
		return s, nil
	case KindBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, errors.Wrapf(err, "form: invalid %s value %q", kind, s)
		}
		return b, nil
	case KindInt8:
		i, err := strconv.ParseInt(s, 10, 8)
		if err != nil {
			return nil, errors.Wrapf(err, "form: invalid %s value %q", kind, s)
		}
		return int8(i), nil
	case KindByte:
		u, err := strconv.ParseUint(s, 10, 8)
		if err != nil {
			return nil, errors.Wrapf(err, "form: invalid %s value %q", kind, s)
		}
		return byte(u), nil
	case KindInt32:
		i, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "form: invalid %s value %q", kind, s)
		}
		return int32(i), nil
	case KindInt64:
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "form: invalid %s value %q", kind, s)
		}
		return i, nil
	case KindFloat32:
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "form: invalid %s value %q", kind, s)
		}
		return float32(f), nil
	case KindFloat64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "form: invalid %s value %q", kind, s)
		}
		return f, nil
	case KindUUID:
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, errors.Wrapf(err, "form: invalid %s value %q", kind, s)
		}
		return id, nil
	case KindTime:
		return parseTime(s)
	case KindDateOnly:
		return ParseDateOnly(s)
	case KindTimeOnly:
		return ParseTimeOnly(s)
	case KindDuration:
		return parseDuration(s)
	case KindBytes:
		return parseBytes(s)
	default:
		return nil, errors.Errorf("form: unsupported kind %s", kind)
	}
}
