package weather

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// DateRange is a UTC calendar range. A zero End means the range is open-ended;
// otherwise End is inclusive (the whole day belongs to the range).
type DateRange struct {
	Start time.Time
	End   time.Time

	// impliedEnd is the last day of a lone year or month, kept for sources
	// that cannot serve an open-ended range.
	impliedEnd time.Time
}

// HasEnd reports whether the range is bounded.
func (r DateRange) HasEnd() bool {
	return !r.End.IsZero()
}

// LastDay returns the last day a bounded query should cover: End when set,
// otherwise the end of the year or month the range was parsed from, or Start.
func (r DateRange) LastDay() time.Time {
	switch {
	case r.HasEnd():
		return r.End
	case !r.impliedEnd.IsZero():
		return r.impliedEnd
	default:
		return r.Start
	}
}

// String returns a canonical form usable in cache keys.
func (r DateRange) String() string {
	if !r.HasEnd() {
		return r.Start.Format(dateLayout) + ":"
	}
	return r.Start.Format(dateLayout) + ":" + r.End.Format(dateLayout)
}

type granularity int

const (
	granularityYear granularity = iota
	granularityMonth
	granularityDay
)

var (
	yearPattern  = regexp.MustCompile(`^(\d{4})$`)
	monthPattern = regexp.MustCompile(`^(\d{1,2})-(\d{4})$`)
	dayPattern   = regexp.MustCompile(`^(\d{2})-(\d{2})-(\d{4})$`)
)

// datePart is one side of a range expression.
type datePart struct {
	granularity granularity
	year        int
	month       time.Month
	day         int
}

// first returns the earliest day the part covers.
func (p datePart) first() time.Time {
	switch p.granularity {
	case granularityYear:
		return time.Date(p.year, time.January, 1, 0, 0, 0, 0, time.UTC)
	case granularityMonth:
		return time.Date(p.year, p.month, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(p.year, p.month, p.day, 0, 0, 0, 0, time.UTC)
	}
}

// last returns the latest day the part covers.
func (p datePart) last() time.Time {
	switch p.granularity {
	case granularityYear:
		return time.Date(p.year, time.December, 31, 0, 0, 0, 0, time.UTC)
	case granularityMonth:
		return time.Date(p.year, p.month, daysIn(p.year, p.month), 0, 0, 0, 0, time.UTC)
	default:
		return p.first()
	}
}

// ParseDateRange parses YYYY, MM-YYYY, DD-MM-YYYY or two of them joined by ':'.
//
// A single year or month yields an open-ended range starting at its first day;
// its last day is still available through LastDay.
// A single day yields a one-day range. In A:B the start is the first day of A
// and the end is the last day of B, so "2024:03-2024" covers Jan 1 - Mar 31 2024.
func ParseDateRange(text string) (DateRange, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return DateRange{}, fmt.Errorf("%w: empty date range", ErrInvalidFormat)
	}

	sides := strings.Split(text, ":")
	switch len(sides) {
	case 1:
		p, err := parseDatePart(sides[0])
		if err != nil {
			return DateRange{}, err
		}
		if p.granularity == granularityDay {
			return DateRange{Start: p.first(), End: p.first()}, nil
		}
		return DateRange{Start: p.first(), impliedEnd: p.last()}, nil
	case 2:
		from, err := parseDatePart(sides[0])
		if err != nil {
			return DateRange{}, err
		}
		to, err := parseDatePart(sides[1])
		if err != nil {
			return DateRange{}, err
		}
		r := DateRange{Start: from.first(), End: to.last()}
		if r.End.Before(r.Start) {
			return DateRange{}, fmt.Errorf("%w: %q ends before it starts", ErrInvalidFormat, text)
		}
		return r, nil
	default:
		return DateRange{}, fmt.Errorf("%w: %q", ErrInvalidFormat, text)
	}
}

func parseDatePart(s string) (datePart, error) {
	if m := yearPattern.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		if year < 1 {
			return datePart{}, fmt.Errorf("%w: year %q", ErrInvalidFormat, s)
		}
		return datePart{granularity: granularityYear, year: year}, nil
	}

	if m := monthPattern.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[2])
		if month < 1 || month > 12 || year < 1 {
			return datePart{}, fmt.Errorf("%w: month %q", ErrInvalidFormat, s)
		}
		return datePart{granularity: granularityMonth, year: year, month: time.Month(month)}, nil
	}

	if m := dayPattern.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if month < 1 || month > 12 || year < 1 || day < 1 || day > daysIn(year, time.Month(month)) {
			return datePart{}, fmt.Errorf("%w: date %q", ErrInvalidFormat, s)
		}
		return datePart{granularity: granularityDay, year: year, month: time.Month(month), day: day}, nil
	}

	return datePart{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
}

// daysIn returns the number of days in the given month.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
