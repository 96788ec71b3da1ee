package validate

import (
	"fmt"
	"strings"
	"time"
)

// weekdayNames maps spoken weekday names to time.Weekday.
var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// dayWords maps relative day expressions to an offset from today. The bot's
// users write in English or Chinese, so both are recognized.
var dayWords = map[string]int{
	"today":     0,
	"今天":        0,
	"tonight":   0,
	"tomorrow":  1,
	"明天":        1,
	"yesterday": -1,
	"昨天":        -1,
	"后天":        2,
}

// ResolveDate turns a possibly-relative date expression into a concrete
// time in the given location. Supported shapes: "today", "tomorrow",
// "next monday", "2006-01-02", "2006-01-02 15:04", RFC3339, a bare
// "15:04" (today at that time), and "<day word> 15:04". Chinese period
// words (下午/晚上/上午) adjust bare hours the way the user means them.
func ResolveDate(expr string, asOf time.Time, loc *time.Location) (time.Time, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return time.Time{}, fmt.Errorf("empty date expression")
	}

	asOf = asOf.In(loc)
	lower := strings.ToLower(expr)

	// Absolute formats first.
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, expr, loc); err == nil {
			return t, nil
		}
	}

	// Bare time of day: today at that time.
	if t, err := time.ParseInLocation("15:04", lower, loc); err == nil {
		return time.Date(asOf.Year(), asOf.Month(), asOf.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
	}

	// "<expression> HH:MM" splits into a day part and a time part.
	dayPart := lower
	hour, minute := -1, 0
	if idx := strings.LastIndex(lower, " "); idx > 0 {
		if t, err := time.ParseInLocation("15:04", lower[idx+1:], loc); err == nil {
			dayPart = strings.TrimSpace(lower[:idx])
			hour, minute = t.Hour(), t.Minute()
		}
	}
	dayPart, hour = applyPeriodWords(dayPart, hour)

	day, ok := resolveDayPart(dayPart, asOf)
	if !ok {
		return time.Time{}, fmt.Errorf("unrecognized date expression %q", expr)
	}

	if hour < 0 {
		// Date-only resolution: midnight-anchored like an absolute date.
		return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc), nil
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc), nil
}

// applyPeriodWords strips 下午/晚上/上午 style suffixes, converting a 12-hour
// "下午3点" into 15:00.
func applyPeriodWords(dayPart string, hour int) (string, int) {
	type period struct {
		word  string
		shift int
	}
	for _, p := range []period{{"下午", 12}, {"晚上", 12}, {"上午", 0}, {"早上", 0}} {
		idx := strings.Index(dayPart, p.word)
		if idx < 0 {
			continue
		}
		rest := strings.TrimSpace(dayPart[idx+len(p.word):])
		dayPart = strings.TrimSpace(dayPart[:idx])
		if dayPart == "" {
			dayPart = "today"
		}
		// "3点" or "3" style hour after the period word.
		rest = strings.TrimSuffix(rest, "点")
		var h int
		if _, err := fmt.Sscanf(rest, "%d", &h); err == nil && h >= 0 && h <= 12 {
			hour = h + p.shift
			if hour == 24 {
				hour = 12
			}
		}
		break
	}
	return dayPart, hour
}

func resolveDayPart(dayPart string, asOf time.Time) (time.Time, bool) {
	if offset, ok := dayWords[dayPart]; ok {
		return asOf.AddDate(0, 0, offset), true
	}

	// "next monday" / "monday": the next occurrence strictly after today.
	name := strings.TrimSpace(strings.TrimPrefix(dayPart, "next "))
	if wd, ok := weekdayNames[name]; ok {
		days := (int(wd) - int(asOf.Weekday()) + 7) % 7
		if days == 0 {
			days = 7
		}
		return asOf.AddDate(0, 0, days), true
	}

	return time.Time{}, false
}
