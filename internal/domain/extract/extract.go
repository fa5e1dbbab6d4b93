package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Info is the structured reading of a free-text leave request. Zero values
// mean the field could not be extracted; structured caller input always wins
// over extracted values.
type Info struct {
	TypeCode  string
	Days      decimal.Decimal
	StartDate time.Time
	EndDate   time.Time
	HalfDay   bool
}

var (
	daysPattern     = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:working\s+|business\s+)?days?`)
	monthDayPattern = regexp.MustCompile(`(?i)(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{1,2})`)
	dayMonthPattern = regexp.MustCompile(`(?i)(\d{1,2})(?:st|nd|rd|th)?\s+(january|february|march|april|may|june|july|august|september|october|november|december)`)
)

var typeKeywords = []struct {
	keyword string
	code    string
}{
	{"sick", "SL"},
	{"medical", "SL"},
	{"fever", "SL"},
	{"doctor", "SL"},
	{"emergency", "EL"},
	{"urgent", "EL"},
	{"vacation", "AL"},
	{"holiday", "AL"},
	{"annual", "AL"},
	{"trip", "AL"},
	{"maternity", "ML"},
	{"paternity", "PL"},
	{"bereavement", "BL"},
	{"funeral", "BL"},
	{"study", "STL"},
	{"exam", "STL"},
	{"personal", "CL"},
	{"casual", "CL"},
}

var months = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday,
	"friday": time.Friday, "saturday": time.Saturday,
}

// Parse extracts leave intent from free text. Day counts, a leave-type
// keyword, and common relative or explicit date phrases are recognized.
func Parse(text string, now time.Time) Info {
	info := Info{}
	lowered := strings.ToLower(text)

	info.TypeCode = extractType(lowered)
	info.Days, info.HalfDay = extractDays(lowered)
	info.StartDate = extractStart(lowered, now)

	if !info.StartDate.IsZero() {
		span := info.Days
		if span.IsZero() {
			span = decimal.NewFromInt(1)
		}
		info.EndDate = info.StartDate.AddDate(0, 0, int(span.Ceil().IntPart())-1)
	}
	return info
}

func extractType(text string) string {
	for _, entry := range typeKeywords {
		if strings.Contains(text, entry.keyword) {
			return entry.code
		}
	}
	return ""
}

func extractDays(text string) (decimal.Decimal, bool) {
	if strings.Contains(text, "half day") || strings.Contains(text, "half-day") {
		return decimal.RequireFromString("0.5"), true
	}
	if match := daysPattern.FindStringSubmatch(text); match != nil {
		if parsed, err := decimal.NewFromString(match[1]); err == nil && parsed.IsPositive() {
			return parsed, false
		}
	}
	if strings.Contains(text, "a week") || strings.Contains(text, "one week") {
		return decimal.NewFromInt(5), false
	}
	if strings.Contains(text, "a day") || strings.Contains(text, "one day") {
		return decimal.NewFromInt(1), false
	}
	return decimal.Zero, false
}

func extractStart(text string, now time.Time) time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	if strings.Contains(text, "today") {
		return today
	}
	if strings.Contains(text, "day after tomorrow") {
		return today.AddDate(0, 0, 2)
	}
	if strings.Contains(text, "tomorrow") {
		return today.AddDate(0, 0, 1)
	}
	if strings.Contains(text, "next week") {
		return nextWeekday(today, time.Monday)
	}

	if match := monthDayPattern.FindStringSubmatch(text); match != nil {
		return explicitDate(today, months[strings.ToLower(match[1])], match[2])
	}
	if match := dayMonthPattern.FindStringSubmatch(text); match != nil {
		return explicitDate(today, months[strings.ToLower(match[2])], match[1])
	}

	for name, day := range weekdays {
		if strings.Contains(text, name) {
			return nextWeekday(today, day)
		}
	}
	return time.Time{}
}

// nextWeekday returns the next occurrence strictly after today.
func nextWeekday(today time.Time, target time.Weekday) time.Time {
	offset := (int(target) - int(today.Weekday()) + 7) % 7
	if offset == 0 {
		offset = 7
	}
	return today.AddDate(0, 0, offset)
}

// explicitDate resolves "May 12" style phrases, rolling into next year when
// the date has already passed.
func explicitDate(today time.Time, month time.Month, dayRaw string) time.Time {
	day := 0
	for _, r := range dayRaw {
		day = day*10 + int(r-'0')
	}
	if day < 1 || day > 31 {
		return time.Time{}
	}
	candidate := time.Date(today.Year(), month, day, 0, 0, 0, 0, time.UTC)
	if candidate.Before(today) {
		candidate = candidate.AddDate(1, 0, 0)
	}
	return candidate
}
