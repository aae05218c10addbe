// Package history turns an account's transaction history into dated sections
// and keeps the displayed result consistent across overlapping refreshes.
package history

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/Veraticus/rotto/internal/model"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Display layouts.
const (
	DayLayout  = "2006년 01월 02일"
	TimeLayout = "15:04"

	// CurrencySuffix follows every formatted amount.
	CurrencySuffix = " 원"

	defaultOffset = 9 * 60 * 60
)

var (
	printer     = message.NewPrinter(language.Korean)
	offsetRegex = regexp.MustCompile(`^([+-])(\d{2}):(\d{2})$`)
)

// DisplayZone resolves the zone used for day labels and times.
// An empty name yields the fixed +09:00 offset; ±HH:MM yields a fixed zone;
// anything else is looked up as an IANA name.
func DisplayZone(name string) (*time.Location, error) {
	if name == "" {
		return time.FixedZone("KST", defaultOffset), nil
	}

	if m := offsetRegex.FindStringSubmatch(name); m != nil {
		hours, _ := strconv.Atoi(m[2])
		minutes, _ := strconv.Atoi(m[3])
		if hours > 14 || minutes > 59 {
			return nil, fmt.Errorf("invalid display offset %q", name)
		}
		offset := hours*3600 + minutes*60
		if m[1] == "-" {
			offset = -offset
		}
		return time.FixedZone(name, offset), nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load display zone %q: %w", name, err)
	}
	return loc, nil
}

// DayLabel formats the calendar day of t in loc, e.g. "2024년 01월 11일".
func DayLabel(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayLayout)
}

// TimeLabel formats the 24-hour wall clock of t in loc, e.g. "08:30".
func TimeLabel(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(TimeLayout)
}

// FormatNumber groups digits the Korean way: 1234567 -> "1,234,567".
func FormatNumber(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatAmount renders a signed amount with currency, e.g. "+15,000 원".
func FormatAmount(direction model.Direction, amount int64) string {
	return direction.Sign() + FormatNumber(amount) + CurrencySuffix
}

// FormatRecordAmount is FormatAmount for a record.
func FormatRecordAmount(r model.TransactionRecord) string {
	return FormatAmount(r.Direction, r.Amount)
}
