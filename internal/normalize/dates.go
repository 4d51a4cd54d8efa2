package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"cryptoLedger/internal/ports"
)

// coinsquareTime stands in for the time of day, which Coinsquare reports do not carry.
const coinsquareTime = "13:00:00"

// CoinsquareDate converts a Coinsquare "DD-MM-YY" date to "MM/DD/20YY 13:00:00".
func CoinsquareDate(raw string) (string, error) {
	parts := strings.Split(strings.TrimSpace(raw), "-")
	if len(parts) != 3 || !isDigits(parts[0], 2) || !isDigits(parts[1], 2) || !isDigits(parts[2], 2) ||
		!validMonthDay(parts[1], parts[0]) {
		return "", fmt.Errorf("invalid Coinsquare date %q: %w", raw, ports.ErrMalformedReport)
	}
	day, month, year := parts[0], parts[1], parts[2]
	return fmt.Sprintf("%s/%s/20%s %s", month, day, year, coinsquareTime), nil
}

type clock struct {
	hour     string
	hourNum  int
	minute   string
	meridiem string // AM or PM
}

func parseClock(raw string) (clock, error) {
	hourPart, rest, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok {
		return clock{}, fmt.Errorf("invalid NDAX time %q: %w", raw, ports.ErrMalformedReport)
	}
	fields := strings.Fields(rest)
	if len(fields) != 2 || !isDigits(fields[0], 2) || fields[0] > "59" {
		return clock{}, fmt.Errorf("invalid NDAX time %q: %w", raw, ports.ErrMalformedReport)
	}
	hourNum, err := strconv.Atoi(hourPart)
	if err != nil || hourNum < 1 || hourNum > 12 {
		return clock{}, fmt.Errorf("invalid NDAX hour in %q: %w", raw, ports.ErrMalformedReport)
	}
	meridiem := strings.ToUpper(fields[1])
	if meridiem != "AM" && meridiem != "PM" {
		return clock{}, fmt.Errorf("invalid NDAX meridiem in %q: %w", raw, ports.ErrMalformedReport)
	}
	return clock{hour: hourPart, hourNum: hourNum, minute: fields[0], meridiem: meridiem}, nil
}

// NDAXDate combines an NDAX "YYYY-MM-DD" date and "H:MM AM|PM" time into
// "MM/DD/YYYY H:MM:00". PM hours below 12 gain 12; every other hour is kept as written,
// so "12:xx AM" stays at hour 12 (see IsMidnightAmbiguous).
func NDAXDate(rawDate, rawTime string) (string, error) {
	parts := strings.Split(strings.TrimSpace(rawDate), "-")
	if len(parts) != 3 || !isDigits(parts[0], 4) || !isDigits(parts[1], 2) || !isDigits(parts[2], 2) ||
		!validMonthDay(parts[1], parts[2]) {
		return "", fmt.Errorf("invalid NDAX date %q: %w", rawDate, ports.ErrMalformedReport)
	}
	year, month, day := parts[0], parts[1], parts[2]

	c, err := parseClock(rawTime)
	if err != nil {
		return "", err
	}
	hour := c.hour
	if c.meridiem == "PM" && c.hourNum < 12 {
		hour = strconv.Itoa(c.hourNum + 12)
	}
	return fmt.Sprintf("%s/%s/%s %s:%s:00", month, day, year, hour, c.minute), nil
}

// IsMidnightAmbiguous reports whether an NDAX time falls in the 12 AM hour, which NDAXDate
// renders as hour 12 rather than 0.
func IsMidnightAmbiguous(rawTime string) bool {
	c, err := parseClock(rawTime)
	return err == nil && c.hourNum == 12 && c.meridiem == "AM"
}

// isDigits reports whether s is exactly n ASCII digits.
func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// validMonthDay checks two-digit month and day fields for range only; the day is not
// checked against the length of the month.
func validMonthDay(month, day string) bool {
	return month >= "01" && month <= "12" && day >= "01" && day <= "31"
}
