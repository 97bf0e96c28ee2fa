package utils

import (
	"admitgate/src/config"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"
)

// NewTicketID returns TKT- followed by 8 random bytes in uppercase hex.
func NewTicketID() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "TKT-" + strings.ToUpper(hex.EncodeToString(b)), nil
}

func ParseEventDate(date string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(config.EVENT_DATE_FORMAT, strings.TrimSpace(date), loc)
}

// EndOfEventDay is the last microsecond of the event date. Microseconds keep
// the value exact through postgres timestamps.
func EndOfEventDay(date string, loc *time.Location) (time.Time, error) {
	day, err := ParseEventDate(date, loc)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, int(time.Second-time.Microsecond), loc), nil
}

func AtHourOnEventDay(date string, hour int, loc *time.Location) (time.Time, error) {
	day, err := ParseEventDate(date, loc)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, loc), nil
}

func CalendarDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(config.EVENT_DATE_FORMAT)
}

func WithSuffix(s string) string {
	return fmt.Sprintf("%s_%s", s, os.Getenv("API_ENV"))
}
