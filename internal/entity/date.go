package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date - срок задачи. На проводе либо "2006-01-02", либо RFC 3339.
// Дата без времени читается как полночь в локальной зоне и пишется
// обратно без времени; момент с зоной остается RFC 3339.
type Date struct {
	time.Time
	dateOnly bool
}

func NewDate(year int, month time.Month, day int, loc *time.Location) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, loc), dateOnly: true}
}

func ParseDate(s string) (Date, error) {
	if t, err := time.ParseInLocation(dateLayout, s, time.Local); err == nil {
		return Date{Time: t, dateOnly: true}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC 3339", s)
	}
	return Date{Time: t}, nil
}

// DateOnly - дата задана без времени
func (d Date) DateOnly() bool {
	return d.dateOnly
}

func (d Date) String() string {
	if d.dateOnly {
		return d.Format(dateLayout)
	}
	return d.Format(time.RFC3339)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
