package workouts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Type string

const (
	TypeCardio      Type = "Cardio"
	TypeStrength    Type = "Strength"
	TypeFlexibility Type = "Flexibility"
)

// Types returns the fixed set of workout categories, in display order.
func Types() []Type {
	return []Type{TypeCardio, TypeStrength, TypeFlexibility}
}

// ParseType matches s against the known categories, ignoring case
// and surrounding whitespace.
func ParseType(s string) (Type, bool) {
	s = strings.TrimSpace(s)
	for _, t := range Types() {
		if strings.EqualFold(s, string(t)) {
			return t, true
		}
	}
	return "", false
}

// Duration is the duration text as the user entered it.
// Stored verbatim; only converted to minutes when aggregating.
type Duration string

// Minutes returns the duration as whole minutes. Text that is not an
// integer, and negative values, count as zero.
func (d Duration) Minutes() int {
	minutes, err := strconv.Atoi(strings.TrimSpace(string(d)))
	if err != nil || minutes < 0 {
		return 0
	}
	return minutes
}

// UnmarshalJSON accepts a JSON string, a JSON number or null.
func (d *Duration) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*d = ""
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*d = Duration(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("duration must be a string or a number: %w", err)
	}
	*d = Duration(n.String())
	return nil
}

type Record struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Type      Type      `json:"type"`
	Duration  Duration  `json:"duration"`
	CreatedAt time.Time `json:"createdAt"`
}

// Log is the ordered workout history, oldest first.
// Operations on a Log never modify it in place.
type Log []Record

// With returns a new log with r appended.
func (l Log) With(r Record) Log {
	next := make(Log, len(l), len(l)+1)
	copy(next, l)
	return append(next, r)
}

// Without returns a new log without the record with the given id.
// If there is no such record, l itself is returned.
func (l Log) Without(id int64) Log {
	idx := l.indexOf(id)
	if idx < 0 {
		return l
	}

	next := make(Log, 0, len(l)-1)
	next = append(next, l[:idx]...)
	return append(next, l[idx+1:]...)
}

func (l Log) Find(id int64) (Record, bool) {
	idx := l.indexOf(id)
	if idx < 0 {
		return Record{}, false
	}
	return l[idx], true
}

func (l Log) MaxID() int64 {
	var maxID int64
	for _, r := range l {
		if r.ID > maxID {
			maxID = r.ID
		}
	}
	return maxID
}

func (l Log) indexOf(id int64) int {
	for i := range l {
		if l[i].ID == id {
			return i
		}
	}
	return -1
}
