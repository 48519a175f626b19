package workouts

import (
	"encoding/json"
	"fmt"
	"time"
)

// EncodeLog serializes the full log into the snapshot payload.
func EncodeLog(l Log) (string, error) {
	if l == nil {
		l = Log{}
	}
	payload, err := json.Marshal(l)
	if err != nil {
		return "", fmt.Errorf("marshal workout log: %w", err)
	}
	return string(payload), nil
}

// DecodeLog parses a snapshot payload. Records written without a
// creation time get it from their id, which used to be the creation
// timestamp in unix milliseconds.
func DecodeLog(payload string) (Log, error) {
	var l Log
	if err := json.Unmarshal([]byte(payload), &l); err != nil {
		return nil, fmt.Errorf("unmarshal workout log: %w", err)
	}
	if l == nil {
		return Log{}, nil
	}

	for i := range l {
		if l[i].CreatedAt.IsZero() {
			l[i].CreatedAt = time.UnixMilli(l[i].ID)
		}
	}

	return l, nil
}
