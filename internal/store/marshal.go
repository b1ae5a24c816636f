package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/ripple/internal/domain"
)

// encodeAmount renders an amount as 20-digit zero-padded base units.
// The fixed width makes TEXT comparison agree with numeric comparison.
func encodeAmount(a domain.Amount) string {
	return fmt.Sprintf("%020d", uint64(a))
}

func decodeAmount(s string) (domain.Amount, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("decode amount %q: %w", s, err)
	}
	return domain.Amount(v), nil
}

func encodeTime(t time.Time) int64 {
	return t.UnixNano()
}

func decodeTime(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

// marshalJSON encodes v without HTML escaping and without the trailing
// newline json.Encoder adds.
func marshalJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func marshalBadges(badges []domain.Badge) (string, error) {
	if badges == nil {
		badges = []domain.Badge{}
	}
	s, err := marshalJSON(badges)
	if err != nil {
		return "", fmt.Errorf("marshal badges: %w", err)
	}
	return s, nil
}

// unmarshalBadges returns an empty (non-nil) slice for an empty list.
func unmarshalBadges(data string) ([]domain.Badge, error) {
	badges := []domain.Badge{}
	if data == "" || data == "[]" {
		return badges, nil
	}
	if err := json.Unmarshal([]byte(data), &badges); err != nil {
		return nil, fmt.Errorf("unmarshal badges: %w", err)
	}
	return badges, nil
}

func marshalEvent(e domain.Event) (string, error) {
	s, err := marshalJSON(e)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}
	return s, nil
}

func unmarshalEvent(data string) (domain.Event, error) {
	var e domain.Event
	if err := json.Unmarshal([]byte(data), &e); err != nil {
		return domain.Event{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return e, nil
}
