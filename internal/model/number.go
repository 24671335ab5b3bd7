package model

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Number is a float64 that decodes from either a JSON number or a quoted
// numeric string. Terminals format doubles as strings when building JSON
// by hand. NaN and infinities are rejected.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	if len(b) >= 2 && b[0] == '"' && b[len(b)-1] == '"' {
		b = b[1 : len(b)-1]
		if len(bytes.TrimSpace(b)) == 0 {
			*n = 0
			return nil
		}
	}
	f, err := strconv.ParseFloat(string(bytes.TrimSpace(b)), 64)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", b, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("invalid number %q: not finite", b)
	}
	*n = Number(f)
	return nil
}

// ErrNotInteger is returned by IntegralInt64 for fractional or out of range values.
var ErrNotInteger = errors.New("not an integer in int64 range")

// IntegralInt64 converts f to int64 when it is a whole number that fits.
func IntegralInt64(f float64) (int64, error) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, ErrNotInteger
	}
	return int64(f), nil
}

// RatePayload is one candle as posted by a terminal in a bulk history save.
type RatePayload struct {
	Time   Number `json:"time"`
	Open   Number `json:"open"`
	High   Number `json:"high"`
	Low    Number `json:"low"`
	Close  Number `json:"close"`
	Volume Number `json:"volume"`
}

// RateInfo converts the payload to a ring entry. Time must be a whole
// number of seconds.
func (p RatePayload) RateInfo() (RateInfo, error) {
	ts, err := IntegralInt64(float64(p.Time))
	if err != nil {
		return RateInfo{}, fmt.Errorf("time %v: %w", float64(p.Time), err)
	}
	return RateInfo{
		Time:   ts,
		Open:   float64(p.Open),
		High:   float64(p.High),
		Low:    float64(p.Low),
		Close:  float64(p.Close),
		Volume: float64(p.Volume),
	}, nil
}
