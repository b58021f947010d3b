// Package points holds the category breakdown type shared by member
// buckets and gang point pools.
package points

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Breakdown maps a point category to its non-negative tally. Stored as a
// JSONB column so the owning row is always written as one atomic unit.
type Breakdown map[string]int64

// NewBreakdown returns a breakdown with every configured category at zero
func NewBreakdown(categories []string) Breakdown {
	b := make(Breakdown, len(categories))
	for _, c := range categories {
		b[c] = 0
	}
	return b
}

// Sum returns the total across all categories
func (b Breakdown) Sum() int64 {
	var total int64
	for _, v := range b {
		total += v
	}
	return total
}

// Clamp floors every category at zero. A deduction larger than a category's
// balance silently loses the excess; it does not spill into other categories.
func (b Breakdown) Clamp() {
	for k, v := range b {
		if v < 0 {
			b[k] = 0
		}
	}
}

// Zero resets every category to zero, keeping the key set
func (b Breakdown) Zero() {
	for k := range b {
		b[k] = 0
	}
}

// Value implements driver.Valuer
func (b Breakdown) Value() (driver.Value, error) {
	if b == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(b)
}

// Scan implements sql.Scanner
func (b *Breakdown) Scan(src interface{}) error {
	return ScanJSON(src, b, "breakdown")
}

// ScanJSON decodes a JSONB column into dst. A nil source leaves dst untouched.
func ScanJSON(src, dst interface{}, what string) error {
	if src == nil {
		return nil
	}
	data, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan %s: unexpected type %T", what, src)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to scan %s: %w", what, err)
	}
	return nil
}
