package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Formats accepted for the two date fields.
const (
	DateFormat     = "2006-01-02"
	DateTimeFormat = "2006-01-02 15:04:05"
)

// Item is one shop inventory record.
type Item struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Amount      int        `json:"amount"`
	Price       float64    `json:"price"`
	BestBefore  *time.Time `json:"best_before,omitempty"`
	DateEntered time.Time  `json:"date_entered"`
	ItemType    string     `json:"item_type"`
}

// Input holds the raw field values as typed by a user.
type Input struct {
	Name        string
	Amount      string
	Price       string
	BestBefore  string
	DateEntered string
	ItemType    string
}

// ValidationError reports a field that failed its entry rule.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Normalize checks every raw field and returns the item ready for storage.
// The first failing rule is returned as a *ValidationError.
func Normalize(in Input) (Item, error) {
	name, err := NormalizeName(in.Name)
	if err != nil {
		return Item{}, err
	}
	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return Item{}, err
	}
	price, err := ParsePrice(in.Price)
	if err != nil {
		return Item{}, err
	}
	bestBefore, err := ParseBestBefore(in.BestBefore)
	if err != nil {
		return Item{}, err
	}
	entered, err := ParseDateEntered(in.DateEntered)
	if err != nil {
		return Item{}, err
	}

	return Item{
		Name:        name,
		Amount:      amount,
		Price:       price,
		BestBefore:  bestBefore,
		DateEntered: entered,
		ItemType:    strings.TrimSpace(in.ItemType),
	}, nil
}

// NormalizeName upper-cases a name using full Unicode case mapping.
// Blank names are rejected.
func NormalizeName(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", invalid("name", "must not be empty")
	}
	return cases.Upper(language.Und).String(s), nil
}

// ParseAmount parses a non-negative whole amount.
func ParseAmount(s string) (int, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, invalid("amount", "must be a whole number, got %q", s)
	}
	if n < 0 {
		return 0, invalid("amount", "can't be negative, got %d", n)
	}
	return n, nil
}

// ParsePrice parses a price that is written as a decimal floating-point
// literal. Integer literals such as "5" are rejected even though they are
// valid numbers; so are hex floats, NaN and infinities.
func ParsePrice(s string) (float64, error) {
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !strings.ContainsAny(s, ".eE") || strings.ContainsAny(s, "xX_") {
		return 0, invalid("price", "must be a floating-point number, got %q", s)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, invalid("price", "must be finite, got %q", s)
	}
	return f, nil
}

// ParseBestBefore parses an optional YYYY-MM-DD date. An empty string means
// the item has no best-before date.
func ParseBestBefore(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := parseExact(DateFormat, s)
	if err != nil {
		return nil, invalid("best_before", "must be a date in YYYY-MM-DD format, got %q", s)
	}
	return &t, nil
}

// ParseDateEntered parses a YYYY-MM-DD HH:MM:SS timestamp.
func ParseDateEntered(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := parseExact(DateTimeFormat, s)
	if err != nil {
		return time.Time{}, invalid("date_entered", "must be a date and time in YYYY-MM-DD HH:MM:SS format, got %q", s)
	}
	return t, nil
}

// parseExact is time.Parse that also refuses input the layout does not spell
// out, such as fractional seconds after "05".
func parseExact(layout, s string) (time.Time, error) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, err
	}
	if t.Format(layout) != s {
		return time.Time{}, fmt.Errorf("%q does not match layout %q exactly", s, layout)
	}
	return t, nil
}

// Validate re-checks an already typed item, for callers that build an Item
// without going through Normalize.
func (it Item) Validate() error {
	name, err := NormalizeName(it.Name)
	if err != nil {
		return err
	}
	if name != it.Name {
		return invalid("name", "must be upper-cased, got %q", it.Name)
	}
	if it.Amount < 0 {
		return invalid("amount", "can't be negative, got %d", it.Amount)
	}
	if math.IsNaN(it.Price) || math.IsInf(it.Price, 0) {
		return invalid("price", "must be finite, got %v", it.Price)
	}
	if it.DateEntered.IsZero() {
		return invalid("date_entered", "must be set")
	}
	return nil
}
