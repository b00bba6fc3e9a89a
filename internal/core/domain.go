package core

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// DateLayout is the calendar date format used for storage, import and the API.
const DateLayout = "2006-01-02"

type (
	TransactionType string

	// Date is a calendar day. The wrapped time is always midnight UTC.
	Date struct {
		time.Time
	}

	Transaction struct {
		ID          string          `json:"id"`
		Type        TransactionType `json:"type"`
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description"`
		Category    string          `json:"category"`
		Date        Date            `json:"date"`
		CreatedAt   time.Time       `json:"createdAt"`
		UpdatedAt   time.Time       `json:"updatedAt"`
	}

	// Budget is a monthly spending cap. Category is the unique key.
	Budget struct {
		ID        string          `json:"id"`
		Category  string          `json:"category"`
		Amount    decimal.Decimal `json:"amount"`
		UpdatedAt time.Time       `json:"updatedAt"`
	}

	SavingsGoal struct {
		ID            string          `json:"id"`
		Name          string          `json:"name"`
		TargetAmount  decimal.Decimal `json:"targetAmount"`
		CurrentAmount decimal.Decimal `json:"currentAmount"`
		Deadline      Date            `json:"deadline"`
		Completed     bool            `json:"completed"`
		CreatedAt     time.Time       `json:"createdAt"`
		UpdatedAt     time.Time       `json:"updatedAt"`
	}

	Settings struct {
		Currency     string `json:"currency"`
		ItemsPerPage int    `json:"itemsPerPage"`
		TrendMonths  int    `json:"trendMonths"`
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidBudget     = errors.New("invalid budget data")
	ErrInvalidGoal       = errors.New("name, target amount, and deadline are required")
	ErrInvalidGoalTarget = errors.New("target amount must be greater than 0")
	ErrInvalidSettings   = errors.New("invalid settings")
	ErrNotFound          = errors.New("not found")
)

const (
	DefaultCurrency     = "USD"
	DefaultItemsPerPage = 10
	DefaultTrendMonths  = 6
)

// DefaultSettings returns the settings used when none are stored.
func DefaultSettings() Settings {
	return Settings{
		Currency:     DefaultCurrency,
		ItemsPerPage: DefaultItemsPerPage,
		TrendMonths:  DefaultTrendMonths,
	}
}

// Validate checks the ranges accepted for user-editable settings.
func (s Settings) Validate() error {
	if len(strings.TrimSpace(s.Currency)) != 3 {
		return errors.Join(ErrInvalidSettings, errors.New("currency must be a 3-letter code"))
	}
	if s.ItemsPerPage < 1 || s.ItemsPerPage > 100 {
		return errors.Join(ErrInvalidSettings, errors.New("items per page must be between 1 and 100"))
	}
	if s.TrendMonths < 1 || s.TrendMonths > 24 {
		return errors.Join(ErrInvalidSettings, errors.New("trend months must be between 1 and 24"))
	}
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t as seen in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate accepts YYYY-MM-DD or a full RFC 3339 timestamp.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return Date{Time: t}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOf(t), nil
	}
	return Date{}, ErrInvalidDate
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// IsReached reports whether the goal is funded, independent of the stored flag.
func (g SavingsGoal) IsReached() bool {
	return g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount)
}
