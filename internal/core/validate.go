package core

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Field names used as keys in validation results.
const (
	FieldAmount      = "amount"
	FieldDescription = "description"
	FieldCategory    = "category"
	FieldType        = "type"
	FieldDate        = "date"
)

// MaxDescriptionLength is measured in characters, not bytes.
const MaxDescriptionLength = 100

var fieldOrder = []string{FieldAmount, FieldDescription, FieldCategory, FieldType, FieldDate}

// TransactionInput is an unvalidated transaction as entered by a user or read
// from an import file.
type TransactionInput struct {
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Date        string `json:"date"`
}

// ValidationResult reports every violated field, not just the first one.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors"`
}

// Err returns nil for a valid result and a *ValidationError otherwise.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return &ValidationError{Fields: r.Errors}
}

// ValidationError carries a message per rejected field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	seen := make(map[string]bool, len(e.Fields))
	for _, f := range fieldOrder {
		if msg, ok := e.Fields[f]; ok {
			msgs = append(msgs, msg)
			seen[f] = true
		}
	}
	for f, msg := range e.Fields {
		if !seen[f] {
			msgs = append(msgs, msg)
		}
	}
	return strings.Join(msgs, ", ")
}

// ValidateTransaction checks required fields and numeric constraints. It has
// no side effects; the date format is checked when the record is built.
func ValidateTransaction(in TransactionInput) ValidationResult {
	errs := make(map[string]string)

	if !ParseNumber(in.Amount).IsPositive() {
		errs[FieldAmount] = "Amount must be greater than 0"
	}

	if strings.TrimSpace(in.Description) == "" {
		errs[FieldDescription] = "Description is required"
	} else if utf8.RuneCountInString(in.Description) > MaxDescriptionLength {
		errs[FieldDescription] = "Description must be 100 characters or less"
	}

	if in.Category == "" {
		errs[FieldCategory] = "Category is required"
	}
	if in.Type == "" {
		errs[FieldType] = "Type is required"
	}
	if in.Date == "" {
		errs[FieldDate] = "Date is required"
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// BuildTransaction validates in and converts it into a record without id or
// timestamps.
func BuildTransaction(in TransactionInput) (Transaction, error) {
	if err := ValidateTransaction(in).Err(); err != nil {
		return Transaction{}, err
	}
	date, err := ParseDate(in.Date)
	if err != nil {
		return Transaction{}, &ValidationError{Fields: map[string]string{
			FieldDate: "Date must be in YYYY-MM-DD format",
		}}
	}
	return Transaction{
		Type:        TransactionType(strings.TrimSpace(in.Type)),
		Amount:      ParseNumber(in.Amount),
		Description: strings.TrimSpace(in.Description),
		Category:    in.Category,
		Date:        date,
	}, nil
}

// ValidateBudget rejects an empty category or a negative amount.
func ValidateBudget(category string, amount decimal.Decimal) error {
	if strings.TrimSpace(category) == "" || amount.IsNegative() {
		return ErrInvalidBudget
	}
	return nil
}
