package core

import (
	"errors"
	"strings"
	"testing"
)

func goodInput() TransactionInput {
	return TransactionInput{
		Type:        "expense",
		Amount:      "12.50",
		Description: "Groceries",
		Category:    "Food & Dining",
		Date:        "2024-05-15",
	}
}

func TestValidateTransactionAcceptsWellFormed(t *testing.T) {
	in := goodInput()
	for i := 0; i < 2; i++ {
		res := ValidateTransaction(in)
		if !res.Valid || len(res.Errors) != 0 {
			t.Fatalf("run %d: expected valid, got %+v", i, res)
		}
		if res.Err() != nil {
			t.Fatalf("run %d: expected nil error", i)
		}
	}
}

func TestValidateTransactionReportsEveryField(t *testing.T) {
	res := ValidateTransaction(TransactionInput{Amount: "abc", Description: "   "})
	if res.Valid {
		t.Fatalf("expected invalid")
	}
	for _, f := range []string{FieldAmount, FieldDescription, FieldCategory, FieldType, FieldDate} {
		if _, ok := res.Errors[f]; !ok {
			t.Errorf("missing error for %s: %v", f, res.Errors)
		}
	}

	var verr *ValidationError
	if !errors.As(res.Err(), &verr) {
		t.Fatalf("expected *ValidationError, got %T", res.Err())
	}
	want := "Amount must be greater than 0, Description is required, Category is required, Type is required, Date is required"
	if verr.Error() != want {
		t.Fatalf("unexpected joined message:\n got %q\nwant %q", verr.Error(), want)
	}
}

func TestValidateTransactionRules(t *testing.T) {
	cases := []struct {
		name  string
		edit  func(*TransactionInput)
		field string
		msg   string
	}{
		{"zero amount", func(in *TransactionInput) { in.Amount = "0" }, FieldAmount, "Amount must be greater than 0"},
		{"negative amount", func(in *TransactionInput) { in.Amount = "-3" }, FieldAmount, "Amount must be greater than 0"},
		{"empty description", func(in *TransactionInput) { in.Description = "" }, FieldDescription, "Description is required"},
		{"long description", func(in *TransactionInput) { in.Description = strings.Repeat("x", 101) }, FieldDescription, "Description must be 100 characters or less"},
		{"missing category", func(in *TransactionInput) { in.Category = "" }, FieldCategory, "Category is required"},
		{"missing type", func(in *TransactionInput) { in.Type = "" }, FieldType, "Type is required"},
		{"missing date", func(in *TransactionInput) { in.Date = "" }, FieldDate, "Date is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := goodInput()
			tc.edit(&in)
			res := ValidateTransaction(in)
			if res.Valid {
				t.Fatalf("expected invalid")
			}
			if len(res.Errors) != 1 || res.Errors[tc.field] != tc.msg {
				t.Fatalf("expected only %s=%q, got %v", tc.field, tc.msg, res.Errors)
			}
		})
	}
}

func TestValidateTransactionBoundaries(t *testing.T) {
	in := goodInput()
	in.Description = strings.Repeat("é", 100)
	if res := ValidateTransaction(in); !res.Valid {
		t.Fatalf("100 characters should be accepted: %v", res.Errors)
	}
	in = goodInput()
	in.Type = "transfer"
	if res := ValidateTransaction(in); !res.Valid {
		t.Fatalf("type is not a closed set at validation time: %v", res.Errors)
	}
	in = goodInput()
	in.Date = "not-a-date"
	if res := ValidateTransaction(in); !res.Valid {
		t.Fatalf("date format is not checked by the validator: %v", res.Errors)
	}
}

func TestBuildTransaction(t *testing.T) {
	tx, err := BuildTransaction(goodInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.Type != Expense || tx.Amount.String() != "12.5" || !tx.Date.Equal(NewDate(2024, 5, 15).Time) {
		t.Fatalf("unexpected transaction: %+v", tx)
	}

	in := goodInput()
	in.Date = "15/05/2024"
	_, err = BuildTransaction(in)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Fields[FieldDate] == "" {
		t.Fatalf("expected date validation error, got %v", err)
	}
}
