package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"fintrack/internal/core"
)

// ParseViewQuery builds a transaction list query from URL parameters.
// Unparseable page numbers fall back to their defaults; unparseable dates
// are an error.
func ParseViewQuery(query url.Values, defaultSize int) (core.ViewQuery, error) {
	q := core.ViewQuery{
		Filter: core.Filter{
			Type:     core.TransactionType(strings.TrimSpace(query.Get("type"))),
			Category: strings.TrimSpace(query.Get("category")),
			Search:   strings.TrimSpace(query.Get("search")),
		},
		SortField: strings.TrimSpace(query.Get("sort")),
		Page:      intParam(query, "page", 1),
		PageSize:  intParam(query, "size", defaultSize),
	}

	switch dir := core.SortDirection(strings.ToLower(strings.TrimSpace(query.Get("dir")))); dir {
	case core.Asc, core.Desc:
		q.SortDirection = dir
	case "":
	default:
		return q, fmt.Errorf("dir must be %q or %q", core.Asc, core.Desc)
	}

	for name, dst := range map[string]*core.Date{"start": &q.Filter.StartDate, "end": &q.Filter.EndDate} {
		v := strings.TrimSpace(query.Get(name))
		if v == "" {
			continue
		}
		d, err := core.ParseDate(v)
		if err != nil {
			return q, fmt.Errorf("%s: %w", name, err)
		}
		*dst = d
	}
	return q, nil
}

func intParam(query url.Values, name string, def int) int {
	v := strings.TrimSpace(query.Get(name))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// RequestBodyParser reads a JSON or form-encoded body into flat string
// values.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	parsed   bool
	err      error
}

// NewRequestBodyParser reads the body once; Parse may then be called
// repeatedly.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return p
}

// Parse decodes the body as JSON when it starts with '{', otherwise as a
// form.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' {
		dec := json.NewDecoder(strings.NewReader(trimmed))
		dec.UseNumber()
		p.jsonData = make(map[string]any)
		if err := dec.Decode(&p.jsonData); err != nil {
			p.jsonData = nil
			p.err = err
		}
		return p.err
	}

	p.formData, p.err = url.ParseQuery(trimmed)
	return p.err
}

// Get returns the sanitized value for key, or "".
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// TransactionInput collects the transaction fields from the body.
func (p *RequestBodyParser) TransactionInput() core.TransactionInput {
	return core.TransactionInput{
		Type:        p.Get("type"),
		Amount:      p.Get("amount"),
		Description: p.Get("description"),
		Category:    p.Get("category"),
		Date:        p.Get("date"),
	}
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
