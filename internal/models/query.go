package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// TimeWindow limits how far back the search service looks
type TimeWindow string

const (
	WindowHour  TimeWindow = "hour"
	WindowDay   TimeWindow = "day"
	WindowWeek  TimeWindow = "week"
	WindowMonth TimeWindow = "month"
	WindowYear  TimeWindow = "year"
	WindowAll   TimeWindow = "all"
)

// SortKey selects the ordering of a result set
type SortKey string

const (
	SortRelevance SortKey = "relevance"
	SortHot       SortKey = "hot"
	SortTop       SortKey = "top"
	SortNew       SortKey = "new"
	SortComments  SortKey = "comments"
)

// Valid reports whether w is a known time window
func (w TimeWindow) Valid() bool {
	switch w {
	case WindowHour, WindowDay, WindowWeek, WindowMonth, WindowYear, WindowAll:
		return true
	}
	return false
}

// Valid reports whether k is a known sort key
func (k SortKey) Valid() bool {
	switch k {
	case SortRelevance, SortHot, SortTop, SortNew, SortComments:
		return true
	}
	return false
}

const (
	DefaultMaxResults = 25
	MaxResultsLimit   = 100
)

// SearchQuery describes one logical search across zero or more communities
type SearchQuery struct {
	Keywords    []string   `json:"keywords"`
	Communities []string   `json:"subreddits,omitempty" validate:"dive,required"`
	TimeWindow  TimeWindow `json:"timeFilter" validate:"oneof=hour day week month year all"`
	SortBy      SortKey    `json:"sortBy" validate:"oneof=relevance hot top new comments"`
	MinScore    int        `json:"minScore" validate:"min=0"`
	MaxResults  int        `json:"maxResults" validate:"min=1,max=100"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// NewSearchQuery builds a query from the comma-separated form inputs,
// filling in the defaults of the search form.
func NewSearchQuery(keywords, communities string) SearchQuery {
	return SearchQuery{
		Keywords:    SplitList(keywords),
		Communities: SplitList(communities),
		TimeWindow:  WindowWeek,
		SortBy:      SortRelevance,
		MaxResults:  DefaultMaxResults,
	}
}

// SplitList splits a comma-separated list, trimming tokens and dropping empty ones.
func SplitList(s string) []string {
	return CleanList(strings.Split(s, ","))
}

// CleanList trims every entry and drops the blank ones.
func CleanList(items []string) []string {
	var cleaned []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			cleaned = append(cleaned, item)
		}
	}
	return cleaned
}

// Normalized returns a copy with trimmed keyword and community lists and
// defaults applied to unset enums.
func (q SearchQuery) Normalized() SearchQuery {
	q.Keywords = CleanList(q.Keywords)
	q.Communities = CleanList(q.Communities)
	if q.TimeWindow == "" {
		q.TimeWindow = WindowWeek
	}
	if q.SortBy == "" {
		q.SortBy = SortRelevance
	}
	return q
}

// Validate checks the query bounds. Keywords must already be trimmed.
func (q SearchQuery) Validate() error {
	if len(CleanList(q.Keywords)) == 0 {
		return NewValidationError("keywords", "Please enter keywords to search", ErrEmptyKeywords)
	}

	if err := validate.Struct(q); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return NewValidationError(fieldErrs[0].Field(), formatFieldError(fieldErrs[0]), err)
		}
		return NewValidationError("query", err.Error(), err)
	}

	return nil
}

func formatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s must not be blank", e.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", e.Field(), e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", e.Field(), e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", e.Field(), e.Param())
	default:
		return fmt.Sprintf("%s failed validation for %s", e.Field(), e.Tag())
	}
}
