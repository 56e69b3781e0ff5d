// Package validation collects field-level violations using the message
// template vocabulary shared with the registry front end. Checks never
// return errors: callers accumulate a List and report every violation at
// once.
package validation

import (
	"regexp"
	"strings"
	"time"
)

// Message templates understood by the front end.
const (
	NotBlank     = "field.notblank"
	Choice       = "field.choice"
	MaxLength    = "field.maxlength"
	MinLength    = "field.minlength"
	Positive     = "field.positive"
	ZeroPositive = "field.zeropositive"
	Date         = "field.date"
	Time         = "field.time"
	DateTime     = "field.datetime"
	Unique       = "field.unique"
	Regex        = "field.regex"
	Email        = "field.email"
	URL          = "field.url"
)

// Layouts accepted for temporal fields arriving as strings.
const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04"
	DateTimeLayout = time.RFC3339
)

// Violation pairs the offending field with a message template.
type Violation struct {
	Field    string `json:"field"`
	Template string `json:"message"`
}

// List accumulates violations in check order.
type List []Violation

// Add appends a violation.
func (l *List) Add(field, template string) {
	*l = append(*l, Violation{Field: field, Template: template})
}

// Has reports whether the list contains a violation for field with the
// given template.
func (l List) Has(field, template string) bool {
	for _, v := range l {
		if v.Field == field && v.Template == template {
			return true
		}
	}
	return false
}

// Empty reports whether no violations were collected.
func (l List) Empty() bool {
	return len(l) == 0
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// CheckNotBlank requires a non-empty string after trimming.
func CheckNotBlank(l *List, field, value string) {
	if strings.TrimSpace(value) == "" {
		l.Add(field, NotBlank)
	}
}

// CheckChoice requires the value to belong to the allowed set. Matching is
// case-sensitive; lowercase variants of valid codes are rejected.
func CheckChoice(l *List, field, value string, allowed []string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	l.Add(field, Choice)
}

// CheckMaxLength bounds the string length in runes.
func CheckMaxLength(l *List, field, value string, max int) {
	if len([]rune(value)) > max {
		l.Add(field, MaxLength)
	}
}

// CheckMinLength requires at least min runes.
func CheckMinLength(l *List, field, value string, min int) {
	if len([]rune(value)) < min {
		l.Add(field, MinLength)
	}
}

// CheckPositive requires a strictly positive number.
func CheckPositive(l *List, field string, value int) {
	if value <= 0 {
		l.Add(field, Positive)
	}
}

// CheckZeroPositive requires a non-negative number.
func CheckZeroPositive(l *List, field string, value int) {
	if value < 0 {
		l.Add(field, ZeroPositive)
	}
}

// CheckDate requires a parseable date; blank values are reported as
// missing, not malformed.
func CheckDate(l *List, field, value string) (time.Time, bool) {
	return checkTemporal(l, field, value, DateLayout, Date)
}

// CheckTime requires a parseable wall-clock time.
func CheckTime(l *List, field, value string) (time.Time, bool) {
	return checkTemporal(l, field, value, TimeLayout, Time)
}

// CheckDateTime requires a parseable RFC 3339 timestamp.
func CheckDateTime(l *List, field, value string) (time.Time, bool) {
	return checkTemporal(l, field, value, DateTimeLayout, DateTime)
}

func checkTemporal(l *List, field, value, layout, template string) (time.Time, bool) {
	if strings.TrimSpace(value) == "" {
		l.Add(field, NotBlank)
		return time.Time{}, false
	}
	t, err := time.Parse(layout, value)
	if err != nil {
		l.Add(field, template)
		return time.Time{}, false
	}
	return t, true
}

// CheckEmail requires a plausible email address; blank values pass (pair
// with CheckNotBlank when the field is required).
func CheckEmail(l *List, field, value string) {
	if value == "" {
		return
	}
	if !emailPattern.MatchString(value) {
		l.Add(field, Email)
	}
}

// CheckRegex requires the value to match the pattern; blank values pass.
func CheckRegex(l *List, field, value string, pattern *regexp.Regexp) {
	if value == "" {
		return
	}
	if !pattern.MatchString(value) {
		l.Add(field, Regex)
	}
}
