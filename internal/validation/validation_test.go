package validation

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCheckNotBlank(t *testing.T) {
	cases := []struct {
		name    string
		value   string
		violate bool
	}{
		{"empty", "", true},
		{"whitespace", "   ", true},
		{"value", "F", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var l List
			CheckNotBlank(&l, "period", tc.value)
			require.Equal(t, tc.violate, l.Has("period", NotBlank))
		})
	}
}

func TestCheckChoiceCaseSensitive(t *testing.T) {
	allowed := []string{"P", "S", "F", "E", "U"}

	var l List
	CheckChoice(&l, "period", "F", allowed)
	require.True(t, l.Empty())

	CheckChoice(&l, "period", "f", allowed)
	require.True(t, l.Has("period", Choice), "lowercase variant must be rejected")

	CheckChoice(&l, "period", "Z", allowed)
	require.Len(t, l, 2)
}

func TestCheckLengths(t *testing.T) {
	var l List
	CheckMaxLength(&l, "label", "abcd", 3)
	require.True(t, l.Has("label", MaxLength))

	l = nil
	CheckMaxLength(&l, "label", "àèì", 3)
	require.True(t, l.Empty(), "length counts runes, not bytes")

	CheckMinLength(&l, "label", "ab", 3)
	require.True(t, l.Has("label", MinLength))
}

func TestCheckNumeric(t *testing.T) {
	var l List
	CheckPositive(&l, "credit", 0)
	require.True(t, l.Has("credit", Positive))

	l = nil
	CheckZeroPositive(&l, "absences", 0)
	require.True(t, l.Empty())

	CheckZeroPositive(&l, "absences", -1)
	require.True(t, l.Has("absences", ZeroPositive))
}

func TestCheckDate(t *testing.T) {
	var l List
	parsed, ok := CheckDate(&l, "session_date", "2026-06-10")
	require.True(t, ok)
	require.Equal(t, time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC), parsed)
	require.True(t, l.Empty())

	_, ok = CheckDate(&l, "session_date", "10/06/2026")
	require.False(t, ok)
	require.True(t, l.Has("session_date", Date))

	l = nil
	_, ok = CheckDate(&l, "session_date", "")
	require.False(t, ok)
	require.True(t, l.Has("session_date", NotBlank), "blank is missing, not malformed")
}

func TestCheckDateTime(t *testing.T) {
	var l List
	parsed, ok := CheckDateTime(&l, "visible_from", "2026-06-12T08:00:00Z")
	require.True(t, ok)
	require.Equal(t, 8, parsed.Hour())

	_, ok = CheckDateTime(&l, "visible_from", "2026-06-12 08:00")
	require.False(t, ok)
	require.True(t, l.Has("visible_from", DateTime))
}

func TestCheckTime(t *testing.T) {
	var l List
	_, ok := CheckTime(&l, "started_at", "14:30")
	require.True(t, ok)

	_, ok = CheckTime(&l, "started_at", "25:00")
	require.False(t, ok)
	require.True(t, l.Has("started_at", Time))
}

func TestCheckEmail(t *testing.T) {
	var l List
	CheckEmail(&l, "email", "")
	require.True(t, l.Empty(), "blank passes, pair with CheckNotBlank when required")

	CheckEmail(&l, "email", "staff@example.org")
	require.True(t, l.Empty())

	CheckEmail(&l, "email", "not-an-email")
	require.True(t, l.Has("email", Email))
}

func TestCheckRegex(t *testing.T) {
	pattern := regexp.MustCompile(`^\d[A-Z]$`)

	var l List
	CheckRegex(&l, "class_label", "3A", pattern)
	require.True(t, l.Empty())

	CheckRegex(&l, "class_label", "third-A", pattern)
	require.True(t, l.Has("class_label", Regex))
}

func TestListAccumulatesInCheckOrder(t *testing.T) {
	var l List
	CheckNotBlank(&l, "period", "")
	CheckNotBlank(&l, "class_id", "")
	require.Equal(t, List{
		{Field: "period", Template: NotBlank},
		{Field: "class_id", Template: NotBlank},
	}, l)
}
