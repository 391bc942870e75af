package uiutil

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// DateLayout is the en-US short date used across both dashboards.
const DateLayout = "Jan 2, 2006"

// PreviewLength is the number of characters of an announcement shown on a card.
const PreviewLength = 100

// FormatDate renders t as "Jan 2, 2006". The zero time renders empty.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// Preview shortens text to limit runes and appends "..." when it was cut.
func Preview(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit]) + "..."
}

// FormatHours renders whole hours without decimals and anything else with one.
func FormatHours(h float64) string {
	if h == float64(int64(h)) {
		return strconv.FormatInt(int64(h), 10)
	}
	return strconv.FormatFloat(h, 'f', 1, 64)
}

// Initial returns the upper-cased first letter of name, or "?" when empty.
func Initial(name string) string {
	name = strings.TrimSpace(name)
	r, size := utf8.DecodeRuneInString(name)
	if size == 0 || r == utf8.RuneError {
		return "?"
	}
	return strings.ToUpper(string(r))
}

// Rank renders a leaderboard position as "#N", or "#-" when unranked.
func Rank(rank *int64) string {
	if rank == nil || *rank <= 0 {
		return "#-"
	}
	return "#" + strconv.FormatInt(*rank, 10)
}

// OrDefault returns s, or def when s is blank.
func OrDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
