package assistant

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var titleMarkers = []string{"العنوان", "title"}

var bullets = []string{"-", "•", "*"}

// Parse extracts titles and their points from a completion. A line carrying a
// title marker and a colon opens a new title; bulleted lines add points to
// it. Titles without points are dropped, so unexpected text yields an empty
// list rather than an error.
func Parse(content string) []Suggestion {
	titles := []Suggestion{}
	var current *Suggestion

	flush := func() {
		if current != nil && current.Title != "" && len(current.Points) > 0 {
			titles = append(titles, *current)
		}
		current = nil
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if title, ok := titleLine(line); ok {
			flush()
			current = &Suggestion{Title: title, Points: []string{}}
			continue
		}

		if point, ok := bulletLine(line); ok && current != nil {
			current.Points = append(current.Points, point)
		}
	}
	flush()

	return titles
}

func titleLine(line string) (string, bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", false
	}
	head := strings.ToLower(line[:idx])
	marked := false
	for _, m := range titleMarkers {
		if hasWord(head, m) {
			marked = true
			break
		}
	}
	if !marked {
		return "", false
	}
	title := strings.TrimSpace(line[idx+1:])
	title = strings.TrimSpace(strings.Trim(title, "[]*\"«»"))
	return title, true
}

// hasWord reports whether word occurs in s with no letter directly before or
// after it, so "title" does not match inside "subtitle".
func hasWord(s, word string) bool {
	for from := 0; from < len(s); {
		i := strings.Index(s[from:], word)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(word)
		before, _ := utf8.DecodeLastRuneInString(s[:start])
		after, _ := utf8.DecodeRuneInString(s[end:])
		if (start == 0 || !unicode.IsLetter(before)) && (end == len(s) || !unicode.IsLetter(after)) {
			return true
		}
		from = start + 1
	}
	return false
}

func bulletLine(line string) (string, bool) {
	for _, b := range bullets {
		if strings.HasPrefix(line, b) {
			point := strings.TrimSpace(strings.TrimPrefix(line, b))
			return point, point != ""
		}
	}
	return "", false
}
