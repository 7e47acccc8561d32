// Package excerpt derives a plain-text summary from a Markdown body.
package excerpt

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	attributeRe = regexp.MustCompile(`\{[^}]*\}`)
	imageRe     = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	linkRe      = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	starRe      = regexp.MustCompile(`\*+`)
	// Underscores only count as emphasis at a word edge so snake_case survives.
	underscoreOpenRe  = regexp.MustCompile(`(^|[^\p{L}\p{N}_])_+`)
	underscoreCloseRe = regexp.MustCompile(`_+([^\p{L}\p{N}_]|$)`)
	spaceRe           = regexp.MustCompile(`\s+`)
)

// Extract returns the first paragraph of body as plain text.
//
// Accumulation starts at the first line beginning with a letter, which skips
// leading headings and images, and stops at the next blank line. Attribute
// annotations and images are removed, links are reduced to their text and
// emphasis markers are dropped. The result may be empty.
func Extract(body string) string {
	var lines []string
	started := false
	for _, line := range strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			if started {
				break
			}
			continue
		}
		if !started {
			if !startsWithLetter(line) {
				continue
			}
			started = true
		}
		lines = append(lines, strings.TrimSpace(line))
	}
	return clean(strings.Join(lines, " "))
}

func startsWithLetter(line string) bool {
	r, _ := utf8.DecodeRuneInString(line)
	return unicode.IsLetter(r)
}

func clean(text string) string {
	text = attributeRe.ReplaceAllString(text, "")
	text = imageRe.ReplaceAllString(text, "")
	text = linkRe.ReplaceAllString(text, "$1")
	text = starRe.ReplaceAllString(text, "")
	text = underscoreOpenRe.ReplaceAllString(text, "$1")
	text = underscoreCloseRe.ReplaceAllString(text, "$1")
	text = spaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
