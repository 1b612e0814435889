package compose

import (
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicy *bluemonday.Policy
	textOnce   sync.Once

	headRe  = regexp.MustCompile(`(?is)<(head|style|script|title)\b.*?</(head|style|script|title)>`)
	breakRe = regexp.MustCompile(`(?i)<br\s*/?>|</(p|div|h[1-6]|li|tr|table)>`)
	blankRe = regexp.MustCompile(`\n[ \t]*\n(\s*\n)+`)
	spaceRe = regexp.MustCompile(`[ \t]+`)
)

// PlainText derives a text/plain alternative from an HTML document.
func PlainText(doc string) string {
	textOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})

	s := headRe.ReplaceAllString(doc, "")
	s = breakRe.ReplaceAllString(s, "\n")
	s = textPolicy.Sanitize(s)
	s = html.UnescapeString(s)

	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(spaceRe.ReplaceAllString(l, " "))
	}
	s = strings.Join(lines, "\n")
	s = blankRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
