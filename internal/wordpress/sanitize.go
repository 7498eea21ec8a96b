package wordpress

import (
	"regexp"
	"strings"
)

var (
	htmlTagRe = regexp.MustCompile(`<[^>]*>`)
	entityRe  = regexp.MustCompile(`&[^;]+;`)
)

// namedEntities is the fixed decode table. Anything outside it passes
// through unchanged.
var namedEntities = map[string]string{
	"&amp;":   "&",
	"&lt;":    "<",
	"&gt;":    ">",
	"&quot;":  `"`,
	"&#039;":  "'",
	"&ndash;": "–",
	"&mdash;": "—",
	"&nbsp;":  " ",
	"&copy;":  "©",
	"&reg;":   "®",
	"&trade;": "™",
}

// Sanitize turns a rendered WordPress fragment into plain text: strip tags,
// decode the known entities, trim.
func Sanitize(html string) string {
	s := htmlTagRe.ReplaceAllString(html, "")
	s = entityRe.ReplaceAllStringFunc(s, func(m string) string {
		if v, ok := namedEntities[m]; ok {
			return v
		}
		return m
	})
	return strings.TrimSpace(s)
}
