// Package sanitizer turns model output into the small HTML subset the chat widget renders:
// paragraphs, line breaks and links.
package sanitizer

import (
	"regexp"
	"strings"
	"sync"

	"udla-mentor-be/pkg/helpdesk/escalation"

	"github.com/microcosm-cc/bluemonday"
)

const emptyParagraph = "<p></p>"

var (
	fence        = regexp.MustCompile("```(?:html)?")
	openP        = regexp.MustCompile(`(?s)<p([a-z]*)(.?)`)
	looksLikeTag = regexp.MustCompile(`<[a-zA-Z][^>]*>`)
	blankLines   = regexp.MustCompile(`\n{2,}`)
)

// NewPolicy returns the allow-list: p, br and a with http(s)/mailto hrefs.
// Script and style contents are dropped along with the element.
func NewPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br")
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("target").Matching(regexp.MustCompile(`^_blank$`)).OnElements("a")
	p.AllowURLSchemes("http", "https", "mailto")
	p.RequireParseableURLs(true)
	return p
}

// Sanitizer is safe for concurrent use.
type Sanitizer struct {
	policy *bluemonday.Policy
}

func New(policy *bluemonday.Policy) *Sanitizer {
	if policy == nil {
		policy = NewPolicy()
	}
	return &Sanitizer{policy: policy}
}

var (
	stdOnce sync.Once
	std     *Sanitizer
)

// Sanitize runs the default policy.
func Sanitize(raw string) string {
	stdOnce.Do(func() { std = New(nil) })
	return std.Sanitize(raw)
}

// Sanitize normalizes raw into safe HTML. The escalation sentinel passes through verbatim.
// Applying it twice yields the same result as applying it once.
func (s *Sanitizer) Sanitize(raw string) string {
	t := strings.TrimSpace(raw)
	if t == "" {
		return emptyParagraph
	}
	if t == escalation.Sentinel {
		return "<p>" + escalation.Sentinel + "</p>"
	}

	t = strings.TrimSpace(strings.ReplaceAll(fence.ReplaceAllString(t, ""), "```", ""))
	t = repairParagraphs(t)

	if looksLikeTag.MatchString(t) {
		t = s.policy.Sanitize(t)
		if strings.Contains(t, "<p>") {
			return t
		}
	}

	return s.policy.Sanitize(paragraphs(t))
}

// tagsStartingWithP are left alone by repairParagraphs.
var tagsStartingWithP = map[string]bool{
	"param": true, "path": true, "picture": true, "polygon": true, "polyline": true, "pre": true, "progress": true,
}

// repairParagraphs closes "<p" openings glued to their text, as in "<pHola".
func repairParagraphs(t string) string {
	return openP.ReplaceAllStringFunc(t, func(m string) string {
		sub := openP.FindStringSubmatch(m)
		name, next := sub[1], sub[2]
		if endsTagName(next) && (name == "" || tagsStartingWithP["p"+name]) {
			return m
		}
		return "<p>" + name + next
	})
}

func endsTagName(s string) bool {
	return s == "" || s == ">" || s == "/" || strings.TrimSpace(s) == ""
}

func paragraphs(t string) string {
	t = strings.ReplaceAll(t, "\r\n", "\n")

	var b strings.Builder
	for _, seg := range blankLines.Split(t, -1) {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(seg, "\n", "<br>"))
		b.WriteString("</p>")
	}
	if b.Len() == 0 {
		return emptyParagraph
	}
	return b.String()
}
