// Package dates detects date references in student messages and resolves the simple ones.
package dates

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Layout is the output format for relative dates.
const Layout = "02/01/2006"

var explicitPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`),
	regexp.MustCompile(`\b\d{1,2}\s+de\s+[\p{L}\d_]+\s+de\s+\d{4}\b`),
	regexp.MustCompile(`\b\d{1,2}\s+de\s+[\p{L}\d_]+`),
	regexp.MustCompile(`[\p{L}\d_]+\s+\d{1,2},?\s+\d{4}\b`),
}

var numericDate = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})\b`)

var relativeRefs = []string{
	"ayer", "hoy", "mañana", "anteayer", "pasado mañana",
	"la semana pasada", "esta semana", "la próxima semana",
	"el lunes", "el martes", "el miércoles", "el jueves", "el viernes", "el sábado", "el domingo",
	"lunes pasado", "martes pasado", "miércoles pasado", "jueves pasado", "viernes pasado",
	"el día", "ese día", "aquel día", "hace unos días", "hace una semana",
	"la fecha fue", "fue el día", "ocurrió el",
}

// Months lists Spanish month names in calendar order.
var Months = []string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// Clock returns the current time. Extraction of relative terms depends on it.
type Clock func() time.Time

// Extractor resolves dates against an injectable clock.
type Extractor struct {
	now Clock
}

// NewExtractor returns an Extractor. A nil clock means time.Now.
func NewExtractor(now Clock) *Extractor {
	if now == nil {
		now = time.Now
	}
	return &Extractor{now: now}
}

var std = NewExtractor(nil)

// HasDate reports whether text mentions an explicit or relative date.
// Explicit patterns are matched case-sensitively, keyword lists against the lowercased text.
func HasDate(text string) bool {
	for _, p := range explicitPatterns {
		if p.MatchString(text) {
			return true
		}
	}

	lower := strings.ToLower(text)
	for _, ref := range relativeRefs {
		if strings.Contains(lower, ref) {
			return true
		}
	}
	for _, m := range Months {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// ExtractApprox resolves numeric D/M/Y dates as written and the relative terms
// ayer, hoy and mañana. Anything else yields ok == false.
func (e *Extractor) ExtractApprox(text string) (string, bool) {
	if m := numericDate.FindStringSubmatch(text); m != nil {
		year := m[3]
		if len(year) == 2 {
			year = "20" + year
		}
		return fmt.Sprintf("%s/%s/%s", m[1], m[2], year), true
	}

	lower := strings.ToLower(text)
	now := e.now()
	switch {
	case strings.Contains(lower, "ayer"):
		return now.AddDate(0, 0, -1).Format(Layout), true
	case strings.Contains(lower, "hoy"):
		return now.Format(Layout), true
	case strings.Contains(lower, "mañana") && !strings.Contains(lower, "pasado mañana"):
		return now.AddDate(0, 0, 1).Format(Layout), true
	}
	return "", false
}

// ExtractApprox uses the wall clock.
func ExtractApprox(text string) (string, bool) { return std.ExtractApprox(text) }
