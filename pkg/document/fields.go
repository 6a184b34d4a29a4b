package document

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"udla-mentor-be/pkg/utils"
)

var spanishMonths = map[string]time.Month{
	"enero": time.January, "ene": time.January,
	"febrero": time.February, "feb": time.February,
	"marzo": time.March, "mar": time.March,
	"abril": time.April, "abr": time.April,
	"mayo": time.May, "may": time.May,
	"junio": time.June, "jun": time.June,
	"julio": time.July, "jul": time.July,
	"agosto": time.August, "ago": time.August,
	"septiembre": time.September, "setiembre": time.September, "sept": time.September, "sep": time.September, "set": time.September,
	"octubre": time.October, "oct": time.October,
	"noviembre": time.November, "nov": time.November,
	"diciembre": time.December, "dic": time.December,
}

var (
	isoDate        = regexp.MustCompile(`^(\d{4})[/\-.](\d{1,2})[/\-.](\d{1,2})$`)
	dmyDate        = regexp.MustCompile(`^(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{2,4})$`)
	isoDateInText  = regexp.MustCompile(`\b\d{4}[/\-.]\d{1,2}[/\-.]\d{1,2}\b`)
	dmyDateInText  = regexp.MustCompile(`\b\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}\b`)
	spanishTextual = regexp.MustCompile(`(?i)\b(\d{1,2})\s+de\s+([a-záéíóúñ.]+)\s+(?:de|del)\s+(\d{4})\b`)
)

func isoFrom(y, m, d int) string {
	if y < 1 || y > 9999 {
		return ""
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return ""
	}
	return t.Format("2006-01-02")
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// numericToISO accepts y-m-d and d-m-y with any of / - . separators.
// Two-digit years below 50 map to 20yy, the rest to 19yy.
func numericToISO(s string) string {
	s = strings.TrimSpace(s)
	if m := isoDate.FindStringSubmatch(s); m != nil {
		return isoFrom(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	m := dmyDate.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	y := atoi(m[3])
	if y < 100 {
		if y < 50 {
			y += 2000
		} else {
			y += 1900
		}
	}
	return isoFrom(y, atoi(m[2]), atoi(m[1]))
}

func textualDates(s string) []string {
	var out []string
	for _, m := range spanishTextual.FindAllStringSubmatch(s, -1) {
		month, ok := spanishMonths[utils.FoldAccents(strings.TrimRight(m[2], "."))]
		if !ok {
			continue
		}
		if iso := isoFrom(atoi(m[3]), int(month), atoi(m[1])); iso != "" {
			out = append(out, iso)
		}
	}
	return out
}

// NormalizeDate renders s as YYYY-MM-DD, or "" when it holds no recognizable date.
// "11 de abril del 2025" and "03/12/23" both normalize.
func NormalizeDate(s string) string {
	if iso := numericToISO(s); iso != "" {
		return iso
	}
	if found := textualDates(s); len(found) > 0 {
		return found[0]
	}
	return ""
}

// FindDates lists the distinct dates of a text: y-m-d first, then d-m-y, then Spanish textual.
func FindDates(text string) []string {
	var out []string
	seen := map[string]bool{}
	add := func(iso string) {
		if iso != "" && !seen[iso] {
			seen[iso] = true
			out = append(out, iso)
		}
	}
	for _, m := range isoDateInText.FindAllString(text, -1) {
		add(numericToISO(m))
	}
	for _, m := range dmyDateInText.FindAllString(text, -1) {
		add(numericToISO(m))
	}
	for _, iso := range textualDates(text) {
		add(iso)
	}
	return out
}

var (
	validID = regexp.MustCompile(`^[A-Z0-9-]{6,20}$`)
	idCue   = regexp.MustCompile(`(?i)(?:c[eé]dula|\bci\b|numero\s+de\s+ci|pasaporte|passport)`)
	idAfter = regexp.MustCompile(`(?i)^.{0,20}?([a-z0-9-]{6,20})`)
	rucWord = regexp.MustCompile(`(?i)\bruc\b`)
	digit   = regexp.MustCompile(`\d`)
)

// CleanID normalizes a model-returned identification, or returns "".
func CleanID(s string) string {
	s = strings.ToUpper(strings.NewReplacer(" ", "", "\n", "").Replace(strings.TrimSpace(s)))
	if !validID.MatchString(s) {
		return ""
	}
	return s
}

// FindID looks for a cédula or passport number after its label. Lines that
// mention a RUC after the label are skipped, and the candidate must contain a digit.
func FindID(analysis string) string {
	for _, text := range []string{analysis, utils.FoldAccents(analysis)} {
		for _, loc := range idCue.FindAllStringIndex(text, -1) {
			rest := text[loc[1]:]
			line := rest
			if i := strings.IndexByte(line, '\n'); i >= 0 {
				line = line[:i]
			}
			if rucWord.MatchString(line) {
				continue
			}
			m := idAfter.FindStringSubmatch(rest)
			if m == nil {
				continue
			}
			cand := strings.ToUpper(m[1])
			if validID.MatchString(cand) && digit.MatchString(cand) {
				return cand
			}
		}
	}
	return ""
}

var nameRejects = map[string]bool{
	"": true, "N/A": true, "NO APLICA": true, "VACIO": true, "VACÍO": true, "DESCONOCIDO": true,
}

// CleanName uppercases a model-returned full name, or returns "" for placeholders.
func CleanName(s string) string {
	s = strings.NewReplacer(`"`, "", "'", "").Replace(strings.TrimSpace(s))
	s = strings.Join(strings.Fields(s), " ")
	upper := strings.ToUpper(s)
	if nameRejects[upper] {
		return ""
	}
	return upper
}
