package banner

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Record is one justification row. Field names vary between Banner views.
type Record map[string]any

var dateKeys = []string{
	"updateDate", "createdDate", "requestDate",
	"SZVMNTR_UPDATE_DATE", "szvmntr_update_date", "szvmntR_UPDATE_DATE",
	"SZVMNTR_CREATE_DATE", "szvmntr_create_date",
	"SZVMNTR_REQUEST_DATE", "szvmntr_request_date",
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Pick returns the first non-empty value among keys, also trying each key lowercased.
func (r Record) Pick(def string, keys ...string) string {
	for _, k := range keys {
		for _, cand := range []string{k, strings.ToLower(k)} {
			v, ok := r[cand]
			if !ok || v == nil {
				continue
			}
			if s := fmt.Sprint(v); s != "" {
				return s
			}
		}
	}
	return def
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	alt := strings.ReplaceAll(strings.Replace(s, "T", " ", 1), "Z", "")
	if t, err := time.Parse("2006-01-02 15:04:05.999999999", alt); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func (r Record) score() float64 {
	best := math.Inf(-1)
	for _, k := range dateKeys {
		v, ok := r[k]
		if !ok || v == nil || v == "" {
			continue
		}
		if t, ok := parseDate(fmt.Sprint(v)); ok {
			best = math.Max(best, float64(t.UnixNano())/1e9)
		}
	}
	return best
}

// Latest picks the record with the most recent date. Records without a usable date
// never displace an earlier pick, so the first record wins when nothing is dated.
func Latest(records []Record) Record {
	var best Record
	bestScore := math.Inf(-1)
	for _, r := range records {
		s := r.score()
		if math.IsInf(s, -1) {
			if best == nil {
				s = -1
			} else {
				s = bestScore - 1e-6
			}
		}
		if best == nil || s > bestScore {
			best, bestScore = r, s
		}
	}
	if best == nil && len(records) > 0 {
		return records[0]
	}
	return best
}

// Render formats the latest record for the student.
func Render(records []Record, who string) string {
	if len(records) == 0 {
		return fmt.Sprintf("<p>No encuentro solicitudes de justificación activas para %s.</p>", who)
	}
	r := Latest(records)
	status := r.Pick("s/d", "status", "SZVMNTR_ESTADO", "szvmntR_ESTADO")
	updated := r.Pick("", "updateDate", "SZVMNTR_UPDATE_DATE", "szvmntR_UPDATE_DATE")

	const keepWatching = "Por favor, revisa y mantente atento a tu correo electrónico para más información."
	lower := strings.ToLower(updated)
	if updated != "" && lower != "s/f" && lower != "s/d" {
		return fmt.Sprintf("<p>Claro te comento, el estado de tu justificación es: %s (última actualización: %s). %s</p>", status, updated, keepWatching)
	}
	return fmt.Sprintf("<p>Claro te comento, el estado de tu justificación es: %s. %s</p>", status, keepWatching)
}
