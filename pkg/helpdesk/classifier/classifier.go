// Package classifier maps a student's free-text absence request to a justification case.
package classifier

import (
	"encoding/json"
	"strings"

	"udla-mentor-be/pkg/helpdesk/dates"
	"udla-mentor-be/pkg/helpdesk/escalation"
)

type Case string

const (
	CaseInformational Case = "pregunta_informativa"
	CaseEscalation    Case = "escalamiento_inmediato"
	CasePetDeath      Case = "calamidad_mascota"
	CaseIllness       Case = "enfermedad"
	CaseCatastrophic  Case = "enfermedad_catastrica"
	CaseBereavement   Case = "calamidad"
	CaseSports        Case = "deportiva"
	CaseWorkTravel    Case = "viaje_trabajo"
	CaseVirtualClass  Case = "clases_virtuales"
	CaseUnknown       Case = "desconocido"
)

// NoteUseFAQ tells the agent layer to answer from the FAQ index instead of the justification flow.
const NoteUseFAQ = "USAR_FAQ"

// Result is the outcome of Classify. FollowUp holds at most one question.
type Result struct {
	Case          Case
	RequiredDoc   string
	FollowUp      []string
	Note          string
	DateDetected  bool
	DateExtracted string
}

// Escalates reports whether the result routes the student to a mentor.
func (r Result) Escalates() bool { return r.Note == escalation.Sentinel }

type resultJSON struct {
	Case          Case     `json:"case"`
	RequiredDoc   *string  `json:"required_doc"`
	FollowUp      []string `json:"follow_up"`
	Note          string   `json:"note"`
	DateDetected  bool     `json:"fecha_detectada"`
	DateExtracted *string  `json:"fecha_extraida"`
}

func (r Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{
		Case:         r.Case,
		FollowUp:     r.FollowUp,
		Note:         r.Note,
		DateDetected: r.DateDetected,
	}
	if out.FollowUp == nil {
		out.FollowUp = []string{}
	}
	if r.RequiredDoc != "" {
		out.RequiredDoc = &r.RequiredDoc
	}
	if r.DateExtracted != "" {
		out.DateExtracted = &r.DateExtracted
	}
	return json.Marshal(out)
}

const (
	docMedical     = "Certificado médico"
	docBereavement = "Acta de defunción y copia de cédula del estudiante"
	docSports      = "Certificado oficial de participación deportiva"
	docVirtual     = "Reporte médico o justificación por escrito"

	noteWorkTravel = "Lo siento, las inasistencias por viaje de trabajo no son justificables."
	notePetDeath   = "Lo siento mucho por tu mascota. Esta situación no está contemplada como justificación de inasistencia."

	askUploadConfirmed = "<p>Perfecto. Por favor, sube aquí en el chat el certificado médico como archivo adjunto (imagen o PDF).</p>"
	askUpload          = "<p>Para procesar tu justificación, por favor sube tu certificado médico aquí en el chat como archivo adjunto (imagen o PDF).</p>"
	askSportsDate      = "¿En qué fecha se realizó el evento?"
	askSportsCert      = "¿Tienes el certificado oficial de participación? Si lo tienes, súbelo aquí en el chat."
	askVirtualWhy      = "¿Por qué no pudiste asistir presencialmente?"
	askVirtualDoc      = "¿Puedes enviarme el reporte médico o justificativo por este medio?"
)

var informationalPhrases = []string{
	"qué debe constar", "que debe constar",
	"qué debe tener", "que debe tener",
	"qué necesita", "que necesita",
	"qué requisitos", "que requisitos",
	"requisitos del certificado", "requisitos de mi certificado",
	"qué debe incluir", "que debe incluir",
	"qué información debe", "que información debe",
	"cómo debe ser", "como debe ser",
	"qué datos debe", "que datos debe",
	"qué contiene", "que contiene",
}

var (
	petNouns         = []string{"mascota", "perro", "gato"}
	catastrophic     = []string{"cáncer", "leucemia", "tumor"}
	certConfirmation = []string{"si tengo", "sí tengo", "lo tengo", "ya tengo", "tengo el certificado", "tengo mi certificado"}
)

type category struct {
	name Case
	keys []string
}

// categories is scanned in order; the first category with any hit wins.
var categories = []category{
	{CaseIllness, []string{
		"enfermedad", "gripe", "fiebre", "dolor", "doctor", "médico", "estómago", "cabeza", "migraña",
		"odontología", "odontólogo", "odontologo", "dentista", "dental",
		"muela", "muelas", "diente", "dientes", "cordal", "cordales", "extracción dental",
		"cirugia dental", "endodoncia", "ortodoncia", "brackets", "covid", "coronavirus", "malestar",
		"presion", "vomito", "infeccion", "malestar general", "dolor muscular", "dolor de cabeza",
		// One curated entry: a bare "fatiga" is not an illness keyword.
		"dolor de estomagofatiga", "gastroenteritis", "colicos", "resfriado", "cita medica", "alergia",
	}},
	{CaseBereavement, []string{"duelo", "fallec", "muerte", "defunción"}},
	{CaseSports, []string{"deport", "competencia", "torneo", "evento deportivo"}},
	{CaseWorkTravel, []string{"viaje de trabajo", "business trip", "laboral"}},
	{CaseVirtualClass, []string{"virtuales", "remoto", "zoom", "teams"}},
}

// query carries the per-call inputs every step reads.
type query struct {
	raw       string
	lower     string
	hasDate   bool
	extracted string
}

// step returns ok == true when it decides the case.
type step func(q query) (Result, bool)

// Classifier runs the ordered rule chain with its own detector and date extractor.
type Classifier struct {
	detector  *escalation.Detector
	extractor *dates.Extractor
	steps     []step
}

// New builds a Classifier. Nil arguments fall back to the package defaults.
func New(detector *escalation.Detector, extractor *dates.Extractor) *Classifier {
	if detector == nil {
		detector = escalation.NewDetector(nil)
	}
	if extractor == nil {
		extractor = dates.NewExtractor(nil)
	}
	c := &Classifier{detector: detector, extractor: extractor}
	c.steps = []step{
		c.informational,
		c.escalation,
		c.petDeath,
		c.mapped,
	}
	return c
}

var std = New(nil, nil)

// Classify uses the default detector and wall clock.
func Classify(text string) Result { return std.Classify(text) }

func (c *Classifier) Classify(text string) Result {
	q := query{raw: text, lower: strings.ToLower(text)}
	q.hasDate = dates.HasDate(text)
	if q.hasDate {
		q.extracted, _ = c.extractor.ExtractApprox(text)
	}

	for _, s := range c.steps {
		if r, ok := s(q); ok {
			return r
		}
	}
	return Result{
		Case:          CaseUnknown,
		FollowUp:      []string{},
		DateDetected:  q.hasDate,
		DateExtracted: q.extracted,
	}
}

func (c *Classifier) informational(q query) (Result, bool) {
	if !containsAny(q.lower, informationalPhrases) {
		return Result{}, false
	}
	return Result{Case: CaseInformational, FollowUp: []string{}, Note: NoteUseFAQ}, true
}

// escalation fires on any detector hit. In a pet death only hits outside the pet
// and death words count, so the empathetic reply is kept for the loss alone.
// A catastrophic illness keeps its own case but still carries the sentinel.
func (c *Classifier) escalation(q query) (Result, bool) {
	text := q.lower
	if isPetDeath(text) {
		text = withoutPetDeathTerms(text)
	}
	if !c.detector.Detect(text) {
		return Result{}, false
	}
	if containsAny(q.lower, catastrophic) {
		return catastrophicResult(q), true
	}
	return Result{
		Case:         CaseEscalation,
		FollowUp:     []string{},
		Note:         escalation.Sentinel,
		DateDetected: q.hasDate,
	}, true
}

func (c *Classifier) petDeath(q query) (Result, bool) {
	if !isPetDeath(q.lower) {
		return Result{}, false
	}
	return Result{
		Case:         CasePetDeath,
		FollowUp:     []string{},
		Note:         notePetDeath,
		DateDetected: q.hasDate,
	}, true
}

func (c *Classifier) mapped(q query) (Result, bool) {
	for _, cat := range categories {
		if !containsAny(q.lower, cat.keys) {
			continue
		}
		switch cat.name {
		case CaseIllness:
			return illness(q), true
		case CaseBereavement:
			return Result{
				Case:         CaseBereavement,
				RequiredDoc:  docBereavement,
				FollowUp:     []string{},
				Note:         escalation.Sentinel,
				DateDetected: q.hasDate,
			}, true
		case CaseSports:
			ask := askSportsCert
			if !q.hasDate {
				ask = askSportsDate
			}
			return Result{
				Case:          CaseSports,
				RequiredDoc:   docSports,
				FollowUp:      []string{ask},
				DateDetected:  q.hasDate,
				DateExtracted: q.extracted,
			}, true
		case CaseWorkTravel:
			return Result{
				Case:         CaseWorkTravel,
				FollowUp:     []string{},
				Note:         noteWorkTravel,
				DateDetected: q.hasDate,
			}, true
		case CaseVirtualClass:
			ask := askVirtualDoc
			if !q.hasDate {
				ask = askVirtualWhy
			}
			return Result{
				Case:          CaseVirtualClass,
				RequiredDoc:   docVirtual,
				FollowUp:      []string{ask},
				DateDetected:  q.hasDate,
				DateExtracted: q.extracted,
			}, true
		}
	}
	return Result{}, false
}

func illness(q query) Result {
	if containsAny(q.lower, catastrophic) {
		return catastrophicResult(q)
	}
	if containsAny(q.lower, certConfirmation) {
		return Result{
			Case:         CaseIllness,
			RequiredDoc:  docMedical,
			FollowUp:     []string{askUploadConfirmed},
			DateDetected: q.hasDate,
		}
	}
	return Result{
		Case:          CaseIllness,
		RequiredDoc:   docMedical,
		FollowUp:      []string{askUpload},
		DateDetected:  q.hasDate,
		DateExtracted: q.extracted,
	}
}

func catastrophicResult(q query) Result {
	return Result{
		Case:         CaseCatastrophic,
		FollowUp:     []string{},
		Note:         escalation.Sentinel,
		DateDetected: q.hasDate,
	}
}

func isPetDeath(lower string) bool {
	return containsAny(lower, petNouns) && strings.Contains(lower, "falle")
}

var (
	vetPhrases = []string{"hospital veterinario", "clínica veterinaria", "clinica veterinaria"}
	petStems   = []string{"mascota", "perr", "gat", "veterinari", "falle", "muri", "muerte"}
)

// withoutPetDeathTerms drops every word starting with a pet, vet or death stem.
func withoutPetDeathTerms(lower string) string {
	for _, p := range vetPhrases {
		lower = strings.ReplaceAll(lower, p, " ")
	}
	words := strings.Fields(lower)
	kept := words[:0]
	for _, w := range words {
		if !hasAnyPrefix(strings.TrimLeft(w, "¿¡\"'(«"), petStems) {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
