// Package escalation decides when a student message must be handed to a human mentor.
package escalation

import "strings"

// Sentinel is the token used across the service to route a conversation to a mentor.
// Clients and the sanitizer key off this exact value.
const Sentinel = "--mentor--"

// Matcher reports whether needle occurs in the (already lowercased) haystack.
type Matcher func(haystack, needle string) bool

// Substring matches anywhere in the text, without word boundaries.
// "accidente" inside "accidentes" or "arma" inside "farmacia" both match.
var Substring Matcher = strings.Contains

// keywords is matched against the lowercased text. Entries with upper-case
// letters can never match and are kept as they were curated.
var keywords = []string{
	"hospital", "depresión", "deprimido", "deprimida", "deprimidos", "ansiedad", "carcel", "prisión", "prision", "robo", "asalto",
	"cáncer", "leucemia", "tumor", "quimioterapia", "cirugía mayor", "cirugia", "cirugía",
	"accidente grave", "accidente", "accidente de tránsito", "accidente vehicular", "choque", "colisión",
	"atropello", "accidente de auto", "accidente de carro", "accidente de transito",
	"emergencia familiar", "muerte", "fallecimiento", "fallecio", "falleció", "fallece", "fallecera", "fallecieron", "murio", "murió", "muerieron", "moriran",
	"defunción", "funeral", "sepelio", "velorio", "depresion", "esclerosis", "congreso", "Congreso", "congresos",
	"lupus", "esquizofrenia", "epilepsia", "VIH", "sida", "transplante", "anorexia", "bulimia",
	"distrofia", "suicidio", "suicidas", "salud mental", "insomnio", "mataron", "mato", "mató", "problema mental", "robaron", "asaltaron", "moría",
	"chocaron", "hirieron", "arma", "pistola", "metralleta", "escopeta", "machete", "cuchillo", "navaja", "evento", "evento deportivo", "deportivo", "competencia", "competir", "vida", "acoso", "acosando", "denunciar", "miedo", "sexual", "sexo",
	"viviendo", "discriminado", "discriminacion", "discriminación", "racismo", "racista", "religion", "religión", "droga", "drogas",
	"abuso", "abusaron", "abusaran", "abusó", "abusar", "discapacidad", "discapacitado", "lesion", "lesionado", "paja", "pajas",

	"soledad", "solitario", "sola", "morir", "morirme", "suicidarme", "suicidar", "vivir", "desaparezco", "desaparecio", "aislado", "aislada",
	"golpear", "pegar", "pegaron", "golpearon", "vengarme", "venganza", "vengara", "lastimaron", "lastimo", "lastima", "lastimar",
	"lastimare", "maltrato", "maltratando", "maltrataron", "maltratan", "peligro", "violencia", "violacion", "violento",
	"abusador", "abusadora", "coercion", "extorsionar", "extorsionaron", "extorsiono", "extorsionada", "extorsionado", "tristeza", "panico", "lloro",
	"llorando", "llorar", "inservible", "angustia", "existencial", "alcohol", "licor", "cerveza", "switch", "volando", "internaron", "intoxicado", "intoxicada",
	"drogado", "drogaron", "fumando", "fumar", "control", "palpitaciones", "dengue", "denge", "anestesia", "bronquitis", "amigdalitis", "asma", "descompense", "descompensé", "no me siento con buen animo",
	"chikungunya", "hospitalizado", "hospitalizacion", "hospitalizada", "episodios", "gastroenteritis", "diabetes", "hernia",
	"vesicula", "operación", "operacion", "operar", "operaron", "embarazo", "embarazada", "embarazaron", "prenatal", "anticonceptivos", "parto", "cesarea",
	"aborto", "abortar", "paleativos", "paliativos", "trauma", "cerebral", "calamidad", "presionado", "presionada", "presionando", "homofobia", "fobia", "sexismo", "sexista",
	"no me he sentido bien", "no me siento bien ultimamente", "de mi hijo", "de mi hija", "de mi hijastro", "de mis hijos", "de mis hijas", "autolitico", "autolítico", "me siento mal", "me he sentido mal",
	"trastorno", "mama esta enferma", "mama enfermo", "mama enferma", "mama se enfermo", "papa se enfermo", "papa esta enfermo", "padre esta enfermo", "abuelo enfermo", "paro nacional",
	"protestas", "manifestaciones", "manifestacion", "manifestación", "apagon", "apagón", "crisis energetica", "crisis energética", "temblor", "sismo", "terremoto", "inundacion", "fracture", "fracturé", "fracturo", "fracturó",
	"fracturaron", "fractura", "esguince", "esguinzo", "desmayo", "desmayé", "intoxicacion", "intoxicación", "insolacion", "insolación", "quemadura", "quemaduras", "mi hijo", "mi hija",
	"mi mama esta enferma", "mi papa esta enfermo", "mi padre esta enfermo", "mi abuelo esta enfermo", "mi abuela esta enferma", "mi mamá esta enferma", "quiero una beca", "como obtengo una beca", "necesito una beca", "proceso beca",
	"rechazaron", "no me validaron el certificado", "no me aprobaron", "rechazo", "rechazó", "no aprobacion", "no aprobación", "no me ayudaron", "no me justificaron", "certificado no valido", "certificado no válido",
	"beca", "becas", "representacion estudiantil", "representación estudiantil", "representacion universitaria", "representación universitaria", "certificado deportivo", "competencias", "torneo", "torneos",
	"muy personal", "situacion personal", "situación personal", "problema personal", "problema muy personal", "problema familiar", "situacion familiar", "situación familiar", "asistiendo a clases", "asistio a clases", "asistira", "notas de",
	"fue a clases", "estuvo en clases", "falsifico", "falsificó", "falsificacion", "falsificación", "documento falso", "falsifica", "choco", "vagos", "vago", "hack", "hackear", "hackeado", "hackeada", "hacker",
	"excluido", "excluida", "exclusion", "empujo", "empujaron", "alcol", "borracho", "borracha", "borrachos", "tomados", "esta tomado", "911", "polic   ia", "paramedicos", "ambulancia", "plagio", "plagiaron", "plagió", "teme por", "muy triste",
	"estresado", "estresada", "estrés", "mascota", "mi perro", "mi gato", "veterinario", "hospital veterinario", "veterinaria", "mi perrito", "mi gatita", "mi gatito", "mi perrita", "no tengo certificado", "sin certificado", "no cuento con certificado",
	"no presente certificado", "no he podido conseguir el certificado", "no me has ayudado", "no me has apoyado", "no me han apoyado", "no me han ayudado", "no he recibido ayuda", "no recibi ayuda", "no recibí ayuda",
	"no ayudas", "no apoyas", "quiero ayuda humana", "hablar con humano", "audiencia", "audiencias", "judicial", "demanda", "juicio", "tribunal",
}

// exemption pairs a topic word with outcome words. Both must occur.
type exemption struct {
	topic    string
	outcomes []string
}

var exemptions = []exemption{
	{"mascota", []string{"falle", "murio", "murió", "muerte"}},
	{"cita", []string{"embajada", "consulado"}},
	{"boda", []string{"matrimonio", "casamiento"}},
	{"trabajo", []string{"laboral", "empresa"}},
}

// Detector scans text with a pluggable Matcher.
type Detector struct {
	match Matcher
}

// NewDetector builds a Detector. A nil matcher means Substring.
func NewDetector(m Matcher) *Detector {
	if m == nil {
		m = Substring
	}
	return &Detector{match: m}
}

var defaultDetector = NewDetector(Substring)

// Detect reports whether any escalation keyword occurs in text.
func (d *Detector) Detect(text string) bool {
	q := strings.ToLower(text)
	for _, k := range keywords {
		if d.match(q, k) {
			return true
		}
	}
	return false
}

// IsNonEscalable reports whether text matches one of the carve-out phrase pairs.
// It does not override Detect; callers decide precedence.
func (d *Detector) IsNonEscalable(text string) bool {
	q := strings.ToLower(text)
	for _, e := range exemptions {
		if !d.match(q, e.topic) {
			continue
		}
		for _, o := range e.outcomes {
			if d.match(q, o) {
				return true
			}
		}
	}
	return false
}

// Detect runs the default substring detector.
func Detect(text string) bool { return defaultDetector.Detect(text) }

// IsNonEscalable runs the default carve-out check.
func IsNonEscalable(text string) bool { return defaultDetector.IsNonEscalable(text) }

// Message returns the escalation sentinel.
func Message() string { return Sentinel }
