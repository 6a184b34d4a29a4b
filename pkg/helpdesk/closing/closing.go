// Package closing recognises short thank-you and goodbye messages.
package closing

import (
	"fmt"
	"math/rand"
	"strings"
	"unicode/utf8"
)

// maxRunes bounds what still counts as a bare acknowledgment.
const maxRunes = 30

var continuationCues = []string{
	"no me", "no aparece", "no tengo", "no puedo", "no entiendo",
	"pero", "aunque", "sin embargo", "todavía", "aún", "aun",
	"cómo", "como", "qué", "que", "cuál", "cual", "dónde", "donde",
	"cuándo", "cuando", "por qué", "porque", "necesito", "quiero",
	"ayuda", "ayúdame", "explica", "dime", "otra", "más info",
	"nota", "falta", "error", "problema", "duda",
}

var closingPhrases = []string{
	"gracias", "muchas gracias", "mil gracias", "te agradezco",
	"chao", "chau", "bye", "adiós", "adios", "hasta luego",
	"nos vemos", "cuídate", "cuidate",
	"eso era todo", "era todo", "nada más", "nada mas",
	"no necesito más", "no necesito nada", "todo claro",
	"eso es todo", "no nada más", "no nada mas",
}

var shortAcks = []string{
	"ok", "okay", "vale", "listo", "entendido", "perfecto",
	"excelente", "genial", "de acuerdo", "está bien", "esta bien",
	"bueno", "dale", "claro",
}

var punctuation = strings.NewReplacer(",", "", ".", "", "!", "")

// IsClosing reports whether text only closes the conversation.
// Ambiguous messages are treated as substantive.
func IsClosing(text string) bool {
	t := strings.TrimSpace(strings.ToLower(text))

	if strings.Contains(t, "?") || utf8.RuneCountInString(t) > maxRunes {
		return false
	}
	for _, cue := range continuationCues {
		if strings.Contains(t, cue) {
			return false
		}
	}
	for _, p := range closingPhrases {
		if strings.Contains(t, p) {
			return true
		}
	}

	clean := strings.TrimSpace(punctuation.Replace(t))
	if len(strings.Fields(clean)) > 3 {
		return false
	}
	for _, ack := range shortAcks {
		if clean == ack || clean == ack+" gracias" {
			return true
		}
	}
	return false
}

var replyTemplates = []string{
	"<p>De nada, %s. Cualquier otra consulta, aquí estoy para ayudarte.</p>",
	"<p>Con gusto, %s. Si necesitas algo más, no dudes en escribirme.</p>",
	"<p>Para servirte, %s. Estoy aquí si tienes más preguntas.</p>",
	"<p>Un placer ayudarte, %s. Cuídate mucho.</p>",
}

// Chooser picks an index in [0, n).
type Chooser func(n int) int

// RandomChooser uses math/rand.
var RandomChooser Chooser = rand.Intn

// Replier renders closing replies with an injectable chooser.
type Replier struct {
	choose Chooser
}

func NewReplier(choose Chooser) *Replier {
	if choose == nil {
		choose = RandomChooser
	}
	return &Replier{choose: choose}
}

// Reply returns one of the closing variants personalised with nickname.
// All current variants are gender-neutral, so mentorGender does not change the text.
func (r *Replier) Reply(nickname, mentorGender string) string {
	i := r.choose(len(replyTemplates))
	if i < 0 || i >= len(replyTemplates) {
		i = 0
	}
	return fmt.Sprintf(replyTemplates[i], nickname)
}

// Variants returns every closing reply for nickname, in chooser order.
func Variants(nickname string) []string {
	out := make([]string, len(replyTemplates))
	for i, tpl := range replyTemplates {
		out[i] = fmt.Sprintf(tpl, nickname)
	}
	return out
}
