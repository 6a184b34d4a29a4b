package agent

import (
	"regexp"
	"strings"

	"udla-mentor-be/pkg/utils"
)

const (
	studentPrefix = "Estudiante:"
	mentorPrefix  = "Mentor:"
	profilePrefix = "DatosUsuario:"
	turnPrefix    = "Interaccion:"
)

var rolePrefixes = []string{studentPrefix, mentorPrefix, profilePrefix, turnPrefix}

var emailField = regexp.MustCompile(`correo=([^,\s]*)`)

// LastStudentLine returns the newest student message of a transcript, or the whole
// input when it carries no role prefixes. A message runs until the next prefixed line.
func LastStudentLine(transcript string) string {
	lines := strings.Split(transcript, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		rest, ok := strings.CutPrefix(lines[i], studentPrefix)
		if !ok {
			continue
		}
		msg := []string{rest}
		for _, l := range lines[i+1:] {
			if hasRolePrefix(l) {
				break
			}
			msg = append(msg, l)
		}
		return strings.TrimSpace(strings.Join(msg, "\n"))
	}
	return strings.TrimSpace(transcript)
}

func hasRolePrefix(line string) bool {
	for _, p := range rolePrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// EmailFromTranscript reads correo= from the last DatosUsuario line.
func EmailFromTranscript(transcript string) string {
	lines := strings.Split(transcript, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if !strings.HasPrefix(lines[i], profilePrefix) {
			continue
		}
		if m := emailField.FindStringSubmatch(lines[i]); m != nil {
			return m[1]
		}
		return ""
	}
	return ""
}

var statusCues = []string{
	"estado de mi justificacion",
	"como va mi justificacion",
	"ya aprobaron mi caso",
	"que paso con mi justificacion",
	"revisaron mi solicitud",
	"estado de mi solicitud",
	"estado de mi caso",
	"resultado de mi justificacion",
}

// AsksStatus reports whether the student asks about an already submitted justification.
func AsksStatus(question string) bool {
	folded := utils.FoldAccents(question)
	for _, cue := range statusCues {
		if strings.Contains(folded, cue) {
			return true
		}
	}
	return false
}
