package escalation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{name: "crisis keyword", text: "Estoy en el hospital desde ayer", want: true},
		{name: "upper case input", text: "TENGO MUCHA ANSIEDAD", want: true},
		{name: "substring collision", text: "fui a la farmacia", want: true},
		{name: "scholarship topic", text: "quiero saber sobre la beca", want: true},
		{name: "pet mention", text: "mi perro está enfermo", want: true},
		{name: "plain question", text: "¿cuál es el horario de la biblioteca?", want: false},
		{name: "empty", text: "", want: false},
		{name: "dead upper-case entry", text: "tengo un examen de fisica", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.text))
		})
	}
}

func TestDetectEveryKeyword(t *testing.T) {
	for _, k := range keywords {
		if k != strings.ToLower(k) {
			continue
		}
		assert.True(t, Detect("hola "+k+" adios"), k)
	}
}

func TestIsNonEscalable(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{text: "mi mascota falleció", want: true},
		{text: "tenía cita en la embajada", want: true},
		{text: "fui a la boda, el matrimonio de mi primo", want: true},
		{text: "trabajo en una empresa", want: true},
		{text: "mi mascota está bien", want: false},
		{text: "tengo una cita médica", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNonEscalable(tt.text))
		})
	}
}

func TestCustomMatcher(t *testing.T) {
	exact := func(haystack, needle string) bool {
		for _, w := range strings.Fields(haystack) {
			if w == needle {
				return true
			}
		}
		return false
	}
	d := NewDetector(exact)

	assert.False(t, d.Detect("fui a la farmacia"))
	assert.True(t, d.Detect("llevaba un arma"))
	assert.Equal(t, "--mentor--", Message())
}
