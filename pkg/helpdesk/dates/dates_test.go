package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHasDate(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{text: "el evento fue el 5 de enero", want: true},
		{text: "falté el 12/03/2024", want: true},
		{text: "el 3 de febrero de 2024 estuve enfermo", want: true},
		{text: "marzo 5, 2024", want: true},
		{text: "me enfermé ayer", want: true},
		{text: "la semana pasada no fui", want: true},
		{text: "El Lunes falté", want: true},
		{text: "en septiembre", want: true},
		{text: "el 7 de día", want: true},
		{text: "necesito justificar una falta", want: false},
		{text: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, HasDate(tt.text))
		})
	}
}

func TestExtractApprox(t *testing.T) {
	fixed := time.Date(2024, time.March, 10, 15, 0, 0, 0, time.UTC)
	e := NewExtractor(func() time.Time { return fixed })

	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{name: "numeric as written", text: "15/03/2024", want: "15/03/2024", wantOK: true},
		{name: "dash separated", text: "el 5-3-2024", want: "5/3/2024", wantOK: true},
		{name: "two digit year", text: "falté el 1/2/24", want: "1/2/2024", wantOK: true},
		{name: "yesterday", text: "me enfermé ayer", want: "09/03/2024", wantOK: true},
		{name: "today", text: "Hoy no pude ir", want: "10/03/2024", wantOK: true},
		{name: "tomorrow", text: "mañana tengo cita", want: "11/03/2024", wantOK: true},
		{name: "day after tomorrow unresolved", text: "pasado mañana tengo cita", wantOK: false},
		{name: "long form unresolved", text: "el 5 de enero", wantOK: false},
		{name: "nothing", text: "sin fecha", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := e.ExtractApprox(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectionAndExtractionAreIndependent(t *testing.T) {
	assert.True(t, HasDate("el viernes pasado"))
	_, ok := ExtractApprox("el viernes pasado")
	assert.False(t, ok)
}
