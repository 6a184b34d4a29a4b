package banner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLatest(t *testing.T) {
	tests := []struct {
		name    string
		records []Record
		want    string
	}{
		{
			name: "newest updateDate wins",
			records: []Record{
				{"id": "a", "updateDate": "2025-01-10"},
				{"id": "b", "updateDate": "2025-02-10T09:00:00Z"},
				{"id": "c", "updateDate": "2024-12-31 23:59:59"},
			},
			want: "b",
		},
		{
			name: "max across keys",
			records: []Record{
				{"id": "a", "createdDate": "2025-01-01", "updateDate": "2025-06-01"},
				{"id": "b", "SZVMNTR_CREATE_DATE": "2025-05-01"},
			},
			want: "a",
		},
		{
			name:    "no dates falls back to first",
			records: []Record{{"id": "a"}, {"id": "b"}},
			want:    "a",
		},
		{
			name:    "undated first loses to dated",
			records: []Record{{"id": "a"}, {"id": "b", "requestDate": "2025-01-01"}},
			want:    "b",
		},
		{
			name:    "unparseable dates ignored",
			records: []Record{{"id": "a", "updateDate": "ayer"}, {"id": "b", "updateDate": "pronto"}},
			want:    "a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Latest(tt.records)["id"])
		})
	}
	assert.Nil(t, Latest(nil))
}

func TestRender(t *testing.T) {
	tail := " Por favor, revisa y mantente atento a tu correo electrónico para más información.</p>"
	tests := []struct {
		name    string
		records []Record
		want    string
	}{
		{
			name:    "empty",
			records: nil,
			want:    "<p>No encuentro solicitudes de justificación activas para ana@udla.edu.ec.</p>",
		},
		{
			name:    "udla field names",
			records: []Record{{"SZVMNTR_ESTADO": "Rechazada", "SZVMNTR_UPDATE_DATE": "2025-03-03"}},
			want:    "<p>Claro te comento, el estado de tu justificación es: Rechazada (última actualización: 2025-03-03)." + tail,
		},
		{
			name:    "lowercased key",
			records: []Record{{"szvmntr_estado": "Pendiente"}},
			want:    "<p>Claro te comento, el estado de tu justificación es: Pendiente." + tail,
		},
		{
			name:    "missing status and placeholder date",
			records: []Record{{"updateDate": "S/F"}},
			want:    "<p>Claro te comento, el estado de tu justificación es: s/d." + tail,
		},
		{
			name:    "null status",
			records: []Record{{"status": nil, "updateDate": ""}},
			want:    "<p>Claro te comento, el estado de tu justificación es: s/d." + tail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.records, "ana@udla.edu.ec"))
		})
	}
}
