package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/hr-service-desk/internal/model"
)

func intentTypes(intents []model.Intent) []model.IntentType {
	out := make([]model.IntentType, len(intents))
	for i, in := range intents {
		out[i] = in.Type
	}
	return out
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []model.IntentType
	}{
		{
			name:  "certificate and vacation",
			input: "necesito un certificado y mis vacaciones",
			want:  []model.IntentType{model.IntentGenerateCertificate, model.IntentCheckVacationBalance},
		},
		{
			name:  "table order wins over input order",
			input: "quiero ver mi pago, mi saldo y una constancia",
			want: []model.IntentType{
				model.IntentGenerateCertificate,
				model.IntentCheckVacationBalance,
				model.IntentGetPayrollDetails,
			},
		},
		{
			name:  "case insensitive",
			input: "CERTIFICADO por favor",
			want:  []model.IntentType{model.IntentGenerateCertificate},
		},
		{
			name:  "accents folded",
			input: "Consulta de mi Nómina",
			want:  []model.IntentType{model.IntentGetPayrollDetails},
		},
		{
			name:  "two triggers of one group yield one intent",
			input: "certificado o constancia",
			want:  []model.IntentType{model.IntentGenerateCertificate},
		},
		{
			name:  "substring match",
			input: "pagos atrasados",
			want:  []model.IntentType{model.IntentGetPayrollDetails},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.input)
			assert.Equal(t, tt.want, intentTypes(got))
		})
	}
}

func TestClassifyFallback(t *testing.T) {
	for _, input := range []string{"hola", "", "¿Cuál es la política de teletrabajo?", "日本語のテキスト"} {
		got := Classify(input)
		require.Len(t, got, 1, "input %q", input)
		assert.Equal(t, model.IntentGeneralInquiry, got[0].Type)
		assert.Equal(t, input, got[0].Description)
	}
}

func TestClassifyDescriptions(t *testing.T) {
	got := Classify("necesito un certificado")
	require.Len(t, got, 1)
	assert.Equal(t, "Solicitud de certificado laboral/constancia", got[0].Description)
}

func TestDetectCaseType(t *testing.T) {
	assert.Equal(t, model.IntentCheckVacationBalance, DetectCaseType("mis vacaciones y mi nomina"))
	assert.Equal(t, model.IntentGeneralInquiry, DetectCaseType("hola"))
	assert.True(t, Matches("Saldo"))
	assert.False(t, Matches("buenos días"))
}
