// Package intent maps free-text HR requests onto structured intents.
package intent

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/capitalize-ai/hr-service-desk/internal/model"
)

// Rule maps a set of trigger phrases onto one intent type.
type Rule struct {
	Triggers    []string
	Type        model.IntentType
	Description string
}

// Rules is the trigger table, evaluated in order. Order decides the order of
// the returned intents, not the position of the phrase in the input.
var Rules = []Rule{
	{
		Triggers:    []string{"certificado", "constancia"},
		Type:        model.IntentGenerateCertificate,
		Description: "Solicitud de certificado laboral/constancia",
	},
	{
		Triggers:    []string{"vacaciones", "saldo"},
		Type:        model.IntentCheckVacationBalance,
		Description: "Consulta de saldo o solicitud de vacaciones",
	},
	{
		Triggers:    []string{"nomina", "pago"},
		Type:        model.IntentGetPayrollDetails,
		Description: "Consulta de detalles de nómina",
	},
}

// Classify returns one intent per matching rule, in table order. Input that
// matches nothing yields a single general inquiry carrying the whole text.
func Classify(text string) []model.Intent {
	folded := fold(text)

	var intents []model.Intent
	for _, rule := range Rules {
		if rule.matches(folded) {
			intents = append(intents, model.Intent{
				Type:        rule.Type,
				Description: rule.Description,
			})
		}
	}

	if len(intents) == 0 {
		intents = append(intents, model.Intent{
			Type:        model.IntentGeneralInquiry,
			Description: text,
		})
	}

	return intents
}

// Matches reports whether any rule fires for text.
func Matches(text string) bool {
	folded := fold(text)
	for _, rule := range Rules {
		if rule.matches(folded) {
			return true
		}
	}
	return false
}

// DetectCaseType returns the first matching intent type, or a general inquiry.
func DetectCaseType(text string) model.IntentType {
	folded := fold(text)
	for _, rule := range Rules {
		if rule.matches(folded) {
			return rule.Type
		}
	}
	return model.IntentGeneralInquiry
}

func (r Rule) matches(folded string) bool {
	for _, trigger := range r.Triggers {
		if strings.Contains(folded, trigger) {
			return true
		}
	}
	return false
}

// fold lowercases s and strips combining marks so "Nómina" matches "nomina".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}
