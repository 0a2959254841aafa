// Package agent provides the thread-scoped agent runtime the service desk
// talks to: an LLM-backed implementation and an offline stand-in.
package agent

import (
	"context"
	"errors"
)

// ErrThreadNotFound is returned when sending to an unknown thread.
var ErrThreadNotFound = errors.New("thread not found")

// Runtime runs an agent inside conversation threads.
type Runtime interface {
	// CreateThread opens a new execution context and returns its ID.
	CreateThread(ctx context.Context) (string, error)

	// Send posts message to the thread, runs the agent and returns its reply.
	Send(ctx context.Context, threadID, message string) (string, error)
}

// ConversationalInstructions steer the front-desk agent. The trailing block
// is what the service desk reads to decide whether a case is needed.
const ConversationalInstructions = `Eres el asistente de Recursos Humanos de la empresa.
Responde de forma breve y cordial en el idioma del usuario.
Responde directamente preguntas simples y saludos.
Si el usuario pide una gestión (certificados o constancias, vacaciones o saldo de días,
nómina o pagos, políticas internas, o escalar un problema a una persona),
indica que se abrirá un caso.
Termina SIEMPRE tu respuesta con un bloque como este:
` + "```json\n{\"requires_case\": false, \"case_type\": null}\n```" + `
donde case_type es uno de: generate_certificate, check_vacation_balance,
get_payroll_details, search_policies, create_ticket, general_inquiry.`

// CaseInstructions steer the agent that executes a single case.
const CaseInstructions = `Eres un agente administrativo de Recursos Humanos.
Recibes un caso con su tipo y descripción y respondes con el resultado de la gestión,
en español, en no más de cinco líneas. Si faltan datos, indica cuáles.`
