package tools

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/hr-service-desk/internal/model"
)

func TestMockRegistryCoversEveryIntent(t *testing.T) {
	reg := NewMockRegistry()
	for _, intent := range model.IntentTypes {
		tool, ok := reg.Lookup(intent)
		require.True(t, ok, "no tool for %s", intent)
		assert.NotEmpty(t, tool.Name())
	}
	assert.Len(t, reg.Describe(), len(model.IntentTypes))
}

func TestRegistryFallback(t *testing.T) {
	reg := NewRegistry(nil)
	_, ok := reg.Lookup(model.IntentGetPayrollDetails)
	assert.False(t, ok)

	fallback := NewTicketTool()
	reg = NewRegistry(fallback).Register(model.IntentCheckVacationBalance, NewVacationTool())

	tool, ok := reg.Lookup(model.IntentGetPayrollDetails)
	require.True(t, ok)
	assert.Equal(t, "create_ticket", tool.Name())

	tool, ok = reg.Lookup(model.IntentCheckVacationBalance)
	require.True(t, ok)
	assert.Equal(t, "check_vacation_balance", tool.Name())
	assert.Equal(t, []string{"check_vacation_balance=check_vacation_balance", "*=create_ticket"}, reg.Describe())
}

func TestHRTools(t *testing.T) {
	ctx := context.Background()
	fixed := func() time.Time { return time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC) }
	task := Task{CaseID: "case-1", UserID: "emp-42", Description: "Solicitud de certificado laboral/constancia"}

	t.Run("certificate", func(t *testing.T) {
		tool := NewCertificateTool()
		tool.now = fixed
		res, err := tool.Execute(ctx, task)
		require.NoError(t, err)
		assert.Contains(t, res.Text, "Laboral")
		assert.Contains(t, res.Text, "2024-06-20")
		assert.Contains(t, res.Text, "emp-42/case-1.pdf")
		assert.Empty(t, res.ThreadID)
	})

	t.Run("vacation", func(t *testing.T) {
		res, err := NewVacationTool().Execute(ctx, task)
		require.NoError(t, err)
		assert.Contains(t, res.Text, "10 vacation days available")
	})

	t.Run("payroll", func(t *testing.T) {
		tool := NewPayrollTool()
		tool.now = fixed
		res, err := tool.Execute(ctx, task)
		require.NoError(t, err)
		assert.Contains(t, res.Text, "2024-05-31")
	})

	t.Run("missing employee fails", func(t *testing.T) {
		_, err := NewVacationTool().Execute(ctx, Task{Description: "saldo"})
		var herr *HandlerError
		require.True(t, errors.As(err, &herr))
		assert.Equal(t, "check_vacation_balance", herr.Tool)
		assert.Equal(t, "check_vacation_balance: employee id is required", err.Error())
	})
}

func TestPolicyAndInquiry(t *testing.T) {
	ctx := context.Background()
	policies := NewPolicyTool()
	tickets := NewTicketTool()
	tickets.newID = func() string { return "HR-1234" }
	inquiry := NewInquiryTool(policies, tickets)

	res, err := policies.Execute(ctx, Task{Description: "¿Cuál es la política de teletrabajo?"})
	require.NoError(t, err)
	assert.Contains(t, res.Text, "Remote Work")

	res, err = policies.Execute(ctx, Task{Description: "parking"})
	require.NoError(t, err)
	assert.Contains(t, res.Text, "couldn't find")

	res, err = inquiry.Execute(ctx, Task{UserID: "emp-1", Intent: model.IntentGeneralInquiry, Description: "licencia de paternidad"})
	require.NoError(t, err)
	assert.Contains(t, res.Text, "8 weeks")

	res, err = inquiry.Execute(ctx, Task{UserID: "emp-1", Intent: model.IntentGeneralInquiry, Description: "mi jefe me grita"})
	require.NoError(t, err)
	assert.Contains(t, res.Text, "HR-1234")
	assert.Contains(t, res.Text, "mi jefe me grita")

	_, err = inquiry.Execute(ctx, Task{UserID: "emp-1", Description: "  "})
	assert.Error(t, err)
}

func TestInquiryTicketStatus(t *testing.T) {
	ctx := context.Background()
	tickets := NewTicketTool()
	tickets.newID = func() string { return "HR-4821" }
	tickets.now = func() time.Time { return time.Date(2024, 6, 3, 14, 5, 0, 0, time.UTC) }
	inquiry := NewInquiryTool(NewPolicyTool(), tickets)

	_, err := tickets.Execute(ctx, Task{UserID: "emp-1", Intent: model.IntentCreateTicket, Description: "problema con mi contrato"})
	require.NoError(t, err)

	ticket, ok := tickets.Lookup("emp-1", "hr-4821")
	require.True(t, ok)
	assert.Equal(t, "Open", ticket.Status)
	assert.Equal(t, model.IntentCreateTicket, ticket.Category)

	res, err := inquiry.Execute(ctx, Task{UserID: "emp-1", Intent: model.IntentGeneralInquiry, Description: "¿cómo va mi ticket hr-4821?"})
	require.NoError(t, err)
	assert.Contains(t, res.Text, "Ticket HR-4821")
	assert.Contains(t, res.Text, "Status: Open")
	assert.Contains(t, res.Text, "2024-06-03 14:05 UTC")

	res, err = inquiry.Execute(ctx, Task{UserID: "emp-2", Intent: model.IntentGeneralInquiry, Description: "estado del ticket HR-4821"})
	require.NoError(t, err)
	assert.Contains(t, res.Text, "couldn't find ticket HR-4821")

	res, err = inquiry.Execute(ctx, Task{UserID: "emp-1", Intent: model.IntentGeneralInquiry, Description: "estado del ticket HR-9999"})
	require.NoError(t, err)
	assert.Contains(t, res.Text, "couldn't find ticket HR-9999")
}

func TestTicketIDCollisionRetries(t *testing.T) {
	ids := []string{"HR-1111", "HR-1111", "HR-2222"}
	tickets := NewTicketTool()
	tickets.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	first := tickets.open(Task{UserID: "emp-1", Description: "a"})
	second := tickets.open(Task{UserID: "emp-1", Description: "b"})
	assert.Equal(t, "HR-1111", first.ID)
	assert.Equal(t, "HR-2222", second.ID)
}

func TestDefaultTicketID(t *testing.T) {
	id := NewTicketTool().newID()
	assert.Regexp(t, `^HR-\d{4}$`, id)
}

type stubRuntime struct {
	createErr error
	sendErr   error
	reply     string
	sent      []string
}

func (s *stubRuntime) CreateThread(ctx context.Context) (string, error) {
	if s.createErr != nil {
		return "", s.createErr
	}
	return "thread-1", nil
}

func (s *stubRuntime) Send(ctx context.Context, threadID, message string) (string, error) {
	s.sent = append(s.sent, message)
	return s.reply, s.sendErr
}

func TestAgentTool(t *testing.T) {
	ctx := context.Background()
	task := Task{CaseID: "case-7", UserID: "emp-1", Intent: model.IntentGetPayrollDetails, Description: "Consulta de detalles de nómina"}

	t.Run("success records thread", func(t *testing.T) {
		rt := &stubRuntime{reply: "Tu pago neto es $3,850."}
		res, err := NewAgentTool(rt).Execute(ctx, task)
		require.NoError(t, err)
		assert.Equal(t, "thread-1", res.ThreadID)
		assert.Equal(t, "Tu pago neto es $3,850.", res.Text)
		require.Len(t, rt.sent, 1)
		assert.Contains(t, rt.sent[0], "case-7")
		assert.Contains(t, rt.sent[0], "get_payroll_details")
	})

	t.Run("send failure keeps thread", func(t *testing.T) {
		rt := &stubRuntime{sendErr: context.DeadlineExceeded}
		res, err := NewAgentTool(rt).Execute(ctx, task)
		var herr *HandlerError
		require.True(t, errors.As(err, &herr))
		assert.Equal(t, "agent run timed out", herr.Reason)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, "thread-1", res.ThreadID)
	})

	t.Run("thread failure", func(t *testing.T) {
		rt := &stubRuntime{createErr: errors.New("quota exceeded")}
		_, err := NewAgentTool(rt).Execute(ctx, task)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "quota exceeded")
	})

	t.Run("empty reply fails", func(t *testing.T) {
		rt := &stubRuntime{reply: "  "}
		_, err := NewAgentTool(rt).Execute(ctx, task)
		assert.Error(t, err)
	})
}
