package tools

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// CertificateTool issues labor and income certificates.
type CertificateTool struct {
	now     func() time.Time
	baseURL string
}

// NewCertificateTool creates a certificate tool.
func NewCertificateTool() *CertificateTool {
	return &CertificateTool{now: time.Now, baseURL: "https://hr-portal.internal/certs"}
}

// Name returns the tool name.
func (t *CertificateTool) Name() string { return "generate_certificate" }

// Execute generates the certificate requested by the case.
func (t *CertificateTool) Execute(ctx context.Context, task Task) (Result, error) {
	if err := requireEmployee(t.Name(), task); err != nil {
		return Result{}, err
	}

	kind := "Laboral"
	if strings.Contains(strings.ToLower(task.Description), "ingreso") {
		kind = "Ingresos"
	}

	issued := t.now()
	text := formatSuccess("Generate Certificate", []detail{
		{"Employee", task.UserID},
		{"Type", kind},
		{"Generated", issued.Format("2006-01-02")},
		{"Valid until", issued.AddDate(0, 1, 0).Format("2006-01-02")},
		{"Download", fmt.Sprintf("%s/%s/%s.pdf", t.baseURL, task.UserID, task.CaseID)},
	}, fmt.Sprintf("Successfully generated %s certificate for employee %s.", kind, task.UserID))

	return Result{Text: text}, nil
}

// VacationTool reports vacation balances.
type VacationTool struct {
	totalDays int
	usedDays  int
}

// NewVacationTool creates a vacation balance tool.
func NewVacationTool() *VacationTool {
	return &VacationTool{totalDays: 15, usedDays: 5}
}

// Name returns the tool name.
func (t *VacationTool) Name() string { return "check_vacation_balance" }

// Execute reports the employee's vacation balance.
func (t *VacationTool) Execute(ctx context.Context, task Task) (Result, error) {
	if err := requireEmployee(t.Name(), task); err != nil {
		return Result{}, err
	}

	available := t.totalDays - t.usedDays
	text := formatSuccess("Check Vacation Balance", []detail{
		{"Employee", task.UserID},
		{"Total days", fmt.Sprint(t.totalDays)},
		{"Used days", fmt.Sprint(t.usedDays)},
		{"Available days", fmt.Sprint(available)},
		{"Accrual rate", "1.25 days/month"},
	}, fmt.Sprintf("Employee %s has %d vacation days available.", task.UserID, available))

	return Result{Text: text}, nil
}

// PayrollTool returns payroll summaries.
type PayrollTool struct {
	now func() time.Time
}

// NewPayrollTool creates a payroll tool.
func NewPayrollTool() *PayrollTool {
	return &PayrollTool{now: time.Now}
}

// Name returns the tool name.
func (t *PayrollTool) Name() string { return "get_payroll_details" }

// Execute returns the current period's payroll summary.
func (t *PayrollTool) Execute(ctx context.Context, task Task) (Result, error) {
	if err := requireEmployee(t.Name(), task); err != nil {
		return Result{}, err
	}

	now := t.now()
	payDate := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location())
	text := formatSuccess("Get Payroll Details", []detail{
		{"Employee", task.UserID},
		{"Period", now.Format("2006-01")},
		{"Gross pay", "$5,000.00"},
		{"Net pay", "$3,850.00"},
		{"Payment date", payDate.Format("2006-01-02")},
		{"Status", "Processed"},
	}, fmt.Sprintf("Retrieved payroll details for %s for period %s.", task.UserID, now.Format("2006-01")))

	return Result{Text: text}, nil
}
