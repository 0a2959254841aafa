package tools

import (
	"context"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/capitalize-ai/hr-service-desk/internal/model"
)

// Policy is one entry of the employee handbook.
type Policy struct {
	Topic    string
	Keywords []string
	Text     string
}

// DefaultPolicies is the built-in handbook excerpt.
var DefaultPolicies = []Policy{
	{"Remote Work", []string{"remote work", "teletrabajo", "home office"}, "Employees are allowed to work remotely up to 3 days a week with manager approval."},
	{"Dress Code", []string{"dress code", "vestimenta"}, "Our dress code is business casual. Jeans are allowed on Fridays."},
	{"Code of Conduct", []string{"code of conduct", "conducta"}, "We expect all employees to treat each other with respect and dignity."},
	{"Expenses", []string{"expense", "gastos", "reembolso"}, "Expenses must be submitted within 30 days of the transaction with a valid receipt."},
	{"Maternity Leave", []string{"maternity", "maternidad"}, "Maternity leave is 16 weeks fully paid."},
	{"Paternity Leave", []string{"paternity", "paternidad"}, "Paternity leave is 8 weeks fully paid."},
}

// PolicyTool searches the handbook.
type PolicyTool struct {
	policies []Policy
}

// NewPolicyTool creates a policy search tool over DefaultPolicies.
func NewPolicyTool() *PolicyTool {
	return &PolicyTool{policies: DefaultPolicies}
}

// Name returns the tool name.
func (t *PolicyTool) Name() string { return "search_policies" }

// Search returns the policies whose keywords appear in query.
func (t *PolicyTool) Search(query string) []Policy {
	query = strings.ToLower(query)

	var found []Policy
	for _, p := range t.policies {
		for _, kw := range p.Keywords {
			if strings.Contains(query, kw) {
				found = append(found, p)
				break
			}
		}
	}
	return found
}

// Execute answers a policy question.
func (t *PolicyTool) Execute(ctx context.Context, task Task) (Result, error) {
	found := t.Search(task.Description)
	if len(found) == 0 {
		return Result{Text: "I couldn't find a specific policy matching your query. Please check the Employee Handbook portal or ask a more general question."}, nil
	}
	return Result{Text: renderPolicies(found)}, nil
}

func renderPolicies(policies []Policy) string {
	parts := make([]string, len(policies))
	for i, p := range policies {
		parts[i] = fmt.Sprintf("**Policy on %s:** %s", p.Topic, p.Text)
	}
	return strings.Join(parts, "\n\n")
}

// Ticket is an escalation opened for an employee.
type Ticket struct {
	ID       string
	UserID   string
	Category model.IntentType
	Status   string
	OpenedAt time.Time
}

// TicketTool escalates a request to a human HR representative and keeps the
// tickets it opened so their status can be checked.
type TicketTool struct {
	newID func() string
	now   func() time.Time

	mu      sync.Mutex
	tickets map[string]Ticket
}

// NewTicketTool creates a ticket tool.
func NewTicketTool() *TicketTool {
	return &TicketTool{
		newID: func() string {
			return fmt.Sprintf("HR-%d", 1000+rand.IntN(9000))
		},
		now:     time.Now,
		tickets: make(map[string]Ticket),
	}
}

// Name returns the tool name.
func (t *TicketTool) Name() string { return "create_ticket" }

// Execute opens an escalation ticket.
func (t *TicketTool) Execute(ctx context.Context, task Task) (Result, error) {
	if strings.TrimSpace(task.Description) == "" {
		return Result{}, Fail(t.Name(), "a description is required to open a ticket")
	}

	ticket := t.open(task)
	text := formatSuccess("Ticket "+ticket.ID, []detail{
		{"Category", string(task.Intent)},
		{"Priority", "Normal"},
		{"Description", task.Description},
	}, "A human HR representative will review this case and contact you shortly.")

	return Result{Text: text}, nil
}

// Lookup returns a ticket opened for userID.
func (t *TicketTool) Lookup(userID, ticketID string) (Ticket, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ticket, ok := t.tickets[strings.ToUpper(ticketID)]
	if !ok || ticket.UserID != userID {
		return Ticket{}, false
	}
	return ticket, true
}

func (t *TicketTool) open(task Task) Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.newID()
	for attempt := 0; attempt < 10; attempt++ {
		if _, taken := t.tickets[id]; !taken {
			break
		}
		id = t.newID()
	}

	ticket := Ticket{
		ID:       id,
		UserID:   task.UserID,
		Category: task.Intent,
		Status:   "Open",
		OpenedAt: t.now().UTC(),
	}
	t.tickets[id] = ticket
	return ticket
}

var ticketRef = regexp.MustCompile(`(?i)\bHR-\d{4}\b`)

// InquiryTool answers general inquiries from the handbook and escalates
// anything it cannot answer.
type InquiryTool struct {
	policies *PolicyTool
	tickets  *TicketTool
}

// NewInquiryTool creates a general inquiry tool.
func NewInquiryTool(policies *PolicyTool, tickets *TicketTool) *InquiryTool {
	return &InquiryTool{policies: policies, tickets: tickets}
}

// Name returns the tool name.
func (t *InquiryTool) Name() string { return "general_inquiry" }

// Execute reports on a referenced ticket, answers from policy or opens a
// ticket.
func (t *InquiryTool) Execute(ctx context.Context, task Task) (Result, error) {
	if ref := ticketRef.FindString(task.Description); ref != "" {
		return t.ticketStatus(task.UserID, strings.ToUpper(ref)), nil
	}
	if found := t.policies.Search(task.Description); len(found) > 0 {
		return Result{Text: renderPolicies(found)}, nil
	}
	return t.tickets.Execute(ctx, task)
}

func (t *InquiryTool) ticketStatus(userID, ticketID string) Result {
	ticket, ok := t.tickets.Lookup(userID, ticketID)
	if !ok {
		return Result{Text: fmt.Sprintf("I couldn't find ticket %s on your account. Check the number or ask me to open a new one.", ticketID)}
	}

	return Result{Text: formatSuccess("Ticket "+ticket.ID, []detail{
		{"Status", ticket.Status},
		{"Category", string(ticket.Category)},
		{"Opened", ticket.OpenedAt.Format("2006-01-02 15:04 UTC")},
	}, "")}
}
