package notification

import (
	"regexp"
	"strings"
)

// Template kinds mirror the lifecycle events that produce mail.
const (
	KindLoanApplication = "loan_application"
	KindLoanApproved    = "loan_approved"
	KindLoanRejected    = "loan_rejected"
	KindLoanDisbursed   = "loan_disbursed"
	KindPaymentDue      = "payment_due"
	KindPaymentOverdue  = "payment_overdue"
	KindPaymentReceived = "payment_received"
)

type Template struct {
	Kind    string
	Subject string
	Body    string
}

var variablePattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_.]+)\s*\}\}`)

// Render substitutes {{ var }} tokens in a template string. Unknown variables
// render as empty strings; rendering never fails.
func Render(tpl string, vars map[string]string) string {
	return variablePattern.ReplaceAllStringFunc(tpl, func(match string) string {
		name := strings.TrimSpace(strings.Trim(match, "{}"))
		return vars[name]
	})
}

// RenderTemplate produces the subject and HTML body for a template kind. The
// fallback template is used for kinds without a registered template.
func RenderTemplate(kind string, vars map[string]string) (subject, body string) {
	tpl, ok := builtinTemplates[kind]
	if !ok {
		tpl = fallbackTemplate
	}
	return Render(tpl.Subject, vars), Render(tpl.Body, vars)
}

var fallbackTemplate = Template{
	Subject: "QuickFund Notification",
	Body:    `<p>Hello {{ first_name }},</p><p>There is an update on your QuickFund account.</p>`,
}

var builtinTemplates = map[string]Template{
	KindLoanApplication: {
		Kind:    KindLoanApplication,
		Subject: "We received your loan application {{ loan.id }}",
		Body: `<p>Hello {{ first_name }},</p>
<p>Your application <strong>{{ loan.id }}</strong> for &#8358;{{ principal_amount }} has been received and is pending review.</p>
<p>We will notify you as soon as a decision is made.</p>`,
	},
	KindLoanApproved: {
		Kind:    KindLoanApproved,
		Subject: "Your loan application {{ loan.id }} was approved",
		Body: `<p>Hello {{ first_name }},</p>
<p>Good news! Application <strong>{{ loan.id }}</strong> was approved for &#8358;{{ principal_amount }}.</p>
<p>Funds will be disbursed to your registered bank account shortly.</p>`,
	},
	KindLoanRejected: {
		Kind:    KindLoanRejected,
		Subject: "Update on your loan application {{ loan.id }}",
		Body: `<p>Hello {{ first_name }},</p>
<p>We are unable to approve application <strong>{{ loan.id }}</strong> at this time.</p>
<p>You may reapply after 30 days.</p>`,
	},
	KindLoanDisbursed: {
		Kind:    KindLoanDisbursed,
		Subject: "Loan {{ loan.id }} has been disbursed",
		Body: `<p>Hello {{ first_name }},</p>
<p>Loan <strong>{{ loan.id }}</strong> of &#8358;{{ principal_amount }} has been disbursed.</p>
<p>Your first payment of &#8358;{{ amount_due }} is due on {{ due_date }}.</p>`,
	},
	KindPaymentDue: {
		Kind:    KindPaymentDue,
		Subject: "Payment reminder for loan {{ loan.id }}",
		Body: `<p>Hello {{ first_name }},</p>
<p>Your payment of &#8358;{{ amount_due }} on loan <strong>{{ loan.id }}</strong> is due on {{ due_date }} ({{ days_until_due }} day(s) from now).</p>
<p>Principal: &#8358;{{ principal_amount }} &middot; Interest: &#8358;{{ interest_amount }}</p>`,
	},
	KindPaymentOverdue: {
		Kind:    KindPaymentOverdue,
		Subject: "Overdue payment on loan {{ loan.id }}",
		Body: `<p>Hello {{ first_name }},</p>
<p>Your payment of &#8358;{{ amount_due }} on loan <strong>{{ loan.id }}</strong> was due on {{ due_date }} and is now overdue.</p>
<p>A late fee of &#8358;{{ late_fee }} has been applied. Please pay as soon as possible to avoid further charges.</p>`,
	},
	KindPaymentReceived: {
		Kind:    KindPaymentReceived,
		Subject: "Payment received on loan {{ loan.id }}",
		Body: `<p>Hello {{ first_name }},</p>
<p>We received your payment of &#8358;{{ amount_due }} on loan <strong>{{ loan.id }}</strong>. Thank you!</p>`,
	},
}
