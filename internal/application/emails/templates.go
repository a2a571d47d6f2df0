package emails

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "Mon, Jan 2 2006"

type InvitationData struct {
	FirstName  string
	TenantName string
	Role       string
	AcceptURL  string
	SSO        bool
}

// InvitationEmail renders the invitation subject and body. With SSO the
// invitee signs in through the identity provider, so there is no password step.
func InvitationEmail(d InvitationData) (string, string) {
	tenant := d.TenantName
	if tenant == "" {
		tenant = brandName
	}
	name := d.FirstName
	if name == "" {
		name = "there"
	}
	next := "Click the button below to set your password and activate your account:"
	button := "Accept Invitation"
	if d.SSO {
		next = "Click the button below and sign in with your company account to join:"
		button = "Join with SSO"
	}
	content := fmt.Sprintf(`
    <h1>You've Been Invited to Join %s</h1>
    <p>Hi %s,</p>
    <p>You have been invited to join <strong>%s</strong> on %s as a <strong>%s</strong>.</p>
    <p>%s</p>
    <center><a href="%s" class="shift-button">%s</a></center>
    <p style="margin-top:20px;font-size:14px;color:#666;">
      This invitation link expires in 7 days. If you were not expecting it, you can safely ignore this email.
    </p>
`, EscapeHTML(tenant), EscapeHTML(name), EscapeHTML(tenant), brandName, EscapeHTML(d.Role), next, EscapeHTML(d.AcceptURL), button)
	return "You have been invited to join " + tenant, EmailLayout(content)
}

type TimeOffRequestData struct {
	EmployeeName string
	StartDate    time.Time
	EndDate      time.Time
	Reason       *string
	PortalURL    string
}

// TimeOffRequestedEmail is sent to approvers when an employee asks for time off.
func TimeOffRequestedEmail(d TimeOffRequestData) (string, string) {
	reason := "No reason provided"
	if d.Reason != nil && strings.TrimSpace(*d.Reason) != "" {
		reason = *d.Reason
	}
	content := fmt.Sprintf(`
    <h1>Time Off Request Needs Approval</h1>
    <p>%s has requested time off.</p>
    <table class="details">
      <tr><td><strong>Employee</strong></td><td>%s</td></tr>
      <tr><td><strong>Period</strong></td><td>%s to %s</td></tr>
      <tr><td><strong>Total days</strong></td><td>%d</td></tr>
      <tr><td><strong>Reason</strong></td><td>%s</td></tr>
    </table>
    <center><a href="%s" class="shift-button">Review Request</a></center>
`, EscapeHTML(d.EmployeeName), EscapeHTML(d.EmployeeName),
		d.StartDate.Format(dateLayout), d.EndDate.Format(dateLayout), TotalDays(d.StartDate, d.EndDate),
		EscapeHTML(reason), EscapeHTML(d.PortalURL))
	return "Time Off Request Needs Approval", EmailLayout(content)
}

type TimeOffDecisionData struct {
	EmployeeName string
	ApproverName string
	StartDate    time.Time
	EndDate      time.Time
	DenialReason string
	PortalURL    string
}

func TimeOffApprovedEmail(d TimeOffDecisionData) (string, string) {
	content := fmt.Sprintf(`
    <h1>Your Time Off Request Has Been Approved</h1>
    <p>Hi %s,</p>
    <p>Your time off from <strong>%s</strong> to <strong>%s</strong> (%d days) was approved by %s.</p>
    <center><a href="%s" class="shift-button">View Schedule</a></center>
`, EscapeHTML(d.EmployeeName), d.StartDate.Format(dateLayout), d.EndDate.Format(dateLayout),
		TotalDays(d.StartDate, d.EndDate), EscapeHTML(d.ApproverName), EscapeHTML(d.PortalURL))
	return "Your Time Off Request Has Been Approved", EmailLayout(content)
}

func TimeOffDeniedEmail(d TimeOffDecisionData) (string, string) {
	reason := d.DenialReason
	if strings.TrimSpace(reason) == "" {
		reason = "No reason provided"
	}
	content := fmt.Sprintf(`
    <h1>Your Time Off Request Has Been Declined</h1>
    <p>Hi %s,</p>
    <p>Your time off from <strong>%s</strong> to <strong>%s</strong> was declined by %s.</p>
    <p><strong>Reason:</strong> %s</p>
    <center><a href="%s" class="shift-button">View Requests</a></center>
`, EscapeHTML(d.EmployeeName), d.StartDate.Format(dateLayout), d.EndDate.Format(dateLayout),
		EscapeHTML(d.ApproverName), EscapeHTML(reason), EscapeHTML(d.PortalURL))
	return "Your Time Off Request Has Been Declined", EmailLayout(content)
}

// TotalDays counts calendar days in [start, end], inclusive.
func TotalDays(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours()/24) + 1
}
