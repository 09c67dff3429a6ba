package leave

import (
	"fmt"
	"strings"

	"github.com/frahmantamala/leave-request/internal/notification"
)

func submittedMessage(app *LeaveApplication, recipients []string) notification.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "A new leave application was submitted.\n\n")
	fmt.Fprintf(&b, "Application: #%d\n", app.ID)
	fmt.Fprintf(&b, "Employee:    %s <%s>\n", app.Name, app.Email)
	fmt.Fprintf(&b, "Days:        %s\n", app.LeaveDays)
	fmt.Fprintf(&b, "Period:      %s\n", app.LeavePeriod)
	if app.Reason != "" {
		fmt.Fprintf(&b, "Reason:      %s\n", app.Reason)
	}
	fmt.Fprintf(&b, "Status:      %s\n", app.Status)

	return notification.Message{
		To:      recipients,
		Subject: fmt.Sprintf("New leave application: %s", app.Name),
		Text:    b.String(),
	}
}

func decisionMessage(app *LeaveApplication) notification.Message {
	return notification.Message{
		To:      []string{app.Email},
		Subject: fmt.Sprintf("Your leave application #%d was %s", app.ID, app.Status),
		Text: fmt.Sprintf("Hello %s,\n\nyour leave application for %s (%s days) was %s.\n",
			app.Name, app.LeavePeriod, app.LeaveDays, app.Status),
	}
}

func eventSummary(app *LeaveApplication) string {
	return fmt.Sprintf("Leave: %s (%s days)", app.Name, app.LeaveDays)
}
