package email

import (
	"fmt"
	"time"
)

// AppointmentEmailData contains the data needed for appointment email templates.
type AppointmentEmailData struct {
	FirstName        string
	Email            string
	PsychologistName string
	StudentName      string
	Date             time.Time
	Reason           string
	AppName          string
}

func (d AppointmentEmailData) appName() string {
	if d.AppName == "" {
		return "PsyConnect"
	}
	return d.AppName
}

func (d AppointmentEmailData) firstName() string {
	if d.FirstName == "" {
		return "there"
	}
	return d.FirstName
}

func (d AppointmentEmailData) when() string {
	return d.Date.Format("Monday, 2 January 2006 at 15:04 MST")
}

// BuildAppointmentBookedEmail creates the message sent to a psychologist when
// a student requests a session.
func BuildAppointmentBookedEmail(data AppointmentEmailData) Message {
	appName := data.appName()

	subject := fmt.Sprintf("New appointment request on %s", data.Date.Format("2 Jan 15:04"))

	textBody := fmt.Sprintf(`Hi %s,

%s has requested a session with you on %s.

The appointment is pending until you confirm it.

Thanks,
The %s Team`,
		data.firstName(), data.StudentName, data.when(), appName)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #2563eb;">Hi %s,</h2>
    <p><strong>%s</strong> has requested a session with you on:</p>
    <p style="background-color: #f3f4f6; padding: 10px 15px; border-radius: 4px; font-size: 16px;">%s</p>
    <p>The appointment is pending until you confirm it.</p>
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">Thanks,<br>The %s Team</p>
</body>
</html>`,
		data.firstName(), data.StudentName, data.when(), appName)

	return Message{
		To:       []string{data.Email},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}

// BuildAppointmentConfirmedEmail creates the message sent to a student when
// the psychologist confirms their session.
func BuildAppointmentConfirmedEmail(data AppointmentEmailData) Message {
	appName := data.appName()

	subject := fmt.Sprintf("Your appointment on %s is confirmed", data.Date.Format("2 Jan 15:04"))

	textBody := fmt.Sprintf(`Hi %s,

Your session with %s on %s is confirmed.

Thanks,
The %s Team`,
		data.firstName(), data.PsychologistName, data.when(), appName)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #16a34a;">Hi %s,</h2>
    <p>Your session with <strong>%s</strong> is confirmed:</p>
    <p style="background-color: #f3f4f6; padding: 10px 15px; border-radius: 4px; font-size: 16px;">%s</p>
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">Thanks,<br>The %s Team</p>
</body>
</html>`,
		data.firstName(), data.PsychologistName, data.when(), appName)

	return Message{
		To:       []string{data.Email},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}

// BuildAppointmentCancelledEmail creates the message sent to the other
// participant when a session is cancelled.
func BuildAppointmentCancelledEmail(data AppointmentEmailData) Message {
	appName := data.appName()

	subject := fmt.Sprintf("Appointment on %s was cancelled", data.Date.Format("2 Jan 15:04"))

	reasonLine := ""
	if data.Reason != "" {
		reasonLine = fmt.Sprintf("\nReason: %s\n", data.Reason)
	}

	textBody := fmt.Sprintf(`Hi %s,

The session scheduled for %s has been cancelled.
%s
You can book a new time whenever it suits you.

Thanks,
The %s Team`,
		data.firstName(), data.when(), reasonLine, appName)

	reasonHTML := ""
	if data.Reason != "" {
		reasonHTML = fmt.Sprintf(`<p style="color: #6b7280;">Reason: %s</p>`, data.Reason)
	}

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #dc2626;">Hi %s,</h2>
    <p>The session scheduled for:</p>
    <p style="background-color: #f3f4f6; padding: 10px 15px; border-radius: 4px; font-size: 16px;">%s</p>
    <p>has been cancelled.</p>
    %s
    <p>You can book a new time whenever it suits you.</p>
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">Thanks,<br>The %s Team</p>
</body>
</html>`,
		data.firstName(), data.when(), reasonHTML, appName)

	return Message{
		To:       []string{data.Email},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}
