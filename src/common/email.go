package common

import (
	"admitgate/src/lib"
	"admitgate/src/models"
	"bytes"
	"fmt"
	"html/template"
	"time"
)

var ticketMailTemplate = template.Must(template.New("ticket").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>Your Event Ticket - {{.Ticket.EventTitle}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #f97316; color: white; padding: 20px; border-radius: 8px; text-align: center; }
        .ticket { background: #f8f9fa; border: 2px dashed #dee2e6; padding: 20px; margin: 20px 0; border-radius: 8px; }
        .qr-section { text-align: center; background: white; padding: 20px; border-radius: 8px; margin: 20px 0; }
        .payload { font-family: monospace; background: #f1f3f4; padding: 10px; border-radius: 4px; word-break: break-all; font-size: 12px; }
        .warning { background: #fff3cd; border: 1px solid #ffeaa7; padding: 15px; border-radius: 8px; margin: 20px 0; }
        .footer { text-align: center; color: #666; font-size: 12px; margin-top: 30px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Your Event Ticket</h1>
            <p>{{.Ticket.EventTitle}}</p>
        </div>
        <div class="ticket">
            <h2>Event Details</h2>
            <p><strong>Event:</strong> {{.Ticket.EventTitle}}</p>
            <p><strong>Date:</strong> {{.Ticket.EventDate}}</p>
            {{- if .Ticket.EventTime}}
            <p><strong>Time:</strong> {{.Ticket.EventTime}}</p>
            {{- end}}
            {{- if .Ticket.EventLocation}}
            <p><strong>Location:</strong> {{.Ticket.EventLocation}}</p>
            {{- end}}
            <p><strong>Tickets:</strong> {{.Ticket.TicketQuantity}}</p>
            <p><strong>Booking ID:</strong> {{.Ticket.BookingID}}</p>
        </div>
        <div class="qr-section">
            <h2>Your Secure QR Code</h2>
            <p><strong>Ticket ID:</strong> {{.Ticket.ID}}</p>
            {{- if .Image}}
            <img src="{{.Image}}" alt="Ticket QR code" width="240" height="240">
            {{- end}}
            <div class="payload">{{.Payload}}</div>
            <p><em>Present this QR code at the event entrance</em></p>
        </div>
        <div class="warning">
            <h3>Important Security Information</h3>
            <ul>
                <li>This QR code is unique to you and cannot be transferred</li>
                <li>Do not share this QR code with anyone</li>
                <li>The QR code is linked to your email: {{.Ticket.UserEmail}}</li>
                <li>The QR code can only be scanned once, after which it becomes invalid</li>
                <li>The QR code is only valid on {{.Ticket.EventDate}}</li>
                <li>Valid until: {{.ValidUntil}}</li>
            </ul>
        </div>
        <div class="footer">
            <p>This email was sent automatically on the day of your event.</p>
        </div>
    </div>
</body>
</html>
`))

type ticketMailData struct {
	Ticket     *models.Ticket
	Payload    string
	Image      template.URL
	ValidUntil string
}

// RenderTicketMail builds the subject and html body for a ticket delivery.
// The QR image is embedded as a data URI.
func RenderTicketMail(ticket *models.Ticket, payload string, loc *time.Location) (string, string, error) {
	img, err := lib.QRCodeDataURI(payload)
	if err != nil {
		return "", "", fmt.Errorf("error rendering QR code for Ticket [%s]: %w", ticket.ID, err)
	}
	data := ticketMailData{
		Ticket:     ticket,
		Payload:    payload,
		Image:      template.URL(img),
		ValidUntil: ticket.ValidUntil.In(loc).Format("Monday, January 2, 2006 15:04"),
	}
	var buf bytes.Buffer
	if err := ticketMailTemplate.Execute(&buf, &data); err != nil {
		return "", "", err
	}
	subject := fmt.Sprintf("Your ticket for %s", ticket.EventTitle)
	return subject, buf.String(), nil
}
