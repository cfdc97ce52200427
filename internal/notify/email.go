// Package notify builds passenger emails and hands them to a delivery
// channel. Delivery itself happens in a separate consumer of the broker queue.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"html/template"
	"regexp"
	"strings"
	"time"

	"github.com/Victoradukwu/FlightsHub/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Kind string

const (
	KindTicket       Kind = "ticket"
	KindReminder     Kind = "payment_reminder"
	KindCancellation Kind = "cancellation"
)

// Email is the message published to the notification queue.
type Email struct {
	To            string    `json:"to"`
	Subject       string    `json:"subject"`
	HTML          string    `json:"html"`
	Text          string    `json:"text"`
	Kind          Kind      `json:"kind"`
	ReservationID uuid.UUID `json:"reservation_id"`
}

// Notifier delivers an email or reports why it could not.
type Notifier interface {
	Send(ctx context.Context, email Email) error
}

var (
	ticketTmpl = template.Must(template.New("ticket").Parse(`<html>
<body>
Hi {{.PassengerName}},
<p>Please find below, the details of your flight ticket.</p>
<p>
Passenger name: {{.PassengerName}}<br/>
Ticket number: {{.TicketNumber}}<br/>
Flight number: {{.FlightNumber}}<br/>
Departure date: {{.Date}}<br/>
Departure time: {{.Time}} hours<br/>
Carrier: {{.AirlineName}}<br/>
Booking reference: {{.BookingReference}}<br/>
Seat number: {{.SeatNumber}}<br/>
Travelling from: {{.DeparturePort}}<br/>
Travelling to: {{.DestinationPort}}
</p>
<p>For more information, contact {{.AirlinePhone}}</p>
Thank you,
<br>
FlightsHub Team
</body>
</html>`))

	reminderTmpl = template.Must(template.New("reminder").Parse(
		`Dear {{.PassengerName}},<br><br>` +
			`Your reservation for flight {{.FlightNumber}} on {{.DateTime}} is pending payment. ` +
			`Please complete payment before {{.Deadline}} to avoid cancellation.<br><br>Thank you.`))

	cancellationTmpl = template.Must(template.New("cancellation").Parse(
		`Dear {{.PassengerName}},<br><br>` +
			`Your reservation for flight {{.FlightNumber}} on {{.DateTime}} has been canceled. ` +
			`This is because the flight takes off in 30 minutes, and you have not effected your payment yet. ` +
			`Kindly rebook and pay immediately, if you are still interested.<br><br>Thank you.`))
)

// DisplayLayout formats dates shown to passengers.
const DisplayLayout = "2006-01-02 15:04"

type emailData struct {
	PassengerName    string
	TicketNumber     string
	FlightNumber     string
	Date             string
	Time             string
	DateTime         string
	Deadline         string
	AirlineName      string
	AirlinePhone     string
	BookingReference string
	SeatNumber       string
	DeparturePort    string
	DestinationPort  string
}

func newEmailData(v models.ReservationView) emailData {
	d := emailData{
		PassengerName:    v.PassengerName,
		FlightNumber:     v.FlightNumber,
		Date:             v.DateTime.UTC().Format("2006-01-02"),
		Time:             v.DateTime.UTC().Format("15:04"),
		DateTime:         v.DateTime.UTC().Format(DisplayLayout),
		AirlineName:      v.AirlineName,
		AirlinePhone:     v.AirlinePhone,
		BookingReference: v.BookingReference,
		SeatNumber:       v.SeatNumber,
		DeparturePort:    v.DeparturePort,
		DestinationPort:  v.DestinationPort,
	}
	if v.TicketNumber != nil {
		d.TicketNumber = *v.TicketNumber
	}
	return d
}

func render(t *template.Template, v models.ReservationView, kind Kind, subject string, data emailData) (Email, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return Email{}, fmt.Errorf("failed to render %s email: %w", kind, err)
	}
	body := buf.String()
	return Email{
		To:            v.Email,
		Subject:       subject,
		HTML:          body,
		Text:          plainText(body),
		Kind:          kind,
		ReservationID: v.ID,
	}, nil
}

func TicketEmail(v models.ReservationView) (Email, error) {
	return render(ticketTmpl, v, KindTicket, "Flight Ticket", newEmailData(v))
}

func ReminderEmail(v models.ReservationView, deadline time.Time) (Email, error) {
	data := newEmailData(v)
	data.Deadline = deadline.UTC().Format(DisplayLayout)
	return render(reminderTmpl, v, KindReminder, "Payment Reminder: Complete Your Booking", data)
}

func CancellationEmail(v models.ReservationView) (Email, error) {
	return render(cancellationTmpl, v, KindCancellation, "Reservation Cancelled", newEmailData(v))
}

var (
	breakTag  = regexp.MustCompile(`(?i)<br\s*/?>|</p>`)
	anyTag    = regexp.MustCompile(`<[^>]*>`)
	blankRuns = regexp.MustCompile(`\n\s*\n\s*\n+`)
)

func plainText(body string) string {
	s := breakTag.ReplaceAllString(body, "\n")
	s = anyTag.ReplaceAllString(s, "")
	s = html.UnescapeString(s)

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	s = blankRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// LogNotifier writes emails to the log instead of delivering them. Used when
// no broker is configured.
type LogNotifier struct {
	Log logrus.FieldLogger
}

func (n LogNotifier) Send(_ context.Context, email Email) error {
	n.Log.WithFields(logrus.Fields{
		"to":             email.To,
		"subject":        email.Subject,
		"kind":           email.Kind,
		"reservation_id": email.ReservationID,
	}).Info("email notification")
	return nil
}
