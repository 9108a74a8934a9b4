package mailer

import (
	"fmt"
	"html"
	"strings"

	"github.com/skypark/bookings/internal/domain"
)

// BookingConfirmation builds the email sent once a booking is paid or
// confirmed. The voucher is attached when given.
func BookingConfirmation(b *domain.Booking, manageURL string, voucherPDF []byte) Message {
	subject := fmt.Sprintf("Your SkyPark booking %s is confirmed", b.Ref)

	when := b.VisitDate
	if b.VisitTime == domain.TimeFlexible {
		when += " (any time during opening hours)"
	} else if b.VisitTime != "" {
		when += " at " + b.VisitTime
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Hi %s,\n\n", b.Customer.Name)
	fmt.Fprintf(&text, "Thanks for booking %s.\n\n", b.PackageName)
	fmt.Fprintf(&text, "Reference: %s\n", b.Ref)
	fmt.Fprintf(&text, "When: %s\n", when)
	fmt.Fprintf(&text, "Guests: %d\n", b.Guests)
	if b.Pickup {
		fmt.Fprintf(&text, "Pickup: %s %s\n", b.Hotel, b.Room)
	}
	fmt.Fprintf(&text, "Total paid: %d THB\n", b.Total)
	if manageURL != "" {
		fmt.Fprintf(&text, "\nView your booking: %s\n", manageURL)
	}

	var body strings.Builder
	fmt.Fprintf(&body, "<p>Hi %s,</p>", html.EscapeString(b.Customer.Name))
	fmt.Fprintf(&body, "<p>Thanks for booking <b>%s</b>.</p><ul>", html.EscapeString(b.PackageName))
	fmt.Fprintf(&body, "<li>Reference: <b>%s</b></li>", html.EscapeString(b.Ref))
	fmt.Fprintf(&body, "<li>When: %s</li>", html.EscapeString(when))
	fmt.Fprintf(&body, "<li>Guests: %d</li>", b.Guests)
	if b.Pickup {
		fmt.Fprintf(&body, "<li>Pickup: %s %s</li>", html.EscapeString(b.Hotel), html.EscapeString(b.Room))
	}
	fmt.Fprintf(&body, "<li>Total paid: %d THB</li></ul>", b.Total)
	if manageURL != "" {
		fmt.Fprintf(&body, `<p><a href="%s">View your booking</a></p>`, html.EscapeString(manageURL))
	}

	msg := Message{
		ToEmail: b.Customer.Email,
		ToName:  b.Customer.Name,
		Subject: subject,
		Text:    text.String(),
		HTML:    body.String(),
	}
	if len(voucherPDF) > 0 {
		msg.Attachments = []Attachment{{Filename: "voucher-" + b.Ref + ".pdf", Content: voucherPDF}}
	}
	return msg
}
