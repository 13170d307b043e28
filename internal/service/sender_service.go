package service

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"time"

	"airportride/internal/entities"
	"airportride/internal/receipt"
	"airportride/internal/utils"
)

type messenger interface {
	SendEmailWithSendGrid(toEmailAddress, toName, subject, plainTextContent, htmlContent string, attachments ...Attachment) error
	SendSMS(toNumber, messageBody string) error
}

// SenderService turns booking events into customer emails, SMS and operator alerts.
// Every send runs in the background and only logs failures.
type SenderService struct {
	messenger messenger
	tmpl      *template.Template
	opsEmail  string
	now       func() time.Time
	async     func(func())
}

func NewSenderService(m messenger, tmpl *template.Template, opsEmail string) *SenderService {
	return &SenderService{
		messenger: m,
		tmpl:      tmpl,
		opsEmail:  opsEmail,
		now:       time.Now,
		async:     func(f func()) { go f() },
	}
}

func formatSchedule(date, clock string) string {
	if date == "" {
		return ""
	}
	t, err := time.Parse("2006-01-02 15:04", date+" "+clock)
	if err != nil {
		return date + " " + clock
	}
	return t.Format("Mon 02 Jan 2006 15:04")
}

func (s *SenderService) emailData(n entities.BookingNotice, status string) entities.BookingEmailData {
	data := entities.BookingEmailData{
		CustomerName:    n.CustomerName,
		BookingCode:     n.Reference,
		VehicleName:     n.VehicleName,
		Pickup:          n.Pickup,
		Dropoff:         n.Dropoff,
		TripLabel:       utils.TripLabel(string(n.TripType)),
		PickupFormatted: formatSchedule(n.PickupDate, n.PickupTime),
		FlightNumber:    n.FlightNumber,
		MeetAndGreet:    n.MeetAndGreet,
		TotalFormatted:  utils.FormatFare(n.Amount, n.Currency),
		Status:          status,
		CurrentYear:     s.now().Year(),
	}
	if n.TripType == entities.TripReturn {
		data.ReturnFormatted = formatSchedule(n.ReturnDate, n.ReturnTime)
	}
	return data
}

func (s *SenderService) render(data entities.BookingEmailData) string {
	if s.tmpl == nil {
		return ""
	}
	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		log.Printf("[NOTIFY] email template failed for %s: %v", data.BookingCode, err)
		return ""
	}
	return buf.String()
}

func plainBody(d entities.BookingEmailData) string {
	body := fmt.Sprintf("Hello %s,\n\nYour airport transfer is %s.\n\n", d.CustomerName, d.Status)
	if d.BookingCode != "" {
		body += "Reference: " + d.BookingCode + "\n"
	}
	body += fmt.Sprintf("From: %s\nTo: %s\nPickup: %s\n", d.Pickup, d.Dropoff, d.PickupFormatted)
	if d.ReturnFormatted != "" {
		body += "Return: " + d.ReturnFormatted + "\n"
	}
	body += fmt.Sprintf("Vehicle: %s (%s)\nTotal: %s\n\nThank you for booking with Airport Ride.", d.VehicleName, d.TripLabel, d.TotalFormatted)
	return body
}

func (s *SenderService) BookingConfirmed(n entities.BookingNotice) {
	data := s.emailData(n, "confirmed")
	subject := fmt.Sprintf("Your airport transfer is confirmed - Ref: %s", n.Reference)
	html := s.render(data)
	plain := plainBody(data)

	var attachments []Attachment
	if pdf, err := receipt.Build(n, s.now()); err != nil {
		log.Printf("[NOTIFY] receipt for %s failed: %v", n.Reference, err)
	} else {
		attachments = append(attachments, Attachment{
			Filename:    fmt.Sprintf("receipt-%s.pdf", n.Reference),
			ContentType: "application/pdf",
			Content:     pdf,
		})
	}

	s.async(func() {
		if err := s.messenger.SendEmailWithSendGrid(n.CustomerEmail, n.CustomerName, subject, plain, html, attachments...); err != nil {
			log.Printf("[NOTIFY] confirmation email for %s failed: %v", n.Reference, err)
		}
		if n.CustomerPhone == "" {
			return
		}
		sms := fmt.Sprintf("Airport Ride: booking %s confirmed. Pickup %s. Details in your email.", n.Reference, data.PickupFormatted)
		if err := s.messenger.SendSMS(n.CustomerPhone, sms); err != nil {
			log.Printf("[NOTIFY] confirmation SMS for %s failed: %v", n.Reference, err)
		}
	})
}

func (s *SenderService) BookingPending(n entities.BookingNotice) {
	data := s.emailData(n, "paid and awaiting confirmation")
	subject := "We have received your payment"
	html := s.render(data)
	plain := plainBody(data)

	s.async(func() {
		if err := s.messenger.SendEmailWithSendGrid(n.CustomerEmail, n.CustomerName, subject, plain, html); err != nil {
			log.Printf("[NOTIFY] pending email to %s failed: %v", n.CustomerEmail, err)
		}
	})
}

func (s *SenderService) BookingRefunded(n entities.BookingNotice) {
	data := s.emailData(n, "cancelled and refunded")
	subject := "Your airport transfer could not be booked"
	plain := fmt.Sprintf("Hello %s,\n\nWe could not confirm your transfer from %s to %s. Your payment of %s has been refunded.\n\nWe are sorry for the inconvenience.",
		n.CustomerName, n.Pickup, n.Dropoff, data.TotalFormatted)
	html := s.render(data)

	s.async(func() {
		if err := s.messenger.SendEmailWithSendGrid(n.CustomerEmail, n.CustomerName, subject, plain, html); err != nil {
			log.Printf("[NOTIFY] refund email to %s failed: %v", n.CustomerEmail, err)
		}
	})
}

func (s *SenderService) OpsAlert(subject, body string) {
	log.Printf("[NOTIFY] ALERT %s: %s", subject, body)
	if s.opsEmail == "" {
		return
	}
	s.async(func() {
		if err := s.messenger.SendEmailWithSendGrid(s.opsEmail, "Operations", "[Airport Ride] "+subject, body, ""); err != nil {
			log.Printf("[NOTIFY] ops alert email failed: %v", err)
		}
	})
}
