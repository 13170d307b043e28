// Package receipt renders the PDF receipt attached to confirmation emails.
package receipt

import (
	"bytes"
	"fmt"
	"time"

	"airportride/internal/entities"
	"airportride/internal/utils"

	"github.com/phpdave11/gofpdf"
)

func safe(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Build renders a one-page receipt for a paid booking.
func Build(n entities.BookingNotice, issued time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Booking receipt", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BOOKING RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Reference : "+safe(n.Reference, "pending"))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Issued    : "+issued.Format("2006-01-02 15:04"))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Customer")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 12)
	for _, line := range []string{
		"Name   : " + safe(n.CustomerName, "-"),
		"Email  : " + safe(n.CustomerEmail, "-"),
		"Mobile : " + safe(n.CustomerPhone, "-"),
	} {
		pdf.Cell(0, 7, tr(line))
		pdf.Ln(7)
	}
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Journey")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, tr("From: "+safe(n.Pickup, "-")), "", "", false)
	pdf.MultiCell(0, 6, tr("To: "+safe(n.Dropoff, "-")), "", "", false)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Pickup: %s %s", n.PickupDate, n.PickupTime)))
	pdf.Ln(6)
	if n.TripType == entities.TripReturn {
		pdf.Cell(0, 6, tr(fmt.Sprintf("Return: %s %s", n.ReturnDate, n.ReturnTime)))
		pdf.Ln(6)
	}
	pdf.Cell(0, 6, tr("Vehicle: "+safe(n.VehicleName, "-")+" ("+utils.TripLabel(string(n.TripType))+")"))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Passengers: %d", n.Passengers))
	pdf.Ln(6)
	if n.FlightNumber != "" {
		pdf.Cell(0, 6, tr("Flight: "+n.FlightNumber))
		pdf.Ln(6)
	}
	if n.MeetAndGreet {
		pdf.Cell(0, 6, "Meet & greet included")
		pdf.Ln(6)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, tr("Total paid: "+utils.FormatFare(n.Amount, n.Currency)))
	pdf.Ln(10)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}
