// Package templates embeds the customer email templates.
package templates

import (
	"embed"
	"html/template"
)

//go:embed *.html
var files embed.FS

// BookingEmail parses the booking status email.
func BookingEmail() (*template.Template, error) {
	return template.ParseFS(files, "booking_email.html")
}
