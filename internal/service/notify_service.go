package service

import (
	"encoding/base64"
	"fmt"
	"log"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

type NotifyConfig struct {
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioFromNumber  string
}

type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Messenger delivers email through SendGrid and SMS through Twilio.
type Messenger struct {
	cfg NotifyConfig
}

func NewMessenger(cfg NotifyConfig) *Messenger {
	return &Messenger{cfg: cfg}
}

func (m *Messenger) SendEmailWithSendGrid(toEmailAddress, toName, subject, plainTextContent, htmlContent string, attachments ...Attachment) error {
	if m.cfg.SendGridAPIKey == "" || m.cfg.SendGridFromEmail == "" {
		log.Printf("[NOTIFY] SendGrid is not configured, email to %s not sent", toEmailAddress)
		return fmt.Errorf("sendgrid is not configured")
	}

	from := mail.NewEmail(m.cfg.SendGridFromName, m.cfg.SendGridFromEmail)
	to := mail.NewEmail(toName, toEmailAddress)
	message := mail.NewSingleEmail(from, subject, to, plainTextContent, htmlContent)

	for _, a := range attachments {
		att := mail.NewAttachment()
		att.SetContent(base64.StdEncoding.EncodeToString(a.Content))
		att.SetType(a.ContentType)
		att.SetFilename(a.Filename)
		att.SetDisposition("attachment")
		message.AddAttachment(att)
	}

	client := sendgrid.NewSendClient(m.cfg.SendGridAPIKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid send to %s: %w", toEmailAddress, err)
	}
	if response.StatusCode >= 200 && response.StatusCode < 300 {
		log.Printf("[NOTIFY] email sent to=%s subject=%q status=%d", toEmailAddress, subject, response.StatusCode)
		return nil
	}
	return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
}

func (m *Messenger) SendSMS(toNumber, messageBody string) error {
	if m.cfg.TwilioAccountSID == "" || m.cfg.TwilioAuthToken == "" || m.cfg.TwilioFromNumber == "" {
		log.Printf("[NOTIFY] Twilio is not configured, SMS to %s not sent", toNumber)
		return fmt.Errorf("twilio is not configured")
	}
	if !strings.HasPrefix(toNumber, "+") {
		log.Printf("[NOTIFY] number %q is not E.164, SMS may fail", toNumber)
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username:   m.cfg.TwilioAccountSID,
		Password:   m.cfg.TwilioAuthToken,
		AccountSid: m.cfg.TwilioAccountSID,
	})

	params := &openapi.CreateMessageParams{}
	params.SetTo(toNumber)
	params.SetFrom(m.cfg.TwilioFromNumber)
	params.SetBody(messageBody)

	resp, err := client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio send to %s: %w", toNumber, err)
	}
	if resp != nil && resp.Sid != nil {
		log.Printf("[NOTIFY] sms sent to=%s sid=%s", toNumber, *resp.Sid)
	}
	return nil
}
