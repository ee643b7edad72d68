package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"optimarket/config"
)

// EmailSender delivers one email. Implementations are best effort; the
// caller logs failures and moves on.
type EmailSender interface {
	SendEmail(to, subject, body string) error
}

// WhatsAppSender delivers one WhatsApp message.
type WhatsAppSender interface {
	SendWhatsApp(toPhone, body string) error
}

// ResendEmailSender posts to a Resend-style email API.
type ResendEmailSender struct {
	APIURL     string
	APIKey     string
	From       string
	HTTPClient *http.Client
}

func NewEmailSender(cfg *config.Config) *ResendEmailSender {
	return &ResendEmailSender{
		APIURL:     cfg.EmailAPIURL,
		APIKey:     cfg.EmailAPIKey,
		From:       cfg.EmailFrom,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *ResendEmailSender) SendEmail(to, subject, body string) error {
	payload, err := json.Marshal(map[string]any{
		"from":    s.From,
		"to":      []string{to},
		"subject": subject,
		"text":    body,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, s.APIURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.APIKey)

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("email API returned status %d", resp.StatusCode)
	}
	return nil
}

// TwilioWhatsAppSender posts to a Twilio-style messaging API.
type TwilioWhatsAppSender struct {
	APIURL     string
	APIKey     string
	FromPhone  string
	HTTPClient *http.Client
}

func NewWhatsAppSender(cfg *config.Config) *TwilioWhatsAppSender {
	return &TwilioWhatsAppSender{
		APIURL:     cfg.WhatsAppAPIURL,
		APIKey:     cfg.WhatsAppAPIKey,
		FromPhone:  cfg.WhatsAppFromPhone,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *TwilioWhatsAppSender) SendWhatsApp(toPhone, body string) error {
	form := url.Values{}
	form.Set("From", "whatsapp:"+s.FromPhone)
	form.Set("To", "whatsapp:"+toPhone)
	form.Set("Body", body)

	req, err := http.NewRequest(http.MethodPost, s.APIURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+s.APIKey)

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("whatsapp API returned status %d", resp.StatusCode)
	}
	return nil
}
