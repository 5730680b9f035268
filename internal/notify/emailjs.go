package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"traffic-care-service/internal/model"
)

const userAgent = "TrafficCare-Go/1.0"

// CredentialsFunc returns the delivery credentials current at send time.
type CredentialsFunc func() model.EmailConfig

type EmailJS struct {
	endpoint    string
	fromName    string
	client      *http.Client
	credentials CredentialsFunc
	loc         *time.Location
}

func NewEmailJS(endpoint, fromName string, timeout time.Duration, credentials CredentialsFunc) *EmailJS {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &EmailJS{
		endpoint:    endpoint,
		fromName:    fromName,
		client:      &http.Client{Timeout: timeout},
		credentials: credentials,
	}
}

// WithLocation renders report timestamps in loc instead of the time's own zone.
func (e *EmailJS) WithLocation(loc *time.Location) *EmailJS {
	e.loc = loc
	return e
}

type emailJSRequest struct {
	ServiceID      string         `json:"service_id"`
	TemplateID     string         `json:"template_id"`
	UserID         string         `json:"user_id"`
	TemplateParams templateParams `json:"template_params"`
}

type templateParams struct {
	ToEmail       string `json:"to_email"`
	LicensePlate  string `json:"license_plate"`
	DateTime      string `json:"date_time"`
	UserName      string `json:"user_name"`
	StatusMessage string `json:"status_message"`
	FromName      string `json:"from_name"`
	EmailTitle    string `json:"email_title"`
}

func (e *EmailJS) Send(ctx context.Context, msg Message) error {
	if e == nil || e.credentials == nil {
		return ErrNotConfigured
	}
	creds := e.credentials()
	if !creds.Configured() {
		return ErrNotConfigured
	}

	now := msg.Now
	if now.IsZero() {
		now = time.Now()
	}
	if e.loc != nil {
		now = now.In(e.loc)
	}

	body, err := json.Marshal(emailJSRequest{
		ServiceID:  strings.TrimSpace(creds.ServiceID),
		TemplateID: strings.TrimSpace(creds.TemplateID),
		UserID:     strings.TrimSpace(creds.PublicKey),
		TemplateParams: templateParams{
			ToEmail:       msg.To,
			LicensePlate:  msg.Plate,
			DateTime:      FormatDateTime(now),
			UserName:      UserName(msg.To),
			StatusMessage: StatusLine(msg.Pending),
			FromName:      e.fromName,
			EmailTitle:    Subject(msg.Plate, now),
		},
	})
	if err != nil {
		return fmt.Errorf("encode emailjs request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build emailjs request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("send emailjs request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("emailjs returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
