package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Mrwire/geniusad-sub002/internal/submissions"
)

const defaultBrevoEndpoint = "https://api.brevo.com/v3/smtp/email"

// BrevoClient sends transactional e-mail through the Brevo HTTP API.
type BrevoClient struct {
	apiKey      string
	senderEmail string
	senderName  string
	notifyEmail string
	sandbox     bool
	endpoint    string
	httpClient  *http.Client
}

// NewBrevoClient returns nil when the API key or sender is missing; callers treat a nil
// notifier as "mail disabled".
func NewBrevoClient(apiKey, senderEmail, senderName, notifyEmail string, sandbox bool) *BrevoClient {
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(senderEmail) == "" {
		return nil
	}
	if strings.TrimSpace(senderName) == "" {
		senderName = senderEmail
	}
	if strings.TrimSpace(notifyEmail) == "" {
		notifyEmail = senderEmail
	}
	return &BrevoClient{
		apiKey:      apiKey,
		senderEmail: senderEmail,
		senderName:  senderName,
		notifyEmail: notifyEmail,
		sandbox:     sandbox,
		endpoint:    defaultBrevoEndpoint,
		httpClient:  &http.Client{Timeout: 8 * time.Second},
	}
}

// SendSubmissionNotification tells the team about a new form submission. Replies go to the
// submitter when an e-mail was given.
func (c *BrevoClient) SendSubmissionNotification(ctx context.Context, sub submissions.Submission) (string, error) {
	if c == nil {
		return "", errors.New("brevo client is nil")
	}
	htmlBody, err := buildSubmissionNotificationHTML(sub)
	if err != nil {
		return "", err
	}
	msg := message{
		to:      brevoRecipient{Email: c.notifyEmail, Name: c.senderName},
		subject: fmt.Sprintf("Nouvelle demande - %s", formTitle(sub)),
		html:    htmlBody,
		tags:    submissionTags(sub),
	}
	if sub.Email != "" {
		msg.replyTo = &brevoRecipient{Email: sub.Email, Name: sub.Name}
	}
	return c.send(ctx, msg)
}

// SendSubmissionConfirmation acknowledges receipt to the person who filled the form.
func (c *BrevoClient) SendSubmissionConfirmation(ctx context.Context, sub submissions.Submission) (string, error) {
	if c == nil {
		return "", errors.New("brevo client is nil")
	}
	htmlBody, err := buildSubmissionConfirmationHTML(sub)
	if err != nil {
		return "", err
	}
	return c.send(ctx, message{
		to:      brevoRecipient{Email: sub.Email, Name: sub.Name},
		subject: confirmationSubject(sub.Locale),
		html:    htmlBody,
		tags:    submissionTags(sub),
	})
}

type message struct {
	to      brevoRecipient
	replyTo *brevoRecipient
	subject string
	html    string
	tags    []string
}

func submissionTags(sub submissions.Submission) []string {
	tags := []string{"form:" + sub.FormID}
	if sub.Subsidiary != "" {
		tags = append(tags, "subsidiary:"+sub.Subsidiary)
	}
	return tags
}

func (c *BrevoClient) send(ctx context.Context, msg message) (string, error) {
	switch {
	case strings.TrimSpace(msg.to.Email) == "":
		return "", errors.New("missing recipient email")
	case strings.TrimSpace(msg.subject) == "":
		return "", errors.New("missing subject")
	case strings.TrimSpace(msg.html) == "":
		return "", errors.New("missing html body")
	}

	payload := brevoSendRequest{
		Sender:      brevoSender{Name: c.senderName, Email: c.senderEmail},
		To:          []brevoRecipient{msg.to},
		ReplyTo:     msg.replyTo,
		Subject:     msg.subject,
		HtmlContent: msg.html,
		Tags:        msg.tags,
	}
	if c.sandbox {
		payload.Headers = map[string]string{"X-Sib-Sandbox": "drop"}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("brevo marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("brevo create request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("content-type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("brevo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("brevo send failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out brevoSendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("brevo decode response: %w", err)
	}
	if out.MessageID == "" {
		return "", errors.New("brevo response missing messageId")
	}
	return out.MessageID, nil
}

type brevoSendRequest struct {
	Sender      brevoSender       `json:"sender"`
	To          []brevoRecipient  `json:"to"`
	ReplyTo     *brevoRecipient   `json:"replyTo,omitempty"`
	Subject     string            `json:"subject"`
	HtmlContent string            `json:"htmlContent"`
	Headers     map[string]string `json:"headers,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
}

type brevoSender struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type brevoRecipient struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoSendResponse struct {
	MessageID string `json:"messageId"`
}
