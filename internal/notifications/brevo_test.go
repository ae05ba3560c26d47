package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Mrwire/geniusad-sub002/internal/submissions"
	"github.com/stretchr/testify/require"
)

func sampleSubmission() submissions.Submission {
	return submissions.Submission{
		ID:         "65f0c0ffee",
		FormID:     "contact",
		FormTitle:  "Contact us",
		Email:      "salma@example.com",
		Name:       "Salma",
		Locale:     "en",
		Subsidiary: "pixel-lab",
		Entries: []submissions.Entry{
			{FieldID: "name", Label: "Name", Value: "Salma"},
			{FieldID: "company", Label: "Company", Value: ""},
			{FieldID: "message", Label: "Message", Value: "<script>alert(1)</script>"},
		},
	}
}

func TestNewBrevoClientDisabled(t *testing.T) {
	require.Nil(t, NewBrevoClient("", "from@example.com", "", "", false))
	require.Nil(t, NewBrevoClient("key", "", "", "", false))

	c := NewBrevoClient("key", "from@example.com", "", "", false)
	require.NotNil(t, c)
	require.Equal(t, "from@example.com", c.notifyEmail)
	require.Equal(t, "from@example.com", c.senderName)
}

func TestNotificationHTML(t *testing.T) {
	html, err := buildSubmissionNotificationHTML(sampleSubmission())
	require.NoError(t, err)
	require.Contains(t, html, "Nouvelle demande : Contact us")
	require.Contains(t, html, "<strong>Filiale:</strong> pixel-lab")
	require.Contains(t, html, "<strong>Name:</strong> Salma")
	require.NotContains(t, html, "Company")
	require.Contains(t, html, "&lt;script&gt;")
}

func TestConfirmationHTMLLocale(t *testing.T) {
	sub := sampleSubmission()
	html, err := buildSubmissionConfirmationHTML(sub)
	require.NoError(t, err)
	require.Contains(t, html, "Hello Salma,")

	sub.Locale = "fr"
	sub.Name = ""
	html, err = buildSubmissionConfirmationHTML(sub)
	require.NoError(t, err)
	require.Contains(t, html, "Bonjour salma@example.com,")
}

func TestSendSubmissionConfirmation(t *testing.T) {
	var got brevoSendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "key", r.Header.Get("api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"messageId":"<abc@brevo>"}`))
	}))
	defer srv.Close()

	c := NewBrevoClient("key", "from@example.com", "Agency", "team@example.com", true)
	c.endpoint = srv.URL

	id, err := c.SendSubmissionConfirmation(context.Background(), sampleSubmission())
	require.NoError(t, err)
	require.Equal(t, "<abc@brevo>", id)
	require.Equal(t, "salma@example.com", got.To[0].Email)
	require.Equal(t, "We received your request", got.Subject)
	require.Equal(t, "drop", got.Headers["X-Sib-Sandbox"])

	_, err = c.SendSubmissionNotification(context.Background(), sampleSubmission())
	require.NoError(t, err)
	require.Equal(t, "team@example.com", got.To[0].Email)
	require.Equal(t, "Nouvelle demande - Contact us", got.Subject)
	require.NotNil(t, got.ReplyTo)
	require.Equal(t, "salma@example.com", got.ReplyTo.Email)
	require.Equal(t, []string{"form:contact", "subsidiary:pixel-lab"}, got.Tags)
}

func TestSendFailsOnErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"unauthorized"}`))
	}))
	defer srv.Close()

	c := NewBrevoClient("key", "from@example.com", "Agency", "", false)
	c.endpoint = srv.URL

	_, err := c.SendSubmissionNotification(context.Background(), sampleSubmission())
	require.ErrorContains(t, err, "status=401")
}
