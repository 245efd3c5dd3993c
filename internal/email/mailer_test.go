package email_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"jobmatch-backend/internal/email"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayMailerSend(t *testing.T) {
	var got *http.Request
	var form map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		require.NoError(t, r.ParseForm())
		form = map[string]string{
			"from":    r.Form.Get("from"),
			"to":      r.Form.Get("to"),
			"subject": r.Form.Get("subject"),
			"text":    r.Form.Get("text"),
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	mailer := email.NewGatewayMailer(server.URL, "key-123", "noreply@jobmatch.example")
	err := mailer.Send(context.Background(), "alex@example.com", "Hello", "body text")
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "/messages", got.URL.Path)
	assert.Equal(t, "Bearer key-123", got.Header.Get("Authorization"))
	assert.Equal(t, map[string]string{
		"from":    "noreply@jobmatch.example",
		"to":      "alex@example.com",
		"subject": "Hello",
		"text":    "body text",
	}, form)
}

func TestGatewayMailerErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	mailer := email.NewGatewayMailer(server.URL, "bad-key", "noreply@jobmatch.example")
	err := mailer.Send(context.Background(), "alex@example.com", "Hello", "body")
	assert.Error(t, err)
}

func TestTrainingReportBody(t *testing.T) {
	subject, body := email.TrainingReportBody("apec", "france", 4, "RandomForest", map[string]float64{
		"RandomForest": 0.91,
		"KNN":          0.85,
	})
	assert.Equal(t, "Training complete: apec/france", subject)
	assert.Contains(t, body, "Clusters: 4")
	assert.Contains(t, body, "RandomForest")
	assert.Contains(t, body, "0.9100")
	assert.Contains(t, body, "KNN")
}
