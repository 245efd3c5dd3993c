// Package email sends transactional mail through the HTTP mail gateway.
package email

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-resty/resty/v2"
)

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// GatewayMailer posts messages to an HTTP gateway (Mailgun-style API).
type GatewayMailer struct {
	client *resty.Client
	from   string
}

var _ Mailer = (*GatewayMailer)(nil)

func NewGatewayMailer(baseURL, apiKey, from string) *GatewayMailer {
	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey)
	return &GatewayMailer{client: client, from: from}
}

func (m *GatewayMailer) Send(ctx context.Context, to, subject, body string) error {
	res, err := m.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"from":    m.from,
			"to":      to,
			"subject": subject,
			"text":    body,
		}).
		Post("/messages")
	if err != nil {
		return fmt.Errorf("mail gateway request: %w", err)
	}
	if res.IsError() {
		return fmt.Errorf("mail gateway returned %s: %s", res.Status(), res.String())
	}
	return nil
}

// VerificationCodeBody renders the login verification mail.
func VerificationCodeBody(code string) (subject, body string) {
	subject = "Your verification code"
	body = fmt.Sprintf("Your verification code is %s. It expires in 10 minutes.\n\nIf you did not request it, ignore this message.", code)
	return subject, body
}

// TrainingReportBody renders the post-training summary mail.
func TrainingReportBody(platform, region string, clusters int, best string, scores map[string]float64) (subject, body string) {
	subject = fmt.Sprintf("Training complete: %s/%s", platform, region)

	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "Model for %s/%s retrained successfully.\n\nClusters: %d\nBest classifier: %s\n\nHoldout accuracy:\n", platform, region, clusters, best)
	for _, name := range names {
		fmt.Fprintf(&b, "  %-20s %.4f\n", name, scores[name])
	}
	return subject, b.String()
}
