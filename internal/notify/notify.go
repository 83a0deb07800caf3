package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// Notifier delivers human-readable pipeline notifications. Delivery is
// fire-and-forget: a failed send is logged by the caller and never fails the
// pipeline.
type Notifier interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// mailNotifier calls the internal mail service's SendEmail endpoint.
type mailNotifier struct {
	baseURL    string
	httpClient *http.Client
}

var _ Notifier = (*mailNotifier)(nil)

func NewMailNotifier(baseURL string, httpClient *http.Client) Notifier {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &mailNotifier{baseURL: baseURL, httpClient: httpClient}
}

func (n *mailNotifier) Send(ctx context.Context, recipient, subject, body string) error {
	endpoint := fmt.Sprintf("%s/SendEmail?emailTo=%s&subject=%s&bodymessage=%s",
		n.baseURL,
		url.QueryEscape(recipient),
		url.QueryEscape(subject),
		url.QueryEscape(body),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("mail service returned %d: %s", resp.StatusCode, string(respBody))
	}

	zap.S().Named("notify").Infow("email sent", "recipient", recipient, "subject", subject)
	return nil
}
