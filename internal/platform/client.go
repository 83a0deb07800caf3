package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

// Client talks to the Facebook Marketing API. The HTTP client is an explicit
// dependency so that callers own its lifecycle and timeout.
type Client struct {
	graphBaseURL  string
	statusBaseURL string
	httpClient    *http.Client
}

func NewClient(graphBaseURL, statusBaseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		graphBaseURL:  graphBaseURL,
		statusBaseURL: statusBaseURL,
		httpClient:    httpClient,
	}
}

// AddUsers posts one batch to the incremental ingestion endpoint.
func (c *Client) AddUsers(ctx context.Context, audienceID, accessToken string, payload UploadPayload) (*UploadResponse, error) {
	fields := map[string]string{"access_token": accessToken}
	endpoint := fmt.Sprintf("%s/%s/users", c.graphBaseURL, audienceID)
	return c.postMultipart(ctx, endpoint, payload, fields)
}

// ReplaceUsers posts one batch of a replace session. The access token rides
// as a query parameter on this endpoint.
func (c *Client) ReplaceUsers(ctx context.Context, audienceID, accessToken string, payload UploadPayload, session ReplaceSession) (*UploadResponse, error) {
	sessionJSON, err := json.Marshal(session)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling session")
	}
	fields := map[string]string{"session": string(sessionJSON)}
	endpoint := fmt.Sprintf("%s/%s/usersreplace?access_token=%s", c.graphBaseURL, audienceID, url.QueryEscape(accessToken))
	return c.postMultipart(ctx, endpoint, payload, fields)
}

func (c *Client) postMultipart(ctx context.Context, endpoint string, payload UploadPayload, fields map[string]string) (*UploadResponse, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling payload")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("payload", string(payloadJSON)); err != nil {
		return nil, err
	}
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "calling ingestion endpoint")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, NewErrUploadRejected(resp.StatusCode, string(respBody))
	}

	var result UploadResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, errors.Wrap(err, "decoding ingestion response")
	}
	return &result, nil
}

// AudienceStatus polls the audience-status endpoint. A 404 maps to
// ErrAudienceNotFound; any other non-success status is a generic error.
func (c *Client) AudienceStatus(ctx context.Context, audienceID string) (*AudienceStatus, error) {
	endpoint := fmt.Sprintf("%s/audiences/%s/status", c.statusBaseURL, audienceID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "calling status endpoint")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, NewErrAudienceNotFound(audienceID)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status endpoint returned %d: %s", resp.StatusCode, string(respBody))
	}

	var status AudienceStatus
	if err := json.Unmarshal(respBody, &status); err != nil {
		return nil, errors.Wrap(err, "decoding status response")
	}
	return &status, nil
}
