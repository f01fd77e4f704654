// Where: internal/qiita/client.go
// What: HTTP client for the Qiita server REST endpoints used by plugin jobs.
// Why: Give validate/summary flows a single typed gateway to the server.
package qiita

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// ServerError reports a non-2xx response from the Qiita server.
type ServerError struct {
	StatusCode int
	Path       string
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("qiita server returned %d for %s: %s", e.StatusCode, e.Path, e.Message)
}

// Metadata maps sample IDs to their metadata columns.
type Metadata map[string]map[string]any

// SampleIDs returns the set of sample IDs present in the metadata.
func (m Metadata) SampleIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(m))
	for id := range m {
		ids[id] = struct{}{}
	}
	return ids
}

// JobInfo describes a processing job as returned by the server.
type JobInfo struct {
	Command    string         `json:"command"`
	Status     string         `json:"status"`
	Parameters map[string]any `json:"parameters"`
}

// ArtifactInfo describes an existing artifact as returned by the server.
type ArtifactInfo struct {
	Type  string              `json:"type"`
	Files map[string][]string `json:"files"`
}

// Client talks to a Qiita server. The zero value is not usable; construct
// with NewClient.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client for the given server URL. When certPath is
// non-empty the referenced PEM certificate is added as the sole trusted root,
// matching servers that run with self-issued certificates.
func NewClient(serverURL, certPath string) (*Client, error) {
	transport := http.DefaultTransport
	if certPath != "" {
		pem, err := os.ReadFile(certPath)
		if err != nil {
			return nil, fmt.Errorf("read server cert: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", certPath)
		}
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{RootCAs: pool},
		}
	}

	return &Client{
		baseURL: strings.TrimRight(serverURL, "/"),
		http: &http.Client{
			Transport: transport,
			Timeout:   2 * time.Minute,
		},
	}, nil
}

// Get performs a GET request and decodes the JSON response into dest.
func (c *Client) Get(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ServerError{StatusCode: resp.StatusCode, Path: path, Message: strings.TrimSpace(string(body))}
	}
	if dest == nil {
		return nil
	}
	return json.Unmarshal(body, dest)
}

// Post performs a form POST request, discarding any response body.
func (c *Client) Post(ctx context.Context, path string, form url.Values) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ServerError{StatusCode: resp.StatusCode, Path: path, Message: strings.TrimSpace(string(body))}
	}
	return nil
}

// JobInfo fetches the command and parameters of a processing job.
func (c *Client) JobInfo(ctx context.Context, jobID string) (JobInfo, error) {
	var info JobInfo
	err := c.Get(ctx, fmt.Sprintf("/qiita_db/jobs/%s", url.PathEscape(jobID)), &info)
	return info, err
}

// PrepTemplateData fetches the sample metadata attached to a prep template.
func (c *Client) PrepTemplateData(ctx context.Context, prepID string) (Metadata, error) {
	var payload struct {
		Data Metadata `json:"data"`
	}
	path := fmt.Sprintf("/qiita_db/prep_template/%s/data/", url.PathEscape(prepID))
	if err := c.Get(ctx, path, &payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

// AnalysisMetadata fetches the sample metadata attached to an analysis.
func (c *Client) AnalysisMetadata(ctx context.Context, analysisID string) (Metadata, error) {
	var metadata Metadata
	path := fmt.Sprintf("/qiita_db/analysis/%s/metadata/", url.PathEscape(analysisID))
	if err := c.Get(ctx, path, &metadata); err != nil {
		return nil, err
	}
	return metadata, nil
}

// ArtifactInfo fetches type and file listing of an existing artifact.
func (c *Client) ArtifactInfo(ctx context.Context, artifactID string) (ArtifactInfo, error) {
	var info ArtifactInfo
	path := fmt.Sprintf("/qiita_db/artifacts/%s/", url.PathEscape(artifactID))
	err := c.Get(ctx, path, &info)
	return info, err
}

// UpdateJobStep reports job progress back to the server.
func (c *Client) UpdateJobStep(ctx context.Context, jobID, step string) error {
	form := url.Values{"step": {step}}
	return c.Post(ctx, fmt.Sprintf("/qiita_db/jobs/%s/step/", url.PathEscape(jobID)), form)
}

// CompleteJob marks a job finished. On success artifacts carries the JSON
// artifact payload; on failure errMsg carries the reason shown to the user.
func (c *Client) CompleteJob(ctx context.Context, jobID string, success bool, artifacts string, errMsg string) error {
	form := url.Values{
		"success":       {fmt.Sprintf("%t", success)},
		"artifacts":     {artifacts},
		"error_message": {errMsg},
	}
	return c.Post(ctx, fmt.Sprintf("/qiita_db/jobs/%s/complete/", url.PathEscape(jobID)), form)
}
