package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"

	"github.com/Adrijan-Petek/gas-fee-optimizer/internal/model"
)

// Persist writes the report as indented JSON to a new file in dir and
// returns its path. dir is created if absent; an existing file is never replaced.
func Persist(r model.Report, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	data = append(data, '\n')

	path := filepath.Join(dir, FileName(r.Timestamp)+".json")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating report file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", fmt.Errorf("writing report file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing report file %s: %w", path, err)
	}
	return path, nil
}

// FileName derives the report file stem from a run timestamp
func FileName(timestamp string) string {
	return "gas_report_" + strings.NewReplacer(":", "-", "/", "-", "\\", "-").Replace(timestamp)
}

// Notifier posts reports to a webhook
type Notifier struct {
	url    string
	client *retryablehttp.Client
}

// NewNotifier creates a webhook notifier. client may be nil.
func NewNotifier(url string, client *retryablehttp.Client) *Notifier {
	if client == nil {
		client = retryablehttp.NewClient()
		client.RetryMax = 0
		client.Logger = nil
	}
	return &Notifier{url: url, client: client}
}

// Notify posts the report as JSON. A non-2xx answer is an error.
func (n *Notifier) Notify(ctx context.Context, r model.Report) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned error status: %d", resp.StatusCode)
	}

	logrus.WithField("status", resp.StatusCode).Debug("Webhook delivered")
	return nil
}
