package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/roamio/backend/usecase"
)

// Webhook posts notification events to an external delivery endpoint
// (mailer, CRM hook). Delivery is best-effort; callers log failures and move
// on, so the client keeps a short timeout and never retries.
type Webhook struct {
	url    string
	hc     *http.Client
	logger *zap.Logger
}

func NewWebhook(url string, timeout time.Duration, logger *zap.Logger) *Webhook {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Webhook{
		url:    url,
		hc:     &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (w *Webhook) Notify(ctx context.Context, event usecase.NotifyEvent) error {
	if w.url == "" {
		w.logger.Debug("notifier disabled, dropping event", zap.String("kind", event.Kind))
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.hc.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("notify endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

var _ usecase.Notifier = (*Webhook)(nil)
