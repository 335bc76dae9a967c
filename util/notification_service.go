// api/util/notification_service.go

package util

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	logger "github.com/mapcanvas/atlas/api/logging"
	"github.com/mapcanvas/atlas/api/model"
)

// NotificationService delivers outbound webhooks and email
// notifications triggered by data changes. Delivery is best-effort:
// failures are logged and never propagate to the write that triggered
// them.
type NotificationService struct {
	httpClient *http.Client
}

func NewNotificationService(timeout time.Duration) *NotificationService {
	return &NotificationService{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// DeliverWebhooks POSTs the serialized resource to every matching
// webhook concurrently.
func (n *NotificationService) DeliverWebhooks(ctx context.Context, webhooks []model.Webhook, submissionSet, event string, payload []byte) {
	group, ctx := errgroup.WithContext(ctx)

	for _, webhook := range webhooks {
		if webhook.SubmissionSet != submissionSet || webhook.Event != event {
			continue
		}

		webhook := webhook
		group.Go(func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhook.URL, bytes.NewReader(payload))
			if err != nil {
				logger.Error("Failed to build webhook request",
					zap.String("url", webhook.URL), zap.Error(err))
				return nil
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := n.httpClient.Do(req)
			if err != nil {
				logger.Error("Webhook delivery failed",
					zap.String("url", webhook.URL), zap.Error(err))
				return nil
			}
			defer resp.Body.Close()

			if resp.StatusCode >= 400 {
				logger.Error("Webhook delivery rejected",
					zap.String("url", webhook.URL),
					zap.Int("status", resp.StatusCode))
			} else {
				logger.Info("Webhook delivered",
					zap.String("url", webhook.URL),
					zap.Int("status", resp.StatusCode))
			}
			return nil
		})
	}

	// Handlers never return errors; Wait only joins the deliveries.
	_ = group.Wait()
}

// SendEmail hands an email notification to the mail relay.
func (n *NotificationService) SendEmail(ctx context.Context, recipient, subject, body string) error {
	// The relay integration lives outside this service; log the intent.
	logger.Info("Sending email",
		zap.String("recipient", recipient),
		zap.String("subject", subject))
	return nil
}
