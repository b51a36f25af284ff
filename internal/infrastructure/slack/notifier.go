package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"newsradar/internal/domain"
	"newsradar/internal/ports"
)

const noNewsMessage = "There are no new, relevant articles to send."

// Notifier delivers articles to a Slack channel via incoming webhook.
type Notifier struct {
	webhookURL string
	channel    string
	client     *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers the webhook endpoint and target channel.
func NewNotifier(webhookURL, channel string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		channel:    channel,
		client:     &http.Client{Timeout: 5 * time.Second},
	}
}

// PublishArticle posts one message per delivered article.
func (n *Notifier) PublishArticle(ctx context.Context, article domain.Article) error {
	text := fmt.Sprintf("*%s*\n%s\nPublished on: %s\n%s\n\nRelevance: %d | %s",
		article.Title,
		article.Link,
		article.PubDate,
		article.Summary,
		article.Score,
		article.Explanation,
	)

	return n.post(ctx, text)
}

// PublishNoNews tells operators the run completed and found nothing,
// so silence is distinguishable from a run that never happened.
func (n *Notifier) PublishNoNews(ctx context.Context) error {
	return n.post(ctx, noNewsMessage)
}

func (n *Notifier) post(ctx context.Context, text string) error {
	if n.webhookURL == "" || n.client == nil {
		return fmt.Errorf("slack notifier misconfigured")
	}

	payload := map[string]string{"text": text}
	if n.channel != "" {
		payload["channel"] = n.channel
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	return nil
}
