package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"groceryagent"
)

type Client struct {
	webhookURL string
	httpClient groceryagent.HTTPClient
}

func NewClient(webhookURL string, httpClient groceryagent.HTTPClient) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		webhookURL: webhookURL,
		httpClient: httpClient,
	}
}

func (c *Client) PostMessage(ctx context.Context, channel string, message string) error {
	payload, err := json.Marshal(map[string]any{
		"channel": channel,
		"text":    message,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to post message: %s", resp.Status)
	}

	return nil
}

// ListSink posts saved grocery lists to a Slack channel.
type ListSink struct {
	client  groceryagent.SlackClient
	channel string
}

func NewListSink(client groceryagent.SlackClient, channel string) *ListSink {
	return &ListSink{client: client, channel: channel}
}

func (s *ListSink) Save(ctx context.Context, name string, data []byte) error {
	msg := fmt.Sprintf("*%s*\n```\n%s```", name, data)
	if err := s.client.PostMessage(ctx, s.channel, msg); err != nil {
		return fmt.Errorf("post %s to slack: %w", name, err)
	}
	return nil
}
