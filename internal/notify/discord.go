// Package notify delivers pipeline outcome notifications.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Field is one name/value pair rendered inside a notification embed.
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// Message is a fully formatted notification, ready for delivery.
type Message struct {
	Title  string
	Body   string
	Color  int
	Fields []Field
}

// Embed colors.
const (
	ColorGreen = 0x00ff00
	ColorRed   = 0xff0000
)

// Notifier sends a formatted message. Delivery failure must never abort the
// pipeline; callers log the returned error and continue.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// DiscordWebhook delivers messages as Discord webhook embeds. When
// MentionUserID is set, a plain mention post precedes the embed so the user
// gets pinged.
type DiscordWebhook struct {
	URL           string
	MentionUserID string
	Client        *http.Client
}

// NewDiscordWebhook creates a webhook notifier for url.
func NewDiscordWebhook(url, mentionUserID string) *DiscordWebhook {
	return &DiscordWebhook{
		URL:           url,
		MentionUserID: mentionUserID,
		Client:        &http.Client{Timeout: 10 * time.Second},
	}
}

type discordEmbed struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Color       int     `json:"color"`
	Fields      []Field `json:"fields"`
}

type discordPayload struct {
	Content string         `json:"content,omitempty"`
	Embeds  []discordEmbed `json:"embeds,omitempty"`
}

// Send implements Notifier.
func (d *DiscordWebhook) Send(ctx context.Context, msg Message) error {
	if d.MentionUserID != "" {
		// Mention failure should not block the embed itself.
		_ = d.post(ctx, discordPayload{Content: fmt.Sprintf("<@%s>", d.MentionUserID)})
	}

	color := msg.Color
	if color == 0 {
		color = ColorGreen
	}

	fields := msg.Fields
	if fields == nil {
		fields = []Field{}
	}

	return d.post(ctx, discordPayload{
		Embeds: []discordEmbed{{
			Title:       msg.Title,
			Description: msg.Body,
			Color:       color,
			Fields:      fields,
		}},
	})
}

func (d *DiscordWebhook) post(ctx context.Context, payload discordPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}
