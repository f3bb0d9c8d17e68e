// Package notify posts short text messages to a chat webhook.
package notify

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/orion/internal/netx"
)

// Notifier sends a text message somewhere people will read it.
type Notifier interface {
	Notify(ctx context.Context, msg string) error
}

// Nop drops every message. It is used when no webhook is configured.
type Nop struct{}

func (Nop) Notify(context.Context, string) error { return nil }

// Discord posts messages to a Discord webhook.
type Discord struct {
	url     string
	timeout time.Duration
	client  *http.Client
}

type discordMessage struct {
	Content string `json:"content"`
}

// New returns a Discord notifier for url, or Nop when url is empty.
func New(url string, timeout time.Duration) Notifier {
	if url == "" {
		return Nop{}
	}
	return &Discord{url: url, timeout: timeout, client: &http.Client{}}
}

// Notify posts {"content": msg}. The request is bounded by the configured
// timeout on top of ctx.
func (d *Discord) Notify(ctx context.Context, msg string) error {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	return netx.PostJSON(ctx, d.client, d.url, discordMessage{Content: msg})
}
