// Package notify publishes a build.completed event to NATS when a build ends.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/sethvargo/go-retry"

	foundationerrors "git.home.luguber.info/inful/siteforge/internal/foundation/errors"
	"git.home.luguber.info/inful/siteforge/internal/plugin"
)

// Name is the plugin's configuration name.
const Name = "notify"

// EventType is the type field of published events.
const EventType = "build.completed"

// Event is the JSON payload published on the configured subject.
type Event struct {
	Type      string              `json:"type"`
	Timestamp time.Time           `json:"timestamp"`
	Build     plugin.BuildSummary `json:"build"`
}

// Publisher sends one message.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

type jetStreamPublisher struct{ js jetstream.JetStream }

func (p jetStreamPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	_, err := p.js.Publish(ctx, subject, data)
	return err
}

type corePublisher struct{ conn *nats.Conn }

func (p corePublisher) Publish(_ context.Context, subject string, data []byte) error {
	if err := p.conn.Publish(subject, data); err != nil {
		return err
	}
	return p.conn.Flush()
}

// Plugin is the notify plugin.
type Plugin struct {
	plugin.BasePlugin

	conn      *nats.Conn
	publisher Publisher
	subject   string
	logger    *slog.Logger
	now       func() time.Time
}

// New returns the plugin.
func New() plugin.Plugin { return &Plugin{now: time.Now} }

// NewWithPublisher returns a plugin that sends through pub instead of
// connecting to NATS.
func NewWithPublisher(pub Publisher) *Plugin {
	return &Plugin{publisher: pub, now: time.Now}
}

// Metadata implements plugin.Plugin.
func (p *Plugin) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:        Name,
		Version:     "v1.0.0",
		Type:        plugin.TypePublisher,
		Description: "Publishes build results to NATS",
	}
}

// Init connects to NATS. The url option overrides notify.nats_url; without
// either the plugin stays inactive. Options: subject, jetstream (default
// true), retries (default 3).
func (p *Plugin) Init(pctx *plugin.Context) error {
	p.logger = pctx.Logger
	p.subject = pctx.GetString("subject", pctx.Snapshot.Notify.Subject)
	if p.publisher != nil {
		return nil
	}
	natsURL := pctx.GetString("url", pctx.Snapshot.Notify.NATSURL)
	if natsURL == "" {
		pctx.Logger.Warn("notify plugin has no NATS URL; events are not published")
		return nil
	}
	retries, ok := pctx.GetInt("retries")
	if !ok {
		retries = 3
	}

	ctx := pctx.Context
	if ctx == nil {
		ctx = context.Background()
	}
	backoff := retry.WithMaxRetries(uint64(max(retries, 0)), retry.NewExponential(200*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		conn, err := nats.Connect(natsURL, nats.Timeout(2*time.Second), nats.Name("siteforge"))
		if err != nil {
			pctx.Logger.Debug("NATS connect failed", slog.String("url", natsURL), slog.String("error", err.Error()))
			return retry.RetryableError(err)
		}
		p.conn = conn
		return nil
	})
	if err != nil {
		return foundationerrors.NotifyError("failed to connect to NATS").
			WithCause(err).
			WithContext("url", natsURL).Build()
	}

	if pctx.GetBool("jetstream", true) {
		js, err := jetstream.New(p.conn)
		if err != nil {
			p.conn.Close()
			return foundationerrors.NotifyError("failed to create JetStream context").WithCause(err).Build()
		}
		p.publisher = jetStreamPublisher{js: js}
	} else {
		p.publisher = corePublisher{conn: p.conn}
	}
	pctx.Logger.Info("NATS notifications enabled", slog.String("url", natsURL), slog.String("subject", p.subject))
	return nil
}

// Attach implements plugin.Plugin.
func (p *Plugin) Attach(hooks *plugin.Hooks, _ *plugin.Context) error {
	if p.publisher == nil {
		return nil
	}
	hooks.OnEnd = append(hooks.OnEnd, p.publish)
	return nil
}

func (p *Plugin) publish(ctx context.Context, summary plugin.BuildSummary) error {
	data, err := json.Marshal(Event{Type: EventType, Timestamp: p.now().UTC(), Build: summary})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.publisher.Publish(ctx, p.subject, data); err != nil {
		return foundationerrors.NotifyError("failed to publish build event").
			WithCause(err).
			WithContext("subject", p.subject).
			Warning().Build()
	}
	if p.logger != nil {
		p.logger.Debug("Published build event", slog.String("subject", p.subject), slog.String("build_id", summary.BuildID))
	}
	return nil
}

// Cleanup drains and closes the NATS connection.
func (p *Plugin) Cleanup() error {
	if p.conn == nil {
		return nil
	}
	err := p.conn.Drain()
	p.conn = nil
	return err
}
