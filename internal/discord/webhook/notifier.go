// Package webhook delivers activity notifications to Discord webhooks.
package webhook

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ValgulNecron/kasuki/internal/activity"
	"github.com/ValgulNecron/kasuki/internal/discord/rate"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/disgo/webhook"
	"go.uber.org/zap"
)

// Discord allows roughly five messages per two seconds on one webhook.
const (
	sendInterval = 400 * time.Millisecond
	sendJitter   = 50 * time.Millisecond

	// sweepInterval is how often idle webhook URLs are dropped from the limiter.
	sweepInterval = time.Minute
)

// embedColor is the accent color of notification embeds.
const embedColor = 0x02a9ff

// Sender is the part of a webhook client used to deliver embeds.
type Sender interface {
	CreateEmbeds(embeds []discord.Embed, opts ...rest.RequestOpt) (*discord.Message, error)
	Close(ctx context.Context)
}

// SenderFactory opens a Sender for a webhook URL.
type SenderFactory func(url string) (Sender, error)

// Notifier sends episode notifications to webhook URLs.
type Notifier struct {
	newSender SenderFactory
	limiter   *rate.Limiter
	logger    *zap.Logger
	now       func() time.Time

	mu        sync.Mutex
	lastSweep time.Time
}

// NewNotifier creates a Notifier using disgo webhook clients.
func NewNotifier(logger *zap.Logger) *Notifier {
	return NewNotifierWithFactory(func(url string) (Sender, error) {
		return webhook.NewWithURL(url)
	}, logger)
}

// NewNotifierWithFactory creates a Notifier that opens senders through newSender.
func NewNotifierWithFactory(newSender SenderFactory, logger *zap.Logger) *Notifier {
	return &Notifier{
		newSender: newSender,
		limiter:   rate.New(sendInterval, sendJitter),
		logger:    logger.Named("webhook"),
		now:       time.Now,
		lastSweep: time.Now(),
	}
}

// Send delivers one notification to the webhook at target.
func (n *Notifier) Send(ctx context.Context, target string, notification activity.Notification) error {
	sender, err := n.newSender(target)
	if err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}
	defer sender.Close(context.WithoutCancel(ctx))

	n.sweep()

	if err := n.limiter.Wait(ctx, target); err != nil {
		return err
	}

	if _, err := sender.CreateEmbeds([]discord.Embed{BuildEmbed(notification)}, rest.WithCtx(ctx)); err != nil {
		return fmt.Errorf("failed to send webhook message: %w", err)
	}

	n.logger.Debug("Sent activity notification",
		zap.String("subjectID", notification.SubjectID),
		zap.String("ownerID", notification.OwnerID),
		zap.String("episode", notification.Episode))

	return nil
}

// sweep forgets idle webhook URLs at most once per sweepInterval.
func (n *Notifier) sweep() {
	n.mu.Lock()
	now := n.now()

	if now.Sub(n.lastSweep) < sweepInterval {
		n.mu.Unlock()
		return
	}

	n.lastSweep = now
	n.mu.Unlock()

	if dropped := n.limiter.Forget(); dropped > 0 {
		n.logger.Debug("Forgot idle webhooks",
			zap.Int("dropped", dropped),
			zap.Int("remaining", n.limiter.Len()))
	}
}

// BuildEmbed formats a notification as an embed.
func BuildEmbed(n activity.Notification) discord.Embed {
	name := n.DisplayName
	if name == "" {
		name = "Anime " + n.SubjectID
	}

	builder := discord.NewEmbedBuilder().
		SetTitle(name).
		SetURL("https://anilist.co/anime/"+n.SubjectID).
		SetDescriptionf("Episode **%s** of **%s** just aired.", n.Episode, name).
		SetColor(embedColor).
		SetTimestamp(time.Unix(n.FireAt, 0)).
		SetFooterText("Kasuki anime activity")

	if n.Image != "" {
		builder.SetThumbnail(n.Image)
	}

	return builder.Build()
}
