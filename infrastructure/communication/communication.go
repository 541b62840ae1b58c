package communication

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/slack-go/slack"
)

// Slack posts supervisor alerts and admin pages to the configured channels.
// Worker reminders go to the reminder channel; actual device push delivery
// is owned by the mobile backend.
type Slack struct {
	client  *slack.Client
	options SlackOption
}

type SlackOption struct {
	AlertChannelID    string
	CriticalChannelID string
	ReminderChannelID string
}

func ConnectSlack() *Slack {
	token := os.Getenv("SLACK_BOT_TOKEN")
	alertCh := os.Getenv("SLACK_ALERT_CHANNEL")
	criticalCh := os.Getenv("SLACK_CRITICAL_CHANNEL")
	reminderCh := os.Getenv("SLACK_REMINDER_CHANNEL")

	return NewSlack(token, SlackOption{
		AlertChannelID:    alertCh,
		CriticalChannelID: criticalCh,
		ReminderChannelID: reminderCh,
	})
}

func NewSlack(token string, options SlackOption) *Slack {
	client := slack.New(token)
	return &Slack{client: client, options: options}
}

func (s *Slack) postMessage(ctx context.Context, channelID, message string) error {
	_, _, err := s.client.PostMessageContext(
		ctx,
		channelID,
		slack.MsgOptionText(message, false),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		return fmt.Errorf("failed to post message to Slack: %w", err)
	}
	return nil
}

func (s *Slack) AlertSupervisors(ctx context.Context, subject string, lines []string) error {
	return s.postMessage(ctx, s.options.AlertChannelID, formatBlock(subject, lines))
}

func (s *Slack) PageAdministrators(ctx context.Context, subject string, lines []string) error {
	return s.postMessage(ctx, s.options.CriticalChannelID, formatBlock(":rotating_light: "+subject, lines))
}

func (s *Slack) RemindUser(ctx context.Context, userID, message string) error {
	return s.postMessage(ctx, s.options.ReminderChannelID, fmt.Sprintf("<%s> %s", userID, message))
}

func formatBlock(subject string, lines []string) string {
	if len(lines) == 0 {
		return fmt.Sprintf("*%s*", subject)
	}
	return fmt.Sprintf("*%s*\n%s", subject, strings.Join(lines, "\n"))
}
