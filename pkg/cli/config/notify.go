package config

import (
	"github.com/phisec-lab/panoptes/pkg/service/notify"
	"github.com/urfave/cli/v3"
)

// Notify holds CLI flags for degradation alerting.
type Notify struct {
	slackToken   string
	slackChannel string
}

func (x *Notify) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-oauth-token",
			Usage:       "Slack Bot User OAuth Token for posture alerts",
			Category:    "Notification",
			Sources:     cli.EnvVars("PANOPTES_SLACK_OAUTH_TOKEN"),
			Destination: &x.slackToken,
		},
		&cli.StringFlag{
			Name:        "slack-channel-id",
			Usage:       "Slack channel ID for posture alerts",
			Category:    "Notification",
			Sources:     cli.EnvVars("PANOPTES_SLACK_CHANNEL_ID"),
			Destination: &x.slackChannel,
		},
	}
}

// IsConfigured reports whether both Slack settings are present.
func (x *Notify) IsConfigured() bool {
	return x.slackToken != "" && x.slackChannel != ""
}

// Configure builds the Slack notifier, or nil when not configured.
func (x *Notify) Configure() (*notify.SlackNotifier, error) {
	if !x.IsConfigured() {
		return nil, nil
	}
	return notify.NewSlack(x.slackToken, x.slackChannel)
}
