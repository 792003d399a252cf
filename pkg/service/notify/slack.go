// Package notify delivers posture degradation alerts to Slack.
package notify

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/phisec-lab/panoptes/pkg/domain/model"
	"github.com/phisec-lab/panoptes/pkg/domain/types"
	"github.com/slack-go/slack"
)

// SlackNotifier posts an alert message when an organization's posture
// rating drops into a degraded band.
type SlackNotifier struct {
	api       *slack.Client
	channelID string
}

// NewSlack creates a notifier with the provided bot token and target
// channel.
func NewSlack(token, channelID string) (*SlackNotifier, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}
	if channelID == "" {
		return nil, goerr.New("Slack channel ID is required")
	}

	return &SlackNotifier{
		api:       slack.New(token),
		channelID: channelID,
	}, nil
}

// PostureDegraded posts the degradation alert.
func (n *SlackNotifier) PostureDegraded(ctx context.Context, org types.OrgID, posture *model.Posture) error {
	fields := make([]slack.AttachmentField, 0, len(posture.Assessments)+1)
	fields = append(fields, slack.AttachmentField{
		Title: "Overall",
		Value: fmt.Sprintf("%d (%s)", posture.OverallScore, posture.Rating),
		Short: true,
	})
	for _, a := range posture.Assessments {
		value := string(a.Phase)
		if a.Score != nil {
			value = fmt.Sprintf("%d", *a.Score)
		}
		fields = append(fields, slack.AttachmentField{
			Title: a.Name,
			Value: value,
			Short: true,
		})
	}

	attachment := slack.Attachment{
		Color:  "danger",
		Title:  fmt.Sprintf("Security posture degraded: %s", org),
		Text:   fmt.Sprintf("The overall posture rating is now *%s*.", posture.Rating),
		Fields: fields,
	}

	_, _, err := n.api.PostMessageContext(ctx, n.channelID,
		slack.MsgOptionText(fmt.Sprintf("Security posture alert for %s", org), false),
		slack.MsgOptionAttachments(attachment),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post degradation alert",
			goerr.V("org", org), goerr.V("channel", n.channelID))
	}
	return nil
}
