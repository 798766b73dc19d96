package PublishToSlack

import (
	"fmt"
	"strings"

	"notion-slack-reminder/Models"

	"github.com/slack-go/slack"
)

type MentionResult = Models.MentionResult

// FormatReminder renders the outbound Slack message for one due page.
// Mention tags come from the resolved IDs, joined with a full-width space,
// and every matched personal URL gets its own line.
func FormatReminder(title string, result MentionResult, notionURL string) string {
	var b strings.Builder

	b.WriteString("⏰ *本日のリマインド*\n")

	if len(result.MentionIDs) > 0 {
		tags := make([]string, 0, len(result.MentionIDs))
		for _, id := range result.MentionIDs {
			tags = append(tags, fmt.Sprintf("<@%s>", id))
		}
		b.WriteString(strings.Join(tags, "　"))
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("・業務従事者：*%s*\n", title))
	b.WriteString(fmt.Sprintf("・担当：%s\n", result.Label))
	b.WriteString(fmt.Sprintf("・Notion：%s\n", notionURL))

	for _, url := range result.URLs {
		b.WriteString(fmt.Sprintf("・面談調整URL：%s\n", url))
	}

	return b.String()
}

// SendReminder posts a pre-rendered message to the channel. Link previews are
// disabled so the Notion and personal URLs stay compact. A failure here is
// fatal to the run.
func SendReminder(slackClient *slack.Client, channelID string, text string) error {
	_, _, sendReminderError := slackClient.PostMessage(
		channelID,
		slack.MsgOptionText(text, false),
		slack.MsgOptionPostMessageParameters(slack.PostMessageParameters{
			UnfurlLinks: false,
			UnfurlMedia: false,
		}),
	)
	return sendReminderError
}
