package SummarizeDigest

import (
	"context"
	"fmt"
	"strings"

	"notion-slack-reminder/Models"

	"google.golang.org/genai"
)

type Reminder = Models.Reminder

const digestModel = "gemini-2.5-flash"

func cleanFences(input string) string {
	input = strings.TrimSpace(input)

	// the model sometimes wraps its answer in a markdown fence
	input = strings.TrimPrefix(input, "```markdown")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")

	return strings.TrimSpace(input)
}

func buildDigestPrompt(day string, reminders []Reminder) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("以下は %s に送信したリマインド一覧です。\n\n", day))
	for i, r := range reminders {
		b.WriteString(fmt.Sprintf("%d. 業務従事者: %s / 担当: %s\n", i+1, r.Title, r.Label))
	}
	b.WriteString("\nこの一覧をSlack投稿向けに3行以内の日本語で要約してください。")
	b.WriteString("件数と、担当が未設定の項目があればその旨を必ず含めてください。")
	b.WriteString("前置きは不要です。")

	return b.String()
}

// SummarizeReminders asks Gemini for a short end-of-run digest of everything
// that was dispatched today. The digest is a nicety: callers log a failure
// and move on.
func SummarizeReminders(ctx context.Context, genAiClient *genai.Client, day string, reminders []Reminder) (string, error) {
	if len(reminders) == 0 {
		return "", nil
	}

	prompt := buildDigestPrompt(day, reminders)

	genAiGenerateContentResult, genAiGenerateContentError := genAiClient.Models.GenerateContent(
		ctx,
		digestModel,
		genai.Text(prompt),
		nil,
	)
	if genAiGenerateContentError != nil {
		return "", genAiGenerateContentError
	}

	var b strings.Builder
	if len(genAiGenerateContentResult.Candidates) > 0 {
		for _, part := range genAiGenerateContentResult.Candidates[0].Content.Parts {
			b.WriteString(part.Text)
		}
	}

	return cleanFences(b.String()), nil
}
