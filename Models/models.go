package Models

import "time"

// AssigneeRef is one person reference pulled out of the Notion assignee
// property. Email is empty for the select / multi_select / rich_text shapes
// since those carry names only.
type AssigneeRef struct {
	Name  string
	Email string
}

// MentionResult is the outcome of resolving one page's assignees:
// a display label, the Slack user IDs to mention and the personal URLs
// matched from the configured map. MentionIDs and URLs are de-duplicated
// and keep first-discovery order.
type MentionResult struct {
	Label      string
	MentionIDs []string
	URLs       []string
}

// Reminder is everything we know about one due page after the pipeline ran:
// the mention result plus page metadata and the rendered Slack message.
type Reminder struct {
	PageID     string
	Title      string
	NotionURL  string
	Label      string
	MentionIDs []string
	URLs       []string
	Message    string
}

// ChosenURL is the URL written back to the page: the first resolved personal
// URL, or nothing.
func (r Reminder) ChosenURL() string {
	if len(r.URLs) > 0 {
		return r.URLs[0]
	}
	return ""
}

// EmailResolver resolves an email address to a Slack user ID.
// Callers treat any error as "no match" for that one address.
type EmailResolver interface {
	UserIDByEmail(email string) (string, error)
}

// Config is loaded once from the environment at startup and passed down
// explicitly. Nothing in the pipeline reads the environment after that.
type Config struct {
	NotionToken  string
	DatabaseID   string
	SlackToken   string
	SlackChannel string

	// Notion property names. The source databases never settled on one
	// naming convention, so these are configuration with the most common
	// names as defaults.
	DateProp     string
	TitleProp    string
	AssigneeProp string
	SlackIDProp  string
	URLProp      string

	Timezone string
	LogPath  string
	CronSpec string

	// PersonURLMap maps a person's name (as configured, spacing ignored)
	// to their personal URL.
	PersonURLMap map[string]string

	// ExtraMentionIDs are Slack user IDs appended to every reminder through
	// the fallback stage.
	ExtraMentionIDs []string

	// PostDelay is the pause after each dispatch to stay under Slack's
	// rate limits. Records are processed strictly one at a time.
	PostDelay time.Duration

	// DatabaseURL enables the Postgres delivery log when set.
	DatabaseURL string

	// GeminiAPIKey enables the end-of-run digest when set.
	GeminiAPIKey string
}
