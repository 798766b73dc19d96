package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"notion-slack-reminder/BuildMentions"
	"notion-slack-reminder/ExtractAssignees"
	"notion-slack-reminder/FetchReminders"
	"notion-slack-reminder/Models"
	"notion-slack-reminder/PublishToSlack"
	"notion-slack-reminder/Repo"
	"notion-slack-reminder/SummarizeDigest"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/jomei/notionapi"
	"github.com/robfig/cron/v3"
	"github.com/slack-go/slack"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

type Config = Models.Config
type Reminder = Models.Reminder

// errAborted marks run failures that were already written to the run log,
// so the top level exits non-zero without repeating them on stderr.
var errAborted = errors.New("reminder run aborted")

// runContext carries everything the per-page pipeline needs: the run's
// read-only directory and URL indexes plus the email resolver. It is built
// once per run and never mutated afterwards, so tests can supply a synthetic
// one without touching the environment or the network.
type runContext struct {
	cfg       Config
	nameIndex map[string]string
	urlIndex  map[string]string
	emails    Models.EmailResolver
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func loadConfig() (Config, error) {
	// a missing .env file is fine, the environment may be set directly
	_ = godotenv.Load()

	cfg := Config{
		NotionToken:  os.Getenv("NOTION_TOKEN"),
		DatabaseID:   os.Getenv("NOTION_DATABASE_ID"),
		SlackToken:   os.Getenv("SLACK_BOT_TOKEN"),
		SlackChannel: os.Getenv("SLACK_CHANNEL_ID"),

		DateProp:     getenvDefault("NOTION_DATE_PROP", "面談リマインド日"),
		TitleProp:    getenvDefault("NOTION_TITLE_PROP", "業務従事者"),
		AssigneeProp: getenvDefault("NOTION_ASSIGNEE_PROP", "実施責任者"),
		SlackIDProp:  getenvDefault("NOTION_SLACKID_PROP", "SlackID"),
		URLProp:      getenvDefault("NOTION_URL_PROP", "URL"),

		Timezone: getenvDefault("TIMEZONE", "Asia/Tokyo"),
		LogPath:  getenvDefault("LOG_PATH", "reminder.log"),
		CronSpec: getenvDefault("REMINDER_CRON", "0 9 * * *"),

		PostDelay: time.Second,

		DatabaseURL:  os.Getenv("DATABASE_URL"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
	}

	var missing []string
	if cfg.NotionToken == "" {
		missing = append(missing, "NOTION_TOKEN")
	}
	if cfg.DatabaseID == "" {
		missing = append(missing, "NOTION_DATABASE_ID")
	}
	if cfg.SlackToken == "" {
		missing = append(missing, "SLACK_BOT_TOKEN")
	}
	if cfg.SlackChannel == "" {
		missing = append(missing, "SLACK_CHANNEL_ID")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	cfg.PersonURLMap = map[string]string{}
	if raw := os.Getenv("PERSON_URL_MAP_JSON"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &cfg.PersonURLMap); err != nil {
			return Config{}, fmt.Errorf("PERSON_URL_MAP_JSON is not valid JSON: %w", err)
		}
	}

	if raw := os.Getenv("EXTRA_MENTION_IDS"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				cfg.ExtraMentionIDs = append(cfg.ExtraMentionIDs, id)
			}
		}
	}

	return cfg, nil
}

func newLogger(logPath string) (*zap.SugaredLogger, error) {
	zapCfg := zap.NewProductionConfig()
	zapCfg.OutputPaths = []string{"stdout", logPath}
	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// processPage runs the whole per-page pipeline: extract the assignee
// references, resolve them to mention IDs and personal URLs, and render the
// outbound message. It touches nothing remote except the injected email
// resolver and performs no writes, so the run loop decides about dispatch
// and write-back.
func processPage(page notionapi.Page, rc runContext) Reminder {
	refs := ExtractAssignees.ExtractAssignees(page, rc.cfg.AssigneeProp)
	title := ExtractAssignees.ExtractTitle(page, rc.cfg.TitleProp)

	// the always-mention IDs ride the same fallback stage as the page's own
	// literal Slack-ID column, after it
	fallbackIDs := ExtractAssignees.ExtractFallbackSlackIDs(page, rc.cfg.SlackIDProp)
	fallbackIDs = append(fallbackIDs, rc.cfg.ExtraMentionIDs...)

	result := BuildMentions.BuildMentions(refs, rc.nameIndex, rc.urlIndex, fallbackIDs, rc.emails)
	notionURL := ExtractAssignees.PageURL(page)
	message := PublishToSlack.FormatReminder(title, result, notionURL)

	return Reminder{
		PageID:     string(page.ID),
		Title:      title,
		NotionURL:  notionURL,
		Label:      result.Label,
		MentionIDs: result.MentionIDs,
		URLs:       result.URLs,
		Message:    message,
	}
}

func runReminders(ctx context.Context, cfg Config, logger *zap.SugaredLogger) error {
	loc := loadLocation(cfg.Timezone)
	now := time.Now().In(loc)
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	today := day.Format("2006-01-02")

	logger.Infow("reminder run started", "date", today)

	notionClient := notionapi.NewClient(notionapi.Token(cfg.NotionToken))

	pages, fetchDuePagesError := FetchReminders.FetchDuePages(ctx, notionClient, cfg.DatabaseID, cfg.DateProp, day)
	if fetchDuePagesError != nil {
		return fmt.Errorf("notion query failed: %w", fetchDuePagesError)
	}
	if len(pages) == 0 {
		logger.Infow("no reminders today")
		return nil
	}

	slackApi := slack.New(cfg.SlackToken)

	users, getUsersError := slackApi.GetUsers()
	if getUsersError != nil {
		return fmt.Errorf("slack user directory fetch failed: %w", getUsersError)
	}

	rc := runContext{
		cfg:       cfg,
		nameIndex: BuildMentions.BuildNameIndex(users),
		urlIndex:  BuildMentions.BuildURLIndex(cfg.PersonURLMap),
		emails:    BuildMentions.SlackEmailResolver{Client: slackApi},
	}

	// the delivery log is optional: without DATABASE_URL every due page is
	// dispatched, exactly like a guardless run
	var dbPool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		pool, initDbPoolError := Repo.InitDbPool(ctx, cfg.DatabaseURL)
		if initDbPoolError != nil {
			logger.Warnw("delivery log unavailable, continuing without it", "error", initDbPoolError)
		} else {
			dbPool = pool
			defer dbPool.Close()
		}
	}

	var dispatched []Reminder
	for _, page := range pages {
		reminder := processPage(page, rc)

		if dbPool != nil {
			alreadySent, wasSentError := Repo.WasReminderSent(ctx, dbPool, reminder.PageID, today)
			if wasSentError != nil {
				logger.Warnw("delivery log check failed", "page", reminder.PageID, "error", wasSentError)
			} else if alreadySent {
				logger.Infow("already sent today, skipping", "page", reminder.PageID, "title", reminder.Title)
				continue
			}
		}

		if chosenURL := reminder.ChosenURL(); chosenURL != "" {
			updateError := FetchReminders.UpdateURLProperty(ctx, notionClient, reminder.PageID, cfg.URLProp, chosenURL)
			if updateError != nil {
				logger.Warnw("url write-back failed", "page", reminder.PageID, "error", updateError)
			} else {
				logger.Infow("url written back", "title", reminder.Title, "url", chosenURL)
			}
		}

		if sendError := PublishToSlack.SendReminder(slackApi, cfg.SlackChannel, reminder.Message); sendError != nil {
			return fmt.Errorf("slack post failed for %q: %w", reminder.Title, sendError)
		}
		logger.Infow("reminder sent", "title", reminder.Title, "assignees", reminder.Label, "mentions", len(reminder.MentionIDs))

		if dbPool != nil {
			if saveError := Repo.SaveReminderLog(ctx, dbPool, reminder.PageID, reminder.Title, cfg.SlackChannel, today); saveError != nil {
				logger.Warnw("delivery log insert failed", "page", reminder.PageID, "error", saveError)
			}
		}

		dispatched = append(dispatched, reminder)

		// deliberate throttle against Slack rate limits, one page at a time
		time.Sleep(cfg.PostDelay)
	}

	postDigest(ctx, cfg, logger, slackApi, today, dispatched)

	logger.Infow("reminder run completed", "sent", len(dispatched))
	return nil
}

// postDigest asks Gemini for a short summary of the dispatched reminders and
// posts it to the same channel. Everything about it is best-effort.
func postDigest(ctx context.Context, cfg Config, logger *zap.SugaredLogger, slackApi *slack.Client, today string, dispatched []Reminder) {
	if cfg.GeminiAPIKey == "" || len(dispatched) == 0 {
		return
	}

	genAiClient, genAiError := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if genAiError != nil {
		logger.Warnw("digest skipped, gemini client init failed", "error", genAiError)
		return
	}

	digest, digestError := SummarizeDigest.SummarizeReminders(ctx, genAiClient, today, dispatched)
	if digestError != nil {
		logger.Warnw("digest generation failed", "error", digestError)
		return
	}
	if digest == "" {
		return
	}

	text := "📋 *本日のリマインドまとめ*\n" + digest
	if sendError := PublishToSlack.SendReminder(slackApi, cfg.SlackChannel, text); sendError != nil {
		logger.Warnw("digest post failed", "error", sendError)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "notion-slack-reminder",
		Short:         "Posts Slack reminders for Notion pages due today",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the reminder job once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.LogPath)
			if err != nil {
				return err
			}
			defer logger.Sync()

			if err := runReminders(cmd.Context(), cfg, logger); err != nil {
				logger.Errorw("reminder run aborted", "error", err)
				return errAborted
			}
			return nil
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reminder job on a cron schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.LogPath)
			if err != nil {
				return err
			}
			defer logger.Sync()

			scheduler := cron.New(cron.WithLocation(loadLocation(cfg.Timezone)))
			_, addError := scheduler.AddFunc(cfg.CronSpec, func() {
				if runError := runReminders(context.Background(), cfg, logger); runError != nil {
					logger.Errorw("scheduled reminder run aborted", "error", runError)
				}
			})
			if addError != nil {
				return fmt.Errorf("invalid REMINDER_CRON %q: %w", cfg.CronSpec, addError)
			}

			logger.Infow("scheduler started", "cron", cfg.CronSpec, "timezone", cfg.Timezone)
			scheduler.Run()
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, serveCmd)
	return rootCmd
}

// reportError prints errors that were not already logged and returns the
// process exit code.
func reportError(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	if !errors.Is(err, errAborted) {
		fmt.Fprintln(w, err)
	}
	return 1
}

func main() {
	os.Exit(reportError(os.Stderr, newRootCmd().Execute()))
}
