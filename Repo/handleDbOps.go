package Repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// The delivery log keeps one row per dispatched reminder so a rerun on the
// same day does not notify the same page twice. The table is expected to
// exist:
//
//	CREATE TABLE reminder_log (
//	    page_id  TEXT NOT NULL,
//	    title    TEXT NOT NULL,
//	    channel  TEXT NOT NULL,
//	    sent_on  DATE NOT NULL,
//	    sent_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    PRIMARY KEY (page_id, sent_on)
//	)

func InitDbPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	dbPool, dbConnectionError := pgxpool.New(ctx, databaseURL)
	if dbConnectionError != nil {
		return nil, dbConnectionError
	}
	return dbPool, nil
}

// WasReminderSent reports whether a reminder for this page was already
// logged for the given day.
func WasReminderSent(ctx context.Context, dbPool *pgxpool.Pool, pageID string, sentOn string) (bool, error) {
	if dbPool == nil {
		return false, fmt.Errorf("database pool is not initialized")
	}

	query := `
		SELECT COUNT(*) FROM reminder_log WHERE page_id = $1 AND sent_on = $2`

	var count int
	dbQueryError := dbPool.QueryRow(ctx, query, pageID, sentOn).Scan(&count)
	if dbQueryError != nil {
		return false, dbQueryError
	}

	return count > 0, nil
}

// SaveReminderLog records one dispatched reminder.
func SaveReminderLog(ctx context.Context, dbPool *pgxpool.Pool, pageID, title, channel string, sentOn string) error {
	if dbPool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	query := `
		INSERT INTO reminder_log (page_id, title, channel, sent_on)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (page_id, sent_on) DO NOTHING`

	_, saveReminderLogError := dbPool.Exec(ctx, query, pageID, title, channel, sentOn)
	if saveReminderLogError != nil {
		return saveReminderLogError
	}

	return nil
}
