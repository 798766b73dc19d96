package FetchReminders

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jomei/notionapi"
)

// dateEqualsFilter is a date-only equality filter for the reminder date
// property. notionapi.Date always marshals as a full RFC3339 timestamp,
// and a timestamp makes Notion's equals comparison time-precise, so it
// would never match the date-only values the database holds. The payload
// is therefore written by hand: {"property": ..., "date": {"equals": "2006-01-02"}}.
// The embedded PropertyFilter only satisfies the Filter interface.
type dateEqualsFilter struct {
	notionapi.PropertyFilter

	property string
	day      time.Time
}

func (f dateEqualsFilter) MarshalJSON() ([]byte, error) {
	type dateCondition struct {
		Equals string `json:"equals"`
	}
	return json.Marshal(struct {
		Property string        `json:"property"`
		Date     dateCondition `json:"date"`
	}{
		Property: f.property,
		Date:     dateCondition{Equals: f.day.Format("2006-01-02")},
	})
}

// FetchDuePages queries the reminder database for pages whose date property
// equals the given day and returns them in query order, following the cursor
// until Notion reports no more results. A transport error here is fatal to
// the run and is returned as-is.
func FetchDuePages(ctx context.Context, client *notionapi.Client, databaseID, dateProp string, day time.Time) ([]notionapi.Page, error) {
	request := &notionapi.DatabaseQueryRequest{
		Filter: dateEqualsFilter{property: dateProp, day: day},
	}

	var pages []notionapi.Page
	for {
		response, err := client.Database.Query(ctx, notionapi.DatabaseID(databaseID), request)
		if err != nil {
			return nil, err
		}
		pages = append(pages, response.Results...)
		if !response.HasMore {
			break
		}
		request.StartCursor = response.NextCursor
	}
	return pages, nil
}

// UpdateURLProperty writes the resolved personal URL back into the page's
// URL property. An empty URL is a no-op. Callers treat a failure as
// best-effort: it is logged, never fatal (the property may simply not exist
// on that database).
func UpdateURLProperty(ctx context.Context, client *notionapi.Client, pageID, propName, url string) error {
	if url == "" {
		return nil
	}
	_, err := client.Page.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{
		Properties: notionapi.Properties{
			propName: notionapi.URLProperty{URL: url},
		},
	})
	return err
}
