package ExtractAssignees

import (
	"regexp"
	"strings"

	"notion-slack-reminder/Models"

	"github.com/jomei/notionapi"
)

type AssigneeRef = Models.AssigneeRef

const (
	// UntitledPlaceholder is shown when the title property is missing or blank.
	UntitledPlaceholder = "(無題)"
)

// free-text assignee lists are split on runs of these delimiters
var nameSplitPattern = regexp.MustCompile(`[、・,/／\n\r]+`)

// ExtractAssignees reads the assignee property of a page and returns the
// person references it holds, in property order. The property is polymorphic:
// the Notion API tags it as people, select, multi_select or rich_text and we
// dispatch on that tag. A missing property or an unrecognized shape yields an
// empty slice, never an error. Nothing is de-duplicated here — order must
// reflect the source field.
func ExtractAssignees(page notionapi.Page, propName string) []AssigneeRef {
	prop, ok := page.Properties[propName]
	if !ok {
		return nil
	}

	switch p := prop.(type) {
	case *notionapi.PeopleProperty:
		var refs []AssigneeRef
		for _, person := range p.People {
			name := strings.TrimSpace(person.Name)
			email := ""
			if person.Person != nil {
				email = person.Person.Email
			}
			// a nameless entry is only useful if it still carries an email
			if name == "" && email == "" {
				continue
			}
			refs = append(refs, AssigneeRef{Name: name, Email: email})
		}
		return refs

	case *notionapi.SelectProperty:
		name := strings.TrimSpace(p.Select.Name)
		if name == "" {
			return nil
		}
		return []AssigneeRef{{Name: name}}

	case *notionapi.MultiSelectProperty:
		var refs []AssigneeRef
		for _, opt := range p.MultiSelect {
			name := strings.TrimSpace(opt.Name)
			if name == "" {
				continue
			}
			refs = append(refs, AssigneeRef{Name: name})
		}
		return refs

	case *notionapi.RichTextProperty:
		text := strings.TrimSpace(joinPlainText(p.RichText))
		if text == "" {
			return nil
		}
		var refs []AssigneeRef
		for _, part := range nameSplitPattern.Split(text, -1) {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			refs = append(refs, AssigneeRef{Name: part})
		}
		return refs

	default:
		return nil
	}
}

// ExtractTitle returns the page title joined from its rich text fragments,
// or a placeholder when the property is missing or empty.
func ExtractTitle(page notionapi.Page, propName string) string {
	prop, ok := page.Properties[propName]
	if !ok {
		return UntitledPlaceholder
	}
	title, ok := prop.(*notionapi.TitleProperty)
	if !ok {
		return UntitledPlaceholder
	}
	joined := joinPlainText(title.Title)
	if joined == "" {
		return UntitledPlaceholder
	}
	return joined
}

// ExtractFallbackSlackIDs reads the literal Slack-ID column: rich text
// fragments that look like user IDs (start with U, at least 8 characters).
// Anything else in the column is ignored.
func ExtractFallbackSlackIDs(page notionapi.Page, propName string) []string {
	prop, ok := page.Properties[propName]
	if !ok {
		return nil
	}
	rt, ok := prop.(*notionapi.RichTextProperty)
	if !ok {
		return nil
	}
	var ids []string
	for _, r := range rt.RichText {
		text := strings.TrimSpace(r.PlainText)
		if strings.HasPrefix(text, "U") && len(text) >= 8 {
			ids = append(ids, text)
		}
	}
	return ids
}

// PageURL returns the canonical Notion link of the page.
func PageURL(page notionapi.Page) string {
	return page.URL
}

func joinPlainText(fragments []notionapi.RichText) string {
	var b strings.Builder
	for _, r := range fragments {
		b.WriteString(r.PlainText)
	}
	return b.String()
}
