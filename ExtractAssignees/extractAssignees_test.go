package ExtractAssignees

import (
	"testing"

	"notion-slack-reminder/Models"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const assigneeProp = "実施責任者"

func pageWith(prop string, value notionapi.Property) notionapi.Page {
	return notionapi.Page{
		ID:  "page-1",
		URL: "https://www.notion.so/page-1",
		Properties: notionapi.Properties{
			prop: value,
		},
	}
}

func richText(parts ...string) []notionapi.RichText {
	var out []notionapi.RichText
	for _, p := range parts {
		out = append(out, notionapi.RichText{PlainText: p})
	}
	return out
}

func TestExtractAssignees_PeopleShape(t *testing.T) {
	page := pageWith(assigneeProp, &notionapi.PeopleProperty{
		People: []notionapi.User{
			{Name: "山田 太郎", Person: &notionapi.Person{Email: "yamada@example.com"}},
			{Name: "鈴木一郎"},
			{Name: "", Person: &notionapi.Person{Email: "suzuki@example.com"}},
			{Name: ""}, // no name, no email: dropped
		},
	})

	refs := ExtractAssignees(page, assigneeProp)
	require.Len(t, refs, 3)
	assert.Equal(t, Models.AssigneeRef{Name: "山田 太郎", Email: "yamada@example.com"}, refs[0])
	assert.Equal(t, Models.AssigneeRef{Name: "鈴木一郎"}, refs[1])
	assert.Equal(t, Models.AssigneeRef{Name: "", Email: "suzuki@example.com"}, refs[2])
}

func TestExtractAssignees_SelectShape(t *testing.T) {
	page := pageWith(assigneeProp, &notionapi.SelectProperty{
		Select: notionapi.Option{Name: " 佐藤花子 "},
	})

	refs := ExtractAssignees(page, assigneeProp)
	require.Len(t, refs, 1)
	assert.Equal(t, "佐藤花子", refs[0].Name)
	assert.Empty(t, refs[0].Email)

	blank := pageWith(assigneeProp, &notionapi.SelectProperty{})
	assert.Empty(t, ExtractAssignees(blank, assigneeProp))
}

func TestExtractAssignees_MultiSelectShape(t *testing.T) {
	page := pageWith(assigneeProp, &notionapi.MultiSelectProperty{
		MultiSelect: []notionapi.Option{
			{Name: "山田太郎"},
			{Name: "  "},
			{Name: "佐藤花子"},
		},
	})

	refs := ExtractAssignees(page, assigneeProp)
	require.Len(t, refs, 2)
	assert.Equal(t, "山田太郎", refs[0].Name)
	assert.Equal(t, "佐藤花子", refs[1].Name)
}

func TestExtractAssignees_FreeTextShape(t *testing.T) {
	page := pageWith(assigneeProp, &notionapi.RichTextProperty{
		RichText: richText("山田太郎、鈴木一郎/佐藤花子"),
	})

	refs := ExtractAssignees(page, assigneeProp)
	require.Len(t, refs, 3)
	assert.Equal(t, "山田太郎", refs[0].Name)
	assert.Equal(t, "鈴木一郎", refs[1].Name)
	assert.Equal(t, "佐藤花子", refs[2].Name)
	for _, r := range refs {
		assert.Empty(t, r.Email)
	}
}

func TestExtractAssignees_FreeTextDelimiters(t *testing.T) {
	// runs of mixed delimiters collapse, segments get trimmed
	page := pageWith(assigneeProp, &notionapi.RichTextProperty{
		RichText: richText("山田太郎 ・", "鈴木一郎／／\n 佐藤花子 \r\n高橋"),
	})

	refs := ExtractAssignees(page, assigneeProp)
	require.Len(t, refs, 4)
	assert.Equal(t, "山田太郎", refs[0].Name)
	assert.Equal(t, "鈴木一郎", refs[1].Name)
	assert.Equal(t, "佐藤花子", refs[2].Name)
	assert.Equal(t, "高橋", refs[3].Name)
}

func TestExtractAssignees_EmptyAndUnknown(t *testing.T) {
	missing := notionapi.Page{Properties: notionapi.Properties{}}
	assert.Empty(t, ExtractAssignees(missing, assigneeProp))

	unknown := pageWith(assigneeProp, &notionapi.NumberProperty{Number: 42})
	assert.Empty(t, ExtractAssignees(unknown, assigneeProp))

	blankText := pageWith(assigneeProp, &notionapi.RichTextProperty{RichText: richText("  \n ")})
	assert.Empty(t, ExtractAssignees(blankText, assigneeProp))
}

func TestExtractTitle(t *testing.T) {
	page := pageWith("業務従事者", &notionapi.TitleProperty{
		Title: richText("田中", " 健一"),
	})
	assert.Equal(t, "田中 健一", ExtractTitle(page, "業務従事者"))

	missing := notionapi.Page{Properties: notionapi.Properties{}}
	assert.Equal(t, UntitledPlaceholder, ExtractTitle(missing, "業務従事者"))

	empty := pageWith("業務従事者", &notionapi.TitleProperty{})
	assert.Equal(t, UntitledPlaceholder, ExtractTitle(empty, "業務従事者"))
}

func TestExtractFallbackSlackIDs(t *testing.T) {
	page := pageWith("SlackID", &notionapi.RichTextProperty{
		RichText: richText(" U09QNJB06DS ", "U123", "X084EL20EV6", "U084EL20EV6"),
	})

	ids := ExtractFallbackSlackIDs(page, "SlackID")
	require.Len(t, ids, 2)
	assert.Equal(t, "U09QNJB06DS", ids[0])
	assert.Equal(t, "U084EL20EV6", ids[1])

	missing := notionapi.Page{Properties: notionapi.Properties{}}
	assert.Empty(t, ExtractFallbackSlackIDs(missing, "SlackID"))
}

func TestPageURL(t *testing.T) {
	page := pageWith(assigneeProp, &notionapi.SelectProperty{Select: notionapi.Option{Name: "x"}})
	assert.Equal(t, "https://www.notion.so/page-1", PageURL(page))
}
