package BuildMentions

import (
	"strings"

	"notion-slack-reminder/Models"
	"notion-slack-reminder/Normalize"

	"github.com/slack-go/slack"
)

type AssigneeRef = Models.AssigneeRef
type MentionResult = Models.MentionResult

// UnassignedLabel is the display label when no assignee could be read at all.
const UnassignedLabel = "（実施責任者未設定）"

// BuildNameIndex turns a full user directory snapshot into a
// normalized-name -> Slack user ID lookup table. Both the real name and the
// display name of each user are indexed. When two users normalize to the same
// key the first one in the snapshot wins; later entries never overwrite.
func BuildNameIndex(users []slack.User) map[string]string {
	idx := make(map[string]string, len(users)*2)
	for _, u := range users {
		for _, name := range []string{u.Profile.RealName, u.Profile.DisplayName} {
			key := Normalize.NormalizeName(name)
			if key == "" {
				continue
			}
			if _, exists := idx[key]; !exists {
				idx[key] = u.ID
			}
		}
	}
	return idx
}

// BuildURLIndex turns the configured name -> personal URL map into a
// normalized-name -> URL lookup table. Entries with an empty URL are dropped.
// The configuration is assumed conflict-free after normalization.
func BuildURLIndex(personURLMap map[string]string) map[string]string {
	idx := make(map[string]string, len(personURLMap))
	for name, url := range personURLMap {
		if url == "" {
			continue
		}
		key := Normalize.NormalizeName(name)
		if key == "" {
			continue
		}
		idx[key] = url
	}
	return idx
}

// ResolvePersonURLs looks up every name against the URL index and collects
// the hits, de-duplicated in first-occurrence order across the whole list.
func ResolvePersonURLs(names []string, urlIndex map[string]string) []string {
	var urls []string
	seen := make(map[string]bool)
	for _, name := range names {
		key := Normalize.NormalizeName(name)
		if key == "" {
			continue
		}
		if url, ok := urlIndex[key]; ok && !seen[url] {
			urls = append(urls, url)
			seen[url] = true
		}
	}
	return urls
}

// BuildMentions resolves one page's assignee references into the display
// label, the Slack IDs to mention and the matched personal URLs.
//
// Resolution runs as an ordered chain of stages that all feed the same
// de-duplicating accumulator, so precedence stays auditable:
//
//  1. label parts — name, else email, else the unassigned placeholder
//  2. name -> ID via the directory index, and name -> URL via the URL index
//  3. email -> ID via the resolver, only after stage 2 saw every ref
//  4. fallback IDs taken literally from the page
//
// A failed email lookup is treated as a miss for that one ref and the chain
// carries on. Stages only ever append, never remove.
func BuildMentions(
	refs []AssigneeRef,
	nameIndex map[string]string,
	urlIndex map[string]string,
	fallbackIDs []string,
	emails Models.EmailResolver,
) MentionResult {

	var labelParts []string
	var mentionIDs []string
	var urls []string
	seenID := make(map[string]bool)
	seenURL := make(map[string]bool)

	// 1 + 2: label, name-based ID resolution and personal URL collection
	for _, ref := range refs {
		switch {
		case ref.Name != "":
			labelParts = append(labelParts, ref.Name)
		case ref.Email != "":
			labelParts = append(labelParts, ref.Email)
		default:
			labelParts = append(labelParts, UnassignedLabel)
		}

		key := Normalize.NormalizeName(ref.Name)
		if key == "" {
			continue
		}
		if uid, ok := nameIndex[key]; ok && !seenID[uid] {
			mentionIDs = append(mentionIDs, uid)
			seenID[uid] = true
		}
		if url, ok := urlIndex[key]; ok && !seenURL[url] {
			urls = append(urls, url)
			seenURL[url] = true
		}
	}

	// 3: email -> Slack ID, strictly after the name pass finished for all refs
	if emails != nil {
		for _, ref := range refs {
			if ref.Email == "" {
				continue
			}
			uid, err := emails.UserIDByEmail(ref.Email)
			if err != nil || uid == "" {
				continue
			}
			if !seenID[uid] {
				mentionIDs = append(mentionIDs, uid)
				seenID[uid] = true
			}
		}
	}

	// 4: literal fallback IDs from the page
	for _, uid := range fallbackIDs {
		if uid == "" || seenID[uid] {
			continue
		}
		mentionIDs = append(mentionIDs, uid)
		seenID[uid] = true
	}

	label := strings.Join(labelParts, "、")
	if label == "" {
		label = UnassignedLabel
	}

	return MentionResult{Label: label, MentionIDs: mentionIDs, URLs: urls}
}

// SlackEmailResolver resolves emails through the Slack users.lookupByEmail API.
type SlackEmailResolver struct {
	Client *slack.Client
}

func (r SlackEmailResolver) UserIDByEmail(email string) (string, error) {
	user, err := r.Client.GetUserByEmail(email)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}
