package story

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/athapong/story-mcp/pkg/adf"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

var (
	// ErrInvalidTicketKey is returned for ids that are not PROJECT-NUMBER.
	ErrInvalidTicketKey = errors.New("invalid ticket id")
	// ErrMissingFields is returned when an issue lacks type, status or project.
	ErrMissingFields = errors.New("missing required Jira fields")

	ticketKeyPattern   = regexp.MustCompile(`^[A-Z]+-\d+$`)
	unsafePathPattern  = regexp.MustCompile(`[/\s]+`)
	localStorySections = []struct{ heading, hint string }{
		{"## Acceptance Criteria", "_Add acceptance criteria here._"},
		{"## Non-Functional Requirements", "_Add any non-functional requirements here._"},
		{"## Task Breakdown", "_Break down the work required to complete this story._"},
		{"## Engineering Notes", "_Add implementation notes here._"},
		{"## Test Notes", "_Add testing notes and scenarios here._"},
		{"## Implementation Notes", "_Document decisions, gotchas, and important context._"},
	}
)

// Issue is the subset of a Jira issue written into a story file.
type Issue struct {
	Key         string
	Summary     string
	Type        string
	Status      string
	Project     string
	Epic        string
	Priority    string
	Labels      []string
	Created     string
	Updated     string
	DueDate     string
	Links       []IssueLink
	Attachments []Attachment

	// Description is the ADF body when the API returned one.
	Description *adf.Document
	// DescriptionHTML is renderedFields.description, when expanded.
	DescriptionHTML string
	// DescriptionText is a plain string description from older APIs.
	DescriptionText string
}

// IssueLink is one side of an issue link.
type IssueLink struct {
	Type    string
	Key     string
	Summary string
}

// Attachment is a file attached to an issue.
type Attachment struct {
	ID       string
	Filename string
	URL      string
	MIMEType string
}

// NormalizeTicketID upper-cases and trims id and checks it is PROJECT-NUMBER.
func NormalizeTicketID(id string) (string, error) {
	key := strings.ToUpper(strings.TrimSpace(id))
	if !ticketKeyPattern.MatchString(key) {
		return "", errors.Wrapf(ErrInvalidTicketKey, "%q, expected PROJECT-NUMBER such as SCRUM-1", id)
	}
	return key, nil
}

// ParseIssue reads a Jira REST v3 issue response.
func ParseIssue(raw []byte) (*Issue, error) {
	if !gjson.ValidBytes(raw) {
		return nil, errors.New("issue response is not valid JSON")
	}

	root := gjson.ParseBytes(raw)
	fields := root.Get("fields")

	issue := &Issue{
		Key:             root.Get("key").String(),
		Summary:         fields.Get("summary").String(),
		Type:            fields.Get("issuetype.name").String(),
		Status:          fields.Get("status.name").String(),
		Project:         fields.Get("project.name").String(),
		Priority:        fields.Get("priority.name").String(),
		Created:         fields.Get("created").String(),
		Updated:         fields.Get("updated").String(),
		DueDate:         fields.Get("duedate").String(),
		DescriptionHTML: root.Get("renderedFields.description").String(),
	}

	epic := fields.Get("customfield_10014")
	if epic.IsObject() {
		issue.Epic = epic.Get("name").String()
	} else if epic.Type == gjson.String {
		issue.Epic = epic.String()
	}

	for _, label := range fields.Get("labels").Array() {
		issue.Labels = append(issue.Labels, label.String())
	}

	description := fields.Get("description")
	switch {
	case description.IsObject():
		// An unreadable body falls through to the rendered HTML.
		if doc, err := adf.Parse([]byte(description.Raw)); err == nil {
			issue.Description = doc
		}
	case description.Type == gjson.String:
		issue.DescriptionText = description.String()
	}

	for _, link := range fields.Get("issuelinks").Array() {
		relType := link.Get("type.name").String()
		for _, side := range []string{"inwardIssue", "outwardIssue"} {
			other := link.Get(side)
			if !other.Exists() {
				continue
			}
			issue.Links = append(issue.Links, IssueLink{
				Type:    relType,
				Key:     other.Get("key").String(),
				Summary: other.Get("fields.summary").String(),
			})
		}
	}

	for _, file := range fields.Get("attachment").Array() {
		issue.Attachments = append(issue.Attachments, Attachment{
			ID:       file.Get("id").String(),
			Filename: file.Get("filename").String(),
			URL:      file.Get("content").String(),
			MIMEType: file.Get("mimeType").String(),
		})
	}

	return issue, nil
}

// DescriptionMarkdown renders the description from the best source present:
// the ADF body, then the rendered HTML, then the plain text.
func (i *Issue) DescriptionMarkdown() string {
	if i.Description != nil {
		if md := adf.Render(i.Description); strings.TrimSpace(md) != "" {
			return md
		}
	}
	if i.DescriptionHTML != "" {
		if md, err := htmltomarkdown.ConvertString(i.DescriptionHTML); err == nil && strings.TrimSpace(md) != "" {
			return strings.TrimSpace(md)
		}
	}
	return strings.TrimSpace(i.DescriptionText)
}

// BuildStory writes the story.md content for an issue.
func BuildStory(issue *Issue, baseURL string, now time.Time) (string, error) {
	var missing []string
	if issue.Type == "" {
		missing = append(missing, "issuetype")
	}
	if issue.Status == "" {
		missing = append(missing, "status")
	}
	if issue.Project == "" {
		missing = append(missing, "project")
	}
	if len(missing) > 0 {
		return "", errors.Wrapf(ErrMissingFields, "%s lacks %s", issue.Key, strings.Join(missing, ", "))
	}

	baseURL = strings.TrimRight(baseURL, "/")
	browse := func(key string) string {
		return fmt.Sprintf("[%s](%s/browse/%s)", key, baseURL, key)
	}

	lines := []string{
		fmt.Sprintf("# %s - %s", issue.Key, issue.Summary),
		"",
		"---",
		"Jira: " + browse(issue.Key),
		"Title: " + issue.Summary,
		"Type: " + orNA(issue.Type),
		"Status (Jira): " + orNA(issue.Status),
		"Project: " + orNA(issue.Project),
		"Epic: " + orNA(issue.Epic),
		"Priority: " + orNA(issue.Priority),
		"Labels: " + orNA(strings.Join(issue.Labels, ", ")),
		"Created: " + issue.Created,
		"Updated: " + issue.Updated,
	}
	if issue.DueDate != "" {
		lines = append(lines, "Due Date: "+issue.DueDate)
	}
	lines = append(lines,
		"Imported: "+now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		"---",
		"",
	)

	if description := issue.DescriptionMarkdown(); description != "" {
		lines = append(lines, UserStoryHeading, "", description, "")
	}

	if len(issue.Links) > 0 {
		lines = append(lines, "## References", "")
		for _, link := range issue.Links {
			lines = append(lines, fmt.Sprintf("- %s: %s - %s", link.Type, browse(link.Key), link.Summary))
		}
		lines = append(lines, "")
	}

	if len(issue.Attachments) > 0 {
		lines = append(lines, "## Attachments", "")
		for _, file := range issue.Attachments {
			lines = append(lines, fmt.Sprintf("- [%s](%s)", file.Filename, file.URL))
		}
		lines = append(lines, "")
	}

	for _, section := range localStorySections {
		lines = append(lines, section.heading, "", section.hint, "")
	}

	return strings.Join(lines, "\n"), nil
}

// StoryDir is the directory a fetched story is written to.
func StoryDir(root string, issue *Issue, now time.Time) string {
	name := fmt.Sprintf("%s-%s-%s", now.UTC().Format("2006-01-02"), issue.Key, SafeSummary(issue.Summary))
	return filepath.Join(root, ".backlog", name)
}

// SafeSummary makes a summary usable in a path: runs of whitespace and
// slashes become underscores and the result is cut to 40 characters.
func SafeSummary(summary string) string {
	safe := []rune(unsafePathPattern.ReplaceAllString(summary, "_"))
	if len(safe) > 40 {
		safe = safe[:40]
	}
	return string(safe)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
