package story

import (
	"regexp"
	"strings"

	"github.com/athapong/story-mcp/pkg/adf"
	"github.com/pkg/errors"
)

var (
	// ErrNoMetadata is returned for story files without a --- header block.
	ErrNoMetadata = errors.New("story file does not contain a metadata header (delimited by ---)")
	// ErrNoTicketKey is returned when the header names no ticket.
	ErrNoTicketKey = errors.New("metadata does not contain a Key or Jira field")

	jiraKeyPattern = regexp.MustCompile(`\[([A-Z]+-\d+)\]`)
	jiraIDPattern  = regexp.MustCompile(`[?&]id=(\d+)`)
)

// Ticket identifies the Jira issue a story file belongs to.
type Ticket struct {
	Key string
	ID  string
}

// IDOrKey prefers the numeric id, which survives key renames.
func (t Ticket) IDOrKey() string {
	if t.ID != "" {
		return t.ID
	}
	return t.Key
}

// ReadStoryMetadata parses the header of a story file. Unlike ParseMetadata
// it splits on the first colon and trims both sides.
func ReadStoryMetadata(content string) (Metadata, error) {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	start, end, ok := metadataBounds(lines)
	if !ok {
		return nil, ErrNoMetadata
	}

	metadata := Metadata{}
	for _, line := range lines[start+1 : end] {
		key, value, found := strings.Cut(line, ":")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			continue
		}
		metadata[key] = strings.TrimSpace(value)
	}
	return metadata, nil
}

// TicketFromMetadata resolves the ticket from an explicit Key line, or from
// a "Jira: [KEY](URL)" line. A numeric id is taken from a Ticket ID line or
// from an id= query parameter in the Jira link.
func TicketFromMetadata(metadata Metadata) (Ticket, error) {
	jiraField := metadata["Jira"]

	if key := firstOf(metadata, "Key", "key"); key != "" {
		ticket := Ticket{Key: key}
		if id := firstOf(metadata, "Ticket ID", "TicketID", "ticket id", "ticketid"); id != "" {
			ticket.ID = id
		} else if match := jiraIDPattern.FindStringSubmatch(jiraField); match != nil {
			ticket.ID = match[1]
		}
		return ticket, nil
	}

	if jiraField == "" {
		return Ticket{}, ErrNoTicketKey
	}

	match := jiraKeyPattern.FindStringSubmatch(jiraField)
	if match == nil {
		return Ticket{}, errors.Wrapf(ErrNoTicketKey, "could not extract ticket key from Jira field %q", jiraField)
	}

	ticket := Ticket{Key: match[1]}
	if idMatch := jiraIDPattern.FindStringSubmatch(jiraField); idMatch != nil {
		ticket.ID = idMatch[1]
	}
	return ticket, nil
}

// CommentBody is the text posted when a story file changes.
func CommentBody(content string) string {
	return "Story updated:\n\n" + content
}

// CommentDocument wraps body in a markdown code block so Jira shows it verbatim.
func CommentDocument(body string) *adf.Document {
	return &adf.Document{
		Type:    adf.TypeDoc,
		Version: 1,
		Content: []*adf.Node{{
			Type:    adf.TypeCodeBlock,
			Attrs:   map[string]interface{}{"language": "markdown"},
			Content: []*adf.Node{{Type: adf.TypeText, Text: body}},
		}},
	}
}

func firstOf(metadata Metadata, keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(metadata[key]); v != "" {
			return v
		}
	}
	return ""
}
