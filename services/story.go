package services

import (
	"context"
	"os"

	"github.com/athapong/story-mcp/pkg/adf"
	"github.com/athapong/story-mcp/pkg/story"
	jira "github.com/ctreminiom/go-atlassian/jira/v3"
	"github.com/ctreminiom/go-atlassian/pkg/infra/models"
	"github.com/pkg/errors"
)

// FetchStoryIssue loads an issue with its rendered fields so the description
// can fall back to HTML.
func FetchStoryIssue(ctx context.Context, client *jira.Client, key string) (*story.Issue, error) {
	key, err := story.NormalizeTicketID(key)
	if err != nil {
		return nil, err
	}

	_, response, err := client.Issue.Get(ctx, key, []string{"*all"}, []string{"renderedFields"})
	if err != nil {
		if response != nil {
			return nil, errors.Errorf("failed to get issue: %s (endpoint: %s)", response.Bytes.String(), response.Endpoint)
		}
		return nil, errors.Wrap(err, "failed to get issue")
	}

	return story.ParseIssue(response.Bytes.Bytes())
}

// PostStoryComment posts the full story file to its ticket as a markdown
// code block.
func PostStoryComment(ctx context.Context, client *jira.Client, ticket story.Ticket, content string) (*models.IssueCommentScheme, error) {
	payload := &models.CommentPayloadScheme{
		Body: adf.ToComment(story.CommentDocument(story.CommentBody(content))),
	}

	comment, response, err := client.Issue.Comment.Add(ctx, ticket.IDOrKey(), payload, nil)
	if err != nil {
		if response != nil {
			return nil, errors.Errorf("failed to add comment: %s (endpoint: %s)", response.Bytes.String(), response.Endpoint)
		}
		return nil, errors.Wrap(err, "failed to add comment")
	}
	return comment, nil
}

// AttachStoryDocuments uploads the planning documents found in dir. It stops
// at the first failed upload and returns what was attached so far.
func AttachStoryDocuments(ctx context.Context, client *jira.Client, key, dir string) ([]story.StoryDocument, error) {
	docs, err := story.CollectDocuments(dir)
	if err != nil {
		return nil, err
	}

	var attached []story.StoryDocument
	for _, doc := range docs {
		if err := attachFile(ctx, client, key, doc); err != nil {
			return attached, err
		}
		attached = append(attached, doc)
	}
	return attached, nil
}

func attachFile(ctx context.Context, client *jira.Client, key string, doc story.StoryDocument) error {
	file, err := os.Open(doc.Path)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", doc.Path)
	}
	defer file.Close()

	_, response, err := client.Issue.Attachment.Add(ctx, key, doc.Name, file)
	if err != nil {
		if response != nil {
			return errors.Errorf("failed to attach %s: %s (endpoint: %s)", doc.Name, response.Bytes.String(), response.Endpoint)
		}
		return errors.Wrapf(err, "failed to attach %s", doc.Name)
	}
	return nil
}
