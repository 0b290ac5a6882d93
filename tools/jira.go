package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/athapong/story-mcp/pkg/story"
	"github.com/athapong/story-mcp/services"
	"github.com/athapong/story-mcp/util"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterJiraTool registers the Jira story tools to the server
func RegisterJiraTool(s *server.MCPServer) {
	fetchTool := mcp.NewTool("jira_fetch_story",
		mcp.WithDescription("Fetch a Jira issue and render it as a story.md file with metadata, user story, references, attachments and planning sections"),
		mcp.WithString("ticket_id", mcp.Required(), mcp.Description("The Jira issue key (e.g., SCRUM-1)")),
		mcp.WithString("root_dir", mcp.Description("Project root; when set the story is written to <root_dir>/.backlog/<date>-<KEY>-<summary>/story.md")),
	)
	s.AddTool(fetchTool, util.ErrorGuard(jiraFetchStoryHandler))

	commentTool := mcp.NewTool("jira_post_story_comment",
		mcp.WithDescription("Post the content of a local story file as a comment on the ticket named in its metadata header"),
		mcp.WithString("story_path", mcp.Required(), mcp.Description("Path to the story.md file")),
	)
	s.AddTool(commentTool, util.ErrorGuard(jiraPostStoryCommentHandler))

	attachTool := mcp.NewTool("jira_attach_story_documents",
		mcp.WithDescription("Attach the planning documents (readiness.md, test-plan.md, test-scenarios.md, task-breakdown.md) from a story directory to a Jira issue"),
		mcp.WithString("ticket_id", mcp.Required(), mcp.Description("The Jira issue key (e.g., SCRUM-1)")),
		mcp.WithString("story_dir", mcp.Required(), mcp.Description("Directory holding the planning documents")),
	)
	s.AddTool(attachTool, util.ErrorGuard(jiraAttachStoryDocumentsHandler))
}

func jiraFetchStoryHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	arguments := request.Params.Arguments

	ticketID, ok := arguments["ticket_id"].(string)
	if !ok {
		return nil, fmt.Errorf("ticket_id argument is required")
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	issue, err := services.FetchStoryIssue(ctxWithTimeout, services.JiraClient(), ticketID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	content, err := story.BuildStory(issue, os.Getenv("JIRA_BASE_URL"), now)
	if err != nil {
		return nil, err
	}

	rootDir, _ := arguments["root_dir"].(string)
	if rootDir == "" {
		return mcp.NewToolResultText(content), nil
	}

	dir := story.StoryDir(rootDir, issue, now)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create story directory: %v", err)
	}
	path := filepath.Join(dir, "story.md")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return nil, fmt.Errorf("failed to write story: %v", err)
	}

	return mcp.NewToolResultText(fmt.Sprintf("Story written to %s\n\n%s", path, content)), nil
}

func jiraPostStoryCommentHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	storyPath, ok := request.Params.Arguments["story_path"].(string)
	if !ok || storyPath == "" {
		return nil, fmt.Errorf("story_path argument is required")
	}

	raw, err := os.ReadFile(storyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read story file: %v", err)
	}

	metadata, err := story.ReadStoryMetadata(string(raw))
	if err != nil {
		return nil, err
	}
	ticket, err := story.TicketFromMetadata(metadata)
	if err != nil {
		return nil, err
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	comment, err := services.PostStoryComment(ctxWithTimeout, services.JiraClient(), ticket, string(raw))
	if err != nil {
		return nil, err
	}

	return mcp.NewToolResultText(fmt.Sprintf("Comment %s posted to %s", comment.ID, ticket.Key)), nil
}

func jiraAttachStoryDocumentsHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	arguments := request.Params.Arguments

	ticketID, ok := arguments["ticket_id"].(string)
	if !ok {
		return nil, fmt.Errorf("ticket_id argument is required")
	}
	key, err := story.NormalizeTicketID(ticketID)
	if err != nil {
		return nil, err
	}

	storyDir, ok := arguments["story_dir"].(string)
	if !ok || storyDir == "" {
		return nil, fmt.Errorf("story_dir argument is required")
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	attached, err := services.AttachStoryDocuments(ctxWithTimeout, services.JiraClient(), key, storyDir)

	var result strings.Builder
	for _, doc := range attached {
		result.WriteString(fmt.Sprintf("Attached %s\n", doc.Name))
	}
	if err != nil {
		if result.Len() == 0 {
			return nil, err
		}
		result.WriteString(fmt.Sprintf("Stopped: %v\n", err))
		return mcp.NewToolResultError(result.String()), nil
	}

	return mcp.NewToolResultText(result.String()), nil
}
