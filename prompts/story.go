package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func RegisterStoryPrompts(s *server.MCPServer) {
	prompt := mcp.NewPrompt("story_refinement",
		mcp.WithPromptDescription("Pull a Jira story into the backlog, refine it and share the result"),
		mcp.WithArgument("ticket_id", mcp.ArgumentDescription("The Jira issue key (e.g., SCRUM-1)"), mcp.RequiredArgument()),
		mcp.WithArgument("root_dir", mcp.ArgumentDescription("Project root holding the .backlog directory")),
	)
	s.AddPrompt(prompt, storyRefinementHandler)
}

func storyRefinementHandler(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	ticketID := request.Params.Arguments["ticket_id"]
	if ticketID == "" {
		return nil, fmt.Errorf("ticket_id argument is required")
	}
	rootDir := request.Params.Arguments["root_dir"]
	if rootDir == "" {
		rootDir = "."
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Refinement of %s", ticketID),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Refine Jira story %[1]s.
1. Use jira_fetch_story with ticket_id %[1]s and root_dir %[2]s to write story.md.
2. If the User Story section still holds a JSON document, run story_convert_file on story.md.
3. Fill in the Acceptance Criteria, Task Breakdown and Test Notes sections.
4. Write readiness.md, test-plan.md, test-scenarios.md and task-breakdown.md next to story.md.
5. Use jira_post_story_comment and jira_attach_story_documents to share the result.`, ticketID, rootDir),
				},
			},
		},
	}, nil
}
