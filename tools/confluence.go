package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/athapong/story-mcp/pkg/adf"
	"github.com/athapong/story-mcp/pkg/story"
	"github.com/athapong/story-mcp/services"
	"github.com/athapong/story-mcp/util"
	"github.com/ctreminiom/go-atlassian/pkg/infra/models"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterConfluenceTool registers the Confluence page tools to the server
func RegisterConfluenceTool(s *server.MCPServer) {
	pageTool := mcp.NewTool("confluence_get_page",
		mcp.WithDescription("Get a Confluence page rendered as Markdown"),
		mcp.WithString("page_id", mcp.Required(), mcp.Description("Confluence page ID")),
	)
	s.AddTool(pageTool, util.ErrorGuard(confluencePageHandler))

	compareTool := mcp.NewTool("confluence_compare_versions",
		mcp.WithDescription("Compare two versions of a Confluence page as a line diff of their Markdown"),
		mcp.WithString("page_id", mcp.Required(), mcp.Description("Confluence page ID")),
		mcp.WithString("source_version", mcp.Description("Source version number (defaults to the previous version)")),
		mcp.WithString("target_version", mcp.Description("Target version number (defaults to the latest version)")),
	)
	s.AddTool(compareTool, util.ErrorGuard(confluenceCompareHandler))
}

func confluencePageHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := pageIDArgument(request.Params.Arguments)
	if err != nil {
		return nil, err
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 4*time.Second)
	defer cancel()

	page, err := getPage(ctxWithTimeout, pageID, -1)
	if err != nil {
		return nil, err
	}

	content, err := pageMarkdown(page)
	if err != nil {
		return nil, err
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Title: %s\n", page.Title))
	result.WriteString(fmt.Sprintf("ID: %s\n", page.ID))
	result.WriteString(fmt.Sprintf("Space ID: %s\n", page.SpaceID))
	result.WriteString(fmt.Sprintf("Status: %s\n", page.Status))
	if page.Version != nil {
		result.WriteString(fmt.Sprintf("Version: %d (Created: %s)\n", page.Version.Number, page.Version.CreatedAt))
	}

	result.WriteString("\nContent:\n")
	result.WriteString("----------------------------------------\n")
	result.WriteString(content)
	result.WriteString("\n----------------------------------------\n")

	return mcp.NewToolResultText(result.String()), nil
}

func confluenceCompareHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	arguments := request.Params.Arguments
	pageID, err := pageIDArgument(arguments)
	if err != nil {
		return nil, err
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	latest, err := getPage(ctxWithTimeout, pageID, -1)
	if err != nil {
		return nil, err
	}
	if latest.Version == nil {
		return nil, fmt.Errorf("failed to get page version information")
	}

	targetNum := latest.Version.Number
	sourceNum := targetNum - 1
	if v, ok := versionArgument(arguments, "source_version"); ok {
		sourceNum = v
	}
	if v, ok := versionArgument(arguments, "target_version"); ok {
		targetNum = v
	}
	if sourceNum <= 0 || targetNum <= 0 || sourceNum >= targetNum {
		return nil, fmt.Errorf("invalid version numbers: source=%d, target=%d", sourceNum, targetNum)
	}

	target := latest
	if targetNum != latest.Version.Number {
		if target, err = getPage(ctxWithTimeout, pageID, targetNum); err != nil {
			return nil, err
		}
	}
	source, err := getPage(ctxWithTimeout, pageID, sourceNum)
	if err != nil {
		return nil, err
	}

	sourceMarkdown, err := pageMarkdown(source)
	if err != nil {
		return nil, err
	}
	targetMarkdown, err := pageMarkdown(target)
	if err != nil {
		return nil, err
	}

	var comparison strings.Builder
	comparison.WriteString(fmt.Sprintf("Comparing Page: %s (ID: %d)\n", target.Title, pageID))
	comparison.WriteString(fmt.Sprintf("Comparing versions: %d -> %d\n\n", sourceNum, targetNum))

	if source.Title != target.Title {
		comparison.WriteString("Title Changes:\n")
		comparison.WriteString(fmt.Sprintf("- Version %d: %s\n", sourceNum, source.Title))
		comparison.WriteString(fmt.Sprintf("+ Version %d: %s\n\n", targetNum, target.Title))
	} else {
		comparison.WriteString(fmt.Sprintf("Title: %s (unchanged)\n\n", source.Title))
	}

	comparison.WriteString("Content Changes:\n")
	comparison.WriteString("=================\n")
	if diff := story.LineDiff(sourceMarkdown, targetMarkdown); diff != "" {
		comparison.WriteString(diff)
	} else {
		comparison.WriteString("No content changes\n")
	}

	return mcp.NewToolResultText(comparison.String()), nil
}

func getPage(ctx context.Context, pageID, version int) (*models.PageScheme, error) {
	page, response, err := services.ConfluenceClient().Page.Get(ctx, pageID, "atlas_doc_format", false, version)
	if err != nil {
		if response != nil {
			return nil, fmt.Errorf("failed to get page: %s (endpoint: %s)", response.Bytes.String(), response.Endpoint)
		}
		return nil, fmt.Errorf("failed to get page: %v", err)
	}
	if page == nil {
		return nil, fmt.Errorf("no content returned for page ID: %d", pageID)
	}
	return page, nil
}

func pageMarkdown(page *models.PageScheme) (string, error) {
	if page == nil || page.Body == nil || page.Body.AtlasDocFormat == nil {
		return "", nil
	}
	return renderAtlasDoc(page.Body.AtlasDocFormat.Value)
}

// renderAtlasDoc renders a page body through the go-atlassian node model, the
// same shape Jira comments use.
func renderAtlasDoc(value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	body := &models.CommentNodeScheme{}
	if err := json.Unmarshal([]byte(value), body); err != nil {
		return "", fmt.Errorf("failed to parse ADF content: %v", err)
	}
	return adf.Render(adf.FromComment(body)), nil
}

func pageIDArgument(arguments map[string]interface{}) (int, error) {
	pageID, ok := arguments["page_id"].(string)
	if !ok || pageID == "" {
		return 0, fmt.Errorf("page_id argument is required")
	}
	id, err := strconv.Atoi(pageID)
	if err != nil {
		return 0, fmt.Errorf("invalid page ID: %v", err)
	}
	return id, nil
}

func versionArgument(arguments map[string]interface{}, name string) (int, bool) {
	raw, ok := arguments[name].(string)
	if !ok || raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
