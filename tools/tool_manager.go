package tools

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/athapong/story-mcp/util"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ToolGroups are the tool groups that ENABLE_TOOLS can switch on.
var ToolGroups = []struct {
	Name string
	Desc string
}{
	{"tool_manager", "Tool management"},
	{"story", "Story file conversion: adf_to_markdown, story_convert, story_convert_file"},
	{"jira", "Jira stories: jira_fetch_story, jira_post_story_comment, jira_attach_story_documents"},
	{"confluence", "Confluence pages: confluence_get_page, confluence_compare_versions"},
}

// EnabledTools parses ENABLE_TOOLS. An empty list means every tool is enabled.
func EnabledTools() []string {
	var enabled []string
	for _, name := range strings.Split(os.Getenv("ENABLE_TOOLS"), ",") {
		if name = strings.TrimSpace(name); name != "" {
			enabled = append(enabled, name)
		}
	}
	return enabled
}

// IsEnabled reports whether a tool group is enabled.
func IsEnabled(name string) bool {
	enabled := EnabledTools()
	return len(enabled) == 0 || slices.Contains(enabled, name)
}

func RegisterToolManagerTool(s *server.MCPServer) {
	tool := mcp.NewTool("tool_manager",
		mcp.WithDescription("Manage MCP tools - enable or disable tools"),
		mcp.WithString("action", mcp.Required(), mcp.Description("Action to perform: list, enable, disable")),
		mcp.WithString("tool_name", mcp.Description("Tool name to enable/disable")),
	)

	s.AddTool(tool, util.ErrorGuard(util.AdaptLegacyHandler(toolManagerHandler)))
}

func toolManagerHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	action, ok := arguments["action"].(string)
	if !ok {
		return mcp.NewToolResultError("action must be a string"), nil
	}

	toolList := EnabledTools()

	switch action {
	case "list":
		var response strings.Builder
		response.WriteString("Available tools:\n")
		for _, t := range ToolGroups {
			status := "disabled"
			if IsEnabled(t.Name) {
				status = "enabled"
			}
			response.WriteString(fmt.Sprintf("- %s (%s) [%s]\n", t.Name, t.Desc, status))
		}
		response.WriteString("\nCurrently enabled tools:\n")
		if len(toolList) == 0 {
			response.WriteString("All tools are enabled (ENABLE_TOOLS is empty)\n")
		} else {
			for _, name := range toolList {
				response.WriteString(fmt.Sprintf("- %s\n", name))
			}
		}
		return mcp.NewToolResultText(response.String()), nil

	case "enable", "disable":
		toolName, ok := arguments["tool_name"].(string)
		if !ok || toolName == "" {
			return mcp.NewToolResultError("tool_name is required for enable/disable actions"), nil
		}

		if action == "enable" {
			if !slices.Contains(toolList, toolName) {
				toolList = append(toolList, toolName)
			}
		} else {
			toolList = slices.DeleteFunc(toolList, func(name string) bool { return name == toolName })
		}

		os.Setenv("ENABLE_TOOLS", strings.Join(toolList, ","))

		return mcp.NewToolResultText(fmt.Sprintf("Successfully %sd tool: %s", action, toolName)), nil

	default:
		return mcp.NewToolResultError("Invalid action. Use 'list', 'enable', or 'disable'"), nil
	}
}
