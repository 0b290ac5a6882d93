package tools

import (
	"fmt"
	"strings"

	"github.com/athapong/story-mcp/pkg/adf"
	"github.com/athapong/story-mcp/pkg/story"
	"github.com/athapong/story-mcp/util"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

var storyConverter = story.NewConverter(nil, nil)

// RegisterStoryTool registers the local story conversion tools.
func RegisterStoryTool(s *server.MCPServer) {
	adfTool := mcp.NewTool("adf_to_markdown",
		mcp.WithDescription("Render an Atlassian Document Format JSON document as Markdown"),
		mcp.WithString("document", mcp.Required(), mcp.Description("ADF document as a JSON object string")),
		mcp.WithString("flavor", mcp.Description("Emphasis flavor: 'remote' writes *em* (default), 'stored' writes _em_")),
	)
	s.AddTool(adfTool, util.ErrorGuard(util.AdaptLegacyHandler(adfToMarkdownHandler)))

	convertTool := mcp.NewTool("story_convert",
		mcp.WithDescription("Convert story file content whose body is an embedded ADF document into plain Markdown"),
		mcp.WithString("content", mcp.Required(), mcp.Description("Full content of the story file")),
	)
	s.AddTool(convertTool, util.ErrorGuard(util.AdaptLegacyHandler(storyConvertHandler)))

	convertFileTool := mcp.NewTool("story_convert_file",
		mcp.WithDescription("Convert a story file on disk in place or to another path. Use dry_run to preview the change as a diff"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the story file")),
		mcp.WithString("output", mcp.Description("Output path (optional, defaults to converting in place)")),
		mcp.WithBoolean("dry_run", mcp.Description("Only show the diff, do not write")),
	)
	s.AddTool(convertFileTool, util.ErrorGuard(util.AdaptLegacyHandler(storyConvertFileHandler)))
}

func adfToMarkdownHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	payload, ok := arguments["document"].(string)
	if !ok {
		return nil, fmt.Errorf("document argument is required")
	}

	var opts []adf.Option
	switch flavor, _ := arguments["flavor"].(string); flavor {
	case "", "remote":
	case "stored":
		opts = append(opts, adf.WithStoredFlavor())
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown flavor %q, use 'remote' or 'stored'", flavor)), nil
	}

	doc, err := adf.Parse([]byte(payload))
	if err != nil {
		return nil, err
	}

	return mcp.NewToolResultText(adf.NewRenderer(opts...).Render(doc)), nil
}

func storyConvertHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	content, ok := arguments["content"].(string)
	if !ok {
		return nil, fmt.Errorf("content argument is required")
	}

	converted, result := storyConverter.Convert(content)
	return mcp.NewToolResultText(withWarnings(converted, result.Warnings)), nil
}

func storyConvertFileHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	path, ok := arguments["path"].(string)
	if !ok || path == "" {
		return nil, fmt.Errorf("path argument is required")
	}

	opts := story.ConvertOptions{}
	opts.Output, _ = arguments["output"].(string)
	opts.DryRun, _ = arguments["dry_run"].(bool)

	conv, err := storyConverter.ConvertFile(path, opts)
	if err != nil {
		return nil, err
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Input: %s\n", conv.Input))
	result.WriteString(fmt.Sprintf("Output: %s\n", conv.Output))
	result.WriteString(fmt.Sprintf("Source: %s\n", conv.Source))

	if opts.DryRun {
		result.WriteString("\nDry run, nothing written.\n")
		if conv.Diff == "" {
			result.WriteString("No changes.\n")
		} else {
			result.WriteString("\n" + conv.Diff)
		}
	} else {
		result.WriteString(fmt.Sprintf("Written: %t\n", conv.Written))
	}

	return mcp.NewToolResultText(withWarnings(result.String(), conv.Warnings)), nil
}

func withWarnings(text string, warnings []string) string {
	if len(warnings) == 0 {
		return text
	}
	var sb strings.Builder
	sb.WriteString(text)
	if !strings.HasSuffix(text, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString("\nWarnings:\n")
	for _, w := range warnings {
		sb.WriteString("- " + w + "\n")
	}
	return sb.String()
}
