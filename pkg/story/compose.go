package story

import (
	"strings"
)

// UserStoryHeading introduces the rendered description in a story file.
const UserStoryHeading = "## User Story"

// Compose rebuilds a story file: headline, metadata header, then the body
// under the user story heading. The section is left out when the body is
// blank, and its heading is not repeated when the body already opens with it.
func Compose(result *Result) string {
	var out strings.Builder

	if result.Headline != "" {
		out.WriteString(result.Headline + "\n\n")
	}

	if len(result.Metadata) > 0 {
		out.WriteString(result.Metadata.Format())
		out.WriteString("\n")
	}

	body := result.Body()
	if strings.TrimSpace(body) != "" {
		if !opensWithSection(body) {
			out.WriteString(UserStoryHeading + "\n\n")
		}
		out.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			out.WriteString("\n")
		}
	}

	return out.String()
}

func opensWithSection(body string) bool {
	first, _, _ := strings.Cut(body, "\n")
	return strings.TrimSpace(first) == UserStoryHeading
}
