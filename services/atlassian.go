package services

import (
	"os"
	"strings"
	"sync"

	confluence "github.com/ctreminiom/go-atlassian/confluence/v2"
	jira "github.com/ctreminiom/go-atlassian/jira/v3"
	"github.com/pkg/errors"
)

// AtlassianConfig holds the site and credentials shared by Jira and Confluence.
type AtlassianConfig struct {
	BaseURL string
	Email   string
	Token   string
}

// LoadAtlassianConfig reads JIRA_BASE_URL, JIRA_EMAIL and JIRA_TOKEN.
func LoadAtlassianConfig() (AtlassianConfig, error) {
	cfg := AtlassianConfig{
		BaseURL: strings.TrimRight(os.Getenv("JIRA_BASE_URL"), "/"),
		Email:   os.Getenv("JIRA_EMAIL"),
		Token:   os.Getenv("JIRA_TOKEN"),
	}

	var missing []string
	if cfg.BaseURL == "" {
		missing = append(missing, "JIRA_BASE_URL")
	}
	if cfg.Email == "" {
		missing = append(missing, "JIRA_EMAIL")
	}
	if cfg.Token == "" {
		missing = append(missing, "JIRA_TOKEN")
	}
	if len(missing) > 0 {
		return cfg, errors.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return cfg, nil
}

// NewJiraClient creates a Jira REST v3 client for cfg.
func NewJiraClient(cfg AtlassianConfig) (*jira.Client, error) {
	client, err := jira.New(nil, cfg.BaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Jira client")
	}
	client.Auth.SetBasicAuth(cfg.Email, cfg.Token)
	return client, nil
}

// NewConfluenceClient creates a Confluence v2 client for cfg.
func NewConfluenceClient(cfg AtlassianConfig) (*confluence.Client, error) {
	client, err := confluence.New(nil, cfg.BaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Confluence client")
	}
	client.Auth.SetBasicAuth(cfg.Email, cfg.Token)
	return client, nil
}

// JiraClient returns the process-wide Jira client. It panics when the
// environment is incomplete; tool handlers run behind util.ErrorGuard.
var JiraClient = sync.OnceValue(func() *jira.Client {
	cfg, err := LoadAtlassianConfig()
	if err != nil {
		panic(err.Error())
	}
	client, err := NewJiraClient(cfg)
	if err != nil {
		panic(err.Error())
	}
	return client
})

// ConfluenceClient returns the process-wide Confluence client.
var ConfluenceClient = sync.OnceValue(func() *confluence.Client {
	cfg, err := LoadAtlassianConfig()
	if err != nil {
		panic(err.Error())
	}
	client, err := NewConfluenceClient(cfg)
	if err != nil {
		panic(err.Error())
	}
	return client
})
