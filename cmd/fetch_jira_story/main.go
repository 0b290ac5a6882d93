package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/athapong/story-mcp/pkg/story"
	"github.com/athapong/story-mcp/services"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var (
	envFile  = flag.String("env", ".env", "Path to environment file")
	rootDir  = flag.String("root", ".", "Project root; the story is written under <root>/.backlog")
	stdout   = flag.Bool("stdout", false, "Print the story instead of writing it")
	timeout  = flag.Duration("timeout", 30*time.Second, "Timeout for the Jira request")
	logLevel = flag.String("log-level", "info", "Logging level (debug, info, warn, error)")
)

func main() {
	flag.Parse()

	logger := logrus.New()
	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logger.Fatalf("Invalid log level: %v", err)
	}
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if flag.NArg() != 1 {
		logger.Fatal("Usage: fetch_jira_story [flags] <TICKET-ID>")
	}

	if err := godotenv.Load(*envFile); err != nil {
		logger.Debugf("No env file loaded from %s: %v", *envFile, err)
	}

	cfg, err := services.LoadAtlassianConfig()
	if err != nil {
		logger.Fatal(err)
	}
	client, err := services.NewJiraClient(cfg)
	if err != nil {
		logger.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	logger.Infof("Fetching %s from Jira...", flag.Arg(0))
	issue, err := services.FetchStoryIssue(ctx, client, flag.Arg(0))
	if err != nil {
		logger.Fatalf("Failed to fetch story: %v", err)
	}

	now := time.Now()
	content, err := story.BuildStory(issue, cfg.BaseURL, now)
	if err != nil {
		logger.Fatalf("Failed to build story: %v", err)
	}

	if *stdout {
		os.Stdout.WriteString(content)
		return
	}

	dir := story.StoryDir(*rootDir, issue, now)
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Fatalf("Failed to create story directory: %v", err)
	}
	path := filepath.Join(dir, "story.md")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		logger.Fatalf("Failed to write story: %v", err)
	}

	logger.WithFields(logrus.Fields{
		"ticket": issue.Key,
		"path":   path,
	}).Info("Story fetched")
}
