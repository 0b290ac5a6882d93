package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/athapong/story-mcp/pkg/story"
	"github.com/sirupsen/logrus"
)

var (
	dirFlag   = flag.String("dir", "", "Convert every .md file under this directory in place")
	dryRun    = flag.Bool("dry-run", false, "Print the diff instead of writing files")
	batchSize = flag.Int("batch-size", 10, "Number of files converted concurrently with -dir")
	logLevel  = flag.String("log-level", "info", "Logging level (debug, info, warn, error)")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <input-file> [output-file]\n       %s [flags] -dir <directory>\n\n", os.Args[0], os.Args[0])
		flag.PrintDefaults()
	}
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

	converter := story.NewConverter(nil, logger)

	if *dirFlag != "" {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		batch := story.NewBatchConverter(converter, logger)
		batch.SetBatchSize(*batchSize)

		results, err := batch.ConvertDir(ctx, *dirFlag, *dryRun)
		for _, conv := range results {
			report(logger, conv)
		}
		if err != nil {
			logger.Fatalf("Conversion failed: %v", err)
		}
		logger.Infof("Processed %d files", len(results))
		return
	}

	if flag.NArg() < 1 || flag.NArg() > 2 {
		flag.Usage()
		os.Exit(2)
	}

	conv, err := converter.ConvertFile(flag.Arg(0), story.ConvertOptions{
		Output: flag.Arg(1),
		DryRun: *dryRun,
	})
	if err != nil {
		logger.Fatalf("Conversion failed: %v", err)
	}
	report(logger, conv)
}

func report(logger *logrus.Logger, conv *story.Conversion) {
	if conv == nil {
		return
	}
	for _, warning := range conv.Warnings {
		logger.WithField("input", conv.Input).Warn(warning)
	}
	if conv.Diff != "" {
		fmt.Printf("--- %s\n+++ %s\n%s", conv.Input, conv.Output, conv.Diff)
	}
	logger.WithFields(logrus.Fields{
		"input":   conv.Input,
		"output":  conv.Output,
		"source":  conv.Source,
		"written": conv.Written,
	}).Debug("Done")
}
