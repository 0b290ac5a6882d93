package story

import (
	"os"
	"path/filepath"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
)

// StoryDocumentNames are the planning documents attached to a ticket, in
// upload order.
var StoryDocumentNames = []string{"readiness.md", "test-plan.md", "test-scenarios.md", "task-breakdown.md"}

// ErrNoDocuments is returned when a directory holds none of StoryDocumentNames.
var ErrNoDocuments = errors.New("no story documents found")

// StoryDocument is a planning document found on disk.
type StoryDocument struct {
	Name string
	Path string
}

// CollectDocuments returns the planning documents present in dir.
func CollectDocuments(dir string) ([]StoryDocument, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read story directory %s", dir)
	}

	present := mapset.NewSet[string]()
	for _, entry := range entries {
		if !entry.IsDir() {
			present.Add(entry.Name())
		}
	}

	var docs []StoryDocument
	for _, name := range StoryDocumentNames {
		if present.Contains(name) {
			docs = append(docs, StoryDocument{Name: name, Path: filepath.Join(dir, name)})
		}
	}

	if len(docs) == 0 {
		return nil, errors.Wrapf(ErrNoDocuments, "in %s (expected %v)", dir, StoryDocumentNames)
	}
	return docs, nil
}
