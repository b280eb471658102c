package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/hagborg/kin-go/internal/graph"
	"github.com/hagborg/kin-go/internal/person"
)

// debounceInterval batches rapid editor saves into one rebuild.
const debounceInterval = 2 * time.Second

// RebuildFunc receives each freshly built graph generation together with
// the store and build result it came from.
type RebuildFunc func(g *graph.RelationshipGraph, store *person.Store, result *Result)

// WatchDir monitors a lineage data directory for partition changes and
// rebuilds the graph automatically. Incremental patching is deliberately
// not attempted: any change triggers a full rebuild of a new generation.
// Blocks until the context is cancelled.
func WatchDir(ctx context.Context, dataDir string, onRebuild RebuildFunc) error {
	matcher, err := loadGitignoreMatcher(dataDir)
	if err != nil {
		matcher = nil // Continue without gitignore
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dataDir); err != nil {
		return fmt.Errorf("watching %s: %w", dataDir, err)
	}

	changed := make(map[string]bool)
	batchTimer := time.NewTimer(debounceInterval)
	batchTimer.Stop() // Don't start yet

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !shouldWatchFile(event.Name, dataDir, matcher) {
				continue
			}

			changed[filepath.Base(event.Name)] = true
			batchTimer.Reset(debounceInterval)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watch error: %v\n", err)

		case <-batchTimer.C:
			if len(changed) == 0 {
				continue
			}
			fmt.Printf("Rebuilding after %d changed partition(s)...\n", len(changed))
			changed = make(map[string]bool)

			store, err := person.LoadDir(dataDir)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Reload error: %v\n", err)
				continue
			}

			g, result, err := Build(ctx, store, nil)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				fmt.Fprintf(os.Stderr, "Rebuild error: %v\n", err)
				continue
			}

			if onRebuild != nil {
				onRebuild(g, store, result)
			}
		}
	}
}

// shouldWatchFile checks whether a changed path is a lineage partition we
// care about.
func shouldWatchFile(path, dataDir string, matcher gitignore.Matcher) bool {
	if !strings.HasSuffix(path, ".json") {
		return false
	}

	relPath, err := filepath.Rel(dataDir, path)
	if err != nil {
		return false
	}

	if matcher != nil {
		pathParts := strings.Split(relPath, string(filepath.Separator))
		if matcher.Match(pathParts, false) {
			return false
		}
	}
	return true
}

// loadGitignoreMatcher loads a gitignore matcher from the data directory,
// so generated or scratch partitions stay out of the build.
func loadGitignoreMatcher(dataDir string) (gitignore.Matcher, error) {
	gitignorePath := filepath.Join(dataDir, ".gitignore")

	if _, err := os.Stat(gitignorePath); os.IsNotExist(err) {
		return nil, nil
	}

	content, err := os.ReadFile(gitignorePath)
	if err != nil {
		return nil, err
	}

	var patterns []gitignore.Pattern
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}

	return gitignore.NewMatcher(patterns), nil
}
