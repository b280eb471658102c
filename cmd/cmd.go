// Package cmd provides CLI command implementations for Kin.
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	git "github.com/go-git/go-git/v5"

	"github.com/hagborg/kin-go/internal/build"
	"github.com/hagborg/kin-go/internal/graph"
	"github.com/hagborg/kin-go/internal/pathfind"
	"github.com/hagborg/kin-go/internal/person"
	"github.com/hagborg/kin-go/internal/query"
	"github.com/hagborg/kin-go/internal/storage"
	"github.com/hagborg/kin-go/mcp"
)

// Version is set at build time via ldflags.
var Version = "dev"

// artifactDirName is where the snapshot artifact lives inside a data
// directory.
const artifactDirName = ".kin"

// BuildCmd builds the relationship graph from a lineage data directory and
// persists the snapshot artifact.
type BuildCmd struct {
	Data       string `arg:"" optional:"" default:"." help:"Path to lineage data directory"`
	Precompute bool   `help:"Also precompute shortest paths after the build"`
	Budget     int    `default:"512" help:"Maximum source people to precompute"`
}

// Run executes the build command.
func (c *BuildCmd) Run() error {
	ctx := context.Background()
	dataDir, err := filepath.Abs(c.Data)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	info, err := os.Stat(dataDir)
	if err != nil {
		return fmt.Errorf("accessing %s: %w", dataDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dataDir)
	}

	color.Green("Building population graph from %s", dataDir)

	store, err := person.LoadDir(dataDir)
	if err != nil {
		return fmt.Errorf("loading lineage data: %w", err)
	}

	progress := func(phase string, pct float64) {
		fmt.Printf("\r\033[K%s (%.0f%%)", phase, pct*100)
	}

	g, result, err := build.Build(ctx, store, progress)
	if err != nil {
		return fmt.Errorf("building graph: %w", err)
	}

	fmt.Println() // Newline after progress

	// Create .kin directory
	kinDir := filepath.Join(dataDir, artifactDirName)
	if err := os.MkdirAll(kinDir, 0o755); err != nil {
		return fmt.Errorf("creating %s directory: %w", artifactDirName, err)
	}

	backend := storage.NewBadgerBackend()
	if err := backend.Initialize(filepath.Join(kinDir, "badger"), false); err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	defer func() { _ = backend.Close() }()

	snap := &storage.Snapshot{
		Generation:   g.Generation(),
		BuiltAt:      time.Now().UTC(),
		DataDir:      dataDir,
		DataRevision: dataRevision(dataDir),
		Records:      store.All(),
		Diagnostics:  result.Diagnostics,
	}
	if err := backend.SaveSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}

	if c.Precompute {
		svc := query.NewService(g, store, query.DefaultConfig())
		err := svc.Cache().Precompute(ctx, g, c.Budget, func(done, total int) {
			fmt.Printf("\r\033[KPrecomputing paths (%d/%d)", done, total)
		})
		if err != nil {
			return fmt.Errorf("precomputing paths: %w", err)
		}
		fmt.Println()
		// Tag with the snapshot generation so a later process can match
		// loaded paths against the snapshot it rebuilt from.
		if err := backend.SavePaths(ctx, snap.Generation, svc.Cache().Snapshot()); err != nil {
			return fmt.Errorf("saving paths: %w", err)
		}
	}

	// Write meta.json
	meta := map[string]any{
		"version":  Version,
		"dataDir":  dataDir,
		"stats":    result,
		"built_at": snap.BuiltAt.Format(time.RFC3339),
	}
	metaJSON, _ := json.MarshalIndent(meta, "", "  ")
	if err := os.WriteFile(filepath.Join(kinDir, "meta.json"), metaJSON, 0o644); err != nil {
		return fmt.Errorf("writing meta.json: %w", err)
	}

	color.Green("\n✓ Build complete")
	fmt.Printf("  People:         %d\n", result.People)
	fmt.Printf("  Edges:          %d\n", result.Edges)
	fmt.Printf("  Sibling pairs:  %d\n", result.SiblingPairs)
	fmt.Printf("  Diagnostics:    %d\n", len(result.Diagnostics))
	fmt.Printf("  Duration:       %.2fs\n", result.DurationSecs)
	if len(result.Diagnostics) > 0 {
		fmt.Println("\nRun 'kin-go diagnostics' to review data-quality issues.")
	}

	return nil
}

// FamilyCmd shows the immediate family of a person.
type FamilyCmd struct {
	Person string `arg:"" help:"Person ID"`
	Data   string `short:"d" default:"." help:"Path to lineage data directory"`
}

// Run executes the family command.
func (c *FamilyCmd) Run() error {
	svc, _, err := loadService(c.Data)
	if err != nil {
		return err
	}

	family, err := svc.ImmediateFamily(c.Person)
	if errors.Is(err, pathfind.ErrPersonNotFound) {
		fmt.Printf("Person '%s' not found in the population.\n", c.Person)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("## Immediate family of %s\n\n", personLabel(svc, c.Person))
	printGroup(svc, "Parents", family.Parents)
	printGroup(svc, "Spouses", family.Spouses)
	printGroup(svc, "Children", family.Children)
	printGroup(svc, "Siblings", family.Siblings)

	fmt.Println("Next: Use `kin-go relate` to see how two people are connected.")
	return nil
}

// RelateCmd finds the shortest relationship path between two people.
type RelateCmd struct {
	Person1   string `arg:"" help:"First person ID"`
	Person2   string `arg:"" help:"Second person ID"`
	Data      string `short:"d" default:"." help:"Path to lineage data directory"`
	MaxDegree int    `default:"6" help:"Maximum path length"`
}

// Run executes the relate command.
func (c *RelateCmd) Run() error {
	svc, _, err := loadServiceWithDegree(c.Data, c.MaxDegree)
	if err != nil {
		return err
	}

	res, err := svc.FindRelationship(c.Person1, c.Person2)
	if errors.Is(err, pathfind.ErrPersonNotFound) {
		fmt.Println("One of the given person IDs is not in the population.")
		return nil
	}
	if errors.Is(err, pathfind.ErrNoPath) {
		fmt.Printf("No known relationship found within %d generations.\n", c.MaxDegree)
		return nil
	}
	if err != nil {
		return err
	}

	printPath(svc, res)
	return nil
}

// RelateAllCmd finds every distinct relationship path between two people.
type RelateAllCmd struct {
	Person1   string `arg:"" help:"First person ID"`
	Person2   string `arg:"" help:"Second person ID"`
	Data      string `short:"d" default:"." help:"Path to lineage data directory"`
	MaxDegree int    `default:"6" help:"Maximum path length"`
	MaxPaths  int    `short:"n" default:"8" help:"Maximum paths to return"`
}

// Run executes the relate-all command.
func (c *RelateAllCmd) Run() error {
	cfg := query.DefaultConfig()
	if c.MaxDegree > 0 {
		cfg.MaxDegree = c.MaxDegree
	}
	if c.MaxPaths > 0 {
		cfg.MaxPaths = c.MaxPaths
	}
	svc, _, err := loadServiceCfg(c.Data, cfg)
	if err != nil {
		return err
	}

	results, err := svc.FindAllRelationships(c.Person1, c.Person2)
	if errors.Is(err, pathfind.ErrPersonNotFound) {
		fmt.Println("One of the given person IDs is not in the population.")
		return nil
	}
	if errors.Is(err, pathfind.ErrNoPath) {
		fmt.Printf("No known relationship found within %d generations.\n", c.MaxDegree)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("Found %d distinct relationship path(s):\n\n", len(results))
	for i, res := range results {
		fmt.Printf("%d. ", i+1)
		printPath(svc, res)
	}
	return nil
}

// AncestorsCmd lists the common ancestors of two people.
type AncestorsCmd struct {
	Person1 string `arg:"" help:"First person ID"`
	Person2 string `arg:"" help:"Second person ID"`
	Data    string `short:"d" default:"." help:"Path to lineage data directory"`
	Depth   int    `default:"6" help:"Maximum generations to ascend"`
}

// Run executes the ancestors command.
func (c *AncestorsCmd) Run() error {
	svc, _, err := loadService(c.Data)
	if err != nil {
		return err
	}

	ancestors, err := svc.CommonAncestors(c.Person1, c.Person2, c.Depth)
	if errors.Is(err, pathfind.ErrPersonNotFound) {
		fmt.Println("One of the given person IDs is not in the population.")
		return nil
	}
	if err != nil {
		return err
	}

	if len(ancestors) == 0 {
		fmt.Printf("No common ancestors found within %d generations.\n", c.Depth)
		return nil
	}

	fmt.Printf("## Common ancestors of %s and %s\n\n",
		personLabel(svc, c.Person1), personLabel(svc, c.Person2))
	for _, a := range ancestors {
		fmt.Printf("- %s (%d and %d generations up)\n",
			personLabel(svc, a.PersonID), a.DegreeFromFirst, a.DegreeFromSecond)
	}
	return nil
}

// DescendantsCmd lists the descendants of a person by generation.
type DescendantsCmd struct {
	Person string `arg:"" help:"Person ID"`
	Data   string `short:"d" default:"." help:"Path to lineage data directory"`
	Depth  int    `default:"6" help:"Maximum generations to descend"`
}

// Run executes the descendants command.
func (c *DescendantsCmd) Run() error {
	svc, _, err := loadService(c.Data)
	if err != nil {
		return err
	}

	descendants, err := svc.Descendants(c.Person, c.Depth)
	if errors.Is(err, pathfind.ErrPersonNotFound) {
		fmt.Printf("Person '%s' not found in the population.\n", c.Person)
		return nil
	}
	if err != nil {
		return err
	}

	if len(descendants) == 0 {
		fmt.Printf("No known descendants of %s.\n", personLabel(svc, c.Person))
		return nil
	}

	fmt.Printf("## Descendants of %s\n", personLabel(svc, c.Person))
	lastDegree := 0
	for _, d := range descendants {
		if d.Degree != lastDegree {
			fmt.Printf("\n### Generation %d\n", d.Degree)
			lastDegree = d.Degree
		}
		fmt.Printf("- %s\n", personLabel(svc, d.PersonID))
	}
	return nil
}

// DiagnosticsCmd prints the data-quality issues from the last build.
type DiagnosticsCmd struct {
	Data string `arg:"" optional:"" default:"." help:"Path to lineage data directory"`
}

// Run executes the diagnostics command.
func (c *DiagnosticsCmd) Run() error {
	_, snap, err := loadService(c.Data)
	if err != nil {
		return err
	}

	fmt.Println("## Data-Quality Report")
	if len(snap.Diagnostics) == 0 {
		fmt.Println("No issues found in the last build.")
		return nil
	}

	fmt.Printf("Found %d issue(s):\n\n", len(snap.Diagnostics))
	for _, d := range snap.Diagnostics {
		fmt.Printf("- [%s] %s field of %s: %q", d.Kind, d.Field, d.PersonID, d.Reference)
		if len(d.Candidates) > 0 {
			fmt.Printf(" (%d candidates)", len(d.Candidates))
		}
		fmt.Println()
	}

	fmt.Println("\nTip: Unresolved references are skipped, not fatal. Fix the")
	fmt.Println("lineage partitions and rerun 'kin-go build'.")
	return nil
}

// PrecomputeCmd precomputes shortest paths for an existing snapshot.
type PrecomputeCmd struct {
	Data   string `arg:"" optional:"" default:"." help:"Path to lineage data directory"`
	Budget int    `default:"512" help:"Maximum source people to precompute"`
}

// Run executes the precompute command.
func (c *PrecomputeCmd) Run() error {
	ctx := context.Background()
	dataDir, err := filepath.Abs(c.Data)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	backend, err := openBackend(dataDir, false)
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	svc, snap, err := serviceFromBackend(ctx, backend, query.DefaultConfig())
	if err != nil {
		return err
	}

	err = svc.Cache().Precompute(ctx, svc.Graph(), c.Budget, func(done, total int) {
		fmt.Printf("\r\033[KPrecomputing paths (%d/%d)", done, total)
	})
	if err != nil {
		return fmt.Errorf("precomputing paths: %w", err)
	}
	fmt.Println()

	if err := backend.SavePaths(ctx, snap.Generation, svc.Cache().Snapshot()); err != nil {
		return fmt.Errorf("saving paths: %w", err)
	}

	color.Green("✓ Precomputed paths for %d source people", svc.Cache().SourceCount())
	return nil
}

// WatchCmd rebuilds the graph whenever a lineage partition changes.
type WatchCmd struct {
	Data string `arg:"" optional:"" default:"." help:"Path to lineage data directory"`
}

// Run executes the watch command.
func (c *WatchCmd) Run() error {
	dataDir, err := filepath.Abs(c.Data)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	fmt.Println("## Watch Mode")
	fmt.Printf("Watching %s for partition changes (Ctrl+C to stop)\n\n", dataDir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle Ctrl+C
	go func() {
		<-osSignalChannel()
		fmt.Println("\nStopping watch mode...")
		cancel()
	}()

	onRebuild := func(g *graph.RelationshipGraph, store *person.Store, result *build.Result) {
		if err := persistSnapshot(ctx, dataDir, g, store, result); err != nil {
			fmt.Fprintf(os.Stderr, "Snapshot error: %v\n", err)
			return
		}
		color.Green("✓ Rebuilt generation %d: %d people, %d edges, %d diagnostics",
			g.Generation(), result.People, result.Edges, len(result.Diagnostics))
	}

	err = build.WatchDir(ctx, dataDir, onRebuild)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch error: %w", err)
	}

	fmt.Println("Watch mode stopped.")
	return nil
}

// MCPCmd starts the MCP server.
type MCPCmd struct {
	Data string `short:"d" default:"." help:"Path to lineage data directory"`
}

// Run executes the mcp command.
func (c *MCPCmd) Run() error {
	ctx := context.Background()
	svc, snap, err := loadService(c.Data)
	if err != nil {
		return err
	}

	server := mcp.NewServer(svc, snap.Diagnostics)

	// Note: No output to stderr - MCP server uses stdio for JSON-RPC only
	return server.Run(ctx, os.Stdin, os.Stdout)
}

// ServeCmd starts the MCP server with optional watch mode.
type ServeCmd struct {
	Data  string `short:"d" default:"." help:"Path to lineage data directory"`
	Watch bool   `short:"w" help:"Rebuild when lineage partitions change"`
}

// Run executes the serve command.
func (c *ServeCmd) Run() error {
	ctx := context.Background()
	dataDir, err := filepath.Abs(c.Data)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	svc, snap, err := loadService(dataDir)
	if err != nil {
		return err
	}

	server := mcp.NewServer(svc, snap.Diagnostics)

	if c.Watch {
		fmt.Fprintln(os.Stderr, "Starting MCP server with watch mode...")

		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		go func() {
			err := build.WatchDir(watchCtx, dataDir, func(g *graph.RelationshipGraph, store *person.Store, result *build.Result) {
				next := query.NewService(g, store, query.DefaultConfig())
				server.SetService(next, result.Diagnostics)
				if err := persistSnapshot(watchCtx, dataDir, g, store, result); err != nil {
					fmt.Fprintf(os.Stderr, "Snapshot error: %v\n", err)
				}
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				fmt.Fprintf(os.Stderr, "Watch error: %v\n", err)
			}
		}()

		fmt.Fprintln(os.Stderr, "Partition watching enabled")
	} else {
		fmt.Fprintln(os.Stderr, "Starting MCP server...")
	}

	return server.Run(ctx, os.Stdin, os.Stdout)
}

// StatusCmd shows the snapshot status for a data directory.
type StatusCmd struct {
	Data string `arg:"" optional:"" default:"." help:"Path to lineage data directory"`
}

// Run executes the status command.
func (c *StatusCmd) Run() error {
	dataDir, err := filepath.Abs(c.Data)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	metaPath := filepath.Join(dataDir, artifactDirName, "meta.json")
	metaBytes, err := os.ReadFile(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no snapshot found at %s. Run 'kin-go build' first", dataDir)
		}
		return fmt.Errorf("reading meta.json: %w", err)
	}

	var meta map[string]any
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return fmt.Errorf("parsing meta.json: %w", err)
	}

	fmt.Printf("Snapshot status for %s\n", dataDir)
	if version, ok := meta["version"].(string); ok {
		fmt.Printf("  Version:        %s\n", version)
	}
	if builtAt, ok := meta["built_at"].(string); ok {
		fmt.Printf("  Last built:     %s\n", builtAt)
	}
	if stats, ok := meta["stats"].(map[string]any); ok {
		if people, ok := stats["People"].(float64); ok {
			fmt.Printf("  People:         %.0f\n", people)
		}
		if edges, ok := stats["Edges"].(float64); ok {
			fmt.Printf("  Edges:          %.0f\n", edges)
		}
		if siblings, ok := stats["SiblingPairs"].(float64); ok {
			fmt.Printf("  Sibling pairs:  %.0f\n", siblings)
		}
	}

	return nil
}

// CleanCmd deletes the snapshot artifact for a data directory.
type CleanCmd struct {
	Data  string `arg:"" optional:"" default:"." help:"Path to lineage data directory"`
	Force bool   `short:"f" help:"Skip confirmation"`
}

// Run executes the clean command.
func (c *CleanCmd) Run() error {
	dataDir, err := filepath.Abs(c.Data)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	kinDir := filepath.Join(dataDir, artifactDirName)
	if _, err := os.Stat(kinDir); os.IsNotExist(err) {
		return fmt.Errorf("no snapshot found at %s. Nothing to clean", dataDir)
	}

	if !c.Force {
		fmt.Printf("Delete snapshot at %s? [y/N] ", kinDir)
		var response string
		_, _ = fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Aborted")
			return nil
		}
	}

	if err := os.RemoveAll(kinDir); err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}

	color.Green("Deleted %s", kinDir)
	return nil
}

// Helper functions

// osSignalChannel returns a channel that receives OS signals for graceful shutdown.
func osSignalChannel() <-chan os.Signal {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	return sigChan
}

// openBackend opens the snapshot artifact under dataDir.
func openBackend(dataDir string, readOnly bool) (*storage.BadgerBackend, error) {
	dbPath := filepath.Join(dataDir, artifactDirName, "badger")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("no snapshot found at %s. Run 'kin-go build' first", dataDir)
	}

	backend := storage.NewBadgerBackend()
	if err := backend.Initialize(dbPath, readOnly); err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}
	return backend, nil
}

// serviceFromBackend rebuilds the graph from the stored snapshot and restores
// any precomputed paths taken against it.
func serviceFromBackend(ctx context.Context, backend *storage.BadgerBackend, cfg query.Config) (*query.Service, *storage.Snapshot, error) {
	snap, err := backend.LoadSnapshot(ctx)
	if errors.Is(err, storage.ErrNoSnapshot) {
		return nil, nil, fmt.Errorf("no snapshot stored. Run 'kin-go build' first")
	}
	if errors.Is(err, storage.ErrSchemaMismatch) {
		return nil, nil, fmt.Errorf("snapshot was written by an incompatible version. Run 'kin-go build' to rebuild: %w", err)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("loading snapshot: %w", err)
	}

	store := person.NewStore(snap.Records)
	g, _, err := build.Build(ctx, store, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("rebuilding graph: %w", err)
	}

	svc := query.NewService(g, store, cfg)

	// Stored paths are tagged with the generation of the build that wrote
	// the snapshot, not this process's counter. They were computed at the
	// default degree bound; a custom bound must search live.
	if cfg.MaxDegree == query.DefaultConfig().MaxDegree {
		paths, err := backend.LoadPaths(ctx, snap.Generation)
		if err != nil {
			return nil, nil, fmt.Errorf("loading paths: %w", err)
		}
		if len(paths) > 0 {
			svc.Cache().Restore(paths)
		}
	}

	return svc, snap, nil
}

// loadService opens the artifact read-only and returns a ready query service.
func loadService(dataDir string) (*query.Service, *storage.Snapshot, error) {
	return loadServiceCfg(dataDir, query.DefaultConfig())
}

func loadServiceWithDegree(dataDir string, maxDegree int) (*query.Service, *storage.Snapshot, error) {
	cfg := query.DefaultConfig()
	if maxDegree > 0 {
		cfg.MaxDegree = maxDegree
	}
	return loadServiceCfg(dataDir, cfg)
}

func loadServiceCfg(dataDir string, cfg query.Config) (*query.Service, *storage.Snapshot, error) {
	absDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving path: %w", err)
	}

	backend, err := openBackend(absDir, true)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = backend.Close() }()

	return serviceFromBackend(context.Background(), backend, cfg)
}

// persistSnapshot saves a freshly built graph to the artifact directory.
func persistSnapshot(ctx context.Context, dataDir string, g *graph.RelationshipGraph, store *person.Store, result *build.Result) error {
	kinDir := filepath.Join(dataDir, artifactDirName)
	if err := os.MkdirAll(kinDir, 0o755); err != nil {
		return fmt.Errorf("creating %s directory: %w", artifactDirName, err)
	}

	backend := storage.NewBadgerBackend()
	if err := backend.Initialize(filepath.Join(kinDir, "badger"), false); err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	defer func() { _ = backend.Close() }()

	return backend.SaveSnapshot(ctx, &storage.Snapshot{
		Generation:   g.Generation(),
		BuiltAt:      time.Now().UTC(),
		DataDir:      dataDir,
		DataRevision: dataRevision(dataDir),
		Records:      store.All(),
		Diagnostics:  result.Diagnostics,
	})
}

// dataRevision returns the git HEAD hash of the data directory, or "" when
// the data is not under version control.
func dataRevision(dataDir string) string {
	repo, err := git.PlainOpenWithOptions(dataDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return ""
	}
	head, err := repo.Head()
	if err != nil {
		return ""
	}
	return head.Hash().String()
}

// personLabel renders "Name (id)" when the record is known.
func personLabel(svc *query.Service, id string) string {
	if rec := svc.Record(id); rec != nil && rec.Name != "" {
		return fmt.Sprintf("%s (%s)", rec.Name, id)
	}
	return id
}

func printGroup(svc *query.Service, title string, ids []string) {
	fmt.Printf("### %s (%d)\n", title, len(ids))
	if len(ids) == 0 {
		fmt.Println("None known")
	}
	for _, id := range ids {
		fmt.Printf("- %s\n", personLabel(svc, id))
	}
	fmt.Println()
}

func printPath(svc *query.Service, res *pathfind.PathResult) {
	fmt.Printf("%s (degree %d): %s", res.Relationship, res.Degree, personLabel(svc, res.SourceID))
	for _, step := range res.Steps {
		fmt.Printf(" -> (%s) -> %s", step.Type, personLabel(svc, step.To))
	}
	fmt.Println()
}

// CLI is the root Kong command structure.
type CLI struct {
	Version kong.VersionFlag `help:"Show version information"`
	Verbose bool             `short:"v" help:"Enable verbose output"`
	Quiet   bool             `short:"q" help:"Suppress non-essential output"`

	// Commands
	Build       BuildCmd       `cmd:"" help:"Build the relationship graph from lineage data"`
	Family      FamilyCmd      `cmd:"" help:"Show the immediate family of a person"`
	Relate      RelateCmd      `cmd:"" help:"Find the shortest relationship between two people"`
	RelateAll   RelateAllCmd   `cmd:"" name:"relate-all" help:"Find all relationship paths between two people"`
	Ancestors   AncestorsCmd   `cmd:"" help:"List common ancestors of two people"`
	Descendants DescendantsCmd `cmd:"" help:"List descendants of a person by generation"`
	Diagnostics DiagnosticsCmd `cmd:"" help:"Show data-quality issues from the last build"`
	Precompute  PrecomputeCmd  `cmd:"" help:"Precompute shortest paths for faster queries"`
	Watch       WatchCmd       `cmd:"" help:"Rebuild automatically when lineage data changes"`
	MCP         MCPCmd         `cmd:"" help:"Start MCP server (stdio transport)"`
	Serve       ServeCmd       `cmd:"" help:"Start MCP server with optional watch mode"`
	Status      StatusCmd      `cmd:"" help:"Show snapshot status for a data directory"`
	Clean       CleanCmd       `cmd:"" help:"Delete the snapshot artifact"`
}

// NewCLI creates a new CLI instance.
func NewCLI() *CLI {
	return &CLI{}
}

// Execute parses command-line arguments and executes the selected command.
func (c *CLI) Execute(args []string) error {
	kongCtx := kong.Parse(c,
		kong.Name("kin-go"),
		kong.Description("Graph-powered relationship navigator for genealogical data"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version": Version,
		},
	)

	return kongCtx.Run()
}
