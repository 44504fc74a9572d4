// Package main provides the stacks CLI, an AI-curated library for
// podcast episode summaries. Saved items are filed into a two-level
// folder tree by a classification collaborator, periodically reorganized,
// and browsable from the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/entrhq/stacks/pkg/category"
	"github.com/entrhq/stacks/pkg/classify"
	collab "github.com/entrhq/stacks/pkg/classify/openai"
	appconfig "github.com/entrhq/stacks/pkg/config"
	"github.com/entrhq/stacks/pkg/ingest"
	"github.com/entrhq/stacks/pkg/library"
	"github.com/entrhq/stacks/pkg/logging"
	"github.com/entrhq/stacks/pkg/search"
	"github.com/entrhq/stacks/pkg/tui"
)

const version = "0.1.0" // Version of the stacks CLI

// cliFlags holds the parsed command line flags.
type cliFlags struct {
	ConfigPath  string
	APIKey      string
	BaseURL     string
	Model       string
	LibraryDir  string
	Title       string
	Show        string
	URL         string
	File        string
	PageToken   string
	Offline     bool
	ShowVersion bool
}

func main() {
	flags, args := parseFlags()

	if flags.ShowVersion {
		fmt.Printf("stacks v%s\n", version)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	if err := run(ctx, flags, args); err != nil {
		cancel()
		log.Fatalf("stacks: %v", err)
	}
}

func parseFlags() (*cliFlags, []string) {
	flags := &cliFlags{}

	flag.StringVar(&flags.ConfigPath, "config", "", "Path to config file (default: ~/.stacks/config.json)")
	flag.StringVar(&flags.APIKey, "api-key", "", "OpenAI API key (or set OPENAI_API_KEY env var)")
	flag.StringVar(&flags.BaseURL, "base-url", "", "OpenAI API base URL (for compatible APIs)")
	flag.StringVar(&flags.Model, "model", "", "Model for classification and ranking")
	flag.StringVar(&flags.LibraryDir, "library", "", "Library directory (default: ~/.stacks/library)")
	flag.StringVar(&flags.Title, "title", "", "Item title (save)")
	flag.StringVar(&flags.Show, "show", "", "Show name (save)")
	flag.StringVar(&flags.URL, "url", "", "Source URL (save)")
	flag.StringVar(&flags.File, "file", "", "Read the summary from a file instead of stdin (save)")
	flag.StringVar(&flags.PageToken, "page", "", "Continuation token for folder paging")
	flag.BoolVar(&flags.Offline, "offline", false, "Skip the classification collaborator")
	flag.BoolVar(&flags.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "stacks - AI-curated library for podcast summaries\n\n")
		fmt.Fprintf(os.Stderr, "Usage: stacks [options] <command> [args]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  browse              Interactive library browser (default)\n")
		fmt.Fprintf(os.Stderr, "  save                Save a summary (reads stdin unless -file)\n")
		fmt.Fprintf(os.Stderr, "  tree                Print the folder tree\n")
		fmt.Fprintf(os.Stderr, "  folder <id>         Print one folder's contents (use -page to continue)\n")
		fmt.Fprintf(os.Stderr, "  search <query>      Search saved summaries\n")
		fmt.Fprintf(os.Stderr, "  reorganize          Run a reorganization pass now\n")
		fmt.Fprintf(os.Stderr, "  export              Export the library index to markdown\n")
		fmt.Fprintf(os.Stderr, "  mkdir <name>        Create a top-level folder\n")
		fmt.Fprintf(os.Stderr, "  rename <id> <name>  Rename a folder\n")
		fmt.Fprintf(os.Stderr, "  mv <id> <parent>    Move a folder (parent \"-\" makes it top-level)\n")
		fmt.Fprintf(os.Stderr, "  rm <id>             Delete a folder\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  OPENAI_API_KEY     OpenAI API key\n")
		fmt.Fprintf(os.Stderr, "  OPENAI_BASE_URL    OpenAI API base URL (for compatible APIs)\n")
	}

	flag.Parse()
	return flags, flag.Args()
}

// app bundles the wired-up components for one invocation.
type app struct {
	cfg     *appconfig.Config
	tree    *category.Store
	items   *library.FileStore
	filer   *ingest.Filer
	router  *search.Router
	reorg   classify.Reorganizer
	timeout time.Duration
	log     *logging.Logger
}

func setup(flags *cliFlags) (*app, error) {
	configPath := flags.ConfigPath
	if configPath == "" {
		p, err := appconfig.DefaultPath()
		if err != nil {
			return nil, err
		}
		configPath = p
	}
	cfg, err := appconfig.Load(configPath)
	if err != nil {
		return nil, err
	}
	if flags.APIKey != "" {
		cfg.APIKey = flags.APIKey
	}
	if flags.BaseURL != "" {
		cfg.BaseURL = flags.BaseURL
	}
	if flags.Model != "" {
		cfg.Model = flags.Model
	}
	if flags.LibraryDir != "" {
		cfg.LibraryDir = flags.LibraryDir
	}

	logger, _ := logging.NewLogger("cli")

	tree, err := category.Open(filepath.Join(cfg.LibraryDir, "categories.json"))
	if err != nil {
		return nil, err
	}
	items, err := library.NewFileStore(filepath.Join(cfg.LibraryDir, "items"))
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(cfg.ClassifyTimeoutSecs) * time.Second

	var classifier classify.Classifier
	var reorganizer classify.Reorganizer
	var ranker classify.Ranker
	if !flags.Offline {
		opts := []collab.Option{collab.WithModel(cfg.Model), collab.WithLogger(logger)}
		if cfg.BaseURL != "" {
			opts = append(opts, collab.WithBaseURL(cfg.BaseURL))
		}
		c, err := collab.NewCollaborator(cfg.APIKey, opts...)
		if err != nil {
			logger.Warnf("collaborator unavailable, filing uncategorized: %v", err)
		} else {
			classifier, reorganizer, ranker = c, c, c
		}
	}

	rules, err := cfg.CompiledRules()
	if err != nil {
		return nil, err
	}

	gateway := classify.NewGateway(classifier, timeout, logger)
	return &app{
		cfg:     cfg,
		tree:    tree,
		items:   items,
		filer:   ingest.NewFiler(items, tree, gateway, reorganizer, rules, cfg.ReorganizeEvery, timeout, logger),
		router:  search.NewRouter(ranker, timeout, logger),
		reorg:   reorganizer,
		timeout: timeout,
		log:     logger,
	}, nil
}

func run(ctx context.Context, flags *cliFlags, args []string) error {
	a, err := setup(flags)
	if err != nil {
		return err
	}
	defer a.log.Close()

	command := "browse"
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	switch command {
	case "browse":
		return tui.Run(a.tree, a.items)
	case "save":
		return a.save(ctx, flags)
	case "tree":
		fmt.Println(a.tree.RenderTree(a.cfg.DisplayBudget))
		return nil
	case "folder":
		if len(args) < 1 {
			return fmt.Errorf("folder requires a folder id")
		}
		return a.folder(ctx, args[0], flags.PageToken)
	case "search":
		if len(args) < 1 {
			return fmt.Errorf("search requires a query")
		}
		return a.search(ctx, strings.Join(args, " "))
	case "reorganize":
		return a.reorganize(ctx)
	case "export":
		path, err := a.tree.ExportMarkdown(a.cfg.LibraryDir)
		if err != nil {
			return err
		}
		fmt.Printf("exported library index to %s\n", path)
		return nil
	case "mkdir":
		if len(args) < 1 {
			return fmt.Errorf("mkdir requires a folder name")
		}
		c, err := a.tree.Create(args[0], "", "", "")
		if err != nil {
			return err
		}
		fmt.Printf("created folder %q (%s)\n", c.Name, c.ID)
		return nil
	case "rename":
		if len(args) < 2 {
			return fmt.Errorf("rename requires a folder id and a new name")
		}
		return a.tree.Rename(args[0], args[1], nil)
	case "mv":
		if len(args) < 2 {
			return fmt.Errorf("mv requires a folder id and a new parent id")
		}
		parent := args[1]
		if parent == "-" {
			parent = ""
		}
		return a.tree.Move(args[0], parent)
	case "rm":
		if len(args) < 1 {
			return fmt.Errorf("rm requires a folder id")
		}
		orphaned, err := a.tree.Delete(args[0])
		if err != nil {
			return err
		}
		if len(orphaned) > 0 {
			fmt.Printf("deleted folder; %d items are now uncategorized\n", len(orphaned))
		}
		return nil
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

// save reads the summary, persists the item, and reports where it was
// filed. The summary comes from -file when given, otherwise from stdin.
func (a *app) save(ctx context.Context, flags *cliFlags) error {
	if flags.Title == "" {
		return fmt.Errorf("save requires -title")
	}

	var raw []byte
	var err error
	if flags.File != "" {
		raw, err = os.ReadFile(flags.File)
	} else {
		raw, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return fmt.Errorf("failed to read summary: %w", err)
	}
	summary := strings.TrimSpace(string(raw))
	if summary == "" {
		return fmt.Errorf("summary is empty")
	}

	now := time.Now().UTC()
	it := &library.Item{
		Meta: library.ItemMeta{
			ID:        library.NewItemID(),
			Title:     flags.Title,
			Show:      flags.Show,
			URL:       flags.URL,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Summary: summary,
	}

	out, err := a.filer.Save(ctx, it)
	if err != nil {
		return err
	}

	if out.FolderID == "" {
		fmt.Printf("saved %q (uncategorized)\n", it.Meta.Title)
	} else if out.CreatedFolder {
		fmt.Printf("saved %q into new folder %q\n", it.Meta.Title, out.FolderName)
	} else {
		fmt.Printf("saved %q into %q\n", it.Meta.Title, out.FolderName)
	}

	if r := out.Reorganized; r != nil && r.Report != nil {
		fmt.Printf("reorganized the library: %d changes\n", r.Report.Applied)
		for _, change := range r.Report.Changes {
			fmt.Printf("  - %s\n", change)
		}
	}
	return nil
}

func (a *app) folder(ctx context.Context, id, token string) error {
	titles := func(itemID string) (string, bool) {
		it, err := a.items.Read(ctx, itemID)
		if err != nil {
			return "", false
		}
		return it.Meta.Title, true
	}
	page, err := a.tree.RenderFolder(id, token, a.cfg.PageSize, a.cfg.DisplayBudget, titles)
	if err != nil {
		return err
	}
	fmt.Println(page.Text)
	if page.Next != "" {
		fmt.Printf("(more: stacks -page %s folder %s)\n", page.Next, id)
	}
	return nil
}

func (a *app) search(ctx context.Context, query string) error {
	items, err := a.items.List(ctx)
	if err != nil {
		return err
	}
	candidates := make([]classify.SearchItem, 0, len(items))
	for _, it := range items {
		candidates = append(candidates, classify.SearchItem{
			ID:      it.Meta.ID,
			Title:   it.Meta.Title,
			Show:    it.Meta.Show,
			Excerpt: it.Excerpt(200),
		})
	}

	results, method, err := a.router.Search(ctx, query, candidates)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("no results")
		return nil
	}
	for _, r := range results {
		line := fmt.Sprintf("%s  %s", r.ItemID, r.Title)
		if r.Show != "" {
			line += "  (" + r.Show + ")"
		}
		if method == search.MethodRanked {
			line += fmt.Sprintf("  [%d/5]", r.Score)
		}
		fmt.Println(line)
	}
	return nil
}

// reorganize runs a collaborator-driven reorganization pass immediately,
// outside the save-count cadence.
func (a *app) reorganize(ctx context.Context) error {
	if a.reorg == nil {
		return fmt.Errorf("reorganization needs the collaborator (remove -offline and set an API key)")
	}

	items, err := a.items.List(ctx)
	if err != nil {
		return err
	}
	titles := make(map[string]string, len(items))
	for _, it := range items {
		titles[it.Meta.ID] = it.Meta.Title
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	ops, err := a.reorg.ProposeReorganization(ctx, a.tree.Snapshot(), titles)
	if err != nil {
		return fmt.Errorf("failed to fetch reorganization proposals: %w", err)
	}
	if len(ops) == 0 {
		fmt.Println("no changes proposed")
		return nil
	}

	report, err := a.tree.ApplyReorganization(ops)
	if err != nil {
		return err
	}
	fmt.Printf("applied %d of %d proposals\n", report.Applied, len(ops))
	for _, change := range report.Changes {
		fmt.Printf("  - %s\n", change)
	}
	for _, skip := range report.Skipped {
		fmt.Printf("  skipped %s: %s\n", skip.Kind, skip.Reason)
	}
	return nil
}
