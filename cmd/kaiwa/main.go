// Package main is the kaiwa CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/kaiwa/internal/cli"
	"github.com/hyperjump/kaiwa/internal/config"
	"github.com/hyperjump/kaiwa/internal/index"
	"github.com/hyperjump/kaiwa/internal/indexer"
	"github.com/hyperjump/kaiwa/internal/models"
	"github.com/hyperjump/kaiwa/internal/ranking"
	"github.com/hyperjump/kaiwa/internal/search"
	"github.com/hyperjump/kaiwa/internal/server"
	"github.com/hyperjump/kaiwa/internal/storage"
	"github.com/hyperjump/kaiwa/internal/watcher"
	"github.com/hyperjump/kaiwa/pkg/utils"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/kaiwa/config.yaml"
	defaultServerURL  = "http://localhost:8080"
	dateLayout        = "2006-01-02"
)

// defaultConfig returns the config path to use when no -config flag is given:
// $KAIWA_CONFIG if set, else the installed default.
func defaultConfig() string {
	if p := os.Getenv(config.EnvConfig); p != "" {
		return p
	}
	return defaultConfigPath
}

// loadConfig loads config from path and applies environment overrides. When path is
// the installed default, config.yaml in the current directory takes precedence (for
// development), and a missing default file means built-in defaults.
// Returns the config and the path that was actually loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	cfg, resolved, err := readConfig(path)
	if err != nil {
		return nil, "", err
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, "", err
	}
	return cfg, resolved, nil
}

func readConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			cfg := &config.Config{}
			config.ApplyDefaults(cfg)
			return cfg, "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "suggest":
		runSuggest()
	case "import":
		runImport()
	case "delete":
		runDelete()
	case "stats":
		runStats()
	case "version", "--version", "-v":
		fmt.Printf("kaiwa version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func mustLogger(cfg *config.Config, debug bool) *zap.Logger {
	logger, err := utils.NewLogger(debug, utils.FileOptions{
		Path:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	if err != nil {
		fatalf("Failed to create logger: %v", err)
	}
	return logger
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfig(), "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (imports, index builds, requests)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fatalf("Failed to load config: %v", err)
	}
	debugMode := cfg.Debug || *debug
	logger := mustLogger(cfg, debugMode)
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger, true)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stats, err := components.Indexer.Rebuild(ctx)
	if err != nil {
		logger.Fatal("Failed to build index", zap.Error(err))
	}
	logger.Info("index built", zap.Int("entries", stats.Entries), zap.Duration("duration", stats.Duration))

	if cfg.Watch.Enabled {
		idx := components.Indexer
		watchSvc := watcher.NewWatcher(
			cfg.Storage.ImportDir,
			indexer.ImportExtensions,
			func(path string) {
				n, err := idx.ImportFile(ctx, path)
				if err != nil {
					logger.Warn("watch import failed", zap.String("path", path), zap.Error(err))
					return
				}
				if n > 0 {
					logger.Info("imported conversations", zap.String("path", path), zap.Int("conversations", n))
				}
			},
			watcher.WithLogger(logger),
			watcher.WithDebounce(time.Duration(cfg.Watch.DebounceMS)*time.Millisecond),
		)
		if err := watchSvc.Start(ctx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		watchSvc.SyncExistingFiles()
	}

	srv := server.NewServer(
		components.Engine,
		components.Indexer,
		components.Storage,
		cfg,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
}

// printSearchUsage prints search subcommand usage.
func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: kaiwa search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Matches in titles, messages and earlier versions of edited messages are returned
together, ranked by relevance unless --sort says otherwise.
  • Use --fuzzy to tolerate typos; with no results a fuzzy retry happens automatically.
  • Use --whole-word and --case-sensitive to tighten matching.
  • Filters can be combined with an empty query to browse, e.g. --bookmarked=true.

Examples:
  kaiwa search core hours
  kaiwa search "core hours"                        # same as above
  kaiwa search --role assistant --model gpt-4 deploy
  kaiwa search --from 2024-01-01 --to 2024-03-31 budget
  kaiwa search --sort date --order asc --limit 20 standup
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// configPathFromArgs returns the value of -config/--config from args if present, else defaultPath.
func configPathFromArgs(args []string, defaultPath string) string {
	for i, a := range args {
		if (a == "-config" || a == "--config") && i+1 < len(args) {
			return args[i+1]
		}
	}
	return defaultPath
}

// searchDefaultsFromConfig returns the configured default result count and fuzzy
// setting, or the built-in defaults when the config cannot be loaded.
func searchDefaultsFromConfig(path string) (maxResults int, fuzzy bool) {
	cfg, _, err := loadConfig(path)
	if err != nil || cfg == nil {
		return models.DefaultMaxResults, false
	}
	return cfg.Search.DefaultMaxResults, cfg.Search.DefaultFuzzy
}

// argsReorder moves any flags (and their values) that appear after the positional
// arguments to the front of the slice so that flag.Parse() sees them. Go's flag
// package stops at the first non-flag argument.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// searchFlags holds the raw filter flags of the search command.
type searchFlags struct {
	models     string
	roles      string
	tags       string
	chats      string
	bookmarked string
	edited     string
	from       string
	to         string
	minLength  int // negative means unset
	maxLength  int // negative means unset
}

// unsetLength is the default of the length flags so that 0 stays expressible.
const unsetLength = -1

// buildFilters turns raw flag values into search filters. Empty values leave the
// matching filter unset.
func buildFilters(query string, f searchFlags) (*models.SearchFilters, error) {
	filters := &models.SearchFilters{
		Query:   query,
		Models:  splitList(f.models),
		Roles:   splitList(f.roles),
		Tags:    splitList(f.tags),
		ChatIDs: splitList(f.chats),
	}
	var err error
	if filters.Bookmarked, err = parseOptionalBool("bookmarked", f.bookmarked); err != nil {
		return nil, err
	}
	if filters.Edited, err = parseOptionalBool("edited", f.edited); err != nil {
		return nil, err
	}
	if f.from != "" || f.to != "" {
		dr := &models.DateRange{}
		if f.from != "" {
			if dr.Start, err = parseDate(f.from, false); err != nil {
				return nil, fmt.Errorf("invalid --from: %w", err)
			}
		}
		if f.to != "" {
			if dr.End, err = parseDate(f.to, true); err != nil {
				return nil, fmt.Errorf("invalid --to: %w", err)
			}
		}
		filters.DateRange = dr
	}
	if f.minLength >= 0 {
		filters.MinLength = &f.minLength
	}
	if f.maxLength >= 0 {
		filters.MaxLength = &f.maxLength
	}
	return filters, nil
}

// splitList splits a comma-separated flag value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseOptionalBool(name, s string) (*bool, error) {
	if s == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: want true or false", name, s)
	}
	return &b, nil
}

// parseDate accepts RFC 3339 timestamps or plain dates. A plain end date covers
// the whole day.
func parseDate(s string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

func parseOutputFormat(s string) cli.SearchOutputFormat {
	switch s {
	case "json":
		return cli.OutputJSON
	case "text":
		return cli.OutputText
	default:
		fatalf("Unknown output format %q; use text or json", s)
		return ""
	}
}

func runSearch() {
	searchArgs := argsReorder(os.Args[2:])
	defaultMax, defaultFuzzy := searchDefaultsFromConfig(configPathFromArgs(searchArgs, defaultConfig()))

	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPathFlag := fs.String("config", defaultConfig(), "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = use direct storage when server is not running)")
	limit := fs.Int("limit", defaultMax, "maximum number of results")
	fuzzyEnabled := fs.Bool("fuzzy", defaultFuzzy, "enable fuzzy matching for typo tolerance")
	caseSensitive := fs.Bool("case-sensitive", false, "match case exactly")
	wholeWord := fs.Bool("whole-word", false, "match whole words only")
	sortBy := fs.String("sort", string(models.SortByRelevance), "sort key: relevance, date or length")
	sortOrder := fs.String("order", string(models.SortDesc), "sort order: asc or desc")
	var sf searchFlags
	fs.StringVar(&sf.models, "model", "", "comma-separated models to include")
	fs.StringVar(&sf.roles, "role", "", "comma-separated message roles to include (user, assistant)")
	fs.StringVar(&sf.tags, "tag", "", "comma-separated conversation tags (any match)")
	fs.StringVar(&sf.chats, "chat", "", "comma-separated conversation ids")
	fs.StringVar(&sf.bookmarked, "bookmarked", "", "true or false to filter by bookmark")
	fs.StringVar(&sf.edited, "edited", "", "true or false to filter by edit state")
	fs.StringVar(&sf.from, "from", "", "earliest timestamp (YYYY-MM-DD or RFC 3339)")
	fs.StringVar(&sf.to, "to", "", "latest timestamp (YYYY-MM-DD or RFC 3339)")
	fs.IntVar(&sf.minLength, "min-length", unsetLength, "minimum content length in characters (-1 = no minimum)")
	fs.IntVar(&sf.maxLength, "max-length", unsetLength, "maximum content length in characters (-1 = no maximum)")
	outputFormat := fs.String("output", "text", "output format: text (human-readable) or json (parseable)")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgs)

	format := parseOutputFormat(*outputFormat)
	filters, err := buildFilters(buildSearchQuery(fs.Args()), sf)
	if err != nil {
		fatalf("%v", err)
	}
	req := &models.SearchRequest{
		Filters: *filters,
		Options: models.SearchOptions{
			MaxResults:    *limit,
			FuzzySearch:   *fuzzyEnabled,
			CaseSensitive: *caseSensitive,
			WholeWord:     *wholeWord,
			SortBy:        models.SortKey(*sortBy),
			SortOrder:     models.SortOrder(*sortOrder),
		},
	}
	if err := req.Options.Normalize(); err != nil {
		fatalf("%v", err)
	}

	var run func(*models.SearchRequest) (*models.SearchResponse, error)
	if *serverURL != "" {
		run = func(r *models.SearchRequest) (*models.SearchResponse, error) { return searchViaHTTP(*serverURL, r) }
	} else {
		cfg, _, err := loadConfig(*configPathFlag)
		if err != nil {
			fatalf("Failed to load config: %v", err)
		}
		logger := mustLogger(cfg, cfg.Debug)
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger, false)
		if err != nil {
			logger.Fatal("Failed to initialize", zap.Error(err))
		}
		defer components.Close()
		run = func(r *models.SearchRequest) (*models.SearchResponse, error) {
			ctx := context.Background()
			convs, err := components.Indexer.Conversations(ctx)
			if err != nil {
				return nil, err
			}
			return components.Engine.Search(ctx, convs, &r.Filters, r.Options)
		}
	}

	response, err := run(req)
	if err != nil {
		fatalf("Search failed: %v", err)
	}
	// Retry with fuzzy matching when an exact query found nothing.
	if !req.Options.FuzzySearch && req.Filters.Query != "" && response.Stats != nil && response.Stats.TotalResults == 0 {
		req.Options.FuzzySearch = true
		if fuzzyResponse, fuzzyErr := run(req); fuzzyErr == nil && fuzzyResponse.Stats != nil && fuzzyResponse.Stats.TotalResults > 0 {
			response = fuzzyResponse
		}
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fatalf("Output failed: %v", err)
	}
}

func searchViaHTTP(serverURL string, req *models.SearchRequest) (*models.SearchResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/search", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	var response models.SearchResponse
	if err := decodeResponse(resp, http.StatusOK, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func decodeResponse(resp *http.Response, want int, out any) error {
	if resp.StatusCode != want {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func runSuggest() {
	fs := flag.NewFlagSet("suggest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfig(), "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = use direct storage)")
	maxSuggestions := fs.Int("max", search.DefaultSuggestions, "maximum number of suggestions")
	fuzzyEnabled := fs.Bool("fuzzy", false, "match letters in order with gaps instead of by prefix")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(argsReorder(os.Args[2:]))

	format := parseOutputFormat(*outputFormat)
	text := buildSearchQuery(fs.Args())

	var suggestions []string
	if *serverURL != "" {
		q := url.Values{}
		q.Set("q", text)
		q.Set("max", strconv.Itoa(*maxSuggestions))
		q.Set("fuzzy", strconv.FormatBool(*fuzzyEnabled))
		resp, err := http.Get(*serverURL + "/api/v1/suggestions?" + q.Encode())
		if err != nil {
			fatalf("Suggest failed: request failed: %v", err)
		}
		defer resp.Body.Close()
		var out struct {
			Suggestions []string `json:"suggestions"`
		}
		if err := decodeResponse(resp, http.StatusOK, &out); err != nil {
			fatalf("Suggest failed: %v", err)
		}
		suggestions = out.Suggestions
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fatalf("Failed to load config: %v", err)
		}
		logger := mustLogger(cfg, cfg.Debug)
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger, false)
		if err != nil {
			logger.Fatal("Failed to initialize", zap.Error(err))
		}
		defer components.Close()
		convs, err := components.Indexer.Conversations(context.Background())
		if err != nil {
			fatalf("Suggest failed: %v", err)
		}
		if *fuzzyEnabled {
			suggestions = components.Engine.FuzzySuggest(convs, text, *maxSuggestions)
		} else {
			suggestions = components.Engine.Suggest(convs, text, *maxSuggestions)
		}
	}
	if err := cli.WriteSuggestions(os.Stdout, suggestions, format); err != nil {
		fatalf("Output failed: %v", err)
	}
}

func runImport() {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath := fs.String("config", defaultConfig(), "config file path")
	_ = fs.Parse(argsReorder(os.Args[2:]))
	if fs.NArg() < 1 {
		fmt.Println("Usage: kaiwa import [flags] <file.json|directory>")
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fatalf("Failed to load config: %v", err)
	}
	logger := mustLogger(cfg, cfg.Debug)
	defer logger.Sync()
	components, err := initializeComponents(cfg, logger, false)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	ctx := context.Background()
	total := 0
	for _, path := range fs.Args() {
		info, err := os.Stat(path)
		if err != nil {
			fatalf("Import failed: %v", err)
		}
		var n int
		if info.IsDir() {
			n, err = components.Indexer.ImportDirectory(ctx, path)
		} else {
			n, err = components.Indexer.ImportFile(ctx, path)
		}
		total += n
		if err != nil {
			fatalf("Import failed after %d conversations: %v", total, err)
		}
	}
	fmt.Printf("Imported %d conversations\n", total)
}

func runDelete() {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	configPath := fs.String("config", defaultConfig(), "config file path")
	_ = fs.Parse(argsReorder(os.Args[2:]))
	if fs.NArg() < 1 {
		fmt.Println("Usage: kaiwa delete [flags] <conversation-id>")
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fatalf("Failed to load config: %v", err)
	}
	logger := mustLogger(cfg, cfg.Debug)
	defer logger.Sync()
	components, err := initializeComponents(cfg, logger, false)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	id := fs.Arg(0)
	if err := components.Indexer.DeleteConversation(context.Background(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			fatalf("Conversation %s not found", id)
		}
		fatalf("Delete failed: %v", err)
	}
	fmt.Printf("Deleted conversation %s\n", id)
}

// statsResponse is the shape of GET /api/v1/index/stats.
type statsResponse struct {
	Index          models.IndexStats `json:"index"`
	Conversations  int64             `json:"conversations"`
	Messages       int64             `json:"messages"`
	DiskUsageBytes *int64            `json:"disk_usage_bytes,omitempty"`
}

func runStats() {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	configPath := fs.String("config", defaultConfig(), "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	format := parseOutputFormat(*outputFormat)

	var stats statsResponse
	if *serverURL != "" {
		resp, err := http.Get(*serverURL + "/api/v1/index/stats")
		if err != nil {
			fatalf("Stats failed: request failed: %v", err)
		}
		defer resp.Body.Close()
		if err := decodeResponse(resp, http.StatusOK, &stats); err != nil {
			fatalf("Stats failed: %v", err)
		}
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fatalf("Failed to load config: %v", err)
		}
		logger := mustLogger(cfg, cfg.Debug)
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger, false)
		if err != nil {
			logger.Fatal("Failed to initialize", zap.Error(err))
		}
		defer components.Close()
		ctx := context.Background()
		if _, err := components.Indexer.Rebuild(ctx); err != nil {
			fatalf("Stats failed: %v", err)
		}
		stats.Index = components.Engine.IndexStats()
		if stats.Conversations, err = components.Storage.CountConversations(ctx); err != nil {
			fatalf("Stats failed: %v", err)
		}
		if stats.Messages, err = components.Storage.CountMessages(ctx); err != nil {
			fatalf("Stats failed: %v", err)
		}
		if n, err := storage.DiskUsageBytes(cfg.Storage.DatabasePath); err == nil {
			stats.DiskUsageBytes = &n
		}
	}

	if format == cli.OutputJSON {
		if err := cli.WriteJSON(os.Stdout, stats); err != nil {
			fatalf("Output failed: %v", err)
		}
		return
	}
	fmt.Printf("Conversations:  %d\n", stats.Conversations)
	fmt.Printf("Messages:       %d\n", stats.Messages)
	fmt.Printf("Index entries:  %d\n", stats.Index.Size)
	fmt.Printf("Index version:  %d\n", stats.Index.Version)
	fmt.Printf("Index memory:   %d bytes\n", stats.Index.Memory)
	if stats.DiskUsageBytes != nil {
		fmt.Printf("Disk usage:     %d bytes\n", *stats.DiskUsageBytes)
	}
}

// Components holds the wired storage, engine and indexer.
type Components struct {
	Storage *storage.SQLiteStorage
	Engine  *search.Engine
	Indexer *indexer.Indexer
}

// Close releases the storage handle.
func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

// initializeComponents opens storage and wires the engine and indexer. Metrics are
// registered only for long-running processes.
func initializeComponents(cfg *config.Config, logger *zap.Logger, withMetrics bool) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	engineOpts := []search.Option{
		search.WithStore(index.NewStore(index.WithLogger(logger))),
		search.WithRanker(ranking.NewRanker(&cfg.Ranking)),
		search.WithLogger(logger),
		search.WithParallelThreshold(cfg.Search.ParallelThreshold),
	}
	if withMetrics {
		engineOpts = append(engineOpts, search.WithMetrics(search.NewMetrics()))
	}
	engine := search.NewEngine(engineOpts...)
	idx := indexer.NewIndexer(store, engine, indexer.WithLogger(logger))

	return &Components{
		Storage: store,
		Engine:  engine,
		Indexer: idx,
	}, nil
}

func printUsage() {
	fmt.Println(`kaiwa - Local search over chat conversation history

Usage:
  kaiwa server [flags]                 Start the HTTP server
  kaiwa search [flags] <query>         Search conversations
  kaiwa suggest [flags] <prefix>       Suggest indexed words for autocomplete
  kaiwa import [flags] <file|dir>...   Import JSON conversation exports
  kaiwa delete [flags] <id>            Delete a conversation
  kaiwa stats [flags]                  Show storage and index statistics
  kaiwa version                        Show version
  kaiwa help                           Show this help

Server Flags:
  --config string    Config file path (default: $KAIWA_CONFIG or /usr/local/etc/kaiwa/config.yaml)
  --debug            Enable debug logging

Search Flags:
  --config string        Config file path (for direct storage mode; also supplies defaults)
  --server string        Server URL (default: http://localhost:8080). Use --server "" for direct storage.
  --limit int            Maximum number of results (default from config, or 100)
  --fuzzy                Enable fuzzy matching for typo tolerance
  --case-sensitive       Match case exactly
  --whole-word           Match whole words only
  --sort string          relevance, date or length (default: relevance)
  --order string         asc or desc (default: desc)
  --model, --role, --tag, --chat string   Comma-separated filter values
  --bookmarked, --edited string           true or false
  --from, --to string                     Date range (YYYY-MM-DD or RFC 3339)
  --min-length, --max-length int          Content length bounds in characters
  --output string        text or json (default: text)

Suggest Flags:
  --server string    Server URL (default: http://localhost:8080). Use --server "" for direct storage.
  --max int          Maximum number of suggestions (default: 5)
  --fuzzy            Match letters in order with gaps
  --output string    text or json (default: text)

Import, Delete Flags:
  --config string    Config file path

Stats Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use --server "" for direct storage.
  --output string    text or json (default: text)

Environment:
  KAIWA_CONFIG   Config file path
  KAIWA_DEBUG    Override debug (true/false)
  KAIWA_PORT     Override server port
  A .env file in the working directory is loaded first.

Examples:
  kaiwa server
  kaiwa import ~/exports/conversations.json
  kaiwa search "core hours"
  kaiwa search --bookmarked=true --sort date
  kaiwa search --output json --fuzzy deploymnt
  kaiwa suggest --fuzzy hrs
  kaiwa stats --output json`)
}
