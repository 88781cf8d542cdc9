// Amparo is a conversational companion for pastoral care over chat.
//
// Every reply goes through signal detection, loop analysis, topic
// consolidation, a mode decision, and a generate-evaluate-refine
// pipeline before it reaches the person. The CLI exposes an
// interactive chat, a one-shot turn for scripting, actor state
// inspection, and passage ingestion for retrieval grounding.
// Configuration is loaded from a single YAML file discovered
// automatically (see [config.DefaultSearchPaths]).
//
// Usage:
//
//	amparo chat                        Talk to the agent on stdin
//	amparo turn [--actor id] <msg>     Run a single turn, print the reply
//	amparo state --actor <id>          Show the stored state for an actor
//	amparo ingest --theme <id> <file>  Import support passages from markdown
//	amparo init [dir]                  Initialize a working directory
//	amparo version                     Print version and build information
//	amparo -o json version             Output version information as JSON
package main

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/tavila/amparo-agent/internal/agent"
	"github.com/tavila/amparo-agent/internal/buildinfo"
	"github.com/tavila/amparo-agent/internal/config"
	"github.com/tavila/amparo-agent/internal/embeddings"
	"github.com/tavila/amparo-agent/internal/evaluator"
	"github.com/tavila/amparo-agent/internal/events"
	"github.com/tavila/amparo-agent/internal/llm"
	"github.com/tavila/amparo-agent/internal/memory"
	"github.com/tavila/amparo-agent/internal/pipeline"
	"github.com/tavila/amparo-agent/internal/profile"
	"github.com/tavila/amparo-agent/internal/retrieval"
	"github.com/tavila/amparo-agent/internal/signals"
	"github.com/tavila/amparo-agent/internal/similarity"
	"github.com/tavila/amparo-agent/internal/themes"
	"github.com/tavila/amparo-agent/internal/topics"

	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3" // SQLite driver for database/sql
)

// main is intentionally minimal. It constructs the OS-level environment
// (context, stdio, argv) and delegates immediately to [run]. This keeps
// os.Exit, os.Stdin, and os.Args out of the application logic so that
// the full startup-to-shutdown lifecycle can be driven from tests.
func main() {
	// API keys may live in a .env next to the binary; a missing file
	// is not an error.
	_ = godotenv.Load()

	ctx := context.Background()

	if err := run(ctx, os.Stdin, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

// run is the real entry point for the amparo command. All OS-level
// dependencies are injected as parameters:
//
//   - ctx controls the lifetime of the process. Cancelling it stops
//     the chat loop and any in-flight turn.
//   - stdin feeds the interactive chat command.
//   - stdout and stderr receive all program output. Structured logs go
//     to stdout; fatal error messages go to stderr.
//   - args is os.Args[1:], the command-line arguments after the program
//     name. We parse these manually rather than using the flag package
//     to avoid global state that interferes with parallel tests.
//
// run returns nil on clean exit and a non-nil error for any failure.
// The caller (main) is responsible for printing the error and exiting.
func run(ctx context.Context, stdin io.Reader, stdout io.Writer, stderr io.Writer, args []string) error {
	// Parse arguments by hand. The flag package relies on package-level
	// globals (flag.CommandLine), which makes it impossible to call run()
	// concurrently from tests. Our argument surface is small enough that
	// manual parsing is clearer than bringing in a CLI framework.
	var configPath string
	var outputFmt string // "text" (default) or "json"
	var command string
	var cmdArgs []string

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "-config" && i+1 < len(args):
			configPath = args[i+1]
			i++ // skip the value
		case strings.HasPrefix(args[i], "-config="):
			configPath = strings.TrimPrefix(args[i], "-config=")
		case (args[i] == "-o" || args[i] == "--output") && i+1 < len(args):
			outputFmt = args[i+1]
			i++
		case strings.HasPrefix(args[i], "-o="):
			outputFmt = strings.TrimPrefix(args[i], "-o=")
		case strings.HasPrefix(args[i], "--output="):
			outputFmt = strings.TrimPrefix(args[i], "--output=")
		case args[i] == "-h" || args[i] == "-help" || args[i] == "--help":
			return printUsage(stdout)
		case !strings.HasPrefix(args[i], "-") && command == "":
			command = args[i]
		default:
			if command != "" {
				// Collect remaining args as subcommand arguments.
				cmdArgs = append(cmdArgs, args[i])
			} else {
				return fmt.Errorf("unknown flag: %s", args[i])
			}
		}
	}

	// Default to human-readable text output.
	if outputFmt == "" {
		outputFmt = "text"
	}
	if outputFmt != "text" && outputFmt != "json" {
		return fmt.Errorf("unknown output format: %q (expected text or json)", outputFmt)
	}

	switch command {
	case "chat":
		return runChat(ctx, stdin, stdout, stderr, configPath, cmdArgs)
	case "turn":
		return runTurn(ctx, stdout, configPath, outputFmt, cmdArgs)
	case "state":
		return runState(ctx, stdout, configPath, outputFmt, cmdArgs)
	case "ingest":
		return runIngest(ctx, stdout, configPath, cmdArgs)
	case "init":
		dir := "."
		if len(cmdArgs) > 0 {
			dir = cmdArgs[0]
		}
		return runInit(stdout, dir)
	case "version":
		return runVersion(stdout, outputFmt)
	case "":
		return printUsage(stdout)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// runVersion prints build metadata in the requested output format.
func runVersion(w io.Writer, outputFmt string) error {
	info := buildinfo.Info()
	if outputFmt == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}
	fmt.Fprintln(w, buildinfo.String())
	// Print fields in a stable order for human readability.
	for _, k := range []string{"version", "commit", "build_date", "go_version", "os", "arch"} {
		if v, ok := info[k]; ok {
			fmt.Fprintf(w, "  %-12s %s\n", k+":", v)
		}
	}
	return nil
}

// printUsage writes the top-level help text to w. It is called when
// amparo is invoked with no arguments, or with -h / --help.
func printUsage(w io.Writer) error {
	fmt.Fprintln(w, "Amparo - Conversational Companion for Pastoral Care")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: amparo [flags] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  chat                       Talk to the agent on stdin (Ctrl-D to leave)")
	fmt.Fprintln(w, "  turn [--actor id] <msg>    Run a single turn and print the reply")
	fmt.Fprintln(w, "  state --actor <id>         Show the stored state for an actor")
	fmt.Fprintln(w, "  ingest --theme <id> <f.md> Import support passages from a markdown file")
	fmt.Fprintln(w, "  init [dir]                 Initialize working directory with defaults (default: .)")
	fmt.Fprintln(w, "  version                    Show version information")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -config <path>    Path to config file (default: auto-discover)")
	fmt.Fprintln(w, "  -o, --output fmt  Output format: text (default) or json")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Config search order:")
	fmt.Fprintln(w, "  ./amparo.yaml, ~/.config/amparo/amparo.yaml, /etc/amparo/amparo.yaml")
	fmt.Fprintln(w, "  (AMPARO_CONFIG overrides the search)")
	return nil
}

// runChat handles the "amparo chat" subcommand: an interactive loop
// that reads one message per line from stdin and prints the agent's
// reply chunks. SIGINT or Ctrl-D ends the session. Each line is a full
// turn, so state (mode, topics, cooldowns) carries across messages
// exactly as it would for a remote conversation.
func runChat(ctx context.Context, stdin io.Reader, stdout io.Writer, stderr io.Writer, configPath string, args []string) error {
	actorID := "local"
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--actor" && i+1 < len(args):
			actorID = args[i+1]
			i++
		case strings.HasPrefix(args[i], "--actor="):
			actorID = strings.TrimPrefix(args[i], "--actor=")
		default:
			return fmt.Errorf("usage: amparo chat [--actor <id>]")
		}
	}

	app, err := openApp(stdout, configPath)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(stdout, "%s está aqui. Escreva e pressione Enter (Ctrl-D para sair).\n\n", app.cfg.Agent.Name)

	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		result, err := app.runtime.GenerateResponseForTurn(ctx, agent.TurnRequest{
			ActorID: actorID,
			Channel: "cli",
			Text:    text,
		})
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			// The turn failed and left no trace; the person can try
			// again. Full detail is already in the structured log.
			fmt.Fprintf(stderr, "turn failed: %v\n", err)
			continue
		}

		for _, chunk := range result.Chunks {
			fmt.Fprintf(stdout, "%s: %s\n", app.cfg.Agent.Name, chunk)
		}
		fmt.Fprintln(stdout)
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("read stdin: %w", err)
	}

	fmt.Fprintln(stdout, "Até logo.")
	return nil
}

// turnOutput is the JSON shape for "amparo -o json turn".
type turnOutput struct {
	Actor     string   `json:"actor"`
	Mode      string   `json:"mode"`
	Progress  string   `json:"progress"`
	Intensity string   `json:"intensity"`
	Theme     string   `json:"theme"`
	Score     float64  `json:"score"`
	Rounds    int      `json:"rounds"`
	TraceID   string   `json:"trace_id"`
	Chunks    []string `json:"chunks"`
}

// runTurn handles the "amparo turn" subcommand. It processes a single
// message for an actor and prints the reply chunks, one per line (or a
// JSON document with the full decision when -o json is given). Useful
// for scripting and smoke tests without the interactive loop.
func runTurn(ctx context.Context, stdout io.Writer, configPath string, outputFmt string, args []string) error {
	actorID := "local"
	var parts []string
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--actor" && i+1 < len(args):
			actorID = args[i+1]
			i++
		case strings.HasPrefix(args[i], "--actor="):
			actorID = strings.TrimPrefix(args[i], "--actor=")
		case args[i] == "--text" && i+1 < len(args):
			parts = append(parts, args[i+1])
			i++
		case strings.HasPrefix(args[i], "--text="):
			parts = append(parts, strings.TrimPrefix(args[i], "--text="))
		case strings.HasPrefix(args[i], "-"):
			return fmt.Errorf("unknown turn argument: %s", args[i])
		default:
			parts = append(parts, args[i])
		}
	}
	text := strings.TrimSpace(strings.Join(parts, " "))
	if text == "" {
		return fmt.Errorf("usage: amparo turn [--actor <id>] <message>")
	}

	app, err := openApp(stdout, configPath)
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := app.runtime.GenerateResponseForTurn(ctx, agent.TurnRequest{
		ActorID: actorID,
		Channel: "cli",
		Text:    text,
	})
	if err != nil {
		return fmt.Errorf("turn: %w", err)
	}

	if outputFmt == "json" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(turnOutput{
			Actor:     actorID,
			Mode:      result.Mode.String(),
			Progress:  result.Progress.String(),
			Intensity: result.Intensity.String(),
			Theme:     result.Theme,
			Score:     result.Score,
			Rounds:    result.Rounds,
			TraceID:   result.TraceID,
			Chunks:    result.Chunks,
		})
	}
	for _, chunk := range result.Chunks {
		fmt.Fprintln(stdout, chunk)
	}
	return nil
}

// stateOutput is the JSON shape for "amparo -o json state".
type stateOutput struct {
	Actor             string        `json:"actor"`
	DisplayName       string        `json:"display_name,omitempty"`
	Mode              string        `json:"mode"`
	Progress          string        `json:"progress"`
	PracticalCooldown int           `json:"practical_cooldown"`
	LoopCount         int           `json:"loop_count"`
	RegenCount        int           `json:"regen_count"`
	Topics            topics.Memory `json:"topics"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// runState handles the "amparo state" subcommand. It prints the stored
// conversational state for one actor without touching it: no profile
// is created when the actor is unknown.
func runState(ctx context.Context, stdout io.Writer, configPath string, outputFmt string, args []string) error {
	var actorID string
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--actor" && i+1 < len(args):
			actorID = args[i+1]
			i++
		case strings.HasPrefix(args[i], "--actor="):
			actorID = strings.TrimPrefix(args[i], "--actor=")
		default:
			return fmt.Errorf("usage: amparo state --actor <id>")
		}
	}
	if actorID == "" {
		return fmt.Errorf("usage: amparo state --actor <id>")
	}

	app, err := openApp(stdout, configPath)
	if err != nil {
		return err
	}
	defer app.Close()

	actor, err := app.runtime.ActorState(ctx, actorID)
	if errors.Is(err, profile.ErrUnknownActor) {
		return fmt.Errorf("no stored state for actor %q", actorID)
	}
	if err != nil {
		return err
	}

	if outputFmt == "json" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stateOutput{
			Actor:             actor.ID,
			DisplayName:       actor.DisplayName,
			Mode:              actor.Mode,
			Progress:          actor.Progress,
			PracticalCooldown: actor.PracticalCooldown,
			LoopCount:         actor.LoopCount,
			RegenCount:        actor.RegenCount,
			Topics:            actor.Topics,
			CreatedAt:         actor.CreatedAt,
			UpdatedAt:         actor.UpdatedAt,
		})
	}

	fmt.Fprintf(stdout, "Actor:     %s\n", actor.ID)
	fmt.Fprintf(stdout, "Mode:      %s\n", actor.Mode)
	fmt.Fprintf(stdout, "Progress:  %s\n", actor.Progress)
	fmt.Fprintf(stdout, "Cooldown:  %d\n", actor.PracticalCooldown)
	fmt.Fprintf(stdout, "Loops:     %d\n", actor.LoopCount)
	fmt.Fprintf(stdout, "Regens:    %d\n", actor.RegenCount)
	if actor.Topics.Active != "" {
		fmt.Fprintf(stdout, "Topic:     %s (since %s)\n", actor.Topics.Active, actor.Topics.ActiveSince.Format(time.RFC3339))
	}
	for _, e := range actor.Topics.Entries {
		fmt.Fprintf(stdout, "  - %s (score %.2f, last seen %s)\n", e.Label, e.Score, e.LastSeen.Format(time.RFC3339))
	}
	fmt.Fprintf(stdout, "Updated:   %s\n", actor.UpdatedAt.Format(time.RFC3339))
	return nil
}

// runIngest handles the "amparo ingest" subcommand. It parses a
// markdown document into passages, embeds them, and replaces the
// stored passage set for the given theme. The theme must exist in the
// registry so retrieval never serves passages no prompt can ground.
func runIngest(ctx context.Context, stdout io.Writer, configPath string, args []string) error {
	var themeID, filePath string
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--theme" && i+1 < len(args):
			themeID = args[i+1]
			i++
		case strings.HasPrefix(args[i], "--theme="):
			themeID = strings.TrimPrefix(args[i], "--theme=")
		case strings.HasPrefix(args[i], "-"):
			return fmt.Errorf("unknown ingest argument: %s", args[i])
		case filePath == "":
			filePath = args[i]
		default:
			return fmt.Errorf("usage: amparo ingest --theme <id> <file.md>")
		}
	}
	if themeID == "" || filePath == "" {
		return fmt.Errorf("usage: amparo ingest --theme <id> <file.md>")
	}

	app, err := openApp(stdout, configPath)
	if err != nil {
		return err
	}
	defer app.Close()

	if _, ok := app.registry.Get(themeID); !ok {
		return fmt.Errorf("unknown theme %q (available: %s)", themeID, strings.Join(app.registry.IDs(), ", "))
	}

	count, err := app.ingester.IngestFile(ctx, themeID, filePath)
	if err != nil {
		return fmt.Errorf("ingest %s: %w", filePath, err)
	}

	app.logger.Info("ingestion complete", "theme", themeID, "passages", count, "file", filePath)
	fmt.Fprintf(stdout, "Ingested %d passages into theme %q\n", count, themeID)
	return nil
}

// app bundles everything a subcommand needs after configuration is
// loaded: the wired runtime, the stores behind it, and the handles
// that must be released on exit.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       *sql.DB
	bus      *events.Bus
	busCh    <-chan events.Event
	runtime  *agent.Runtime
	registry *themes.Registry
	ingester *retrieval.Ingester
}

// openApp loads configuration, opens the SQLite database, and wires
// the full turn runtime. Construction is offline: providers are not
// contacted until the first turn, so state inspection works without a
// reachable model backend.
func openApp(stdout io.Writer, configPath string) (*app, error) {
	logger := newLogger(stdout, slog.LevelInfo, "text")

	cfg, cfgPath, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgPath, err)
	}

	// Reconfigure the logger now that the desired level and format are
	// known. The initial Info-level text logger only covers config
	// discovery.
	level := slog.LevelInfo
	if cfg.LogLevel != "" {
		level, err = config.ParseLogLevel(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
	}
	logger = newLogger(stdout, level, cfg.LogFormat)
	logger.Info("config loaded",
		"path", cfgPath,
		"inference", cfg.Inference.Model,
		"embedding", cfg.Embedding.Model,
		"themes_dir", cfg.Themes.Dir,
	)

	// All persistent state (actors, messages, passages) lives in one
	// SQLite database under the data directory.
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory %s: %w", cfg.DataDir, err)
	}
	dbPath := filepath.Join(cfg.DataDir, "amparo.db")
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", dbPath, err)
	}

	a := &app{cfg: cfg, logger: logger, db: db}
	if err := a.wire(); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("runtime ready", "db", dbPath, "agent", cfg.Agent.Name)
	return a, nil
}

// wire builds the stores, model clients, and runtime from a.cfg. It
// never closes a.db; openApp owns that on failure.
func (a *app) wire() error {
	actors, err := profile.NewStore(a.db)
	if err != nil {
		return fmt.Errorf("open actor store: %w", err)
	}
	messages, err := memory.NewStore(a.db)
	if err != nil {
		return fmt.Errorf("open message store: %w", err)
	}
	passages, err := retrieval.NewStore(a.db)
	if err != nil {
		return fmt.Errorf("open passage store: %w", err)
	}

	embedder, err := embeddings.NewEngine(embeddings.Config{
		Provider: a.cfg.Embedding.Provider,
		Model:    a.cfg.Embedding.Model,
		BaseURL:  a.cfg.Embedding.BaseURL,
		APIKey:   a.cfg.Embedding.APIKey,
	})
	if err != nil {
		return fmt.Errorf("embedding engine: %w", err)
	}

	inference, err := llm.New(llm.Config{
		Provider: a.cfg.Inference.Provider,
		Model:    a.cfg.Inference.Model,
		BaseURL:  a.cfg.Inference.BaseURL,
		APIKey:   a.cfg.Inference.APIKey,
	}, a.logger)
	if err != nil {
		return fmt.Errorf("inference client: %w", err)
	}

	// The evaluator may run on a separate (typically stronger) model;
	// it falls back to the inference backend field by field.
	evCfg := a.cfg.EvaluatorOrInference()
	eval, err := evaluator.New(llm.Config{
		Provider: evCfg.Provider,
		Model:    evCfg.Model,
		BaseURL:  evCfg.BaseURL,
		APIKey:   evCfg.APIKey,
	}, a.logger)
	if err != nil {
		return fmt.Errorf("evaluator: %w", err)
	}

	registry, err := themes.LoadRegistry(a.cfg.Themes.Dir, a.cfg.Themes.Default, a.logger)
	if err != nil {
		return fmt.Errorf("load themes from %s: %w", a.cfg.Themes.Dir, err)
	}

	detector, err := signals.NewLexiconDetector(a.cfg.Detector.ExtraTerms)
	if err != nil {
		return fmt.Errorf("signal detector: %w", err)
	}

	bus := events.New()
	rt, err := agent.New(agent.Config{
		AgentName:      a.cfg.Agent.Name,
		HistoryLimit:   a.cfg.Agent.HistoryLimit,
		RetrievalLimit: a.cfg.Retrieval.Limit,
	}, agent.Deps{
		Detector:   detector,
		Loops:      similarity.NewEngine(embedder, a.logger),
		Extractor:  topics.NewLLMExtractor(inference, a.logger),
		Registry:   registry,
		Classifier: themes.NewLLMClassifier(inference, registry.Default().ID, a.logger),
		Retriever:  retrieval.NewRetriever(passages, embedder, a.cfg.Retrieval.Enabled, a.logger),
		Pipeline:   pipeline.New(inference, eval, a.cfg.Inference.Model, bus, a.logger),
		Actors:     actors,
		Messages:   messages,
		Bus:        bus,
		Logger:     a.logger,
	})
	if err != nil {
		return err
	}

	// Forward every runtime event to the trace log. When the level is
	// above trace this is a cheap no-op per event.
	busCh := bus.Subscribe(256)
	go func() {
		for e := range busCh {
			a.logger.Log(context.Background(), config.LevelTrace, "event",
				"source", e.Source, "kind", e.Kind, "data", e.Data)
		}
	}()

	a.bus = bus
	a.busCh = busCh
	a.runtime = rt
	a.registry = registry
	a.ingester = retrieval.NewIngester(passages, embedder, a.logger)
	return nil
}

// Close releases the event subscription and the database handle.
func (a *app) Close() error {
	a.bus.Unsubscribe(a.busCh)
	return a.db.Close()
}

// newLogger builds a slog.Logger writing to w. Level names include the
// custom TRACE level below DEBUG (see [config.LevelTrace]).
func newLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: config.ReplaceLogLevelNames,
	}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// loadConfig locates and parses the YAML configuration file. If explicit
// is non-empty, that exact path is used (and must exist). Otherwise,
// [config.FindConfig] searches the default locations. Returns the parsed
// config, the path that was loaded, and any error.
func loadConfig(explicit string) (*config.Config, string, error) {
	cfgPath, err := config.FindConfig(explicit)
	if err != nil {
		return nil, "", err
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, cfgPath, fmt.Errorf("load config %s: %w", cfgPath, err)
	}

	return cfg, cfgPath, nil
}
