package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "crossword",
		Short:         "Solve crossword-interchange XML puzzles in the browser or the terminal",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("numbering", "", "clue numbering: derive (from the grid) or trust (from the file)")
	root.PersistentFlags().String("log-level", "", "debug, info, warn or error")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serveCmd.Flags().String("port", "", "listen port (default $PORT or 8080)")
	serveCmd.Flags().String("db", "", "sqlite file for solving progress (default $CROSSWORD_DB, in memory when empty)")
	serveCmd.Flags().String("catalog", "", "YAML puzzle catalog (default $CROSSWORD_CATALOG)")

	playCmd := &cobra.Command{
		Use:   "play <puzzle.xml>",
		Short: "Solve a puzzle in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlay,
	}
	playCmd.Flags().String("share", "", "share code to load instead of saved progress")
	playCmd.Flags().String("db", "", "sqlite file for solving progress (default in the user config dir)")
	playCmd.Flags().String("log-file", "crossword.log", "file the player logs to")

	showCmd := &cobra.Command{
		Use:   "show <puzzle.xml>",
		Short: "Print a puzzle's grid and clues",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}
	showCmd.Flags().String("state", "", "share code to overlay on the grid")
	showCmd.Flags().Bool("solution", false, "print the answers")

	root.AddCommand(serveCmd, playCmd, showCmd)
	return root
}

// loadConfig reads the environment and applies the flags shared by every command.
func loadConfig(cmd *cobra.Command) (Config, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return cfg, err
	}
	if v, _ := cmd.Flags().GetString("numbering"); v != "" {
		if cfg.Numbering, err = ParseNumbering(v); err != nil {
			return cfg, err
		}
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		if cfg.LogLevel, err = parseLogLevel(v); err != nil {
			return cfg, err
		}
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.DBPath = v
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("port"); v != "" {
		cfg.Port = v
	}
	if v, _ := cmd.Flags().GetString("catalog"); v != "" {
		cfg.CatalogPath = v
	}
	setLogOutput(os.Stderr, cfg.LogLevel)

	ctx := cmd.Context()
	store := NewStore()

	if cfg.CatalogPath != "" {
		cat, err := LoadCatalog(cfg.CatalogPath)
		if err != nil {
			return err
		}
		n, err := cat.LoadInto(store, cfg.Numbering)
		if err != nil {
			return err
		}
		logInfo("catalog loaded", "path", cfg.CatalogPath, "puzzles", n)
	}

	progress := NewMemoryProgress()
	if cfg.DBPath != "" {
		if progress, err = OpenSQLiteProgress(ctx, cfg.DBPath); err != nil {
			return err
		}
		logInfo("progress database opened", "path", cfg.DBPath)
	}
	defer progress.Close()

	var analyzer imageAnalyzer
	if cfg.ProjectID != "" {
		gemini, err := NewGeminiClient(ctx, cfg.ProjectID, cfg.Region, cfg.Model)
		if err != nil {
			return fmt.Errorf("init gemini: %w", err)
		}
		defer gemini.Close()
		analyzer = gemini
		logInfo("gemini client ready", "project", cfg.ProjectID)
	} else {
		logInfo("GCP_PROJECT_ID not set, photo import disabled")
	}

	srv := NewServer(store, progress, analyzer, cfg.Numbering)

	logInfo("server listening", "addr", "http://localhost:"+cfg.Port)
	return http.ListenAndServe(":"+cfg.Port, srv)
}

func runPlay(cmd *cobra.Command, args []string) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return fmt.Errorf("play needs a terminal; use 'crossword show' for plain output")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logPath, _ := cmd.Flags().GetString("log-file")
	logFile, err := openLogFile(logPath, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logFile.Close()

	p, err := loadPuzzleFile(args[0], cfg.Numbering)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if cfg.DBPath == "" {
		if cfg.DBPath, err = defaultProgressPath(); err != nil {
			return err
		}
	}
	progress, err := OpenSQLiteProgress(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer progress.Close()

	sess := NewSession(generateID(), p)
	share, _ := cmd.Flags().GetString("share")
	source := restoreSession(ctx, sess, progress, share)
	logInfo("player started", "puzzle", p.ID, "letters", source)

	return NewPlayer(sess, p, progress).Run()
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	setLogOutput(os.Stderr, cfg.LogLevel)

	p, err := loadPuzzleFile(args[0], cfg.Numbering)
	if err != nil {
		return err
	}

	opts := RenderOptions{}
	opts.ShowSolution, _ = cmd.Flags().GetBool("solution")
	if code, _ := cmd.Flags().GetString("state"); code != "" {
		letters := NewLetters(p)
		if err := ApplyShareCode(p, letters, code); err != nil {
			return err
		}
		opts.Letters = letters
	}
	fmt.Fprintln(cmd.OutOrStdout(), RenderPuzzle(p, opts))
	for _, w := range p.Warnings {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
	}
	return nil
}

// loadPuzzleFile parses a puzzle from disk. The file name without extension
// becomes the puzzle ID, which keys saved progress.
func loadPuzzleFile(path string, mode Numbering) (*Puzzle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read puzzle: %w", err)
	}
	p, err := ParsePuzzle(string(data), mode)
	if p.Width == 0 {
		if err == nil {
			err = ErrMissingGrid
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err != nil {
		logWarn("puzzle loaded with errors", "file", path, "error", err)
	}
	base := filepath.Base(path)
	p.ID = strings.TrimSuffix(base, filepath.Ext(base))
	return p, nil
}

func defaultProgressPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	dir = filepath.Join(dir, "crossword")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	return filepath.Join(dir, "progress.db"), nil
}
