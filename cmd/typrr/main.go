// Package main provides the CLI entrypoint for typrr.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/typrr/internal/client"
	"github.com/verte-zerg/typrr/internal/config"
	"github.com/verte-zerg/typrr/internal/localstate"
	"github.com/verte-zerg/typrr/internal/model"
	"github.com/verte-zerg/typrr/internal/progress"
	"github.com/verte-zerg/typrr/internal/snippet"
	"github.com/verte-zerg/typrr/internal/store"
	"github.com/verte-zerg/typrr/internal/tui"
)

const (
	defaultMode        = string(model.ModeDaily)
	defaultDailyMax    = progress.DefaultDailyMax
	defaultCurveWindow = 5
	defaultAddr        = ":3001"
	defaultTokenTTL    = "168h"
	defaultCORSOrigin  = "*"
)

var (
	practiceMode       string
	practiceLang       string
	practiceDifficulty string
	practiceDailyMax   int
	practiceSnippets   string
	practiceShuffle    bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "typrr",
		Short:         "Code typing practice",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().StringVar(&practiceMode, "mode", defaultMode, "daily or practice")
	rootCmd.Flags().StringVar(&practiceLang, "lang", "", "snippet language filter (practice mode)")
	rootCmd.Flags().StringVar(&practiceDifficulty, "difficulty", "", "easy, medium or hard (practice mode)")
	rootCmd.Flags().IntVar(&practiceDailyMax, "daily-max", defaultDailyMax, "daily attempts allowed")
	rootCmd.Flags().StringVar(&practiceSnippets, "snippets", "", "extra TOML snippet file")
	rootCmd.Flags().BoolVar(&practiceShuffle, "shuffle", true, "shuffle practice snippets")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLangsCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newLeaderboardCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newRegisterCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}

	st, err := openState()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	prefsStore := localstate.NewJSON[model.Preferences](st, localstate.KeyPrefs, nil)
	prefs := prefsStore.Load(ctx)
	applyPreference(cmd, "mode", &practiceMode, string(prefs.Mode))
	applyPreference(cmd, "lang", &practiceLang, prefs.Lang)
	applyPreference(cmd, "difficulty", &practiceDifficulty, prefs.Difficulty)

	applyStringConfig(cmd, "mode", &practiceMode, fileCfg.Practice.Mode)
	applyStringConfig(cmd, "lang", &practiceLang, fileCfg.Practice.Lang)
	applyStringConfig(cmd, "difficulty", &practiceDifficulty, fileCfg.Practice.Difficulty)
	applyIntConfig(cmd, "daily-max", &practiceDailyMax, fileCfg.Practice.DailyMax)
	applyStringConfig(cmd, "snippets", &practiceSnippets, fileCfg.Practice.Snippets)
	applyBoolConfig(cmd, "shuffle", &practiceShuffle, fileCfg.Practice.Shuffle)

	cfg := model.Config{
		Mode:         model.Mode(practiceMode),
		Lang:         practiceLang,
		Difficulty:   practiceDifficulty,
		DailyMax:     practiceDailyMax,
		SnippetsPath: practiceSnippets,
		APIURL:       apiURL(fileCfg),
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	catalog, err := loadCatalog(cfg.SnippetsPath)
	if err != nil {
		return err
	}
	deps := tui.Deps{
		Backend: st,
		Catalog: catalog,
		Logf:    func(string, ...any) {},
	}
	if cfg.Mode == model.ModePractice {
		picker, err := snippet.NewPicker(catalog, cfg.Lang, cfg.Difficulty, practiceShuffle, 0)
		if err != nil {
			return fmt.Errorf("no snippets for lang=%q difficulty=%q (see: typrr langs): %w", cfg.Lang, cfg.Difficulty, err)
		}
		deps.Picker = picker
	}
	if cfg.APIURL != "" {
		deps.Submitter = client.New(cfg.APIURL)
	}

	m, err := tui.NewModel(cfg, deps)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	if err := prefsStore.Save(ctx, model.Preferences{Mode: cfg.Mode, Lang: cfg.Lang, Difficulty: cfg.Difficulty}); err != nil {
		logErrf("failed to save preferences: %v\n", err)
	}
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func loadFileConfig() (config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	return config.ApplyEnv(fileCfg, os.LookupEnv), nil
}

func openState() (*store.Store, error) {
	st, err := store.OpenFile(config.DefaultStatePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open state db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func loadCatalog(extra string) (*snippet.Catalog, error) {
	catalog, err := snippet.Builtin()
	if err != nil {
		return nil, fmt.Errorf("failed to load built-in snippets: %w", err)
	}
	if extra == "" {
		return catalog, nil
	}
	user, err := snippet.LoadFile(extra)
	if err != nil {
		return nil, fmt.Errorf("failed to load snippets: %w", err)
	}
	return catalog.Merge(user), nil
}

func apiURL(cfg config.FileConfig) string {
	if cfg.Client.APIURL == nil {
		return ""
	}
	return strings.TrimRight(strings.TrimSpace(*cfg.Client.APIURL), "/")
}

// requireClient returns an API client or explains how to configure one.
func requireClient(cfg config.FileConfig) (*client.Client, error) {
	url := apiURL(cfg)
	if url == "" {
		return nil, fmt.Errorf("no server configured: set [client] api-url in %s or TYPRR_API_URL", config.DefaultConfigPath())
	}
	return client.New(url), nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newLangsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "langs",
		Short: "List snippet languages",
		Args:  cobra.NoArgs,
		RunE:  runLangsCmd,
	}
}

func runLangsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	extra := ""
	if fileCfg.Practice.Snippets != nil {
		extra = *fileCfg.Practice.Snippets
	}
	catalog, err := loadCatalog(extra)
	if err != nil {
		return err
	}
	return writeLangs(cmd.OutOrStdout(), catalog)
}

func writeLangs(w io.Writer, catalog *snippet.Catalog) error {
	for _, lang := range catalog.Languages() {
		count := len(catalog.Filter(lang, ""))
		if _, err := fmt.Fprintf(w, "%s\t%d\n", lang, count); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

// applyPreference fills an unset flag from the previous run; config values applied later win.
func applyPreference(cmd *cobra.Command, name string, target *string, value string) {
	if value == "" || cmd.Flags().Changed(name) {
		return
	}
	*target = value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# typrr configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# mode = %q          # daily or practice
# lang = "go"             # Snippet language (practice mode)
# difficulty = "easy"     # easy, medium or hard (practice mode)
# daily-max = %d           # Daily attempts allowed
# snippets = ""           # Extra TOML snippet file merged into the catalog
# shuffle = true          # Shuffle practice snippets

[client]
# api-url = "http://localhost:3001"   # Server for accounts, remote saves and leaderboards

[server]
# addr = %q
# db-driver = "sqlite"    # sqlite or postgres
# db-dsn = ""             # Defaults to %s
# jwt-secret = ""         # Required by typrr serve
# token-ttl = %q
# cors-origin = %q
`,
		defaultMode,
		defaultDailyMax,
		defaultAddr,
		config.DefaultServerDBPath(),
		defaultTokenTTL,
		defaultCORSOrigin,
	)
}

func validateConfig(cfg model.Config) error {
	if !cfg.Mode.Valid() {
		return fmt.Errorf("--mode must be %q or %q", model.ModeDaily, model.ModePractice)
	}
	if cfg.DailyMax <= 0 {
		return fmt.Errorf("--daily-max must be > 0")
	}
	switch cfg.Difficulty {
	case "", "easy", "medium", "hard":
	default:
		return fmt.Errorf("--difficulty must be easy, medium or hard")
	}
	return nil
}

func timeoutContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), client.DefaultTimeout+5*time.Second)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
