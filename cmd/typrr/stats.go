package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/typrr/internal/client"
	"github.com/verte-zerg/typrr/internal/localstate"
	"github.com/verte-zerg/typrr/internal/model"
	"github.com/verte-zerg/typrr/internal/progress"
	"github.com/verte-zerg/typrr/internal/stats"
	"github.com/verte-zerg/typrr/internal/statsui"
)

var (
	statsLang        string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool
	statsRemote      bool

	leaderboardLang       string
	leaderboardDifficulty string
	leaderboardLimit      int
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsLang, "lang", "", "language filter")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N attempts")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the TUI")
	cmd.Flags().BoolVar(&statsRemote, "remote", false, "print the stats stored on the server")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	if statsCurveWindow < 1 {
		return fmt.Errorf("--curve-window must be >= 1")
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	st, err := openState()
	if err != nil {
		return err
	}
	defer closeStore(st)

	if statsRemote {
		c, err := requireClient(fileCfg)
		if err != nil {
			return err
		}
		cred := localstate.NewJSON[model.Credential](st, localstate.KeyCredential, nil).Load(context.Background())
		if !cred.Authenticated() {
			return fmt.Errorf("not signed in (run: typrr login)")
		}
		ctx, cancel := timeoutContext()
		defer cancel()
		totals, err := c.Stats(ctx, cred.Token)
		if err != nil {
			if errors.Is(err, client.ErrUnauthorized) {
				return fmt.Errorf("session expired (run: typrr login): %w", err)
			}
			return err
		}
		return stats.RenderSummary(cmd.OutOrStdout(), totals)
	}

	history := localstate.NewHistory(st)
	tracker := progress.NewTracker(st)
	cfg := stats.ReportConfig{Lang: statsLang, Last: statsLast, CurveWindow: statsCurveWindow}

	if statsPlain || !term.IsTerminal(int(os.Stdout.Fd())) {
		report := stats.BuildReport(context.Background(), history, tracker, cfg, time.Now())
		return stats.RenderReport(cmd.OutOrStdout(), report, cfg, stats.TerminalWidth(), false)
	}

	deps := statsui.Deps{History: history, Tracker: tracker}
	if c, err := requireClient(fileCfg); err == nil {
		deps.Leaderboard = leaderboardFunc(c)
	}
	program := tea.NewProgram(statsui.NewModel(deps, cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func leaderboardFunc(c *client.Client) statsui.LeaderboardFunc {
	return func(ctx context.Context, lang string, limit int) ([]model.LeaderboardEntry, error) {
		if lang != "" {
			return c.LanguageLeaderboard(ctx, lang, limit)
		}
		return c.Leaderboard(ctx, model.LeaderboardFilter{Limit: limit})
	}
}

func newLeaderboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the best WPM per player",
		Args:  cobra.NoArgs,
		RunE:  runLeaderboardCmd,
	}
	cmd.Flags().StringVar(&leaderboardLang, "lang", "", "language filter")
	cmd.Flags().StringVar(&leaderboardDifficulty, "difficulty", "", "difficulty filter")
	cmd.Flags().IntVar(&leaderboardLimit, "limit", 0, "number of entries (server default when 0)")
	return cmd
}

func runLeaderboardCmd(cmd *cobra.Command, _ []string) error {
	if leaderboardLimit < 0 {
		return fmt.Errorf("--limit must be >= 0")
	}
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	c, err := requireClient(fileCfg)
	if err != nil {
		return err
	}
	ctx, cancel := timeoutContext()
	defer cancel()

	title := "Global Leaderboard"
	var entries []model.LeaderboardEntry
	if leaderboardLang != "" && leaderboardDifficulty == "" {
		title = "Leaderboard: " + leaderboardLang
		entries, err = c.LanguageLeaderboard(ctx, leaderboardLang, leaderboardLimit)
	} else {
		entries, err = c.Leaderboard(ctx, model.LeaderboardFilter{
			Language:   leaderboardLang,
			Difficulty: leaderboardDifficulty,
			Limit:      leaderboardLimit,
		})
	}
	if err != nil {
		return fmt.Errorf("failed to fetch leaderboard: %w", err)
	}
	return stats.RenderLeaderboard(cmd.OutOrStdout(), title, entries)
}
