// Command turtlesoup-cli offers read-only inspection of a turtlesoup database.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/myrjola/turtlesoup/internal/errors"
	"github.com/myrjola/turtlesoup/internal/repositories"
	"github.com/myrjola/turtlesoup/internal/sqlite"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var sqliteURL string

func openDatabase(ctx context.Context) (*sqlite.Database, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	dbs, err := sqlite.NewDatabase(ctx, sqliteURL, logger)
	if err != nil {
		return nil, errors.Wrap(err, "open database", slog.String("url", sqliteURL))
	}
	return dbs, nil
}

var puzzlesCmd = &cobra.Command{
	Use:   "puzzles",
	Short: "List every puzzle, oldest first; the last row is the current one",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		dbs, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = dbs.Close() }()

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		puzzles, err := repositories.NewPuzzleRepository(dbs, logger).List(ctx)
		if err != nil {
			return errors.Wrap(err, "list puzzles")
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "ID\tCREATED\tPUZZLE")
		for _, puzzle := range puzzles {
			_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n",
				puzzle.ID, puzzle.CreatedAt.Format("2006-01-02 15:04:05"), puzzle.Text)
		}
		return w.Flush()
	},
}

var transcriptCmd = &cobra.Command{
	Use:   "transcript [puzzle-id]",
	Short: "Print a puzzle's transcript in visibility order",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		dbs, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = dbs.Close() }()

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		puzzles := repositories.NewPuzzleRepository(dbs, logger)

		var puzzleID int64
		if len(args) == 1 {
			if puzzleID, err = strconv.ParseInt(args[0], 10, 64); err != nil {
				return errors.Wrap(err, "parse puzzle ID", slog.String("arg", args[0]))
			}
		} else {
			current, currentErr := puzzles.Current(ctx)
			if currentErr != nil {
				return errors.Wrap(currentErr, "read current puzzle")
			}
			puzzleID = current.ID
		}

		entries, err := repositories.NewTranscriptRepository(dbs, logger).List(ctx, puzzleID)
		if err != nil {
			return errors.Wrap(err, "list transcript")
		}

		for _, entry := range entries {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s: %s\n  %s\n",
				entry.CreatedAt.Format("15:04:05"), entry.DisplayName, entry.Prompt, entry.Response)
		}
		return nil
	},
}

var rootCmd = &cobra.Command{
	Use:           "turtlesoup-cli",
	Long:          `Command line utilities for turtlesoup https://github.com/myrjola/turtlesoup`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Missing .env is fine, the environment may be configured externally.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	v := viper.New()
	v.SetEnvPrefix("TURTLESOUP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs := rootCmd.PersistentFlags()
	fs.StringVar(&sqliteURL, "sqlite-url", "./turtlesoup.sqlite", "SQLite URL (env: TURTLESOUP_SQLITE_URL)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	rootCmd.AddCommand(puzzlesCmd)
	rootCmd.AddCommand(transcriptCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
