// hist reads one integer per line from standard input, a file or a Redis
// list and prints a histogram of the values, optionally with descriptive
// statistics. With --service it runs as a queue worker storing the
// statistics of each job in Postgres.
package main

import (
	"bufio"
	"context"
	"database/sql"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time.
var Version = "dev"

func newRootCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hist [file | redis://host:port/db#key]",
		Short: "Print a histogram of integer observations",
		Long: `hist tallies one integer per line (lines that are not numbers count as 0)
and draws a bar per distinct value, optionally with statistics, running totals
and colors. Input is read from standard input unless a file or Redis list is given.`,
		Version:       Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupConfig(v, cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := loadOptions(v)
			if err != nil {
				return err
			}
			if err := setupLogging(opts); err != nil {
				return err
			}
			source := "-"
			if len(args) > 0 {
				source = args[0]
			}
			return run(cmd.Context(), opts, source, cmd.OutOrStdout())
		},
	}
	addFlags(cmd.Flags())
	return cmd
}

func setupLogging(opts options) error {
	log.SetOutput(os.Stderr)
	level := opts.logLevel
	if level == "" {
		level = "warning"
		if opts.service {
			level = "info"
		}
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return errors.Wrap(err, "log level")
	}
	log.SetLevel(lvl)
	return nil
}

func run(ctx context.Context, opts options, source string, w io.Writer) error {
	if opts.service {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		return runService(ctx, db, opts)
	}

	t, err := readInput(source)
	if err != nil {
		return err
	}

	var db *sql.DB
	if opts.store {
		if opts.runID == 0 {
			return errors.New("--store needs --run-id")
		}
		if db, err = openDB(); err != nil {
			return err
		}
		defer db.Close()
	}

	out := bufio.NewWriter(w)
	if err := processInput(db, t, opts, out); err != nil {
		out.Flush()
		return err
	}
	return errors.Wrap(out.Flush(), "flush output")
}

func main() {
	// Load environment from .env files for local development.
	_ = godotenv.Load(".env")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(viper.New()).ExecuteContext(ctx); err != nil {
		log.Error(err)
		stop()
		os.Exit(1)
	}
}
