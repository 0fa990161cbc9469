package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/forPelevin/wandlung/internal/app"
	"github.com/forPelevin/wandlung/internal/logging"
	"github.com/forPelevin/wandlung/internal/notify"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()
	if err != nil {
		var r reportedError
		if !errors.As(err, &r) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// reportedError marks an error the notifier already showed.
type reportedError struct{ err error }

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

type env struct {
	log zerolog.Logger
	app *app.App
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:           "wandlung",
		Short:         "Manage videos, subtitles and burned clips on a wandlung server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.init(errOut)
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	root.AddCommand(
		newVideosCmd(e),
		newSubtitlesCmd(e),
		newSettingsCmd(e),
	)
	return root
}

func (e *env) init(errOut io.Writer) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	e.log = logging.NewWriter(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, errOut)
	e.app = app.New(cfg, notify.NewConsole(errOut, e.log), e.log)
	return nil
}
