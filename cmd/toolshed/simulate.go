package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/toolshed"
	"github.com/aretw0/toolshed/internal/cli"
	"github.com/aretw0/toolshed/internal/presentation/tui"
	"github.com/aretw0/toolshed/pkg/domain"
	"github.com/aretw0/toolshed/pkg/observability"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Drive a session from the terminal",
	Long: `Runs one session interactively. Commands are read line by line from stdin,
so scripts can be piped in. With --session the state is restored from and
saved to the configured store after every command.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		sessionID, _ := cmd.Flags().GetString("session")
		noColor, _ := cmd.Flags().GetBool("no-color")

		c, err := cli.BuildCatalog(cfg.Catalog, logger)
		if err != nil {
			return err
		}
		persistence, err := cli.BuildStore(cfg.Store)
		if err != nil {
			return err
		}
		defer persistence.Close()

		opts := append(cli.ControllerOptions(cfg, c, logger), toolshed.WithLifecycleHooks(observability.LogHooks(logger)))
		if sessionID != "" {
			opts = append(opts, toolshed.WithSessionID(sessionID))
		}
		ctl, err := toolshed.New(opts...)
		if err != nil {
			return err
		}
		defer ctl.Close()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		in, out := cmd.InOrStdin(), cmd.OutOrStdout()
		stdin, interactive := in.(*os.File)
		interactive = interactive && term.IsTerminal(int(stdin.Fd()))
		profile, width := termenv.Ascii, 80
		if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) && !noColor {
			profile = termenv.EnvColorProfile()
			if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
				width = w
			}
		}

		simOpts := []cli.SimulatorOption{
			cli.WithProfile(profile),
			cli.WithRenderer(tui.NewRenderer(cfg.Session.Theme, width)),
			cli.WithPrompt(interactive),
		}
		if interactive {
			tui.PrintBanner(out, profile, toolshed.Version)
			simOpts = append(simOpts, cli.WithPasswordReader(func() (string, error) {
				fmt.Fprint(out, "password: ")
				pw, err := term.ReadPassword(int(stdin.Fd()))
				fmt.Fprintln(out)
				return string(pw), err
			}))
		}

		if sessionID != "" {
			snap, err := persistence.Store.Load(ctx, sessionID)
			switch {
			case err == nil:
				if err := ctl.Restore(snap); err != nil {
					return fmt.Errorf("restore session %q: %w", sessionID, err)
				}
				logger.Info("session restored", "session_id", sessionID)
			case !errors.Is(err, domain.ErrSessionNotFound):
				return err
			}
			simOpts = append(simOpts, cli.WithAfterCommand(func(ctx context.Context) error {
				return persistence.Store.Save(ctx, sessionID, ctl.Snapshot())
			}))
		}

		return cli.NewSimulator(ctl, out, simOpts...).Run(ctx, in)
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().StringP("session", "s", "", "Session ID to restore and persist")
	simulateCmd.Flags().Bool("no-color", false, "Disable coloured output")
}
