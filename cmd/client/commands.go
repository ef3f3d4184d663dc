package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"easyupdate-go/configs/config"
	"easyupdate-go/internal/artifact"
	"easyupdate-go/internal/controller"
	"easyupdate-go/internal/dbclient"
	"easyupdate-go/internal/i18n"
	"easyupdate-go/internal/logging"
	"easyupdate-go/internal/parser"
	"easyupdate-go/internal/platform"
	"easyupdate-go/internal/report"
	"easyupdate-go/internal/ui"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var log = logging.L("client")

type app struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "easyupdate",
		Short:         "Check for, download and install app updates",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath, cmd.Flags())
			if err != nil {
				return err
			}
			logging.Init(cfg.LogFormat, cfg.LogLevel, cmd.ErrOrStderr())
			a.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", os.Getenv("EASYUPDATE_CONF"), "path to the toml config file")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("lang", "", "language of dialogs and messages")

	root.AddCommand(newCheckCmd(a), newHistoryCmd(a))
	return root
}

func newCheckCmd(a *app) *cobra.Command {
	var manual bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run one update check",
		Long: `Check asks the check endpoint for a newer version. When one exists the
update dialog is shown and, if accepted, the package is downloaded, validated
and handed to the system installer.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCheck(cmd, manual)
		},
	}
	cmd.Flags().BoolVar(&manual, "manual", false, "show progress and results even when nothing changed")
	cmd.Flags().String("url", "", "check endpoint, overrides check_url")
	return cmd
}

func (a *app) runCheck(cmd *cobra.Command, manual bool) error {
	cfg := a.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}
	localVersion, err := cfg.LocalVersion()
	if err != nil {
		return err
	}
	log.Printf("Current app version code: %d", localVersion)

	printer := i18n.NewPrinter(cfg.Language)
	device := &platform.Device{
		SDKInt:         cfg.SDKInt,
		PackageName:    cfg.PackageName,
		Launcher:       platform.ShellLauncher{Command: cfg.LauncherCommand},
		InstallAllowed: func() bool { return cfg.InstallAllowed },
	}
	loop := controller.NewMainLoop()

	b := controller.NewBuilder().
		SetURL(cfg.CheckURL).
		SetMethod(cfg.HTTPMethod).
		SetHeaders(cfg.Headers).
		SetParser(parser.Envelope{LocalVersion: localVersion, Printer: printer}).
		SetUIStrategy(ui.NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout(), printer)).
		SetPlatform(device).
		SetCache(artifact.NewCache(afero.NewOsFs(), cfg.CacheDir, nil)).
		SetDispatcher(loop).
		SetPrinter(printer)
	switch {
	case cfg.JSONBody != "":
		b.SetJSONBody(cfg.JSONBody)
	case len(cfg.FormBody) > 0:
		b.SetFormBody(cfg.FormBody)
	}

	var recorders controller.Recorders
	if cfg.HistoryEnabled {
		db, err := dbclient.NewDBClient(&cfg.Database, "gorm")
		if err != nil {
			log.Warn("check history disabled", logging.KeyError, err)
		} else {
			defer db.Close()
			recorders = append(recorders, dbclient.NewHistoryRecorder(db))
		}
	}
	if cfg.StatusReportURL != "" {
		recorders = append(recorders, report.NewReporter(cfg.StatusReportURL, cfg.StatusHeaders))
	}
	if len(recorders) > 0 {
		b.SetRecorder(recorders)
	}

	updater, err := b.Build()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		// A second interrupt kills the process even while a dialog waits for input.
		stop()
	}()

	var checkErr error
	go func() {
		defer loop.Stop()
		loop.Dispatch(func() {
			checkErr = updater.Check(ctx, controller.CheckOptions{Manual: manual})
		})
		updater.Wait()
	}()
	loop.Run()

	if checkErr != nil {
		return checkErr
	}
	switch state := updater.State(); state {
	case controller.StateFailed, controller.StateInvalid:
		return fmt.Errorf("update run ended in state %s", state)
	default:
		log.Info("update run finished", logging.KeyState, state)
	}
	return nil
}

func newHistoryCmd(a *app) *cobra.Command {
	var limit, pruneDays int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent update checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := dbclient.NewDBClient(&a.cfg.Database, "gorm")
			if err != nil {
				return err
			}
			defer db.Close()
			history := dbclient.NewHistoryRecorder(db)

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			if pruneDays > 0 {
				cutoff := time.Now().UTC().AddDate(0, 0, -pruneDays)
				if _, err := history.Prune(ctx, cutoff); err != nil {
					return err
				}
			}

			records, err := history.Recent(ctx, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No checks recorded.")
				return nil
			}
			for _, rec := range records {
				mode := "silent"
				if rec.Manual {
					mode = "manual"
				}
				fmt.Fprintf(out, "%-14s %-22s %-8s %-12s %s\n",
					humanize.Time(rec.CreatedAt), rec.Outcome, mode, rec.VersionName, rec.Error)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of records to show")
	cmd.Flags().IntVar(&pruneDays, "prune-days", 0, "delete records older than this many days first")
	return cmd
}
