package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/goaltext/goaltext/internal/config"
	"github.com/goaltext/goaltext/internal/goals"
	"github.com/goaltext/goaltext/internal/identity"
	"github.com/goaltext/goaltext/internal/infra"
	"github.com/goaltext/goaltext/internal/logging"
	"github.com/goaltext/goaltext/internal/matcher"
	"github.com/goaltext/goaltext/internal/notification"
	"github.com/goaltext/goaltext/internal/reminder"
)

var (
	concurrency int
	timeout     time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "remind",
	Short: "Send scheduled goal reminders",
	Long: `Send the daily reminder SMS to every active user.

Run from a scheduler:
  remind morning - ask for today's goals
  remind evening - report today's progress`,
	SilenceUsage: true,
}

var morningCmd = &cobra.Command{
	Use:   "morning",
	Short: "Send the morning goal prompt",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runJob(cmd.Context(), (*reminder.Job).Morning)
	},
}

var eveningCmd = &cobra.Command{
	Use:   "evening",
	Short: "Send the evening progress check-in",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runJob(cmd.Context(), (*reminder.Job).Evening)
	},
}

func init() {
	rootCmd.PersistentFlags().IntVar(&concurrency, "concurrency", 8, "maximum parallel sends")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall run timeout")
	rootCmd.AddCommand(morningCmd, eveningCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runJob(ctx context.Context, run func(*reminder.Job, context.Context) (reminder.Report, error)) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(logging.Options{Level: cfg.LogLevel, Service: cfg.AppName + "-remind", Text: cfg.IsDev()})

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	db, err := infra.NewPostgresPool(ctx, cfg.DatabaseURL, cfg.AppName+"-remind")
	if err != nil {
		return err
	}
	defer db.Close()

	var sender notification.Sender = notification.NewLoggerSender(logger)
	if cfg.Twilio.AccountSID != "" {
		twilio, err := notification.NewTwilioSender(notification.TwilioConfig{
			AccountSID: cfg.Twilio.AccountSID,
			AuthToken:  cfg.Twilio.AuthToken,
			From:       cfg.Twilio.FromNumber,
		})
		if err != nil {
			return err
		}
		sender = twilio
	} else {
		logger.Warn("no twilio credentials, reminders are only logged")
	}

	ids := identity.NewService(identity.NewPostgresRepository(db), cfg.DefaultTimezone)
	goalSvc := goals.NewService(goals.NewPostgresRepository(db), matcher.New(matcher.Config{
		Threshold:      cfg.MatchThreshold,
		SubstringBonus: cfg.MatchSubstringBonus,
	}), cfg.DefaultTimezone)

	job := reminder.NewJob(ids, goalSvc, sender, logger, concurrency)
	report, err := run(job, ctx)
	if err != nil {
		return err
	}
	fmt.Printf("sent=%d failed=%d skipped=%d\n", report.Sent, report.Failed, report.Skipped)
	return nil
}
