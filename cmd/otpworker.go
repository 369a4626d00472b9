/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/folioworks/identity/config"
	"github.com/folioworks/identity/internal/logging"
	"github.com/folioworks/identity/internal/mq"
	"github.com/folioworks/identity/internal/otp"
	"github.com/spf13/cobra"
)

// otpWorkerCmd runs the dispatch worker that consumes queued OTP jobs and
// delivers the codes.
var otpWorkerCmd = &cobra.Command{
	Use:   "otp-worker",
	Short: "Run the OTP code delivery worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		logger, err := logging.New()
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer logger.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		queue, err := mq.Open(ctx, cfg)
		if err != nil {
			return fmt.Errorf("open message broker: %w", err)
		}
		defer queue.Close()

		sender := otp.NewEmailSender(cfg.SMTP)
		worker := otp.NewWorker(queue, cfg.Otp.DispatchChannel, sender, logger)

		logger.Info("otp worker started")
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(otpWorkerCmd)
}
