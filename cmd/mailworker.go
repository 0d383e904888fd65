/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/taskmate/apiserver/config"
	"github.com/taskmate/apiserver/internal/log"
	"github.com/taskmate/apiserver/internal/mailer"
	"github.com/taskmate/apiserver/internal/mq"
)

// mailworkerCmd consumes queued mail and delivers it over SMTP. It is the
// other half of MAIL_BACKEND=mq: the API server publishes, this process
// delivers.
var mailworkerCmd = &cobra.Command{
	Use:   "mailworker",
	Short: "Deliver queued outbound mail over SMTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		logger := log.New(cfg.Environment, cfg.LogLevel)

		broker, err := mq.Connect(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("connect broker failed: %w", err)
		}
		defer func() {
			_ = broker.Close()
		}()

		sender, err := mailer.NewSMTPSender(cfg.SMTP, cfg.Mail.From)
		if err != nil {
			return fmt.Errorf("smtp sender failed: %w", err)
		}

		logger.Info().Str("channel", cfg.Mail.Channel).Msg("mail worker started")
		err = broker.Subscribe(cmd.Context(), cfg.Mail.Channel, func(ctx context.Context, msg mq.Message) error {
			var mail mailer.Message
			if err := json.Unmarshal(msg.Data, &mail); err != nil {
				// A malformed payload will never parse; drop it instead of
				// redelivering forever.
				logger.Error().Err(err).Str("message_id", msg.ID).Msg("dropping undecodable mail")
				return nil
			}
			if err := sender.Send(ctx, mail); err != nil {
				logger.Error().Err(err).Str("to", mail.To).Msg("mail delivery failed, requeueing")
				return err
			}
			logger.Info().Str("to", mail.To).Str("subject", mail.Subject).Msg("mail delivered")
			return nil
		})
		if err != nil && cmd.Context().Err() == nil {
			fmt.Fprintf(os.Stderr, "mail worker stopped: %v\n", err)
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mailworkerCmd)
}
