package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"eventreg/src/boot"
	"eventreg/src/config"
	"eventreg/src/lib"
	"eventreg/src/services"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var Version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "eventctl",
		Short:         "Admin tooling for the registration API",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if os.Getenv("API_ENV") == "local" {
				_ = godotenv.Load()
			}
		},
	}
	root.AddCommand(hashPasswordCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(reconcileCmd())
	root.AddCommand(failuresCmd())
	return root
}

func hashPasswordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Long:  "Hashes the password given as argument, or the first line of stdin when no argument is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cost, _ := cmd.Flags().GetInt("cost")
			password := ""
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return err
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return errors.New("password must not be empty")
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return nil
		},
	}
	cmd.Flags().IntP("cost", "c", bcrypt.DefaultCost, "bcrypt work factor")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the registrations schema for STORAGE_MODE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := cliLogger(cmd)
			if _, err := boot.InitStorage(cmd.Context(), cfg, log); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "storage %q is up to date\n", cfg.StorageMode)
			return nil
		},
	}
}

func reconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Mark pending registrations paid when Stripe reports a succeeded payment",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			minAge, _ := cmd.Flags().GetDuration("min-age")
			timeout, _ := cmd.Flags().GetDuration("timeout")
			log := cliLogger(cmd)
			lib.SetStripeTimeout(cfg.StripeTimeout)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			store, err := boot.InitStorage(ctx, cfg, log)
			if err != nil {
				return err
			}
			registrations := services.NewRegistrationService(store, log)
			notifier := services.NewMailNotifier(cfg.SMTP, cfg.EventName, nil, log)
			reconciler := services.NewReconciler(registrations, services.NewStripeGateway(nil, log), notifier, minAge, log)

			healed, err := reconciler.Run(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d registration(s) marked paid\n", healed)
			return nil
		},
	}
	cmd.Flags().Duration("min-age", 10*time.Minute, "skip registrations younger than this")
	cmd.Flags().Duration("timeout", 5*time.Minute, "overall deadline")
	return cmd
}

func failuresCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "failures",
		Short: "List recent webhook events whose processing failed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt64("limit")
			if limit < 1 {
				return errors.New("limit must be positive")
			}
			rdb, err := lib.GetRedisClient()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			records, err := services.NewRedisEventLedger(rdb).RecentFailures(ctx, limit)
			if err != nil {
				return fmt.Errorf("reading failure records: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "no failed webhook events")
				return nil
			}
			for _, rec := range records {
				fmt.Fprintf(out, "%s  %s  %s  %s\n", rec.At.UTC().Format(time.RFC3339), rec.EventID, rec.EventType, rec.Error)
			}
			return nil
		},
	}
	cmd.Flags().Int64P("limit", "n", 20, "number of records to show")
	return cmd
}

func cliLogger(cmd *cobra.Command) *zerolog.Logger {
	l := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.Kitchen}).
		With().
		Timestamp().
		Logger()
	return &l
}
