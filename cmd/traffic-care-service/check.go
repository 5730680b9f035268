package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"traffic-care-service/internal/auth"
	"traffic-care-service/internal/model"
	"traffic-care-service/internal/service"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var forced bool

	cmd := &cobra.Command{
		Use:   "check [vehicle-id...]",
		Short: "Run a check batch over all or the given vehicles",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.checks.Run(cmd.Context(), service.CheckRequest{VehicleIDs: args, Forced: forced})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), reportTable(report))
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().BoolVar(&forced, "force", false, "Notify every enabled vehicle regardless of findings")
	return cmd
}

func reportTable(report *service.CheckReport) string {
	rows := make([][]string, 0, len(report.Vehicles))
	for _, o := range report.Vehicles {
		rows = append(rows, []string{
			o.Plate,
			string(o.Status),
			strconv.Itoa(o.Pending),
			strconv.Itoa(o.NewViolations),
			string(o.Notification),
			o.Error,
		})
	}
	return renderTable(
		[]string{"Plate", "Status", "Pending", "New", "Email", "Error"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
	)
}

func newTestRunCommand(ctx *commandContext) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "test-run <plates>",
		Short: "Register test plates against a mailbox and run a forced check",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			_, err = a.tests.Run(cmd.Context(), service.TestRunInput{Plates: args[0], TargetEmail: email}, func(line string) {
				fmt.Fprintln(out, line)
			})
			return err
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Target mailbox (defaults to the stored test target)")
	return cmd
}

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var clearAll bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the system log",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if clearAll {
				if err := a.logbook.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "System log cleared")
				return nil
			}

			entries := a.logbook.List()
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "System log is empty")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), logTable(entries, a.cfg.Location()))
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Delete every entry")
	return cmd
}

func logTable(entries []model.SystemLog, loc *time.Location) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Timestamp.In(loc).Format("02-01 15:04:05"),
			strings.ToUpper(string(e.Type)),
			string(e.Category),
			e.Message,
		})
	}
	return renderTable([]string{"Time", "Type", "Category", "Message"}, rows, nil)
}

func newTokenCommand(ctx *commandContext) *cobra.Command {
	var email string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <operator-id>",
		Short: "Mint a dashboard token signed with JWT_ACCESS_SECRET",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Auth.AccessSecret == "" {
				return fmt.Errorf("JWT_ACCESS_SECRET is not set")
			}
			now := time.Now()
			claims := auth.Claims{
				Email: email,
				RegisteredClaims: jwt.RegisteredClaims{
					Subject:  args[0],
					IssuedAt: jwt.NewNumericDate(now),
				},
			}
			if ttl > 0 {
				claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
			}
			token, err := auth.NewParser(cfg.Auth.AccessSecret).Sign(claims)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Operator email embedded in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 30*24*time.Hour, "Token lifetime, 0 for no expiry")
	return cmd
}
