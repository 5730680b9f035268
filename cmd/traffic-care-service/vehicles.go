package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"traffic-care-service/internal/model"
	"traffic-care-service/internal/service"
)

func newVehiclesCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vehicles",
		Short: "Manage tracked vehicles",
	}
	cmd.AddCommand(newVehiclesListCommand(ctx))
	cmd.AddCommand(newVehiclesAddCommand(ctx))
	cmd.AddCommand(newVehiclesRemoveCommand(ctx))
	return cmd
}

func newVehiclesListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tracked vehicles",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			records := a.vehicles.List()
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No vehicles tracked")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), vehicleTable(records, a.cfg.Location()))
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
}

func newVehiclesAddCommand(ctx *commandContext) *cobra.Command {
	var email string
	var notifications bool

	cmd := &cobra.Command{
		Use:   "add <plate>",
		Short: "Track a plate and run a check",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.vehicles.Add(cmd.Context(), service.AddVehicleInput{
				Plate:                args[0],
				Email:                email,
				NotificationsEnabled: notifications,
			})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), vehicleTable([]model.VehicleRecord{result.Vehicle}, a.cfg.Location()))
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Owner email for violation reports")
	cmd.Flags().BoolVar(&notifications, "notify", false, "Send email reports for this vehicle")
	return cmd
}

func newVehiclesRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Stop tracking a vehicle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.vehicles.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		},
	}
}

func vehicleTable(records []model.VehicleRecord, loc *time.Location) string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		lastCheck := "-"
		if r.Vehicle.LastCheckAt != nil {
			lastCheck = r.Vehicle.LastCheckAt.In(loc).Format(time.DateTime)
		}
		notify := "off"
		if r.Vehicle.NotificationsEnabled {
			notify = r.Vehicle.Email
		}
		rows = append(rows, []string{
			r.Vehicle.ID,
			r.Vehicle.PlateNumber,
			string(r.Vehicle.Status),
			strconv.Itoa(r.PendingCount),
			strconv.Itoa(r.ResolvedCount),
			notify,
			lastCheck,
		})
	}
	return renderTable(
		[]string{"ID", "Plate", "Status", "Pending", "Resolved", "Notify", "Last check"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
	)
}
