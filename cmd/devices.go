package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/automatedhome/allyscheduler/pkg/mqttbus"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List the thermostats announced on the discovery topic",
	Args:  cobra.NoArgs,
	RunE:  runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}

func runDevices(cmd *cobra.Command, args []string) error {
	if err := loadConfig(true); err != nil {
		return err
	}

	client, err := mqttbus.Dial(cfg.MQTT, cfg.Thermostat.Model, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	devices := client.Discover(ctx)
	out := cmd.OutOrStdout()
	if len(devices) == 0 {
		fmt.Fprintln(out, "No thermostats found.")
		return nil
	}
	for i, d := range devices {
		fmt.Fprintf(out, "%d. %s\n", i+1, d)
	}
	return nil
}
