package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/automatedhome/allyscheduler/pkg/schedule"
)

var (
	templateDevices string
	templateOutput  string
	templateAppend  bool
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write a complete starter schedule for the given devices",
	Args:  cobra.NoArgs,
	RunE:  runTemplate,
}

func init() {
	templateCmd.Flags().StringVar(&templateDevices, "devices", "", "Comma separated devices the schedule targets")
	templateCmd.Flags().StringVarP(&templateOutput, "output", "o", "", "Write to this file instead of stdout")
	templateCmd.Flags().BoolVar(&templateAppend, "append", false, "Append as a new document instead of overwriting")
	rootCmd.AddCommand(templateCmd)
}

// starterWeek is a 17/21/17 °C day for every day of the week.
func starterWeek(devices []string) (*schedule.Schedule, error) {
	b := schedule.NewBuilder(cfg.Thermostat.Limits())
	b.SetDevices(devices...)
	err := b.SetDays(schedule.Weekdays,
		schedule.TimeSlot{Start: schedule.Midnight, End: schedule.At(6, 0), Setpoint: 17},
		schedule.TimeSlot{Start: schedule.At(6, 0), End: schedule.At(22, 0), Setpoint: 21},
		schedule.TimeSlot{Start: schedule.At(22, 0), End: schedule.EndOfDay, Setpoint: 17},
	)
	if err != nil {
		return nil, err
	}
	return b.Build()
}

func runTemplate(cmd *cobra.Command, args []string) error {
	if err := loadConfig(false); err != nil {
		return err
	}
	devices := splitList(templateDevices)
	if len(devices) == 0 {
		return errors.New("at least one device is required (--devices)")
	}
	s, err := starterWeek(devices)
	if err != nil {
		return err
	}
	doc := schedule.NewDocument(s.Week())

	if templateOutput == "" {
		return schedule.Encode(cmd.OutOrStdout(), doc)
	}

	if err := os.MkdirAll(filepath.Dir(templateOutput), 0o755); err != nil {
		return err
	}
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if templateAppend {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(templateOutput, flags, 0o644)
	if err != nil {
		return err
	}
	if err := writeDocument(f, doc, templateAppend); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("saving %s: %w", templateOutput, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved to: %s\n", templateOutput)
	return nil
}

func writeDocument(w io.Writer, doc schedule.Document, separate bool) error {
	if separate {
		if _, err := io.WriteString(w, "\n---\n"); err != nil {
			return err
		}
	}
	return schedule.Encode(w, doc)
}
