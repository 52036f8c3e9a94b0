package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [schedule-file]",
	Short: "Check a schedule file and list every problem in it",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if err := loadConfig(false); err != nil {
		return err
	}
	path := cfg.Apply.ScheduleFile
	if len(args) == 1 {
		path = args[0]
	}

	loaded, err := readSchedules(path, cfg.Thermostat.Limits())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	bad := 0
	for _, l := range loaded {
		switch {
		case l.err != nil:
			bad++
			fmt.Fprintf(out, "%s: %v\n", l.label(), l.err)
		case len(l.problems) > 0:
			bad++
			for _, p := range l.problems {
				fmt.Fprintf(out, "%s: %s\n", l.label(), p)
			}
		default:
			fmt.Fprintf(out, "%s: ok (%d devices)\n", l.label(), len(l.schedule.TargetDevices()))
		}
	}
	if bad > 0 {
		return fmt.Errorf("%d of %d schedules are invalid", bad, len(loaded))
	}
	return nil
}
