package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/automatedhome/allyscheduler/pkg/ally"
	"github.com/automatedhome/allyscheduler/pkg/apply"
	"github.com/automatedhome/allyscheduler/pkg/command"
	"github.com/automatedhome/allyscheduler/pkg/metrics"
	"github.com/automatedhome/allyscheduler/pkg/mqttbus"
)

var (
	applyDays        string
	applyDevices     string
	applyDryRun      bool
	applyRetries     int
	applyMetricsFile string
)

var applyCmd = &cobra.Command{
	Use:   "apply [schedule-file]",
	Short: "Send a saved schedule to the thermostats",
	Long: `Load every schedule document from the file, validate it and publish one
command per device, day and time slot. Every command carries the whole
program of its day.

Examples:
  # Apply the default schedule file to all of its devices
  allyscheduler apply

  # Only Monday and Tuesday, only the bedroom thermostat
  allyscheduler apply --days monday,tuesday --devices bedroom

  # Print the payloads instead of publishing them
  allyscheduler apply --dry-run
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringVar(&applyDays, "days", "", "Comma separated days (names or 1-7), default the whole week")
	applyCmd.Flags().StringVar(&applyDevices, "devices", "", "Comma separated devices, default every device of each schedule")
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "Log the commands without publishing them")
	applyCmd.Flags().IntVar(&applyRetries, "retries", -1, "Times to re-send failed commands (default from config)")
	applyCmd.Flags().StringVar(&applyMetricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile after the run")
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	if err := loadConfig(!applyDryRun); err != nil {
		return err
	}
	path := cfg.Apply.ScheduleFile
	if len(args) == 1 {
		path = args[0]
	}
	retries := cfg.Apply.Retries
	if applyRetries >= 0 {
		retries = applyRetries
	}
	metricsFile := cfg.Apply.MetricsFile
	if applyMetricsFile != "" {
		metricsFile = applyMetricsFile
	}

	days, err := parseDays(applyDays)
	if err != nil {
		return err
	}
	requested := splitList(applyDevices)

	loaded, err := readSchedules(path, cfg.Thermostat.Limits())
	if err != nil {
		return err
	}

	var cmds []command.Command
	programs := ally.NewPrograms()
	matched := map[string]bool{}
	for _, l := range loaded {
		if l.err != nil {
			return fmt.Errorf("%s: %w", l.label(), l.err)
		}
		if len(l.problems) > 0 {
			return fmt.Errorf("%s: %w", l.label(), l.problems)
		}
		devices := selectDevices(l.schedule, requested)
		if len(devices) == 0 {
			continue
		}
		for _, d := range devices {
			matched[d] = true
		}
		if err := programs.Use(l.schedule, devices...); err != nil {
			return fmt.Errorf("%s: %w", l.label(), err)
		}
		compiled, err := command.Compile(l.schedule, days, devices)
		if err != nil {
			return fmt.Errorf("%s: %w", l.label(), err)
		}
		cmds = append(cmds, compiled...)
	}
	for _, d := range requested {
		if !matched[d] {
			return &command.UnknownDeviceError{Device: d}
		}
	}
	if len(cmds) == 0 {
		return errors.New("nothing to apply")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var publisher apply.Publisher
	if applyDryRun {
		dry := mqttbus.NewDryRun(cfg.MQTT.TopicSet, logger)
		dry.Programs = programs
		publisher = dry
	} else {
		client, err := mqttbus.Dial(cfg.MQTT, cfg.Thermostat.Model, logger)
		if err != nil {
			return err
		}
		defer client.Close()
		client.Programs = programs
		if err := client.Connected(); err != nil {
			return err
		}
		publisher = client
	}

	recorder := metrics.New()
	applier := apply.New(publisher, logger,
		apply.WithInterval(cfg.Apply.Interval),
		apply.WithMetrics(recorder),
	)

	report := applier.Apply(ctx, cmds)
	retryFailed(ctx, applier, report, retries)

	printReport(cmd.OutOrStdout(), report)
	if metricsFile != "" {
		if err := recorder.WriteTextfile(metricsFile); err != nil {
			logger.Error().Err(err).Str("path", metricsFile).Msg("Failed to write metrics")
		}
	}
	if !report.OK() {
		return fmt.Errorf("%d of %d commands failed", len(report.Failures()), len(report.Outcomes))
	}
	return nil
}

// retryFailed re-sends only the failed commands, backing off between
// rounds.
func retryFailed(ctx context.Context, applier *apply.Applier, report *apply.Report, retries int) {
	delay := time.Second
	const maxDelay = 30 * time.Second

	for attempt := 1; attempt <= retries && !report.OK(); attempt++ {
		failed := report.FailedCommands()
		logger.Info().Int("attempt", attempt).Int("commands", len(failed)).Dur("delay", delay).Msg("Retrying failed commands")

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		report.Merge(applier.Apply(ctx, failed))

		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
		}
	}
}

func printReport(w io.Writer, report *apply.Report) {
	fmt.Fprintf(w, "\nReport (run %s):\n", report.RunID)
	cmds := make([]command.Command, 0, len(report.Outcomes))
	for _, o := range report.Outcomes {
		cmds = append(cmds, o.Command)
	}
	fmt.Fprintf(w, "Configured days: %v\n", command.Days(cmds))
	fmt.Fprintf(w, "For thermostats: %v\n", command.Devices(cmds))
	fmt.Fprintf(w, "Applied %d of %d commands\n", report.Applied(), len(report.Outcomes))
	for _, o := range report.Failures() {
		fmt.Fprintf(w, "  %s\n", o)
	}
}
