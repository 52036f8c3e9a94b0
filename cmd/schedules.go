package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/automatedhome/allyscheduler/pkg/schedule"
)

// loadedSchedule is one document of a schedule file and what became of it.
type loadedSchedule struct {
	index    int
	schedule *schedule.Schedule
	problems schedule.ValidationErrors
	err      error
}

func (l loadedSchedule) label() string {
	return fmt.Sprintf("document %d", l.index+1)
}

func readSchedules(path string, limits schedule.Limits) ([]loadedSchedule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open schedule: %w", err)
	}
	defer f.Close()

	docs, err := schedule.DecodeAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%s holds no schedule", path)
	}

	out := make([]loadedSchedule, len(docs))
	for i, doc := range docs {
		out[i].index = i
		week, err := doc.Week(limits)
		if err != nil {
			out[i].err = err
			continue
		}
		if problems := schedule.Validate(week); len(problems) > 0 {
			out[i].problems = problems
			continue
		}
		out[i].schedule, out[i].err = schedule.Seal(week)
	}
	return out, nil
}

// parseDays reads a comma separated list of day names or 1-based numbers,
// Monday being 1. An empty string means the whole week.
func parseDays(s string) ([]schedule.Weekday, error) {
	if strings.TrimSpace(s) == "" {
		return append([]schedule.Weekday(nil), schedule.Weekdays...), nil
	}
	var days []schedule.Weekday
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if n, err := strconv.Atoi(part); err == nil {
			if n < 1 || n > 7 {
				return nil, fmt.Errorf("invalid day index: %d", n)
			}
			days = append(days, schedule.Weekday(n-1))
			continue
		}
		d, err := schedule.ParseWeekday(part)
		if err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// selectDevices narrows the schedule's targets to the requested devices.
// No request selects every target.
func selectDevices(s *schedule.Schedule, requested []string) []string {
	if len(requested) == 0 {
		return s.TargetDevices()
	}
	var out []string
	for _, d := range requested {
		if s.HasDevice(d) {
			out = append(out, d)
		}
	}
	return out
}
