package apply

import (
	"fmt"

	"github.com/automatedhome/allyscheduler/pkg/command"
)

type Status string

const (
	Applied Status = "applied"
	Failed  Status = "failed"
)

// Reason says why a command failed.
type Reason string

const (
	ReasonTimeout   Reason = "timeout"
	ReasonCanceled  Reason = "canceled"
	ReasonRejected  Reason = "rejected"
	ReasonTransport Reason = "transport"
)

type Outcome struct {
	Command command.Command
	Status  Status
	Reason  Reason
	Err     error
}

func (o Outcome) String() string {
	if o.Status == Applied {
		return fmt.Sprintf("%s: applied", o.Command)
	}
	return fmt.Sprintf("%s: failed (%s): %v", o.Command, o.Reason, o.Err)
}

// Report lists one outcome per command, in publish order.
type Report struct {
	RunID    string
	Outcomes []Outcome
}

// OK reports whether every command was applied.
func (r *Report) OK() bool {
	return len(r.Failures()) == 0
}

func (r *Report) Applied() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == Applied {
			n++
		}
	}
	return n
}

func (r *Report) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status != Applied {
			out = append(out, o)
		}
	}
	return out
}

// FailedCommands returns the commands to hand back to Apply for a retry.
func (r *Report) FailedCommands() []command.Command {
	var out []command.Command
	for _, o := range r.Failures() {
		out = append(out, o.Command)
	}
	return out
}

// Merge replaces the outcomes of commands that were retried in next.
func (r *Report) Merge(next *Report) {
	byCmd := make(map[command.Command]Outcome, len(next.Outcomes))
	for _, o := range next.Outcomes {
		byCmd[o.Command] = o
	}
	for i, o := range r.Outcomes {
		if retried, ok := byCmd[o.Command]; ok && o.Status != Applied {
			r.Outcomes[i] = retried
		}
	}
}
