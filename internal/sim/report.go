package sim

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"dsqsched/internal/sched"
)

// TaskStats summarizes one task over a run.
type TaskStats struct {
	ID         sched.TaskID
	Name       string
	Weight     uint32
	RuntimeNS  uint64
	WaitNS     uint64
	Dispatches int
	Wakeups    int
	VTime      uint64
	Share      float64 // fraction of all CPU time handed to tasks
}

// Report is the outcome of one simulation run.
type Report struct {
	Policy      string
	CPUs        int
	DurationNS  uint64
	Ticks       int64
	BusyNS      uint64
	IdleNS      uint64
	Fairness    float64 // Jain's index over runtime/weight
	GlobalVTime uint64  // zero for policies without a fairness clock
	Tasks       []TaskStats
}

func (s *Simulator) report() *Report {
	r := &Report{
		Policy:     s.policy.Name(),
		CPUs:       len(s.cpus),
		DurationNS: s.clock.Now(),
		Ticks:      s.clock.Count(),
	}
	if vc, ok := s.policy.(interface{ Now() uint64 }); ok {
		r.GlobalVTime = vc.Now()
	}
	for _, c := range s.cpus {
		r.BusyNS += c.busyNS
		r.IdleNS += c.idleNS
	}

	normalized := make([]float64, 0, len(s.tasks))
	for _, st := range s.tasks {
		ts := st.stats
		ts.ID = st.ID
		ts.Name = st.Name
		ts.Weight = st.Weight
		ts.VTime = st.VTime
		if r.BusyNS > 0 {
			ts.Share = float64(ts.RuntimeNS) / float64(r.BusyNS)
		}
		r.Tasks = append(r.Tasks, ts)
		normalized = append(normalized, float64(ts.RuntimeNS)/float64(st.Weight))
	}
	r.Fairness = JainIndex(normalized)
	return r
}

// JainIndex returns (sum x)^2 / (n * sum x^2): 1 when all values are equal,
// 1/n when one value takes everything.
func JainIndex(xs []float64) float64 {
	if len(xs) == 0 {
		return 1
	}
	var sum, sumSq float64
	for _, x := range xs {
		sum += x
		sumSq += x * x
	}
	if sumSq == 0 {
		return 1
	}
	return sum * sum / (float64(len(xs)) * sumSq)
}

// Task returns the stats of the named task.
func (r *Report) Task(name string) (TaskStats, bool) {
	for _, ts := range r.Tasks {
		if ts.Name == name {
			return ts, true
		}
	}
	return TaskStats{}, false
}

// WriteSummary prints a human readable table of the run.
func (r *Report) WriteSummary(w io.Writer) error {
	fmt.Fprintf(w, "policy %s on %d cpus for %s (%s ticks)\n",
		r.Policy, r.CPUs, time.Duration(r.DurationNS), humanize.Comma(r.Ticks))
	fmt.Fprintf(w, "busy %s, idle %s, fairness %.4f",
		time.Duration(r.BusyNS), time.Duration(r.IdleNS), r.Fairness)
	if r.GlobalVTime > 0 {
		fmt.Fprintf(w, ", vtime %s", humanize.Comma(int64(r.GlobalVTime)))
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TASK\tWEIGHT\tRUNTIME\tSHARE\tWAIT\tDISPATCHES\tWAKEUPS")
	for _, ts := range r.Tasks {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%.2f%%\t%s\t%s\t%s\n",
			ts.Name,
			ts.Weight,
			time.Duration(ts.RuntimeNS),
			ts.Share*100,
			time.Duration(ts.WaitNS),
			humanize.Comma(int64(ts.Dispatches)),
			humanize.Comma(int64(ts.Wakeups)))
	}
	return tw.Flush()
}
