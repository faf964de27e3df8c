package sim

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// CSVSink writes every event as one CSV row.
type CSVSink struct {
	f *os.File
	w *csv.Writer
}

// NewCSVSink creates path and writes the header row.
func NewCSVSink(path string) (*CSVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create csv %s: %w", path, err)
	}
	w := csv.NewWriter(f)

	// write header
	if err := w.Write([]string{"time_ns", "tick", "event", "cpu", "task_id", "task", "vtime", "slice", "ran_ns"}); err != nil {
		f.Close()
		return nil, err
	}
	return &CSVSink{f: f, w: w}, nil
}

func (c *CSVSink) Handle(ev StatusEvent) error {
	return c.w.Write([]string{
		strconv.FormatUint(ev.Time, 10),
		strconv.FormatInt(ev.Tick, 10),
		ev.Kind.String(),
		strconv.FormatInt(int64(ev.CPU), 10),
		strconv.FormatUint(uint64(ev.TaskID), 10),
		ev.Task,
		strconv.FormatUint(ev.VTime, 10),
		strconv.FormatUint(ev.Slice, 10),
		strconv.FormatUint(ev.Ran, 10),
	})
}

// Close flushes buffered rows and closes the file.
func (c *CSVSink) Close() error {
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		c.f.Close()
		return err
	}
	return c.f.Close()
}
