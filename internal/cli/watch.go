package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sakemonkey/sakemonkey/internal/formula"
)

// WatchUpdate is one re-evaluation of a watched measurement file.
type WatchUpdate struct {
	Time    time.Time        `json:"time" yaml:"time"`
	Reading *formula.Reading `json:"reading,omitempty" yaml:"reading,omitempty"`

	// Error is set when the file could not be evaluated; Reading then holds
	// the last good result, if any, and Stale is true.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
	Stale bool   `json:"stale" yaml:"stale"`
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <measurement-file>",
		Short: "Recalculate a reading every time its file changes",
		Long: `Evaluate a YAML measurement file and re-evaluate it on every save,
printing the corrected gravity, ABV and SMV. An invalid edit is reported and
the last good result stays on screen. Nothing is recorded in the history.

The file holds:
  measured_temp_c: 25
  measured_sg: 1.050
  measured_brix: 8        # optional
  calibration_temp_c: 20  # optional

Example:
  sakemonkey watch reading.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runWatch(opts *RootOptions, path string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	eval, _, logger, err := opts.evaluator(cmd)
	if err != nil {
		return out.Fail(err)
	}

	// Setup signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(out.GetErrWriter(), "Watching %s. Press Ctrl-C to stop.\n", path)
	err = watchMeasurements(ctx, path, eval, logger, func(u WatchUpdate) {
		_ = out.Render(u, func(w io.Writer) { printWatchUpdate(w, u) })
	})
	if err != nil {
		return out.Fail(commandError(ErrCodeUsage, err))
	}
	return nil
}

func printWatchUpdate(w io.Writer, u WatchUpdate) {
	stamp := u.Time.Format("15:04:05")
	if u.Error != "" {
		fmt.Fprintf(w, "[%s] invalid: %s\n", stamp, u.Error)
		if u.Reading == nil {
			return
		}
		stamp += " last good"
	}
	abv := "-"
	if u.Reading.ABV != nil {
		abv = formatNumber(*u.Reading.ABV) + "%"
	}
	fmt.Fprintf(w, "[%s] corrected %s  ABV %s  SMV %s\n",
		stamp, formatNumber(u.Reading.CorrectedSG), abv, formatNumber(u.Reading.SMV))
}

// measurementFile is the on-disk shape of a watched reading. Pointer fields
// tell a missing key from a zero value.
type measurementFile struct {
	MeasuredTempC    *float64 `yaml:"measured_temp_c"`
	MeasuredSG       *float64 `yaml:"measured_sg"`
	MeasuredBrix     *float64 `yaml:"measured_brix"`
	CalibrationTempC *float64 `yaml:"calibration_temp_c"`
}

// loadMeasurement reads a measurement file. Unknown keys are rejected so a
// typo does not silently drop a value, and a half-written file missing the
// temperature or gravity is an input error rather than a 0 reading.
func loadMeasurement(path string) (formula.Measurement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return formula.Measurement{}, err
	}
	var f measurementFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return formula.Measurement{}, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if f.MeasuredTempC == nil {
		return formula.Measurement{}, formula.MissingField("measured_temp_c")
	}
	if f.MeasuredSG == nil {
		return formula.Measurement{}, formula.MissingField("measured_sg")
	}
	m := formula.Measurement{
		MeasuredTempC:    *f.MeasuredTempC,
		MeasuredSG:       *f.MeasuredSG,
		MeasuredBrix:     f.MeasuredBrix,
		CalibrationTempC: f.CalibrationTempC,
	}
	return m.WithDefaults(), nil
}

// watchMeasurements evaluates path now and after every write until ctx is
// cancelled. A failed evaluation keeps the previous reading.
func watchMeasurements(ctx context.Context, path string, eval *formula.Evaluator, logger *slog.Logger, onUpdate func(WatchUpdate)) error {
	path = filepath.Clean(path)
	if _, err := os.Stat(path); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory: editors often save by renaming a temp file over
	// the original, which drops a watch on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	var last *formula.Reading
	evaluate := func() {
		u := WatchUpdate{Time: time.Now()}
		m, err := loadMeasurement(path)
		if err == nil {
			var reading formula.Reading
			reading, err = eval.Evaluate(m)
			if err == nil {
				reading = reading.Rounded()
				last = &reading
			}
		}
		u.Reading = last
		if err != nil {
			logger.Warn("measurement rejected; keeping last result", "path", path, "error", err)
			u.Error = err.Error()
			u.Stale = true
		}
		onUpdate(u)
	}

	logger.Info("watching measurement file", "path", path)
	evaluate()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			evaluate()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", "error", err)
		}
	}
}
