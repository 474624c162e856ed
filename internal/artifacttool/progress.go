package artifacttool

import (
	"io"
	"os"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Reporter receives the progress updates derived from the tool's event
// stream. Report may be called any number of times with a fresh message and
// percentage; Done finalizes whatever is on screen.
type Reporter interface {
	Report(message string, percent float64)
	Done()
}

// NewReporter returns a progress bar reporter when stderr is a terminal and
// a debug-logging fallback otherwise.
func NewReporter(log zerolog.Logger) Reporter {
	if !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return &logReporter{log: log}
	}
	return &barReporter{}
}

// barReporter renders tool events as a percent bar. The bar tracks 0-100
// directly since events only carry ratios, not a stable byte total.
type barReporter struct {
	bar *pb.ProgressBar
}

func (r *barReporter) Report(message string, percent float64) {
	if r.bar == nil {
		r.bar = pb.
			New64(100).
			SetTemplate(
				pb.ProgressBarTemplate(
					color.New(color.FgHiBlack).Sprint(
						` {{string . "prefix"}} {{bar . "[" "=" ">" " " "]" }} {{percent . }}`,
					),
				),
			).
			SetRefreshRate(time.Second / 60).
			SetMaxWidth(100).
			SetWriter(os.Stderr).
			Start()
	}

	r.bar.Set("prefix", message)
	r.bar.SetCurrent(int64(percent))
}

func (r *barReporter) Done() {
	if r.bar != nil {
		r.bar.Finish()
		r.bar = nil
	}
}

type logReporter struct {
	log zerolog.Logger
}

func (r *logReporter) Report(message string, percent float64) {
	r.log.Debug().Float64("percent", percent).Msg(message)
}

func (r *logReporter) Done() {}

// progressReader wraps a download stream with a transfer bar when running in
// a terminal. Returns the wrapped reader and a function to finalize the bar.
func progressReader(reader io.Reader, size int64) (io.Reader, func()) {
	if !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return reader, func() {}
	}

	bar := pb.
		New64(size).
		SetTemplate(
			pb.ProgressBarTemplate(
				color.New(color.FgHiBlack).Sprint(
					` {{counters . }} {{bar . "[" "=" ">" " " "]" }} {{percent . }} {{speed . }}`,
				),
			),
		).
		SetRefreshRate(time.Second / 60).
		SetMaxWidth(100).
		SetWriter(os.Stderr).
		Start()

	return bar.NewProxyReader(reader), func() { bar.Finish() }
}
