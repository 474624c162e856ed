package artifacttool

import (
	"encoding/json"
	"fmt"
)

// The artifact tool emits newline-delimited serilog compact-format records
// on stderr. Information-level records omit the @l field.
type logLine struct {
	Message   string   `json:"@m"`
	Level     string   `json:"@l"`
	Exception string   `json:"@x"`
	EventID   *eventID `json:"EventId"`

	ProcessedFiles  *int64 `json:"ProcessedFiles"`
	TotalFiles      *int64 `json:"TotalFiles"`
	UploadedBytes   *int64 `json:"UploadedBytes"`
	DownloadedBytes *int64 `json:"DownloadedBytes"`
	TotalBytes      *int64 `json:"TotalBytes"`
}

type eventID struct {
	Name string `json:"Name"`
}

type severity int

const (
	severityDebug severity = iota
	severityInfo
	severityWarning
	// severityFatal marks a Critical or Error record, which fails the whole
	// operation regardless of the child's exit code.
	severityFatal
)

type progressUpdate struct {
	message string
	percent float64
}

type lineResult struct {
	severity severity
	message  string
	progress *progressUpdate
}

// processLine classifies a single line of tool output.
//
// Lines that don't decode into a log record are opaque debug text, never an
// error. Decoded records are classified by severity, with the exception text
// folded into the message for fatal ones; recognized progress events yield a
// progress update alongside the classification.
func processLine(line string) lineResult {
	var record logLine
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		return lineResult{severity: severityDebug, message: line}
	}

	res := lineResult{severity: severityDebug, message: line}

	if record.Message != "" {
		res.message = record.Message
		switch record.Level {
		case "Critical", "Error":
			res.severity = severityFatal
			if record.Exception != "" {
				res.message = record.Message + "\n" + record.Exception
			}
			return res
		case "Warning":
			res.severity = severityWarning
		case "Information", "":
			res.severity = severityInfo
		default:
			res.severity = severityDebug
		}
	}

	res.progress = eventProgress(record)
	return res
}

// eventProgress maps a recognized event record onto a (message, percent)
// pair. Events with a zero or absent total counter are dropped rather than
// reported as a nonsense percentage.
func eventProgress(record logLine) *progressUpdate {
	if record.EventID == nil {
		return nil
	}

	switch record.EventID.Name {
	case "ProcessingFiles":
		return ratio("Pre-upload processing: %d/%d files", record.ProcessedFiles, record.TotalFiles)
	case "Uploading":
		return ratio("Uploading: %d/%d bytes", record.UploadedBytes, record.TotalBytes)
	case "Downloading":
		return ratio("Downloading: %d/%d bytes", record.DownloadedBytes, record.TotalBytes)
	}

	return nil
}

func ratio(format string, done, total *int64) *progressUpdate {
	if done == nil || total == nil || *total == 0 {
		return nil
	}

	return &progressUpdate{
		message: fmt.Sprintf(format, *done, *total),
		percent: 100 * float64(*done) / float64(*total),
	}
}
