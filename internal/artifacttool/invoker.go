package artifacttool

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/packfeed/upackctl/internal/credentials"
)

// PatVarEnvKey names the child-process environment variable that carries the
// resolved credential. The tool is told the variable name via --patvar; the
// secret itself never appears in argv.
const PatVarEnvKey = "UPACK_TOOL_PATVAR"

type binaryResolver interface {
	Resolve(ctx context.Context, service string) (string, error)
}

type execFunc func(ctx context.Context, executable string, opts ...RunnerOpt) error

// Invoker runs the artifact tool for the two high-level package operations.
// One child process is spawned per operation and consumed synchronously.
type Invoker struct {
	updater  binaryResolver
	creds    credentials.Provider
	reporter Reporter
	log      zerolog.Logger

	exec execFunc
}

type InvokerOption func(i *Invoker)

// WithReporter replaces the default terminal progress reporter.
func WithReporter(reporter Reporter) InvokerOption {
	return func(i *Invoker) {
		i.reporter = reporter
	}
}

func NewInvoker(updater binaryResolver, creds credentials.Provider, log zerolog.Logger, options ...InvokerOption) *Invoker {
	i := Invoker{
		updater: updater,
		creds:   creds,
		log:     log,
		exec:    Run,
	}

	for _, opt := range options {
		opt(&i)
	}

	if i.reporter == nil {
		i.reporter = NewReporter(log)
	}

	return &i
}

// DownloadRequest identifies a package to fetch and where to place it.
type DownloadRequest struct {
	Service string
	Feed    string
	Name    string
	Version string
	Path    string
}

// PublishRequest identifies a package to push from a local directory.
type PublishRequest struct {
	Service     string
	Feed        string
	Name        string
	Version     string
	Path        string
	Description string
}

// Download fetches a package from a feed into the destination path.
func (i *Invoker) Download(ctx context.Context, req DownloadRequest) error {
	args := []string{
		"upack", "download",
		"--service", req.Service,
		"--patvar", PatVarEnvKey,
		"--feed", req.Feed,
		"--package-name", req.Name,
		"--package-version", req.Version,
		"--path", req.Path,
	}

	return i.invoke(ctx, req.Service, args, "Downloading")
}

// Publish pushes the contents of a local directory as a package version.
func (i *Invoker) Publish(ctx context.Context, req PublishRequest) error {
	args := []string{
		"upack", "publish",
		"--service", req.Service,
		"--patvar", PatVarEnvKey,
		"--feed", req.Feed,
		"--package-name", req.Name,
		"--package-version", req.Version,
		"--path", req.Path,
	}
	if req.Description != "" {
		args = append(args, "--description", req.Description)
	}

	return i.invoke(ctx, req.Service, args, "Publishing")
}

func (i *Invoker) invoke(ctx context.Context, service string, args []string, initial string) error {
	binary, err := i.updater.Resolve(ctx, service)
	if err != nil {
		return fmt.Errorf("failed to resolve artifact tool: %w", err)
	}

	cred, err := i.creds.Resolve(ctx, service)
	if err != nil {
		return err
	}

	i.log.Debug().Str("binary", binary).Strs("args", args).Msg("invoking artifact tool")

	i.reporter.Report(initial, 0)
	defer i.reporter.Done()

	return i.exec(ctx, binary,
		WithArgs(args...),
		WithEnv(PatVarEnvKey+"="+cred.Token),
		WithStderrLines(i.handleLine),
	)
}

// handleLine routes one classified line of tool output. A fatal record
// aborts the whole invocation with the tool's message, regardless of what
// exit code the child would have produced.
func (i *Invoker) handleLine(line string) error {
	res := processLine(line)

	switch res.severity {
	case severityFatal:
		return errors.New(res.message)
	case severityWarning:
		i.log.Warn().Msg(res.message)
	case severityInfo:
		i.log.Info().Msg(res.message)
	default:
		i.log.Debug().Msg(res.message)
	}

	if res.progress != nil {
		i.reporter.Report(res.progress.message, res.progress.percent)
	}

	return nil
}
