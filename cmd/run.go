// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/hashicorp/go-arkiv"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// CLI are the cli parameters for the arkiv binary
type CLI struct {
	Telemetry bool             `short:"T" optional:"" default:"false" help:"Print telemetry data to log after each operation."`
	Verbose   bool             `short:"v" optional:"" help:"Verbose logging."`
	Version   kong.VersionFlag `short:"V" optional:"" help:"Print release version information."`

	Formats  FormatsCmd  `cmd:"" help:"List the supported archive formats."`
	List     ListCmd     `cmd:"" help:"List the entries of an archive."`
	Unpack   UnpackCmd   `cmd:"" help:"Unpack archives into a directory."`
	Extract  ExtractCmd  `cmd:"" help:"Extract a single entry of an archive."`
	Download DownloadCmd `cmd:"" help:"Download an archive and list or unpack it."`
}

// ExtractionFlags are the limits and safety settings shared by all commands that write files.
type ExtractionFlags struct {
	DenySymlinks      bool  `short:"D" help:"Deny symlink extraction."`
	DropAttributes    bool  `help:"Do not restore file modes and modification times."`
	Insecure          bool  `help:"[Dangerous!] Do not check entry paths for traversal."`
	MaxFiles          int64 `optional:"" default:"1000" help:"Maximum files that are extracted before stop. (disable check: -1)"`
	MaxExtractionSize int64 `optional:"" default:"1073741824" help:"Maximum extraction size that allowed is (in bytes). (disable check: -1)"`
	MaxExtractionTime int64 `optional:"" default:"60" help:"Maximum time that an operation should take (in seconds). (disable check: -1)"`
	NoOverwrite       bool  `help:"Fail if a file already exists."`
}

func (f ExtractionFlags) options() []arkiv.ConfigOption {
	return []arkiv.ConfigOption{
		arkiv.WithDenySymlinkExtraction(f.DenySymlinks),
		arkiv.WithDropFileAttributes(f.DropAttributes),
		arkiv.WithInsecureAllowTraversal(f.Insecure),
		arkiv.WithMaxExtractionSize(f.MaxExtractionSize),
		arkiv.WithMaxFiles(f.MaxFiles),
		arkiv.WithOverwrite(!f.NoOverwrite),
	}
}

func (f ExtractionFlags) withTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if f.MaxExtractionTime <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, time.Second*time.Duration(f.MaxExtractionTime))
}

// env is passed to every command.
type env struct {
	ctx    context.Context
	logger *slog.Logger
	out    io.Writer
	opts   []arkiv.ConfigOption
}

// FormatsCmd prints the registered formats.
type FormatsCmd struct{}

// Run prints one format per line with its extension.
func (c *FormatsCmd) Run(e *env) error {
	for _, f := range arkiv.SupportedFormats() {
		fmt.Fprintf(e.out, "%-12s .%s\n", f, f.Extension())
	}
	return nil
}

// ListCmd prints the entries of an archive.
type ListCmd struct {
	Archive string `arg:"" name:"archive" help:"Path to archive." type:"existingfile"`
	Long    bool   `short:"l" help:"Print kind, mode and size."`
}

// Run lists the entries in container order.
func (c *ListCmd) Run(e *env) error {
	a, err := arkiv.Open(c.Archive, e.opts...)
	if err != nil {
		return errors.Wrap(err, "open archive")
	}
	defer a.Close()

	for entry, err := range a.Walk() {
		if err != nil {
			return errors.Wrapf(err, "list %s", c.Archive)
		}
		if c.Long {
			fmt.Fprintf(e.out, "%-9s %s %10d %s\n", entry.Kind(), entry.Mode(), entry.Size(), entry.Path())
			continue
		}
		fmt.Fprintln(e.out, entry.Path())
	}
	return nil
}

// UnpackCmd unpacks one or more archives.
type UnpackCmd struct {
	ExtractionFlags `embed:""`

	Destination string   `arg:"" name:"destination" help:"Output directory."`
	Archives    []string `arg:"" name:"archive" help:"Paths to archives." type:"existingfile"`
}

// Run unpacks the archives concurrently. With more than one archive, each is
// unpacked into a sub-directory named after the archive.
func (c *UnpackCmd) Run(e *env) error {
	ctx, cancel := c.withTimeout(e.ctx)
	defer cancel()

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())
	for _, path := range c.Archives {
		dst := c.Destination
		if len(c.Archives) > 1 {
			dst = filepath.Join(c.Destination, archiveStem(path))
		}
		eg.Go(func() error {
			a, err := arkiv.Open(path, slices.Concat(e.opts, c.options())...)
			if err != nil {
				return errors.Wrapf(err, "open %s", path)
			}
			defer a.Close()

			if err := a.Unpack(ctx, dst); err != nil {
				return errors.Wrapf(err, "unpack %s", path)
			}
			e.logger.Info("unpacked", "archive", path, "destination", dst)
			return nil
		})
	}
	return eg.Wait()
}

// ExtractCmd extracts a single entry.
type ExtractCmd struct {
	ExtractionFlags `embed:""`

	Archive     string `arg:"" name:"archive" help:"Path to archive." type:"existingfile"`
	Entry       string `arg:"" name:"entry" help:"Path of the entry inside the archive."`
	Destination string `arg:"" name:"destination" default:"." help:"Output directory."`
}

// Run looks up the entry and extracts it.
func (c *ExtractCmd) Run(e *env) error {
	ctx, cancel := c.withTimeout(e.ctx)
	defer cancel()

	a, err := arkiv.Open(c.Archive, slices.Concat(e.opts, c.options())...)
	if err != nil {
		return errors.Wrap(err, "open archive")
	}
	defer a.Close()

	entry, err := a.EntryByName(c.Entry)
	if err != nil {
		return errors.Wrapf(err, "lookup %s", c.Entry)
	}
	return errors.Wrapf(a.UnpackEntry(ctx, entry, c.Destination), "extract %s", c.Entry)
}

// DownloadCmd downloads an archive.
type DownloadCmd struct {
	ExtractionFlags `embed:""`

	URL          string `arg:"" name:"url" help:"URL of the archive."`
	Dir          string `help:"Keep the archive in this directory instead of a temporary one."`
	MaxInputSize int64  `optional:"" default:"1073741824" help:"Maximum input size that allowed is (in bytes). (disable check: -1)"`
	Progress     bool   `short:"p" help:"Report download progress."`
	UnpackTo     string `name:"unpack" help:"Unpack the archive into this directory. Without it, the entries are listed."`
}

// Run downloads the archive and unpacks or lists it.
func (c *DownloadCmd) Run(e *env) error {
	ctx, cancel := c.withTimeout(e.ctx)
	defer cancel()

	opts := slices.Concat(e.opts, c.options(), []arkiv.ConfigOption{arkiv.WithMaxInputSize(c.MaxInputSize)})

	d := arkiv.NewDownloader().URL(c.URL).Options(opts...)
	var ready arkiv.ReadyDownloader
	if c.Dir != "" {
		ready = d.ToDirectory(c.Dir)
	} else {
		ready = d.ToTemp()
	}
	if c.Progress {
		ready = ready.OnProgress(progressPrinter(e.logger))
	}

	a, err := ready.Download(ctx)
	if err != nil {
		return errors.Wrap(err, "download")
	}
	defer a.Close()

	if c.UnpackTo != "" {
		return errors.Wrap(a.Unpack(ctx, c.UnpackTo), "unpack")
	}
	entries, err := a.Entries()
	if err != nil {
		return errors.Wrap(err, "list")
	}
	for _, p := range entries {
		fmt.Fprintln(e.out, p)
	}
	return nil
}

// progressPrinter logs whenever another tenth of the download is written.
func progressPrinter(logger *slog.Logger) arkiv.ProgressFunc {
	last := int64(-1)
	return func(written, total int64) {
		var step int64
		if total > 0 {
			step = written * 10 / total
		}
		if step == last {
			return
		}
		last = step
		logger.Info("download progress", "written", written, "total", total, "percent", step*10)
	}
}

// archiveStem returns the base name of path without its archive suffix.
func archiveStem(path string) string {
	base := filepath.Base(path)
	if ext := arkiv.InferFormat(base).Extension(); ext != "" {
		if stem := strings.TrimSuffix(base, "."+ext); stem != base && stem != "" {
			return stem
		}
	}
	if i := strings.IndexByte(base, '.'); i > 0 {
		return base[:i]
	}
	return base
}

// Run the entrypoint into arkiv as a cli tool
func Run(version, commit, date string) {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("arkiv"),
		kong.Description("Inspect, extract and download archives"),
		kong.UsageOnError(),
		kong.Vars{
			"version": fmt.Sprintf("%s (%s), commit %s, built at %s", filepath.Base(os.Args[0]), version, commit, date),
		},
	)

	// Check for verbose output
	logLevel := slog.LevelInfo
	if cli.Verbose {
		logLevel = slog.LevelDebug
	}

	// setup logger
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	// setup telemetry hook
	telemetryToLog := func(ctx context.Context, td *arkiv.TelemetryData) {
		if cli.Telemetry {
			logger.Info("operation finished", "telemetry", td)
		}
	}

	e := &env{
		ctx:    context.Background(),
		logger: logger,
		out:    os.Stdout,
		opts: []arkiv.ConfigOption{
			arkiv.WithLogger(logger),
			arkiv.WithTelemetryHook(telemetryToLog),
		},
	}

	if err := kctx.Run(e); err != nil {
		logger.Error("command failed", "err", err)
		os.Exit(1)
	}
}
