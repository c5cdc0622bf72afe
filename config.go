// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package arkiv

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"time"
)

// ConfigOption is a function pointer to implement the option pattern
type ConfigOption func(*Config)

// Config provides a configuration struct and options to adjust the configuration.
//
// The configuration is shared by [Open], [Archive] operations and the downloader.
// The defaults reproduce the behavior of a plain unpack: existing files are
// overwritten, the destination is created and no limits apply, while entry
// paths are still checked for traversal.
type Config struct {
	// chunkSize is the buffer size used to copy a download to disk
	chunkSize int

	// createDestination creates the destination directory if it does not exist
	createDestination bool

	// customCreateDirMode is the file mode for created directories, that are not defined in the archive (respecting umask)
	customCreateDirMode fs.FileMode

	// customFileMode is the file mode for files without recorded permissions (respecting umask)
	customFileMode fs.FileMode

	// denySymlinkExtraction offers the option to enable/disable the extraction of symlinks
	denySymlinkExtraction bool

	// dropFileAttributes is a flag drop the file attributes of the extracted files
	dropFileAttributes bool

	// httpClient performs download requests
	httpClient *http.Client

	// insecureAllowTraversal disables the path traversal and symlink checks
	insecureAllowTraversal bool

	// logger stream for archive operations
	logger logger

	// maxExtractionSize is the maximum size over all extracted files.
	// Set value to -1 to disable the check.
	maxExtractionSize int64

	// maxFiles is the maximum of entries (including folder and symlinks) extracted in one operation.
	// Set value to -1 to disable the check.
	maxFiles int64

	// maxInputSize is the maximum size of a download
	// Set value to -1 to disable the check.
	maxInputSize int64

	// overwrite defines if files should be overwritten in the destination
	overwrite bool

	// telemetryHook is a function to consume telemetry data after a finished operation
	telemetryHook TelemetryHook
}

// CheckMaxFiles checks if counter exceeds the configured maximum. If the maximum is exceeded,
// a [ErrMaxFilesExceeded] error is returned.
func (c *Config) CheckMaxFiles(counter int64) error {

	// check if disabled
	if c.MaxFiles() == -1 {
		return nil
	}

	// check value
	if counter > c.MaxFiles() {
		return ErrMaxFilesExceeded
	}
	return nil
}

// CheckExtractionSize checks if fileSize exceeds configured maximum. If the maximum is exceeded,
// a [ErrMaxExtractionSizeExceeded] error is returned.
func (c *Config) CheckExtractionSize(fileSize int64) error {

	// check if disabled
	if c.MaxExtractionSize() == -1 {
		return nil
	}

	// check value
	if fileSize > c.MaxExtractionSize() {
		return ErrMaxExtractionSizeExceeded
	}
	return nil
}

// ChunkSize returns the buffer size used to copy downloads.
func (c *Config) ChunkSize() int {
	return c.chunkSize
}

// CreateDestination returns true if the destination directory should be
// created if it does not exist.
func (c *Config) CreateDestination() bool {
	return c.createDestination
}

// CustomCreateDirMode returns the file mode for created directories,
// that are not defined in the archive. (respecting umask)
func (c *Config) CustomCreateDirMode() fs.FileMode {
	return c.customCreateDirMode
}

// CustomFileMode returns the file mode for extracted files without
// recorded permissions. (respecting umask)
func (c *Config) CustomFileMode() fs.FileMode {
	return c.customFileMode
}

// DenySymlinkExtraction returns true if symlinks are NOT allowed.
func (c *Config) DenySymlinkExtraction() bool {
	return c.denySymlinkExtraction
}

// DropFileAttributes returns true if the file attributes should be dropped.
func (c *Config) DropFileAttributes() bool {
	return c.dropFileAttributes
}

// HTTPClient returns the client used for downloads.
func (c *Config) HTTPClient() *http.Client {
	return c.httpClient
}

// InsecureAllowTraversal returns true if entry paths are joined onto the
// destination without traversal and symlink checks.
func (c *Config) InsecureAllowTraversal() bool {
	return c.insecureAllowTraversal
}

// Logger returns the logger.
func (c *Config) Logger() logger {
	return c.logger
}

// MaxExtractionSize returns the maximum size over all extracted files.
func (c *Config) MaxExtractionSize() int64 {
	return c.maxExtractionSize
}

// MaxFiles returns the maximum of entries (including folder and symlinks) extracted in one operation.
func (c *Config) MaxFiles() int64 {
	return c.maxFiles
}

// MaxInputSize returns the maximum size of a download.
func (c *Config) MaxInputSize() int64 {
	return c.maxInputSize
}

// Overwrite returns true if files should be overwritten in the destination.
func (c *Config) Overwrite() bool {
	return c.overwrite
}

// TelemetryHook returns the telemetry hook.
func (c *Config) TelemetryHook() TelemetryHook {
	if c.telemetryHook == nil {
		return defaultTelemetryHook
	}
	return c.telemetryHook
}

const (
	defaultChunkSize              = 16 << 10 // 16 KiB
	defaultCreateDestination      = true     // create destination directory
	defaultCustomCreateDirMode    = 0750     // default directory permissions rwxr-x---
	defaultCustomFileMode         = 0640     // default file permissions rw-r-----
	defaultDenySymlinkExtraction  = false    // allow symlink extraction
	defaultDropFileAttributes     = false    // restore file attributes from archive
	defaultInsecureAllowTraversal = false    // check entry paths
	defaultMaxFiles               = -1       // no limit
	defaultMaxExtractionSize      = -1       // no limit
	defaultMaxInputSize           = -1       // no limit
	defaultOverwrite              = true     // overwrite existing files
)

var (
	// slog to discard
	defaultLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	// no operation telemetry hook
	defaultTelemetryHook = func(ctx context.Context, d *TelemetryData) {
		// noop
	}
)

// newDefaultHTTPClient returns a client that does not follow redirects, a
// redirect is reported as non-success status.
func newDefaultHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Minute,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// NewConfig is a generator option that takes opts as adjustments of the
// default configuration in an option pattern style.
func NewConfig(opts ...ConfigOption) *Config {

	// setup default values
	config := &Config{
		chunkSize:              defaultChunkSize,
		createDestination:      defaultCreateDestination,
		customCreateDirMode:    defaultCustomCreateDirMode,
		customFileMode:         defaultCustomFileMode,
		denySymlinkExtraction:  defaultDenySymlinkExtraction,
		dropFileAttributes:     defaultDropFileAttributes,
		httpClient:             newDefaultHTTPClient(),
		insecureAllowTraversal: defaultInsecureAllowTraversal,
		logger:                 defaultLogger,
		maxExtractionSize:      defaultMaxExtractionSize,
		maxFiles:               defaultMaxFiles,
		maxInputSize:           defaultMaxInputSize,
		overwrite:              defaultOverwrite,
		telemetryHook:          defaultTelemetryHook,
	}

	// Loop through each option
	for _, opt := range opts {
		opt(config)
	}

	return config
}

// WithChunkSize options pattern function to set the buffer size used to
// copy downloads. Values <= 0 are ignored.
func WithChunkSize(size int) ConfigOption {
	return func(c *Config) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithCreateDestination options pattern function to create
// destination directory if it does not exist.
func WithCreateDestination(create bool) ConfigOption {
	return func(c *Config) {
		c.createDestination = create
	}
}

// WithCustomCreateDirMode options pattern function to set the file mode
// for created directories, that are not defined in the archive. (respecting umask)
func WithCustomCreateDirMode(mode fs.FileMode) ConfigOption {
	return func(c *Config) {
		c.customCreateDirMode = mode
	}
}

// WithCustomFileMode options pattern function to set the file mode for
// extracted files without recorded permissions. (respecting umask)
func WithCustomFileMode(mode fs.FileMode) ConfigOption {
	return func(c *Config) {
		c.customFileMode = mode
	}
}

// WithDenySymlinkExtraction options pattern function to deny symlink extraction.
func WithDenySymlinkExtraction(deny bool) ConfigOption {
	return func(c *Config) {
		c.denySymlinkExtraction = deny
	}
}

// WithDropFileAttributes options pattern function to drop the
// file attributes (mode bits and modification time) of the extracted files.
func WithDropFileAttributes(drop bool) ConfigOption {
	return func(c *Config) {
		c.dropFileAttributes = drop
	}
}

// WithHTTPClient options pattern function to set the client used for downloads.
func WithHTTPClient(client *http.Client) ConfigOption {
	return func(c *Config) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithInsecureAllowTraversal options pattern function to join entry paths onto
// the destination without traversal and symlink checks. A crafted archive can
// then write outside of the destination.
func WithInsecureAllowTraversal(allow bool) ConfigOption {
	return func(c *Config) {
		c.insecureAllowTraversal = allow
	}
}

// WithLogger options pattern function to set a custom logger.
func WithLogger(logger logger) ConfigOption {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithMaxExtractionSize options pattern function to set maximum size over all
// extracted files of one operation. (-1 to disable check)
func WithMaxExtractionSize(maxExtractionSize int64) ConfigOption {
	return func(c *Config) {
		c.maxExtractionSize = maxExtractionSize
	}
}

// WithMaxFiles options pattern function to set maximum number of extracted, files, directories
// and symlinks of one operation. (-1 to disable check)
func WithMaxFiles(maxFiles int64) ConfigOption {
	return func(c *Config) {
		c.maxFiles = maxFiles
	}
}

// WithMaxInputSize options pattern function to set the maximum size of a download. (-1 to disable check)
func WithMaxInputSize(maxInputSize int64) ConfigOption {
	return func(c *Config) {
		c.maxInputSize = maxInputSize
	}
}

// WithOverwrite options pattern function specify if files should be overwritten in the destination.
func WithOverwrite(enable bool) ConfigOption {
	return func(c *Config) {
		c.overwrite = enable
	}
}

// WithTelemetryHook options pattern function to set a [TelemetryHook], which is called after
// every unpack and download.
func WithTelemetryHook(hook TelemetryHook) ConfigOption {
	return func(c *Config) {
		c.telemetryHook = hook
	}
}
