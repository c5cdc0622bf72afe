// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package arkiv

import (
	"context"
	"encoding/json"
	"time"
)

// TelemetryData holds the telemetry data of one finished operation, an unpack
// or a download.
type TelemetryData struct {
	// Operation is the name of the operation, "unpack", "unpack_entry" or "download"
	Operation string `json:"operation"`

	// ExtractedDirs is the number of extracted directories
	ExtractedDirs int64 `json:"extracted_dirs"`

	// ExtractionDuration is the time the operation took
	ExtractionDuration time.Duration `json:"extraction_duration"`

	// ExtractionErrors is the number of errors during the operation
	ExtractionErrors int64 `json:"extraction_errors"`

	// ExtractedFiles is the number of extracted files
	ExtractedFiles int64 `json:"extracted_files"`

	// ExtractionSize is the size of the extracted files
	ExtractionSize int64 `json:"extraction_size"`

	// ExtractedSymlinks is the number of extracted symlinks
	ExtractedSymlinks int64 `json:"extracted_symlinks"`

	// ExtractedType is the format of the archive
	ExtractedType string `json:"extracted_type"`

	// InputSize is the size of the archive, for downloads the number of received bytes
	InputSize int64 `json:"input_size"`

	// LastExtractionError is the error the operation failed with
	LastExtractionError error `json:"last_extraction_error"`

	// UnsupportedFiles is the number of skipped entries
	UnsupportedFiles int64 `json:"unsupported_files"`

	// LastUnsupportedFile is the last skipped entry
	LastUnsupportedFile string `json:"last_unsupported_file"`
}

// String returns the JSON representation of [TelemetryData].
func (m TelemetryData) String() string {
	b, _ := json.Marshal(m)
	return string(b)
}

// MarshalJSON implements the [encoding/json.Marshaler] interface. The error is
// encoded as its message.
func (m TelemetryData) MarshalJSON() ([]byte, error) {
	var lastError string
	if m.LastExtractionError != nil {
		lastError = m.LastExtractionError.Error()
	}

	type alias TelemetryData
	return json.Marshal(&struct {
		LastExtractionError string `json:"last_extraction_error"`
		*alias
	}{
		LastExtractionError: lastError,
		alias:               (*alias)(&m),
	})
}

// TelemetryHook is a function type that consumes [TelemetryData] after an
// operation has finished, e.g. to submit it to a telemetry service.
type TelemetryHook func(context.Context, *TelemetryData)

// finish records the outcome of an operation that started at start and
// passes the data to the configured hook.
func (m *TelemetryData) finish(ctx context.Context, cfg *Config, start time.Time, err error) {
	m.ExtractionDuration = time.Since(start)
	if err != nil {
		m.ExtractionErrors++
		m.LastExtractionError = err
	}
	cfg.TelemetryHook()(ctx, m)
}
