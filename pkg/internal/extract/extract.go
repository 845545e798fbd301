// Package extract pulls product metadata out of uploaded binaries.
//
// Extractors are tried in registration order until one returns properties.
// The primary extractor reads PE version resources; fallbacks key off the
// file extension. Extraction failure is never an upload failure: the
// version is stored unfilled and completed manually later.
package extract

import (
	"strings"

	nlog "github.com/dkozyrev/softvault/pkg/log"
	"github.com/dkozyrev/softvault/pkg/metrics"
)

// Promoted property keys. These two decide whether a version is filled;
// everything else lands in VersionProperty rows.
const (
	KeyProductName = "ProductName"
	KeyFileVersion = "FileVersion"
)

// Extractor produces properties from file content.
type Extractor interface {
	// Name identifies the extractor in logs and metrics.
	Name() string
	// Supports reports whether the extractor applies to the file.
	Supports(fileName string) bool
	// Extract returns raw properties. A nil/empty map with nil error means
	// the extractor found nothing and the next one is tried.
	Extract(data []byte, fileName string) (map[string]string, error)
}

// Registry holds extractors in priority order.
type Registry struct {
	extractors []Extractor
}

// NewRegistry creates a registry with the default chain: PE version
// resources first, then filename heuristics.
func NewRegistry() *Registry {
	return &Registry{
		extractors: []Extractor{
			NewPEExtractor(),
			NewFilenameExtractor(),
		},
	}
}

// Register appends an extractor with the lowest priority.
func (r *Registry) Register(e Extractor) {
	r.extractors = append(r.extractors, e)
}

// Result carries extracted properties with the promoted values split out.
type Result struct {
	// Title is the trimmed ProductName, empty when unknown.
	Title string
	// Number is the trimmed FileVersion, empty when unknown.
	Number string
	// Properties holds every extracted pair, promoted keys included.
	Properties map[string]string
	// Extractor is the name of the extractor that produced the result.
	Extractor string
}

// Filled reports whether both promoted values are present.
func (r Result) Filled() bool {
	return r.Title != "" && r.Number != ""
}

// Extract runs the chain and returns the first non-empty result. Errors are
// logged and counted, never propagated: an unparseable binary is a normal
// upload.
func (r *Registry) Extract(data []byte, fileName string) Result {
	for _, e := range r.extractors {
		if !e.Supports(fileName) {
			continue
		}

		props, err := e.Extract(data, fileName)
		if err != nil {
			metrics.ExtractionCounter.WithLabelValues(e.Name(), "error").Inc()
			nlog.Logger().Debug().
				Err(err).
				Str("extractor", e.Name()).
				Str("file", fileName).
				Msg("metadata extraction failed")

			continue
		}

		if len(props) == 0 {
			metrics.ExtractionCounter.WithLabelValues(e.Name(), "empty").Inc()

			continue
		}

		metrics.ExtractionCounter.WithLabelValues(e.Name(), "ok").Inc()

		return Result{
			Title:      strings.TrimSpace(props[KeyProductName]),
			Number:     strings.TrimSpace(props[KeyFileVersion]),
			Properties: props,
			Extractor:  e.Name(),
		}
	}

	return Result{Properties: map[string]string{}}
}

// ext returns the lowercase extension without the dot.
func ext(fileName string) string {
	idx := strings.LastIndexByte(fileName, '.')
	if idx < 0 || idx == len(fileName)-1 {
		return ""
	}

	return strings.ToLower(fileName[idx+1:])
}
