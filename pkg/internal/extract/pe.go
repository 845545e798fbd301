package extract

import (
	"fmt"
	"strings"

	peparser "github.com/saferwall/pe"
)

// peExtensions are the extensions worth attempting a PE parse on.
var peExtensions = map[string]bool{
	"exe": true,
	"dll": true,
	"sys": true,
	"ocx": true,
	"cpl": true,
	"scr": true,
	"msi": false, // MSI is a compound document, not PE
}

// PEExtractor reads VS_VERSIONINFO string tables from PE binaries.
type PEExtractor struct{}

func NewPEExtractor() *PEExtractor {
	return &PEExtractor{}
}

func (e *PEExtractor) Name() string { return "pe" }

func (e *PEExtractor) Supports(fileName string) bool {
	return peExtensions[ext(fileName)]
}

func (e *PEExtractor) Extract(data []byte, fileName string) (map[string]string, error) {
	f, err := peparser.NewBytes(data, &peparser.Options{})
	if err != nil {
		return nil, fmt.Errorf("open pe: %w", err)
	}
	defer f.Close()

	if err := f.Parse(); err != nil {
		return nil, fmt.Errorf("parse pe: %w", err)
	}

	versionInfo, err := f.ParseVersionResources()
	if err != nil {
		return nil, fmt.Errorf("parse version resources: %w", err)
	}

	props := make(map[string]string, len(versionInfo))

	for key, value := range versionInfo {
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if key == "" || value == "" {
			continue
		}

		props[key] = value
	}

	return props, nil
}
