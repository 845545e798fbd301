package extract

import (
	"testing"
)

func TestFilenameExtractor(t *testing.T) {
	e := NewFilenameExtractor()

	tests := []struct {
		name      string
		fileName  string
		wantTitle string
		wantVer   string
		wantNil   bool
	}{
		{
			name:      "dashed",
			fileName:  "acme-agent-2.1.0.14.exe",
			wantTitle: "acme agent",
			wantVer:   "2.1.0.14",
		},
		{
			name:      "underscored with setup suffix",
			fileName:  "Backup_Tool_Setup_3.5.msi",
			wantTitle: "Backup Tool",
			wantVer:   "3.5",
		},
		{
			name:      "arch suffix dropped",
			fileName:  "scanner-x64-1.2.3.zip",
			wantTitle: "scanner",
			wantVer:   "1.2.3",
		},
		{
			name:     "no version",
			fileName: "readme.txt",
			wantNil:  true,
		},
		{
			name:     "version only",
			fileName: "1.2.3.exe",
			wantNil:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			props, err := e.Extract(nil, tt.fileName)
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}

			if tt.wantNil {
				if len(props) != 0 {
					t.Fatalf("Extract = %v, want nothing", props)
				}

				return
			}

			if props[KeyProductName] != tt.wantTitle {
				t.Errorf("title = %q, want %q", props[KeyProductName], tt.wantTitle)
			}

			if props[KeyFileVersion] != tt.wantVer {
				t.Errorf("version = %q, want %q", props[KeyFileVersion], tt.wantVer)
			}
		})
	}
}

func TestRegistryFallsBackToFilename(t *testing.T) {
	r := NewRegistry()

	// Not a PE file: the PE extractor errors and the filename fallback
	// takes over.
	res := r.Extract([]byte("not a portable executable"), "acme-agent-2.1.0.exe")

	if res.Extractor != "filename" {
		t.Errorf("extractor = %q, want %q", res.Extractor, "filename")
	}

	if !res.Filled() {
		t.Error("expected filled result from filename fallback")
	}

	if res.Title != "acme agent" || res.Number != "2.1.0" {
		t.Errorf("got title=%q number=%q", res.Title, res.Number)
	}
}

func TestRegistryUnparseable(t *testing.T) {
	r := NewRegistry()

	res := r.Extract([]byte("arbitrary bytes"), "notes.txt")

	if res.Filled() {
		t.Error("expected unfilled result for versionless file")
	}

	if res.Title != "" || res.Number != "" {
		t.Errorf("got title=%q number=%q, want empty", res.Title, res.Number)
	}
}

func TestResultFilled(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   bool
	}{
		{"both set", Result{Title: "Acme", Number: "1.0"}, true},
		{"missing number", Result{Title: "Acme"}, false},
		{"missing title", Result{Number: "1.0"}, false},
		{"neither", Result{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.Filled(); got != tt.want {
				t.Errorf("Filled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPEExtractorSupports(t *testing.T) {
	e := NewPEExtractor()

	if !e.Supports("tool.exe") || !e.Supports("lib.DLL") {
		t.Error("PE extractor should support exe/dll")
	}

	if e.Supports("doc.pdf") || e.Supports("archive.zip") || e.Supports("installer.msi") {
		t.Error("PE extractor should not claim non-PE extensions")
	}
}
