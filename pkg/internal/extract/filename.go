package extract

import (
	"path"
	"regexp"
	"strings"
)

// versionPattern matches a dotted version number embedded in a file name,
// e.g. agent-setup-2.1.0.14.exe.
var versionPattern = regexp.MustCompile(`(?:^|[-_ .(v])(\d+(?:\.\d+){1,3})(?:[-_ .)]|$)`)

// suffixNoise are trailing tokens that carry no product identity.
var suffixNoise = map[string]bool{
	"setup":     true,
	"install":   true,
	"installer": true,
	"x86":       true,
	"x64":       true,
	"win32":     true,
	"win64":     true,
}

// FilenameExtractor is the last-resort fallback: it parses a product title
// and version number out of the file name itself. Applies to any extension.
type FilenameExtractor struct{}

func NewFilenameExtractor() *FilenameExtractor {
	return &FilenameExtractor{}
}

func (e *FilenameExtractor) Name() string { return "filename" }

func (e *FilenameExtractor) Supports(fileName string) bool { return true }

func (e *FilenameExtractor) Extract(data []byte, fileName string) (map[string]string, error) {
	base := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if extension := path.Ext(base); extension != "" {
		base = strings.TrimSuffix(base, extension)
	}

	match := versionPattern.FindStringSubmatchIndex(base)
	if match == nil {
		return nil, nil
	}

	number := base[match[2]:match[3]]
	title := cleanTitle(base[:match[2]])

	if title == "" {
		return nil, nil
	}

	return map[string]string{
		KeyProductName: title,
		KeyFileVersion: number,
	}, nil
}

func cleanTitle(s string) string {
	s = strings.Trim(s, "-_ .(v")

	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == '_' || r == '.' || r == ' '
	})

	for len(words) > 0 && suffixNoise[strings.ToLower(words[len(words)-1])] {
		words = words[:len(words)-1]
	}

	return strings.Join(words, " ")
}
