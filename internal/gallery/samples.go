package gallery

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// counterSuffix matches trailing image counters like _1, _2 in enrollment
// file names (jane_at_example.com_2.jpg).
var counterSuffix = regexp.MustCompile(`_\d+$`)

// KeyFromFilename derives the identity key from an enrollment image file
// name: the extension and trailing counter are stripped and the _at_ marker
// is converted back to @.
func KeyFromFilename(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = counterSuffix.ReplaceAllString(base, "")
	return strings.ReplaceAll(base, "_at_", "@")
}

// LoadSamplesDir reads every enrollment image in dir and pairs it with the
// identity key derived from its file name. Non-image files are ignored.
func LoadSamplesDir(dir string) ([]Sample, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read enrollment directory: %w", err)
	}

	var samples []Sample
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png":
		default:
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read enrollment image %s: %w", entry.Name(), err)
		}

		samples = append(samples, Sample{
			Identity: KeyFromFilename(entry.Name()),
			Source:   entry.Name(),
			Image:    data,
		})
	}
	return samples, nil
}
