package batch

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"verifact/internal/validator/invoice"
)

// maxImageSize is the largest source image accepted for batch processing.
const maxImageSize = 50 * 1024 * 1024

// supportedImageExtensions is the set of extensions batch mode will pick up
// when scanning an input directory.
var supportedImageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".bmp":  {},
	".tiff": {},
}

// ValidateImageFile checks that path points to a readable, supported image
// under the size limit.
func ValidateImageFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("file does not exist: %s", path)
	}
	if info.IsDir() {
		return fmt.Errorf("path is not a file: %s", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := supportedImageExtensions[ext]; !ok {
		return fmt.Errorf("unsupported file type: %s", ext)
	}

	if info.Size() > maxImageSize {
		return fmt.Errorf("file too large: %.2fMB, maximum allowed: %dMB",
			float64(info.Size())/1024/1024, maxImageSize/1024/1024)
	}

	// Read a few bytes to make sure the file is actually readable.
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot read file: %w", err)
	}
	defer f.Close()
	buf := make([]byte, 10)
	if _, err := f.Read(buf); err != nil {
		return fmt.Errorf("cannot read file: %w", err)
	}
	return nil
}

// ListImages returns the sorted paths of all valid image files directly under
// dir. Files that fail validation are skipped with a warning.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot access directory %s: %w", dir, err)
	}

	var images []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := ValidateImageFile(path); err != nil {
			log.Printf("batch: skipping invalid file %s: %v", path, err)
			continue
		}
		images = append(images, path)
	}
	sort.Strings(images)
	return images, nil
}

var dangerousChars = regexp.MustCompile(`[<>:"|?*]`)

// SanitizeFilename makes a filename safe for use as an output path component.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "..", "_")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, `\`, "_")
	name = dangerousChars.ReplaceAllString(name, "_")
	name = strings.TrimSpace(name)
	if name == "" {
		name = "unnamed_file"
	}
	if len(name) > 255 {
		name = name[:255]
	}
	return name
}

// WriteJSON saves v as indented JSON at path, creating parent directories as
// needed.
func WriteJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", filepath.Dir(path), err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON for %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// roundNumbers walks records and lists, rounding fractional numbers to two
// decimal places so output files show clean money amounts. Integers and
// non-numeric values pass through unchanged.
func roundNumbers(v any) any {
	switch val := v.(type) {
	case invoice.Record:
		out := make(invoice.Record, len(val))
		for k, item := range val {
			out[k] = roundNumbers(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = roundNumbers(item)
		}
		return out
	case json.Number:
		if !strings.ContainsAny(val.String(), ".eE") {
			return val
		}
		d, err := decimal.NewFromString(val.String())
		if err != nil {
			return val
		}
		return json.RawMessage(d.Round(2).String())
	case float64:
		return json.RawMessage(decimal.NewFromFloat(val).Round(2).String())
	default:
		return v
	}
}
