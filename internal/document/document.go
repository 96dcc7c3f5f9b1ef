package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Document is one resume ready for analysis: raw bytes plus the media type the
// analyzer needs to interpret them.
type Document struct {
	// Name is the display name derived from the file name, extension stripped.
	// It becomes the candidate record name.
	Name      string
	MediaType string
	Data      []byte
}

var mediaTypes = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

// Load reads a resume document from disk. Only PDF and common image formats
// are accepted; anything else is rejected before it reaches the analyzer.
func Load(path string) (*Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	mediaType, ok := mediaTypes[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported document type %q (want pdf or image): %s", ext, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("document %s is empty", path)
	}

	return &Document{
		Name:      strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		MediaType: mediaType,
		Data:      data,
	}, nil
}

// LoadAll loads every path in order, failing on the first unreadable document
// so a batch never starts half-configured.
func LoadAll(paths []string) ([]*Document, error) {
	docs := make([]*Document, 0, len(paths))
	for _, path := range paths {
		doc, err := Load(path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
