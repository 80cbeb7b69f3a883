package render

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

const ContentType = "application/pdf"

// Degradation is a soft render failure: the section was replaced by an
// estimated gap or skipped, and the document was still produced.
type Degradation struct {
	Section string `json:"section"`
	Reason  string `json:"reason"`
}

func (d Degradation) Error() string {
	return fmt.Sprintf("render %s: %s", d.Section, d.Reason)
}

type SectionState string

const (
	SectionPending   SectionState = "pending"
	SectionDrawn     SectionState = "drawn"
	SectionEstimated SectionState = "estimated"
)

type Section struct {
	Name  string       `json:"name"`
	State SectionState `json:"state"`
}

// RenderedDocument is a finished PDF held in memory.
type RenderedDocument struct {
	data     []byte
	fileName string

	Theme        string        `json:"theme"`
	Sections     []Section     `json:"sections"`
	Degradations []Degradation `json:"degradations,omitempty"`
}

func (d *RenderedDocument) Bytes() []byte {
	return d.data
}

func (d *RenderedDocument) FileName() string {
	return d.fileName
}

func (d *RenderedDocument) Size() int {
	return len(d.data)
}

func (d *RenderedDocument) Degraded() bool {
	return len(d.Degradations) > 0
}

func (d *RenderedDocument) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(d.data)
	return int64(n), err
}

// Save writes the PDF to path. When path is an existing directory the file
// is named after the employee and pay period.
func (d *RenderedDocument) Save(path string) (string, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, d.fileName)
	}
	if err := os.WriteFile(path, d.data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Open returns a handle for preview or print. The caller owns it and must
// Close it; reads after Close fail.
func (d *RenderedDocument) Open() io.ReadCloser {
	return &blob{r: bytes.NewReader(d.data)}
}

type blob struct {
	mu sync.Mutex
	r  *bytes.Reader
}

func (b *blob) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.r == nil {
		return 0, os.ErrClosed
	}
	return b.r.Read(p)
}

func (b *blob) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.r = nil
	return nil
}
