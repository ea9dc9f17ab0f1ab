package observer

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/anime-shed/lineart-prep/internal/storage"
)

// StageDumper writes every inspected stage to dir as NN_<stage>.png, in the
// order the stages arrive. It satisfies pipeline.StageInspector.
type StageDumper struct {
	dir    string
	logger *logrus.Logger

	mu    sync.Mutex
	seq   int
	files []string
	err   error
}

// NewStageDumper creates a dumper writing into dir. The directory is created
// on the first write.
func NewStageDumper(dir string, logger *logrus.Logger) *StageDumper {
	return &StageDumper{dir: dir, logger: logger}
}

// Inspect encodes img. Failures are logged and kept; see Err.
func (d *StageDumper) Inspect(stage string, img image.Image) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	name := filepath.Join(d.dir, fmt.Sprintf("%02d_%s.png", d.seq, stage))

	if err := d.write(name, img); err != nil {
		if d.err == nil {
			d.err = err
		}
		if d.logger != nil {
			d.logger.WithError(err).WithField("stage", stage).Warn("Failed to dump pipeline stage")
		}
		return
	}
	d.files = append(d.files, name)
	if d.logger != nil {
		d.logger.WithFields(logrus.Fields{"stage": stage, "file": name}).Debug("Dumped pipeline stage")
	}
}

func (d *StageDumper) write(name string, img image.Image) error {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := storage.EncodePNG(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Files lists the written files in stage order.
func (d *StageDumper) Files() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.files...)
}

// Err returns the first write error, if any.
func (d *StageDumper) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}
