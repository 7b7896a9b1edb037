// Package trajectory records pose estimates in the TUM trajectory format,
// one whitespace-delimited line per cycle: time tx ty tz qx qy qz qw.
package trajectory

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/num/quat"
)

// Record is one trajectory row: a position and orientation at a time elapsed
// since the estimator bootstrapped.
type Record struct {
	Elapsed     float64
	Position    r3.Vector
	Orientation quat.Number
}

// Writer appends TUM-format records to a file.
type Writer struct {
	f   *os.File
	buf *bufio.Writer
}

// NewWriter creates (or truncates) path, creating parent directories as
// needed.
func NewWriter(path string) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "could not create trajectory directory")
		}
	}
	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not create trajectory file")
	}
	return &Writer{f: f, buf: bufio.NewWriter(f)}, nil
}

// Write appends one record.
func (w *Writer) Write(rec Record) error {
	_, err := fmt.Fprintf(w.buf, "%g %g %g %g %g %g %g %g\n",
		rec.Elapsed,
		rec.Position.X, rec.Position.Y, rec.Position.Z,
		rec.Orientation.Imag, rec.Orientation.Jmag, rec.Orientation.Kmag, rec.Orientation.Real,
	)
	return err
}

// Close flushes buffered records and closes the file.
func (w *Writer) Close() error {
	return multierr.Combine(w.buf.Flush(), w.f.Close())
}

// Pair writes matching estimate and reference trajectories so the two can be
// compared by external evaluation tooling.
type Pair struct {
	Estimate  *Writer
	Reference *Writer
}

// NewPair creates estimate.txt and reference.txt under dir.
func NewPair(dir string) (*Pair, error) {
	estimate, err := NewWriter(filepath.Join(dir, "estimate.txt"))
	if err != nil {
		return nil, err
	}
	reference, err := NewWriter(filepath.Join(dir, "reference.txt"))
	if err != nil {
		return nil, multierr.Combine(err, estimate.Close())
	}
	return &Pair{Estimate: estimate, Reference: reference}, nil
}

// Close closes both writers.
func (p *Pair) Close() error {
	return multierr.Combine(p.Estimate.Close(), p.Reference.Close())
}
