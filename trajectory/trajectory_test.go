package trajectory

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"
)

func TestWriterFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "estimate.txt")
	w, err := NewWriter(path)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, w.Write(Record{
		Elapsed:     1.5,
		Position:    r3.Vector{X: 1, Y: -2, Z: 0.25},
		Orientation: quat.Number{Real: 1},
	}), test.ShouldBeNil)
	test.That(t, w.Write(Record{
		Elapsed:     2,
		Position:    r3.Vector{X: 3},
		Orientation: quat.Number{Real: 0, Kmag: 1},
	}), test.ShouldBeNil)
	test.That(t, w.Close(), test.ShouldBeNil)

	data, err := os.ReadFile(path)
	test.That(t, err, test.ShouldBeNil)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	test.That(t, lines, test.ShouldHaveLength, 2)
	// TUM order: time tx ty tz qx qy qz qw
	test.That(t, lines[0], test.ShouldEqual, "1.5 1 -2 0.25 0 0 0 1")
	test.That(t, lines[1], test.ShouldEqual, "2 3 0 0 0 0 1 0")
}

func TestPair(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "trajectory")
	p, err := NewPair(dir)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.Estimate.Write(Record{Orientation: quat.Number{Real: 1}}), test.ShouldBeNil)
	test.That(t, p.Reference.Write(Record{Orientation: quat.Number{Real: 1}}), test.ShouldBeNil)
	test.That(t, p.Close(), test.ShouldBeNil)

	for _, name := range []string{"estimate.txt", "reference.txt"} {
		_, err := os.Stat(filepath.Join(dir, name))
		test.That(t, err, test.ShouldBeNil)
	}
}
