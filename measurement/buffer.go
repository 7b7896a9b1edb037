package measurement

import (
	"github.com/pkg/errors"
)

// ErrInsufficientData indicates a buffer holds fewer samples than the
// operation needs. Recoverable: retry after the next ingestion cycle.
var ErrInsufficientData = errors.New("not enough buffered samples")

// ErrTimeReversal indicates an appended sample is older than the buffer tail,
// violating the non-decreasing timestamp invariant.
var ErrTimeReversal = errors.New("sample timestamp is older than buffer tail")

// InertialBuffer is a time-ordered queue of inertial samples: append-only at
// the tail, collapsible to its most recent entry once a cycle has consumed
// the rest.
type InertialBuffer struct {
	samples []InertialSample
}

// Append adds a sample at the tail, rejecting timestamps that move backwards.
func (b *InertialBuffer) Append(s InertialSample) error {
	if n := len(b.samples); n > 0 && s.Time < b.samples[n-1].Time {
		return ErrTimeReversal
	}
	b.samples = append(b.samples, s)
	return nil
}

// Len returns the number of buffered samples.
func (b *InertialBuffer) Len() int {
	return len(b.samples)
}

// Oldest returns the sample at the front of the buffer.
func (b *InertialBuffer) Oldest() (InertialSample, bool) {
	if len(b.samples) == 0 {
		return InertialSample{}, false
	}
	return b.samples[0], true
}

// Latest returns the sample at the tail of the buffer.
func (b *InertialBuffer) Latest() (InertialSample, bool) {
	if len(b.samples) == 0 {
		return InertialSample{}, false
	}
	return b.samples[len(b.samples)-1], true
}

// Collapse drops everything but the most recent sample, turning the buffer
// into a single-slot latest cache for the next cycle.
func (b *InertialBuffer) Collapse() {
	if len(b.samples) > 1 {
		b.samples[0] = b.samples[len(b.samples)-1]
		b.samples = b.samples[:1]
	}
}

// ReferenceBuffer is a time-ordered queue of reference samples with the same
// contract as InertialBuffer.
type ReferenceBuffer struct {
	samples []ReferenceSample
}

// Append adds a sample at the tail, rejecting timestamps that move backwards.
func (b *ReferenceBuffer) Append(s ReferenceSample) error {
	if n := len(b.samples); n > 0 && s.Time < b.samples[n-1].Time {
		return ErrTimeReversal
	}
	b.samples = append(b.samples, s)
	return nil
}

// Len returns the number of buffered samples.
func (b *ReferenceBuffer) Len() int {
	return len(b.samples)
}

// Latest returns the sample at the tail of the buffer.
func (b *ReferenceBuffer) Latest() (ReferenceSample, bool) {
	if len(b.samples) == 0 {
		return ReferenceSample{}, false
	}
	return b.samples[len(b.samples)-1], true
}

// Collapse drops everything but the most recent sample.
func (b *ReferenceBuffer) Collapse() {
	if len(b.samples) > 1 {
		b.samples[0] = b.samples[len(b.samples)-1]
		b.samples = b.samples[:1]
	}
}
