package measurement

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestInertialBufferOrdering(t *testing.T) {
	var buf InertialBuffer
	test.That(t, buf.Append(InertialSample{Time: 1}), test.ShouldBeNil)
	test.That(t, buf.Append(InertialSample{Time: 1}), test.ShouldBeNil) // equal timestamps allowed
	test.That(t, buf.Append(InertialSample{Time: 2}), test.ShouldBeNil)
	test.That(t, buf.Append(InertialSample{Time: 1.5}), test.ShouldBeError, ErrTimeReversal)
	test.That(t, buf.Len(), test.ShouldEqual, 3)

	oldest, ok := buf.Oldest()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, oldest.Time, test.ShouldEqual, 1)
	latest, ok := buf.Latest()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, latest.Time, test.ShouldEqual, 2)
}

func TestInertialBufferCollapse(t *testing.T) {
	var buf InertialBuffer
	for i := 0; i < 5; i++ {
		test.That(t, buf.Append(InertialSample{
			Time:            float64(i),
			AngularVelocity: r3.Vector{Z: float64(i)},
		}), test.ShouldBeNil)
	}
	buf.Collapse()
	test.That(t, buf.Len(), test.ShouldEqual, 1)
	only, ok := buf.Latest()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, only.Time, test.ShouldEqual, 4)

	// collapsing a single-slot or empty buffer is a no-op
	buf.Collapse()
	test.That(t, buf.Len(), test.ShouldEqual, 1)
	var empty InertialBuffer
	empty.Collapse()
	test.That(t, empty.Len(), test.ShouldEqual, 0)
}

func TestEmptyBufferAccessors(t *testing.T) {
	var inertial InertialBuffer
	_, ok := inertial.Oldest()
	test.That(t, ok, test.ShouldBeFalse)
	_, ok = inertial.Latest()
	test.That(t, ok, test.ShouldBeFalse)

	var reference ReferenceBuffer
	_, ok = reference.Latest()
	test.That(t, ok, test.ShouldBeFalse)
}
