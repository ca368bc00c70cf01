package envoy

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ScaledManagerSuite struct {
	suite.Suite

	clock      *testClock
	dispatcher *testDispatcher
	manager    *ScaledManager
}

func (suite *ScaledManagerSuite) SetupTest() {
	suite.clock = newTestClock()
	suite.dispatcher = newTestDispatcher(suite.clock)
	suite.manager = NewScaledManager(suite.dispatcher, suite.clock, 1.0)
}

// TestBasic is scenario 1: arm(10s,100s), advance to the min, zero the scale
// factor, and expect the callback once the manager HostTimer fires.
func (suite *ScaledManagerSuite) TestBasic() {
	var fired int
	timer := suite.manager.CreateTimer(func() { fired++ })

	timer.Enable(10*time.Second, 100*time.Second, nil)
	suite.dispatcher.advance(10 * time.Second)

	suite.manager.SetScaleFactor(0)
	suite.dispatcher.advance(0)

	suite.Equal(1, fired)
	suite.False(timer.Enabled())
}

// TestSameMinMax is scenario 2: arm(1s,1s) fires exactly once.
func (suite *ScaledManagerSuite) TestSameMinMax() {
	var fired int
	timer := suite.manager.CreateTimer(func() { fired++ })

	timer.Enable(time.Second, time.Second, nil)
	suite.dispatcher.advance(time.Second)

	suite.Equal(1, fired)
	suite.False(timer.Enabled())
}

// TestNoScaling is scenario 3: arm(5s,9s) with scale 1 fires at t=9s.
func (suite *ScaledManagerSuite) TestNoScaling() {
	var fired int
	timer := suite.manager.CreateTimer(func() { fired++ })

	timer.Enable(5*time.Second, 9*time.Second, nil)
	suite.dispatcher.advance(5 * time.Second)
	suite.Equal(0, fired)

	suite.dispatcher.advance(4 * time.Second)
	suite.Equal(1, fired)
}

// TestThreeTimersNoScaling is scenario 4: three timers fire in arm order.
func (suite *ScaledManagerSuite) TestThreeTimersNoScaling() {
	var order []string

	a := suite.manager.CreateTimer(func() { order = append(order, "A") })
	b := suite.manager.CreateTimer(func() { order = append(order, "B") })
	c := suite.manager.CreateTimer(func() { order = append(order, "C") })

	a.Enable(1*time.Second, 3*time.Second, nil)
	b.Enable(2*time.Second, 5*time.Second, nil)
	c.Enable(0, 6*time.Second, nil)

	suite.dispatcher.advance(1 * time.Second) // A's min elapses
	suite.dispatcher.advance(1 * time.Second) // B's min elapses, t=2s
	suite.dispatcher.advance(1 * time.Second) // t=3s, A fires
	suite.Equal([]string{"A"}, order)

	suite.dispatcher.advance(2 * time.Second) // t=5s, B fires
	suite.Equal([]string{"A", "B"}, order)

	suite.dispatcher.advance(1 * time.Second) // t=6s, C fires
	suite.Equal([]string{"A", "B", "C"}, order)
}

// TestScaleChangeMidFlight is scenario 5: halving the scale factor at t=1s
// pulls a (1,3) timer's fire time in from t=3s to t=2s.
func (suite *ScaledManagerSuite) TestScaleChangeMidFlight() {
	var fired time.Duration
	start := suite.clock.now

	a := suite.manager.CreateTimer(func() { fired = suite.clock.now.Sub(start) })
	a.Enable(time.Second, 3*time.Second, nil)

	suite.dispatcher.advance(time.Second)
	suite.manager.SetScaleFactor(0.5)

	suite.dispatcher.advance(time.Second)
	suite.Equal(2*time.Second, fired)
}

// TestScaleToZeroWithPendingActives is scenario 6: driving the scale factor
// to the smallest positive value migrates every active timer to triggerable
// on the very next advance.
func (suite *ScaledManagerSuite) TestScaleToZeroWithPendingActives() {
	var fired int

	for i := 0; i < 3; i++ {
		t := suite.manager.CreateTimer(func() { fired++ })
		t.Enable(0, 10000*time.Second, nil)
	}

	suite.manager.SetScaleFactor(math.SmallestNonzeroFloat64)
	suite.dispatcher.advance(time.Nanosecond)

	suite.Equal(3, fired)
}

// TestInvariantCursorNegative checks invariant 1 across a sequence of
// operations: the cursor is always negative after a public call returns.
func (suite *ScaledManagerSuite) TestInvariantCursorNegative() {
	t1 := suite.manager.CreateTimer(func() {})
	t1.Enable(0, time.Second, nil)
	suite.Less(suite.manager.cursor, ScaledTime(0))

	suite.dispatcher.advance(time.Second)
	suite.Less(suite.manager.cursor, ScaledTime(0))

	suite.manager.SetScaleFactor(0.25)
	suite.Less(suite.manager.cursor, ScaledTime(0))
}

// TestInvariantScaleZeroEmptiesActiveSet checks invariant 5.
func (suite *ScaledManagerSuite) TestInvariantScaleZeroEmptiesActiveSet() {
	t1 := suite.manager.CreateTimer(func() {})
	t1.Enable(0, time.Second, nil)
	suite.Equal(1, suite.manager.active.Len())

	suite.manager.SetScaleFactor(0)
	suite.Equal(0, suite.manager.active.Len())
}

// TestDisableIdempotent checks the idempotence law.
func (suite *ScaledManagerSuite) TestDisableIdempotent() {
	t1 := suite.manager.CreateTimer(func() {})
	t1.Enable(time.Second, 2*time.Second, nil)

	t1.Disable()
	suite.False(t1.Enabled())

	t1.Disable() // must not panic or double-remove
	suite.False(t1.Enabled())
}

// TestEnableDisableRoundTrip checks the round-trip law: the active set is
// left empty after an enable immediately followed by a disable.
func (suite *ScaledManagerSuite) TestEnableDisableRoundTrip() {
	t1 := suite.manager.CreateTimer(func() {})

	t1.Enable(0, time.Second, nil)
	suite.Equal(1, suite.manager.active.Len())

	t1.Disable()
	suite.Equal(0, suite.manager.active.Len())
	suite.Equal(0, suite.manager.triggerable.Len())
}

// TestReentrantReArm checks that a callback can re-arm its own timer.
func (suite *ScaledManagerSuite) TestReentrantReArm() {
	var fired int

	var t1 *RangeTimer
	t1 = suite.manager.CreateTimer(func() {
		fired++
		if fired < 2 {
			t1.Enable(0, time.Second, nil)
		}
	})

	t1.Enable(0, time.Second, nil)
	suite.dispatcher.advance(time.Second)
	suite.Equal(1, fired)

	suite.dispatcher.advance(time.Second)
	suite.Equal(2, fired)
	suite.False(t1.Enabled())
}

// TestDisableDuringDrainDoesNotFire arms two timers to fire in the same
// drain, with t1's callback disabling t2 before t2's own trigger runs. t2
// must not fire, and the triggerable set must not be left in a corrupted
// state that a later arm could get lost in.
func (suite *ScaledManagerSuite) TestDisableDuringDrainDoesNotFire() {
	var t1Fired, t2Fired int

	var t2 *RangeTimer
	t1 := suite.manager.CreateTimer(func() {
		t1Fired++
		t2.Disable()
	})
	t2 = suite.manager.CreateTimer(func() { t2Fired++ })

	t1.Enable(0, time.Second, nil)
	t2.Enable(0, time.Second, nil)

	suite.dispatcher.advance(time.Second)
	suite.Equal(1, t1Fired)
	suite.Equal(0, t2Fired)
	suite.False(t2.Enabled())
	suite.Equal(0, suite.manager.triggerable.Len())

	// the triggerable set must still work correctly for a later arm.
	var t3Fired int
	t3 := suite.manager.CreateTimer(func() { t3Fired++ })
	t3.Enable(0, time.Second, nil)
	suite.dispatcher.advance(time.Second)
	suite.Equal(1, t3Fired)
}

// TestReEnableDuringDrainFiresOnceLater checks that re-enabling a not-yet-
// triggered timer from an earlier callback in the same drain supersedes the
// stale due-list entry rather than firing it immediately or losing the new
// arm.
func (suite *ScaledManagerSuite) TestReEnableDuringDrainFiresOnceLater() {
	var t2Fired int

	var t2 *RangeTimer
	t1 := suite.manager.CreateTimer(func() {
		t2.Enable(time.Second, time.Second, nil)
	})
	t2 = suite.manager.CreateTimer(func() { t2Fired++ })

	t1.Enable(0, time.Second, nil)
	t2.Enable(0, time.Second, nil)

	suite.dispatcher.advance(time.Second)
	suite.Equal(0, t2Fired)
	suite.True(t2.Enabled())

	suite.dispatcher.advance(time.Second)
	suite.Equal(1, t2Fired)
}

// TestScopePropagation checks that the scope established for a callback
// matches what Enable was given.
func (suite *ScaledManagerSuite) TestScopePropagation() {
	type myScope struct{ name string }

	var observed Scope
	t1 := suite.manager.CreateTimer(func() {
		observed = suite.dispatcher.scope
	})

	t1.Enable(0, time.Second, myScope{name: "request-1"})
	suite.dispatcher.advance(time.Second)

	suite.Equal(myScope{name: "request-1"}, observed)
	suite.Nil(suite.dispatcher.scope)
}

func TestScaledManager(t *testing.T) {
	suite.Run(t, new(ScaledManagerSuite))
}
