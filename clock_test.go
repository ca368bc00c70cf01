package envoy

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type ClockSuite struct {
	suite.Suite
}

func (suite *ClockSuite) TestSystemClockMonotonic() {
	var clock SystemClock

	first := clock.Now()
	second := clock.Now()

	suite.False(second.Before(first))
}

func TestClock(t *testing.T) {
	suite.Run(t, new(ClockSuite))
}
