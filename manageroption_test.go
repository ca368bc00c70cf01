package envoy

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

type ManagerOptionSuite struct {
	suite.Suite
}

func (suite *ManagerOptionSuite) TestWithLogger() {
	log := zaptest.NewLogger(suite.T())
	clock := newTestClock()
	dispatcher := newTestDispatcher(clock)

	m := NewScaledManager(dispatcher, clock, 1.0, WithLogger(log))
	suite.Same(log, m.log)
}

func (suite *ManagerOptionSuite) TestWithLoggerNilIsNoOp() {
	clock := newTestClock()
	dispatcher := newTestDispatcher(clock)

	m := NewScaledManager(dispatcher, clock, 1.0, WithLogger(nil))
	suite.NotNil(m.log)
}

func (suite *ManagerOptionSuite) TestAsManagerOption() {
	var applied bool
	custom := func(m *ScaledManager) { applied = true }

	opt := AsManagerOption(custom)

	clock := newTestClock()
	dispatcher := newTestDispatcher(clock)
	NewScaledManager(dispatcher, clock, 1.0, opt)

	suite.True(applied)
}

func (suite *ManagerOptionSuite) TestAsManagerOptionPassthrough() {
	opt := AsManagerOption(WithLogger(zap.NewNop()))

	clock := newTestClock()
	dispatcher := newTestDispatcher(clock)
	m := NewScaledManager(dispatcher, clock, 1.0, opt)

	suite.NotNil(m.log)
}

func TestManagerOption(t *testing.T) {
	suite.Run(t, new(ManagerOptionSuite))
}
