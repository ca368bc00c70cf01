// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package envoysd

import (
	"testing"
	"time"

	"github.com/hashicorp/consul/api"
	"github.com/stretchr/testify/suite"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/akonradi/envoy"
	"github.com/akonradi/envoy/eventtest"
)

type ProvideSuite struct {
	suite.Suite
}

func (suite *ProvideSuite) TestProvide() {
	client, err := api.NewClient(api.DefaultConfig())
	suite.Require().NoError(err)

	clock := eventtest.NewClock(time.Unix(0, 0))
	dispatcher := eventtest.NewDispatcher(clock)
	bindings := map[string]ManagerBinding{
		"downstream-a": {
			Manager:    envoy.NewScaledManager(dispatcher, clock, 1.0),
			Dispatcher: dispatcher,
		},
	}

	var watchers Watchers

	app := fxtest.New(
		suite.T(),
		fx.Supply(client.KV()),
		fx.Supply(Config{
			Managers: []ManagerDefinition{
				{Name: "downstream-a", Key: "overload/downstream-a"},
			},
		}),
		fx.Supply(bindings),
		Provide(),
		fx.Populate(&watchers),
	)

	suite.Require().NoError(app.Err())
	suite.Require().NotNil(watchers)
	suite.Equal(1, watchers.Len())
}

func TestProvide(t *testing.T) {
	suite.Run(t, new(ProvideSuite))
}
