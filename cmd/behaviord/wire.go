//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"github.com/google/wire"

	"github.com/zeusync/behaviortree/internal/config"
	"github.com/zeusync/behaviortree/internal/core/events/bus"
)

func initApp(cfg *config.Config) (*app, func(), error) {
	wire.Build(
		provideLogger,
		bus.New,
		provideRegistry,
		provideManager,
		provideMonitor,
		wire.Struct(new(app), "*"),
	)
	return nil, nil, nil
}
