//go:build wireinject
// +build wireinject

package provider

import (
	"github.com/google/wire"
)

func NewProvider() (*Provider, error) {
	panic(wire.Build(
		wire.Struct(new(Provider), "*"),
		AllProvider,
	))
}
