package usageguard

import "go.uber.org/fx"

var Module = fx.Module("usageguard",
	fx.Provide(New),
)
