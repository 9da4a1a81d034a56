package promo

import "go.uber.org/fx"

// Module exposes the promo service via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
