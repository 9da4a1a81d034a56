package payment

import "go.uber.org/fx"

// Module exposes the payment manager and gateway via Fx.
var Module = fx.Options(
	fx.Provide(NewGateway),
	fx.Provide(NewService),
)
