package fx

import "go.uber.org/fx"

// CoreModule wires storage and domain services without HTTP.
var CoreModule = fx.Options(
	ConfigModule,
	InfrastructureModule,
	DomainModule,
)

// AppModule is the full API process.
var AppModule = fx.Options(
	CoreModule,
	SchedulerModule,
	MiddlewareModule,
	RoutesModule,
	ServerModule,
)
