//go:build wireinject
// +build wireinject

package factory

import (
	"context"

	"github.com/google/wire"
	"github.com/mynaparrot/meethub-server/pkg/config"
	"github.com/mynaparrot/meethub-server/pkg/controllers"
	"github.com/mynaparrot/meethub-server/pkg/models"
	"github.com/mynaparrot/meethub-server/pkg/services/collab"
	"github.com/mynaparrot/meethub-server/pkg/services/mailer"
	"github.com/mynaparrot/meethub-server/pkg/services/storage"
)

// build the dependency set for services
var serviceSet = wire.NewSet(
	storage.New,
	mailer.New,
	collab.NewNoopCalendar,
	wire.Bind(new(collab.Calendar), new(*collab.NoopCalendar)),
	collab.NewNoopStreaming,
	wire.Bind(new(collab.Streaming), new(*collab.NoopStreaming)),
	collab.NewNoopPayment,
	wire.Bind(new(collab.Payment), new(*collab.NoopPayment)),
)

// build the dependency set for models
var modelSet = wire.NewSet(
	models.NewSubscriptionModel,
	models.NewHistoryModel,
	models.NewRoomModel,
	models.NewReminderModel,
	models.NewScheduleModel,
	models.NewJanitorModel,
	models.NewAuthModel,
)

// build the dependency set for controllers
var controllerSet = wire.NewSet(
	controllers.NewAuthController,
	controllers.NewRoomController,
	controllers.NewScheduleController,
	controllers.NewSubscriptionController,
	controllers.NewHealthCheckController,
)

// NewAppFactory is the injector function that wire will implement.
func NewAppFactory(ctx context.Context, appConfig *config.AppConfig) (*Application, error) {
	wire.Build(
		serviceSet,
		modelSet,
		controllerSet,
		wire.FieldsOf(new(*config.AppConfig), "Logger"),

		wire.Struct(new(ApplicationControllers), "*"),
		wire.Struct(new(Application), "*"),
	)
	return nil, nil
}
