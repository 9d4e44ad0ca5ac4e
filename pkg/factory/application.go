package factory

import (
	"context"

	"github.com/mynaparrot/meethub-server/pkg/config"
	"github.com/mynaparrot/meethub-server/pkg/controllers"
	"github.com/mynaparrot/meethub-server/pkg/models"
	"github.com/mynaparrot/meethub-server/pkg/services/storage"
)

// ApplicationControllers holds all the controllers.
type ApplicationControllers struct {
	AuthController         *controllers.AuthController
	RoomController         *controllers.RoomController
	ScheduleController     *controllers.ScheduleController
	SubscriptionController *controllers.SubscriptionController
	HealthCheckController  *controllers.HealthCheckController
}

// Application is the root struct holding all dependencies.
type Application struct {
	Controllers   *ApplicationControllers
	AppConfig     *config.AppConfig
	Ctx           context.Context
	Storage       *storage.Facade
	janitorModel  *models.JanitorModel
	reminderModel *models.ReminderModel
}

func (a *Application) Boot() {
	go a.reminderModel.StartReminders()
	n := a.reminderModel.Rehydrate(a.Ctx)
	a.AppConfig.Logger.WithField("count", n).Infoln("pending meeting reminders restored")

	go a.janitorModel.StartJanitor()
}

func (a *Application) Shutdown() {
	a.janitorModel.Shutdown()
	a.reminderModel.Shutdown()
}
