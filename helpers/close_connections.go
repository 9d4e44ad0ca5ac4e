package helpers

import (
	"github.com/mynaparrot/meethub-server/pkg/config"
	"github.com/mynaparrot/meethub-server/pkg/services/storage"
	"github.com/sirupsen/logrus"
)

func HandleCloseConnections(appCnf *config.AppConfig, ds *storage.Facade) {
	if appCnf == nil {
		return
	}

	if ds != nil {
		if err := ds.Close(); err != nil {
			appCnf.Logger.WithError(err).Errorln("failed to close storage backend")
		}
	}

	// flush pending mail jobs
	if appCnf.NatsConn != nil {
		_ = appCnf.NatsConn.Drain()
	}

	// close logger
	logrus.Exit(0)
}
