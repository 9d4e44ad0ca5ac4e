package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mynaparrot/meethub-server/helpers"
	"github.com/mynaparrot/meethub-server/pkg/factory"
	"github.com/mynaparrot/meethub-server/pkg/logging"
	"github.com/mynaparrot/meethub-server/pkg/routers"
	"github.com/mynaparrot/meethub-server/version"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

func main() {
	cli.VersionPrinter = func(c *cli.Command) {
		fmt.Printf("%s\n", c.Version)
	}

	app := &cli.Command{
		Name:        "meethub-server",
		Usage:       "Meeting rooms, scheduling and subscriptions backend",
		Description: "without option will start server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Usage:       "Configuration file",
				DefaultText: "config.yaml",
				Value:       "config.yaml",
			},
		},
		Action:  startServer,
		Version: version.Version,
	}
	err := app.Run(context.Background(), os.Args)
	if err != nil {
		logrus.Fatalln(err)
	}
}

func startServer(ctx context.Context, c *cli.Command) error {
	appCnf, err := helpers.ReadYamlConfigFile(c.String("config"))
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(&appCnf.LogSettings, appCnf.Client.Debug)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to setup logger")
	}
	appCnf.Logger = logger

	// mail delivery is optional, storage falls back on its own
	err = factory.NewNatsConnection(appCnf)
	if err != nil {
		logger.WithError(err).Errorln("failed to connect to NATS, reminders will only be logged")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	appFactory, err := factory.NewAppFactory(ctx, appCnf)
	if err != nil {
		logger.Fatalln(err)
	}

	// boot up some services
	appFactory.Boot()

	// defer close connections
	defer helpers.HandleCloseConnections(appCnf, appFactory.Storage)

	rt := routers.New(appFactory.AppConfig, appFactory.Controllers)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		sig := <-sigChan
		logger.WithField("signal", sig).Infoln("exit requested, shutting down")
		appFactory.Shutdown()
		_ = rt.Shutdown()
	}()

	err = rt.Listen(fmt.Sprintf(":%d", appCnf.Client.Port))
	if err != nil {
		logger.Fatalln(err)
	}
	return nil
}
