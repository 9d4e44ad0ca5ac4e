package factory

import (
	"errors"
	"strings"

	"github.com/mynaparrot/meethub-server/pkg/config"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nkeys"
	"github.com/sirupsen/logrus"
)

// NewNatsConnection connects to NATS when urls are configured. Without
// them mail jobs are only logged.
func NewNatsConnection(appCnf *config.AppConfig) error {
	info := appCnf.NatsInfo
	if len(info.NatsUrls) == 0 {
		appCnf.Logger.Warnln("nats_info.nats_urls is empty, mail delivery is disabled")
		return nil
	}

	var opt nats.Option
	if info.Nkey != nil {
		var err error
		opt, err = nkeyOptionFromSeed(*info.Nkey)
		if err != nil {
			return err
		}
	} else {
		opt = nats.UserInfo(info.User, info.Password)
	}

	nc, err := nats.Connect(strings.Join(info.NatsUrls, ","), opt,
		nats.Name("meethub-server"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				appCnf.Logger.WithError(err).Warnln("disconnected from NATS")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			appCnf.Logger.WithField("address", nc.ConnectedAddr()).Infoln("reconnected to NATS")
		}),
	)
	if err != nil {
		return err
	}
	appCnf.NatsConn = nc

	appCnf.Logger.WithFields(logrus.Fields{
		"version": nc.ConnectedServerVersion(),
		"address": nc.ConnectedAddr(),
	}).Info("successfully connected to NATS server")

	return nil
}

func nkeyOptionFromSeed(seed string) (nats.Option, error) {
	kp, err := nkeys.FromSeed([]byte(strings.TrimSpace(seed)))
	if err != nil {
		return nil, err
	}
	pub, err := kp.PublicKey()
	if err != nil {
		return nil, err
	}
	if !nkeys.IsValidPublicUserKey(pub) {
		return nil, errors.New("nkey seed is not a user seed")
	}

	return nats.Nkey(pub, kp.Sign), nil
}
