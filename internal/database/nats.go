package database

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/echoverse/synccore/internal/logger"
)

const natsReconnectWait = 2 * time.Second

func NewNATSConn(natsURL, name string) (*nats.Conn, error) {

	nc, err := nats.Connect(natsURL,
		nats.Name(name),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(natsReconnectWait),
	)
	if err != nil {
		return nil, fmt.Errorf("error connecting to nats: %w", err)
	}

	logger.Info("NATS connection created successfully")

	return nc, nil
}
