package notify

import (
	"bitbucket.org/sotavant/quick-swapp/internal/models"
	"context"
	"encoding/json"
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"time"
)

const SubjectPrefix = "swapp.messages."

// Publisher fans a stored message out to the receiver's live sessions.
type Publisher interface {
	Publish(ctx context.Context, msg models.Message) error
}

type Nop struct{}

func (Nop) Publish(context.Context, models.Message) error { return nil }

type NATS struct {
	nc *nats.Conn
}

func Connect(url, name string) (*NATS, error) {
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(500*time.Millisecond),
		nats.ReconnectJitter(100*time.Millisecond, 500*time.Millisecond),
		nats.Timeout(3*time.Second),
	)
	if err != nil {
		return nil, errors.Wrap(err, "connect to nats")
	}
	return &NATS{nc: nc}, nil
}

func Subject(receiver models.UserID) string {
	return SubjectPrefix + string(receiver)
}

func (n *NATS) Publish(ctx context.Context, msg models.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "encode message event")
	}
	return errors.Wrap(n.nc.Publish(Subject(msg.ReceiverID), data), "publish message event")
}

func (n *NATS) Close() {
	n.nc.Close()
}
