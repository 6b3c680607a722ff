package bmc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ironbmc/bmc/internal/pkg/transport"

	"github.com/cenkalti/backoff/v4"
)

// retransmissionsPerRequest bounds how many times an unacknowledged
// request is resent before giving up, on top of the initial send. IPMI
// LAN traffic rides on UDP with no transport-level retransmission of its
// own, and BMCs are routinely slow or drop packets under load.
const retransmissionsPerRequest = 3

// sendRecvWithRetry sends packet and waits for a reply, resending with
// exponential backoff if the transport reports an error (most commonly a
// read timeout with no datagram having arrived). It does not inspect the
// reply's contents, only that one arrived; a dropped or corrupted reply
// looks identical to a dropped request from here; matching the right
// reply to the right retransmission is exchange()'s job via sequence
// numbers. logger may be nil, in which case slog.Default() is used.
func sendRecvWithRetry(ctx context.Context, t transport.Transport, packet []byte, logger *slog.Logger) ([]byte, error) {
	logger = loggerOrDefault(logger)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = 0 // bounded by retransmissionsPerRequest instead

	attempt := 0
	var reply []byte
	op := func() error {
		attempt++
		if attempt > 1 {
			logger.WarnContext(ctx, "bmc: retransmitting request", "attempt", attempt, "to", t.RemoteAddr())
		}
		if err := t.Send(packet); err != nil {
			return fmt.Errorf("bmc: sending request: %w", err)
		}
		raw, err := t.Recv()
		if err != nil {
			return fmt.Errorf("bmc: receiving response: %w", err)
		}
		reply = raw
		return nil
	}

	bounded := backoff.WithMaxRetries(b, retransmissionsPerRequest)
	err := backoff.Retry(op, backoff.WithContext(bounded, ctx))
	if err != nil {
		return nil, err
	}
	return reply, nil
}
