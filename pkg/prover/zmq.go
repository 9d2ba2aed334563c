package prover

import (
	"context"
	"time"

	"github.com/go-zeromq/zmq4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/suffix-labs/zcash-sprout/pkg/joinsplit"
)

// DefaultTimeout bounds one request/response round trip.
const DefaultTimeout = 5 * time.Minute

// ZMQClient talks to the proving service over a ZeroMQ REQ socket. Each
// Prove call opens its own socket, so a client may be shared.
type ZMQClient struct {
	endpoint string
	timeout  time.Duration
	log      zerolog.Logger
}

// Option configures a ZMQClient.
type Option func(*ZMQClient)

// WithTimeout overrides DefaultTimeout. Zero disables the client-side
// timeout; the caller's context still applies.
func WithTimeout(d time.Duration) Option {
	return func(c *ZMQClient) { c.timeout = d }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *ZMQClient) { c.log = log }
}

func NewZMQClient(endpoint string, opts ...Option) *ZMQClient {
	c := &ZMQClient{endpoint: endpoint, timeout: DefaultTimeout, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *ZMQClient) Endpoint() string { return c.endpoint }

type reply struct {
	msg zmq4.Msg
	err error
}

// Prove sends every witness in one request and waits for the proofs.
func (c *ZMQClient) Prove(ctx context.Context, witnesses []*joinsplit.ProofWitness) ([]*joinsplit.Proof, error) {
	if len(witnesses) == 0 {
		return nil, nil
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req := EncodeRequest(witnesses)

	sock := zmq4.NewReq(ctx)
	defer sock.Close()
	if err := sock.Dial(c.endpoint); err != nil {
		return nil, errors.Wrapf(err, "error connecting to prover at %s", c.endpoint)
	}

	done := make(chan reply, 1)
	go func() {
		if err := sock.Send(zmq4.NewMsg(req)); err != nil {
			done <- reply{err: errors.Wrap(err, "error sending proof request")}
			return
		}
		msg, err := sock.Recv()
		done <- reply{msg: msg, err: errors.Wrap(err, "error receiving proofs")}
	}()

	c.log.Info().
		Str("endpoint", c.endpoint).
		Int("witnesses", len(witnesses)).
		Int("bytes", len(req)).
		Msg("proof request sent")

	var res reply
	select {
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "proof request abandoned")
	case res = <-done:
	}
	if res.err != nil {
		return nil, res.err
	}

	body := res.msg.Bytes()
	proofs, err := DecodeResponse(body, len(witnesses))
	if err != nil {
		return nil, err
	}
	c.log.Info().
		Int("proofs", len(proofs)).
		Int("bytes", len(body)).
		Msg("proof response received")
	return proofs, nil
}

// Server answers proof requests on a REP socket.
type Server struct {
	ctx  context.Context
	sock zmq4.Socket
	p    Provider
	log  zerolog.Logger
}

// Listen binds a REP socket to endpoint. The socket lives until ctx is
// cancelled or Close is called.
func Listen(ctx context.Context, endpoint string, p Provider, log zerolog.Logger) (*Server, error) {
	sock := zmq4.NewRep(ctx)
	if err := sock.Listen(endpoint); err != nil {
		sock.Close()
		return nil, errors.Wrapf(err, "error listening on %s", endpoint)
	}
	return &Server{ctx: ctx, sock: sock, p: p, log: log}, nil
}

// Endpoint is the bound address, with any ephemeral port resolved.
func (s *Server) Endpoint() string {
	addr := s.sock.Addr()
	return addr.Network() + "://" + addr.String()
}

func (s *Server) Close() error { return s.sock.Close() }

// Serve handles requests until the context is cancelled. Malformed
// requests and provider failures are answered with an empty batch.
func (s *Server) Serve() error {
	for {
		msg, err := s.sock.Recv()
		if err != nil {
			if s.ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "error receiving proof request")
		}

		var proofs []*joinsplit.Proof
		witnesses, err := DecodeRequest(msg.Bytes())
		if err == nil {
			proofs, err = s.p.Prove(s.ctx, witnesses)
		}
		if err != nil {
			s.log.Warn().Err(err).Msg("proof request failed")
			proofs = nil
		} else {
			s.log.Debug().Int("witnesses", len(witnesses)).Msg("proof request served")
		}

		if err := s.sock.Send(zmq4.NewMsg(EncodeResponse(proofs))); err != nil {
			if s.ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "error sending proofs")
		}
	}
}
