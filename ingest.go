package matrixview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/r3labs/sse/v2"
	log "github.com/sirupsen/logrus"
	backoff "gopkg.in/cenkalti/backoff.v1"
)

// DefaultMaxMessageBytes is the largest event an Ingestor accepts unless
// WithMaxMessageBytes says otherwise. A 1000x1000 float matrix is roughly
// 20 MB of JSON.
const DefaultMaxMessageBytes = 64 << 20

// IngestStats counts what an Ingestor has seen so far.
type IngestStats struct {
	Received  uint64
	Appended  uint64
	Dropped   uint64
	Connected bool
}

// IngestOption configures an Ingestor.
type IngestOption func(*Ingestor)

// WithHTTPClient sets the HTTP client used for the subscription.
func WithHTTPClient(c *http.Client) IngestOption {
	return func(in *Ingestor) { in.httpClient = c }
}

// WithHeaders adds request headers to the subscription.
func WithHeaders(h map[string]string) IngestOption {
	return func(in *Ingestor) {
		for k, v := range h {
			in.headers[k] = v
		}
	}
}

// WithMaxMessageBytes sets the largest event payload the subscription
// can read. Values <= 0 keep DefaultMaxMessageBytes.
func WithMaxMessageBytes(n int) IngestOption {
	return func(in *Ingestor) {
		if n > 0 {
			in.maxMessage = n
		}
	}
}

// WithLogger sets the log entry used for transport and payload problems.
func WithLogger(l *log.Entry) IngestOption {
	return func(in *Ingestor) { in.log = l }
}

// Ingestor subscribes to a server-sent-events stream of snapshots and
// appends every valid one to a Collection. It is the collection's only
// writer.
//
// There is no reconnect: a transport error ends the subscription and the
// owner decides whether to start a new Ingestor.
type Ingestor struct {
	url        string
	coll       *Collection
	httpClient *http.Client
	headers    map[string]string
	maxMessage int
	log        *log.Entry

	received  atomic.Uint64
	appended  atomic.Uint64
	dropped   atomic.Uint64
	connected atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// NewIngestor creates an ingestor for the stream at url feeding coll.
func NewIngestor(url string, coll *Collection, opts ...IngestOption) *Ingestor {
	in := &Ingestor{
		url:        url,
		coll:       coll,
		headers:    map[string]string{},
		maxMessage: DefaultMaxMessageBytes,
		log:        log.WithField("component", "ingest"),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Run holds one subscription open until ctx is cancelled, the server ends
// the stream or the transport fails. Malformed payloads are dropped without
// ending the subscription. Cancellation returns nil; a failed connection
// returns an error wrapping ErrTransport.
func (in *Ingestor) Run(ctx context.Context) error {
	client := sse.NewClient(in.url, sse.ClientMaxBufferSize(in.maxMessage))
	client.ReconnectStrategy = &backoff.StopBackOff{}
	for k, v := range in.headers {
		client.Headers[k] = v
	}
	if in.httpClient != nil {
		client.Connection = in.httpClient
	}
	client.OnConnect(func(*sse.Client) {
		in.connected.Store(true)
		in.log.Infof("subscribed to %s", in.url)
	})
	client.OnDisconnect(func(*sse.Client) {
		in.connected.Store(false)
	})

	err := client.SubscribeRawWithContext(ctx, in.handle)
	in.connected.Store(false)

	if ctx.Err() != nil {
		in.log.Infof("subscription to %s closed", in.url)
		return nil
	}
	if err != nil && !errors.Is(err, io.EOF) {
		in.log.Warnf("stream %s failed, error: %s", in.url, err.Error())
		return fmt.Errorf("subscribe %s: %w: %w", in.url, ErrTransport, err)
	}
	in.log.Infof("stream %s ended by server", in.url)
	return nil
}

// handle is called for every event on the subscription goroutine.
func (in *Ingestor) handle(msg *sse.Event) {
	if len(msg.Data) == 0 {
		return
	}
	in.received.Add(1)
	snap, err := ParseSnapshot(msg.Data)
	if err != nil {
		in.dropped.Add(1)
		in.log.Warnf("dropping malformed message, error: %s", err.Error())
		return
	}
	in.coll.Append(snap)
	in.appended.Add(1)
	in.log.Debugf("received %q (%dx%d)", snap.Label, snap.Rows(), snap.Cols())
}

// Start runs the subscription on its own goroutine. An Ingestor runs at
// most once; later calls are no-ops.
func (in *Ingestor) Start(ctx context.Context) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.done != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	in.cancel = cancel
	in.done = done
	go func() {
		defer close(done)
		err := in.Run(ctx)
		in.mu.Lock()
		in.err = err
		in.mu.Unlock()
	}()
}

// Done is closed once a started subscription has ended. It is nil before
// Start.
func (in *Ingestor) Done() <-chan struct{} {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.done
}

// Err returns the error that ended the started subscription, if any.
func (in *Ingestor) Err() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.err
}

// Close cancels a started subscription and waits for it to end. After
// Close returns no further snapshots are appended. It is safe to call more
// than once.
func (in *Ingestor) Close() error {
	in.mu.Lock()
	cancel, done := in.cancel, in.done
	in.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	err := in.Err()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Stats returns a snapshot of the ingestion counters.
func (in *Ingestor) Stats() IngestStats {
	return IngestStats{
		Received:  in.received.Load(),
		Appended:  in.appended.Load(),
		Dropped:   in.dropped.Load(),
		Connected: in.connected.Load(),
	}
}
