package stenura

import (
	"bufio"
	"context"
	"encoding/binary"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jcorbin/gosteno/chord"
	"github.com/jcorbin/gosteno/internal/panicerr"
	"github.com/jcorbin/gosteno/stenura/chordqueue"
)

// maxTries, retryInterval and pollInterval are the constants named in
// spec §4.4/§5: a per-message timeout of maxTries*retryInterval (~6s),
// and a poller cadence of ~100ms.
const (
	maxTries      = 3
	retryInterval = 2 * time.Second
	pollInterval  = 100 * time.Millisecond
)

type pendingMessage struct {
	req         Request
	sentInstant time.Time
	tries       int // number of times req has been sent so far, >= 1
	onResponse  func(Response)
	onTimeout   func()
}

// Client drives one Stenura session over an already-open, already
// termios-configured serial connection. Three long-lived activities
// (reader, retrier, poller) share the connection alongside whatever
// synchronous sends the caller makes through sendRequestSync.
type Client struct {
	conn io.ReadWriteCloser
	r    *bufio.Reader

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[byte]*pendingMessage
	nextSeq byte

	offset uint16 // REALTIME.000 read cursor; owned by bring-up then by pollLoop alone

	logf         func(level, mess string, args ...interface{})
	pollInterval time.Duration

	// Chords receives decoded strokes as the poller demultiplexes device
	// packets; a translator driving loop is its sole consumer.
	Chords *chordqueue.Queue
}

// ClientOption configures a Client at construction.
type ClientOption func(*Client)

// WithLogf sets the logger for protocol trace/diagnostic messages,
// named by level (WARN, ERROR). Without it the client logs nothing.
func WithLogf(logf func(level, mess string, args ...interface{})) ClientOption {
	return func(c *Client) { c.logf = logf }
}

// WithPollInterval overrides the default ~100ms poller cadence.
func WithPollInterval(d time.Duration) ClientOption {
	return func(c *Client) { c.pollInterval = d }
}

// WithChordCapacity overrides the default chord queue capacity.
func WithChordCapacity(capacity int) ClientOption {
	return func(c *Client) { c.Chords = chordqueue.New(capacity) }
}

// NewClient wraps conn, an already-open and already-configured serial
// connection.
func NewClient(conn io.ReadWriteCloser, opts ...ClientOption) *Client {
	c := &Client{
		conn:         conn,
		r:            bufio.NewReader(conn),
		pending:      make(map[byte]*pendingMessage),
		logf:         func(string, string, ...interface{}) {},
		pollInterval: pollInterval,
		Chords:       chordqueue.New(chordqueue.DefaultCapacity),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run brings the session up -- OPEN, then draining any data already
// buffered in REALTIME.000 -- and then runs the reader, retrier and
// poller loops until ctx is cancelled or one of them fails.
func (c *Client) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error { return panicerr.Recover("reader", func() error { return c.readLoop(ctx) }) })
	eg.Go(func() error {
		<-ctx.Done()
		return c.conn.Close()
	})
	eg.Go(func() error { return panicerr.Recover("retrier", func() error { return c.retryLoop(ctx) }) })

	eg.Go(func() error {
		if _, err := c.sendRequestSync(ctx, openRequest(c.allocSeq())); err != nil {
			return err
		}
		if err := c.drain(ctx); err != nil {
			return err
		}
		eg.Go(func() error { return panicerr.Recover("poller", func() error { return c.pollLoop(ctx) }) })
		return nil
	})

	return eg.Wait()
}

func (c *Client) allocSeq() byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	seq := c.nextSeq
	c.nextSeq++
	return seq
}

func (c *Client) writeFrame(b []byte) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.conn.Write(b); err != nil {
		c.logf("ERROR", "stenura write: %v", err)
	}
}

// send registers a pending message under req's sequence number and
// writes its initial frame. onResponse is called (from the reader loop)
// if a matching response arrives; onTimeout is called (from the retrier
// loop) if it never does within maxTries attempts.
func (c *Client) send(req Request, onResponse func(Response), onTimeout func()) {
	pm := &pendingMessage{req: req, sentInstant: time.Now(), tries: 1, onResponse: onResponse, onTimeout: onTimeout}
	c.mu.Lock()
	c.pending[req.Seq] = pm
	c.mu.Unlock()
	c.writeFrame(req.encode())
}

// sendRequestSync sends req and blocks for its response, a protocol
// timeout, or ctx cancellation, whichever comes first.
func (c *Client) sendRequestSync(ctx context.Context, req Request) (Response, error) {
	done := make(chan Response, 1)
	timedOut := make(chan struct{}, 1)

	c.send(req,
		func(resp Response) {
			select {
			case done <- resp:
			default:
			}
		},
		func() {
			select {
			case timedOut <- struct{}{}:
			default:
			}
		},
	)

	select {
	case resp := <-done:
		return resp, nil
	case <-timedOut:
		return Response{}, TimeoutError{Action: req.Action, Seq: req.Seq}
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

// drain issues READC from offset 0, advancing by each response's byte
// count, until a response carries no data -- the "catch up on whatever
// REALTIME.000 already holds" step of session bring-up.
func (c *Client) drain(ctx context.Context) error {
	for {
		resp, err := c.sendRequestSync(ctx, readCRequest(c.allocSeq(), c.offset))
		if err != nil {
			return err
		}
		if len(resp.Data) == 0 {
			return nil
		}
		c.offset += resp.P1
	}
}

// readLoop is the reader activity: it blocks reading whole response
// packets and dispatches each to its pending message.
func (c *Client) readLoop(ctx context.Context) error {
	for {
		header := make([]byte, responseHeaderLen)
		if _, err := io.ReadFull(c.r, header); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		total := binary.LittleEndian.Uint16(header[2:4])
		buf := header
		if int(total) > responseHeaderLen {
			rest := make([]byte, int(total)-responseHeaderLen)
			if _, err := io.ReadFull(c.r, rest); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			buf = append(buf, rest...)
		}

		resp, err := decodeResponse(buf)
		if err != nil {
			c.logf("ERROR", "%v", err)
			continue
		}
		c.dispatch(resp)
	}
}

func (c *Client) dispatch(resp Response) {
	c.mu.Lock()
	pm, ok := c.pending[resp.Seq]
	if ok {
		delete(c.pending, resp.Seq)
	}
	c.mu.Unlock()

	if !ok {
		c.logf("WARN", "%v", ProtocolError{Kind: UnmatchedSeq, Seq: resp.Seq})
		return
	}
	pm.onResponse(resp)
}

// retryLoop is the retrier activity: periodically, every pending message
// whose deadline (tries*retryInterval since it was first sent) has
// passed is either resent (incrementing tries) or, once tries has
// reached maxTries, timed out exactly once and dropped.
func (c *Client) retryLoop(ctx context.Context) error {
	ticker := time.NewTicker(retryInterval / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.retryPending()
		}
	}
}

func (c *Client) retryPending() {
	now := time.Now()
	var toResend, toTimeout []*pendingMessage

	c.mu.Lock()
	for seq, pm := range c.pending {
		if now.Sub(pm.sentInstant) <= time.Duration(pm.tries)*retryInterval {
			continue
		}
		if pm.tries < maxTries {
			pm.tries++
			toResend = append(toResend, pm)
		} else {
			toTimeout = append(toTimeout, pm)
			delete(c.pending, seq)
		}
	}
	c.mu.Unlock()

	for _, pm := range toResend {
		c.writeFrame(pm.req.encode())
	}
	for _, pm := range toTimeout {
		pm.onTimeout()
	}
}

// ReadChord implements translate.ChordSource: it blocks for the next
// stroke the poller has decoded, or until ctx is done.
func (c *Client) ReadChord(ctx context.Context) (chord.Chord, error) {
	return c.Chords.PopContext(ctx)
}

// pollLoop is the poller activity: after bring-up, repeatedly issues
// READC at pollInterval, decodes any stroke data into chords, and
// enqueues them on Chords.
func (c *Client) pollLoop(ctx context.Context) error {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		resp, err := c.sendRequestSync(ctx, readCRequest(c.allocSeq(), c.offset))
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logf("ERROR", "poll: %v", err)
			continue
		}
		c.offset += resp.P1

		for i := 0; i+4 <= len(resp.Data); i += 4 {
			var frame [4]byte
			copy(frame[:], resp.Data[i:i+4])
			ch, err := DecodeStroke(frame)
			if err != nil {
				c.logf("ERROR", "decode stroke: %v", err)
				continue
			}
			c.Chords.Push(ch)
		}
	}
}
