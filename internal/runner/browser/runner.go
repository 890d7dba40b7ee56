// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package browser runs test bundles in a browser. It serves the bundle and a
// harness page from a local HTTP server, launches a browser at that page and
// observes the results the page reports over a WebSocket.
package browser

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"go.chromium.org/wasmtest/internal/logging"
	"go.chromium.org/wasmtest/internal/runner"
	"go.chromium.org/wasmtest/internal/toolchain"
)

const (
	// DefaultTimeout is the default time to wait for the page to finish.
	DefaultTimeout = 5 * time.Minute

	// maxConns caps concurrent connections to the harness server. The page
	// needs three at most; the rest is slack for browser prefetching.
	maxConns = 16

	// eventBufferSize is the capacity of the channel carrying page events.
	eventBufferSize = 64
)

// ErrTimedOut is returned when the page doesn't finish in time.
var ErrTimedOut = errors.New("browser tests timed out")

// ErrCrashed is returned when the browser exits before the page finishes.
var ErrCrashed = errors.New("browser exited before tests finished")

// Config holds parameters of a Runner.
type Config struct {
	BundlePath string
	// Host and Port are the address the harness server listens on. Port 0
	// picks a free port.
	Host string
	Port int
	// Timeout is how long to wait for the page to finish. Zero means
	// DefaultTimeout.
	Timeout time.Duration
	// Manifest describes the package under test. It may be nil.
	Manifest *toolchain.Manifest
	// Launcher starts the browser.
	Launcher Launcher
	// Clock is used for the timeout. Nil means the real clock.
	Clock clock.Clock
	// Streams receives the output of the bundle.
	Streams runner.Streams
}

// Runner runs bundles in a browser.
type Runner struct {
	cfg Config

	mu    sync.Mutex
	state State
}

var _ runner.Runner = (*Runner)(nil)

// New returns a new Runner.
func New(cfg Config) *Runner {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.NewClock()
	}
	return &Runner{cfg: cfg}
}

// State returns the current state of the runner.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// setState moves the runner to s. A final state is kept until the next run
// resets the runner to Idle.
func (r *Runner) setState(ctx context.Context, s State) {
	r.mu.Lock()
	old := r.state
	if old.Terminal() && s != Idle {
		r.mu.Unlock()
		return
	}
	r.state = s
	r.mu.Unlock()
	logging.Debugf(ctx, "Browser runner: %v -> %v", old, s)
}

func (r *Runner) title() string {
	if r.cfg.Manifest != nil && r.cfg.Manifest.Name != "" {
		return r.cfg.Manifest.Name + " tests"
	}
	return "Tests"
}

// pageURL returns the URL of the harness page for sel.
func pageURL(addr net.Addr, session string, sel runner.Selection) string {
	q := url.Values{}
	q.Set("session", session)
	if sel.ListOnly {
		q.Set("list", "1")
	}
	for _, tc := range sel.TestCases {
		q.Add("test", tc)
	}
	return (&url.URL{Scheme: "http", Host: addr.String(), Path: "/", RawQuery: q.Encode()}).String()
}

// resources holds the harness server and the browser of one run. close
// releases both and is safe to call repeatedly.
type resources struct {
	srv     *http.Server
	browser Instance
	done    chan struct{}
	once    sync.Once
}

func (res *resources) close(ctx context.Context) {
	res.once.Do(func() {
		close(res.done)
		if res.browser != nil {
			if err := res.browser.Close(); err != nil {
				logging.Info(ctx, "Failed to clean up browser: ", err)
			}
		}
		res.srv.Close()
	})
}

// ListTestCases loads the page in listing mode and returns the test names
// the bundle printed.
func (r *Runner) ListTestCases(ctx context.Context) ([]string, error) {
	out, err := r.run(ctx, runner.Selection{ListOnly: true}, runner.Streams{})
	if err != nil {
		return nil, err
	}
	if !out.Passed {
		return nil, errors.Errorf("listing test cases failed: %s", out.RawOutput)
	}
	return runner.ParseTestNames(out.RawOutput), nil
}

// Run serves the bundle, launches the browser and waits for the page to
// report completion.
func (r *Runner) Run(ctx context.Context, sel runner.Selection) (*runner.Outcome, error) {
	return r.run(ctx, sel, r.cfg.Streams)
}

func (r *Runner) run(ctx context.Context, sel runner.Selection, streams runner.Streams) (*runner.Outcome, error) {
	r.setState(ctx, Idle)
	session := uuid.NewString()

	addr := net.JoinHostPort(r.cfg.Host, strconv.Itoa(r.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to listen on %s", addr)
	}
	ln = netutil.LimitListener(ln, maxConns)

	events := make(chan Event, eventBufferSize)
	res := &resources{done: make(chan struct{})}
	srv := &server{
		ctx:        ctx,
		bundlePath: r.cfg.BundlePath,
		title:      r.title(),
		session:    session,
		events:     events,
		done:       res.done,
	}
	res.srv = &http.Server{Handler: srv.handler()}
	defer res.close(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := res.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			return errors.Wrap(err, "harness server failed")
		}
		return nil
	})
	r.setState(ctx, ServerStarted)

	u := pageURL(ln.Addr(), session, sel)
	logging.Infof(ctx, "Serving tests at %s", u)
	b, err := r.cfg.Launcher.Launch(ctx, u)
	if err != nil {
		res.close(ctx)
		g.Wait()
		return nil, errors.Wrap(err, "failed to launch browser")
	}
	res.browser = b
	r.setState(ctx, BrowserLaunched)

	var out *runner.Outcome
	g.Go(func() error {
		defer res.close(ctx)
		var err error
		out, err = r.observe(gctx, events, b, streams)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// observe processes events until the page completes, the browser exits or
// the timeout expires.
func (r *Runner) observe(ctx context.Context, events <-chan Event, b Instance, streams runner.Streams) (*runner.Outcome, error) {
	r.setState(ctx, Observing)

	m := runner.NewEventMonitor()
	stdout := m.Writer(orDiscard(streams.Stdout))
	stderr := m.Writer(orDiscard(streams.Stderr))
	defer stdout.Close()
	defer stderr.Close()

	timer := r.cfg.Clock.NewTimer(r.cfg.Timeout)
	defer timer.Stop()

	for {
		select {
		case ev := <-events:
			switch ev.Type {
			case EventStdout:
				io.WriteString(stdout, ev.Text)
			case EventStderr:
				io.WriteString(stderr, ev.Text)
			case EventConsole:
				logging.Debug(ctx, "Console: ", ev.Text)
			case EventError:
				fmt.Fprintf(stderr, "%s\n%s\n", ev.Text, ev.Stack)
			case EventTrap:
				fmt.Fprintf(stderr, "Error: %s\n%s\n", ev.Text, ev.Stack)
				m.SetTrap(runner.NewTrap(runner.StackOverflow, ev.Text, ev.Stack))
			case EventCompleted:
				stdout.Close()
				stderr.Close()
				r.setState(ctx, Completed)
				return m.Outcome(ev.ExitCode == 0), nil
			default:
				logging.Debugf(ctx, "Ignoring unknown event %q", ev.Type)
			}
		case <-b.Done():
			r.setState(ctx, Crashed)
			return nil, ErrCrashed
		case <-timer.C():
			r.setState(ctx, TimedOut)
			return nil, errors.Wrapf(ErrTimedOut, "no result after %v", r.cfg.Timeout)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func orDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
