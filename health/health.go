// Package health serves the daemon's view of the last heartbeat over HTTP.
package health // import "go.jonnrb.io/natmon/health"

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.jonnrb.io/natmon/ha"
	"golang.org/x/net/context/ctxhttp"
)

// An ha.Observer that reports the last tick to HTTP clients:
//
//	503 before the first tick finishes
//	500 with the error if the last tick failed
//	200 otherwise
type Checker struct {
	// If set, a master also checks it can reach this URL.
	UpstreamURL string

	c chan chan error

	mu      sync.Mutex
	ticked  bool
	lastRes ha.Result
	lastErr error
}

// Upstream checks are serialized by a goroutine that runs until ctx is done.
func New(ctx context.Context, upstreamURL string) *Checker {
	hc := &Checker{
		UpstreamURL: upstreamURL,
		c:           make(chan chan error),
	}
	go hc.loop(ctx)
	return hc
}

func (hc *Checker) Observe(res ha.Result, err error) {
	hc.mu.Lock()
	defer hc.mu.Unlock()

	hc.ticked, hc.lastRes, hc.lastErr = true, res, err
}

func (hc *Checker) status() (res ha.Result, ok bool, err error) {
	hc.mu.Lock()
	defer hc.mu.Unlock()

	return hc.lastRes, hc.ticked, hc.lastErr
}

func (hc *Checker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	res, ok, err := hc.status()
	switch {
	case !ok:
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, "no heartbeat yet\n")
		return
	case err != nil:
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, fmt.Sprintf("%v\n", err.Error()))
		return
	case !res.Outcome.IsMaster():
		io.WriteString(w, fmt.Sprintf("OK (standby; master is %s)\n", res.Master))
		return
	}

	if hc.UpstreamURL != "" {
		if err := hc.checkUpstream(r.Context()); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, fmt.Sprintf("master cannot reach upstream: %v\n", err))
			return
		}
	}
	io.WriteString(w, "OK (master)\n")
}

func (hc *Checker) checkUpstream(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	c := make(chan error, 1)
	select {
	case hc.c <- c:
		select {
		case err := <-c:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (hc *Checker) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ret := <-hc.c:
			func() {
				ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
				defer cancel()

				ret <- httpHeadCheck(ctx, hc.UpstreamURL)
			}()
		}
	}
}

func httpHeadCheck(ctx context.Context, url string) error {
	resp, err := ctxhttp.Head(ctx, nil, url)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
