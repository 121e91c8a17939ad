// Package monitor reports heartbeats to a Cronitor-style ping service.
package monitor // import "go.jonnrb.io/natmon/monitor"

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.jonnrb.io/natmon/ha"
	"go.jonnrb.io/natmon/log"
	"golang.org/x/net/context/ctxhttp"
)

type State string

const (
	StateRun      State = "run"
	StateComplete State = "complete"
	StateFail     State = "fail"
)

const DefaultURL = "https://cronitor.link"

type Params struct {
	Enabled bool
	URL     string
	Code    string
	AuthKey string
}

// An ha.Observer that pings run as each tick starts and complete or fail once
// it's done. Pings are sent from Run and a failed ping is only logged.
type Pinger struct {
	params Params
	client *http.Client

	c chan ping
}

type ping struct {
	state State
	msg   string
}

func New(params Params, client *http.Client) *Pinger {
	if params.URL == "" {
		params.URL = DefaultURL
	}
	return &Pinger{
		params: params,
		client: client,
		c:      make(chan ping, 8),
	}
}

func (p *Pinger) Enabled() bool {
	return p.params.Enabled && p.params.Code != ""
}

// <base>/<code>/<state>?auth_key=<key>&msg=<msg>
func (p *Pinger) URL(state State, msg string) string {
	q := url.Values{}
	if p.params.AuthKey != "" {
		q.Set("auth_key", p.params.AuthKey)
	}
	if msg != "" {
		q.Set("msg", msg)
	}
	u := fmt.Sprintf("%s/%s/%s",
		strings.TrimSuffix(p.params.URL, "/"), url.PathEscape(p.params.Code), state)
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// Does nothing unless Enabled.
func (p *Pinger) Ping(ctx context.Context, state State, msg string) error {
	if !p.Enabled() {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	resp, err := ctxhttp.Get(ctx, p.client, p.URL(state, msg))
	if err != nil {
		return fmt.Errorf("monitor: could not ping %s: %w", state, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("monitor: ping %s got status %s", state, resp.Status)
	}
	return nil
}

func (p *Pinger) ObserveStart() {
	p.enqueue(ping{state: StateRun})
}

func (p *Pinger) Observe(res ha.Result, err error) {
	pg := ping{StateComplete, res.Outcome.String()}
	if err != nil {
		pg = ping{StateFail, err.Error()}
	}
	p.enqueue(pg)
}

func (p *Pinger) enqueue(pg ping) {
	if !p.Enabled() {
		return
	}
	select {
	case p.c <- pg:
	default:
		log.Warningf("monitor: dropping %s ping; the service is falling behind", pg.state)
	}
}

// Sends the pings queued by ObserveStart and Observe until ctx is done.
func (p *Pinger) Run(ctx context.Context) {
	if !p.Enabled() {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case pg := <-p.c:
			if err := p.Ping(ctx, pg.state, pg.msg); err != nil {
				log.Warning(err)
			}
		}
	}
}
