// Package dispatch sequences personalized sends across a session's contact
// list: render, one transport call per recipient, per-contact state
// tracking, and a fixed pause between sends.
//
// Sends are strictly sequential. There is never more than one transport
// call in flight, which keeps the remote rate limit respected and contact
// state single-writer without extra locking.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/vkblast/vkblast/core/dispatch/sendlog"
	"github.com/vkblast/vkblast/core/events"
	"github.com/vkblast/vkblast/core/logger"
	"github.com/vkblast/vkblast/core/metrics"
	"github.com/vkblast/vkblast/core/model"
	"github.com/vkblast/vkblast/core/monitoring"
	"github.com/vkblast/vkblast/core/template"
	"github.com/vkblast/vkblast/core/transport"
	"github.com/vkblast/vkblast/internal/eventbus"
)

// Failure categories recorded with metrics and the send log.
const (
	reasonRender    = "render"
	reasonTimeout   = "timeout"
	reasonTransport = "transport"
	reasonAPI       = "api"
)

// Summary aggregates one bulk run.
type Summary struct {
	Total   int
	Sent    int
	Failed  int
	Skipped int
}

// Orchestrator drives sends for one session at a time.
type Orchestrator struct {
	client transport.Client
	engine *template.Engine
	cfg    Config
	log    logger.Logger
	sink   metrics.MetricsSink
	bus    eventbus.EventBus
	store  sendlog.Store

	// nonce yields the per-call random_id. Overridden in tests.
	nonce func() int64
}

// NewOrchestrator creates an orchestrator. Client, engine and log are
// required; sink, bus and store may be nil.
func NewOrchestrator(client transport.Client, engine *template.Engine, cfg Config, log logger.Logger, sink metrics.MetricsSink, bus eventbus.EventBus, store sendlog.Store) (*Orchestrator, error) {
	if client == nil || engine == nil || log == nil {
		return nil, fmt.Errorf("dispatch: nil parameter provided to NewOrchestrator")
	}
	return &Orchestrator{
		client: client,
		engine: engine,
		cfg:    cfg,
		log:    log,
		sink:   sink,
		bus:    bus,
		store:  store,
		nonce:  func() int64 { return int64(rand.Int31()) },
	}, nil
}

// Engine returns the template engine the orchestrator renders with.
func (o *Orchestrator) Engine() *template.Engine { return o.engine }

// SendOne renders the template for one contact and performs exactly one
// transport call. Every failure is recorded on the contact itself; the
// returned error mirrors it for the caller's convenience.
//
// The call is a silent no-op when the session has no token or the contact's
// ID is unresolved: those are caller-level guards, not state transitions.
func (o *Orchestrator) SendOne(ctx context.Context, sess *Session, c *model.Contact, tpl string) error {
	if !sess.HasToken() || !c.Resolved() {
		return nil
	}

	text, err := o.engine.Render(tpl, c)
	if err != nil {
		// No network call for a template that cannot render.
		o.transition(c, model.StateFailed, err.Error())
		o.record(c, 0, false, reasonRender, err.Error(), 0)
		return err
	}

	o.transition(c, model.StateSending, "")
	nonce := o.nonce()
	msg := transport.Message{
		RecipientID: c.RecipientID,
		Text:        text,
		Nonce:       nonce,
		Token:       sess.Token(),
	}

	start := time.Now()
	cctx, cancel := context.WithTimeout(ctx, o.cfg.SendTimeout())
	receipt, err := o.client.Send(cctx, msg)
	cancel()
	latency := time.Since(start)

	switch {
	case err != nil:
		reason := reasonTransport
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, transport.ErrTimeout) {
			err = transport.ErrTimeout
			reason = reasonTimeout
		}
		o.log.Warnf("send to %s failed: %v", c.RecipientID, err)
		o.transition(c, model.StateFailed, err.Error())
		o.record(c, nonce, false, reason, err.Error(), latency)
		return err
	case receipt.Error != nil:
		msg := receipt.Error.Message
		if msg == "" {
			msg = "remote API error"
		}
		o.log.Warnf("send to %s rejected: %s", c.RecipientID, msg)
		o.transition(c, model.StateFailed, msg)
		o.record(c, nonce, false, reasonAPI, msg, latency)
		return fmt.Errorf("remote API: %s", msg)
	default:
		o.transition(c, model.StateSent, "")
		o.record(c, nonce, true, "", "", latency)
		return nil
	}
}

// SendAll runs the bulk sequence over a snapshot of the session's contacts.
// Pre-flight failures (missing token, blank or invalid template, a bulk run
// already active) abort before any contact is touched. After that, each
// eligible contact is sent in snapshot order with a fixed pause after every
// attempt; individual failures never stop the run.
//
// Contacts that are unresolved or already Sent are skipped, which makes
// re-running SendAll retry only what has not succeeded yet.
func (o *Orchestrator) SendAll(ctx context.Context, sess *Session, tpl string) (Summary, error) {
	var sum Summary
	if !sess.HasToken() {
		return sum, fmt.Errorf("access token is not set")
	}
	if strings.TrimSpace(tpl) == "" {
		return sum, fmt.Errorf("message template is empty")
	}
	if err := o.engine.Validate(tpl); err != nil {
		return sum, fmt.Errorf("template validation: %w", err)
	}
	if err := sess.beginBulk(); err != nil {
		return sum, err
	}
	defer sess.endBulk()

	snapshot := sess.Snapshot()
	sum.Total = len(snapshot)
	o.publish(events.BulkEvent{Action: "start", Total: sum.Total})
	if br, ok := o.sink.(metrics.BulkSizeRecorder); ok && o.sink != nil {
		if err := br.RecordBulkSize(len(snapshot)); err != nil {
			o.log.Errorf("bulk size metrics: %v", err)
		}
	}
	o.log.Infof("bulk send started: %d contacts", sum.Total)
	start := time.Now()

	for i, c := range snapshot {
		if !c.Resolved() || c.State == model.StateSent {
			sum.Skipped++
			continue
		}
		_ = o.SendOne(ctx, sess, c, tpl)
		if c.State == model.StateSent {
			sum.Sent++
		} else {
			sum.Failed++
		}
		if i < len(snapshot)-1 {
			if err := o.pause(ctx); err != nil {
				o.publish(events.BulkEvent{Action: "done", Total: sum.Total, Sent: sum.Sent, Failed: sum.Failed, Skipped: sum.Skipped})
				return sum, err
			}
		}
	}

	o.publish(events.BulkEvent{Action: "done", Total: sum.Total, Sent: sum.Sent, Failed: sum.Failed, Skipped: sum.Skipped})
	if sum.Failed > 0 {
		o.log.Warnf("bulk send finished with failures: sent=%d failed=%d skipped=%d dur=%s",
			sum.Sent, sum.Failed, sum.Skipped, time.Since(start))
	} else {
		o.log.Infof("bulk send finished: sent=%d skipped=%d dur=%s", sum.Sent, sum.Skipped, time.Since(start))
	}
	return sum, nil
}

// pause waits the fixed inter-send gap or returns early on cancellation.
func (o *Orchestrator) pause(ctx context.Context) error {
	tmr := time.NewTimer(o.cfg.SendPause())
	defer tmr.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-tmr.C:
		return nil
	}
}

// transition moves one contact to a new state and publishes the change.
func (o *Orchestrator) transition(c *model.Contact, to model.State, reason string) {
	from := c.State
	c.State = to
	c.FailReason = reason
	o.publish(events.StateEvent{
		RecipientID: c.RecipientID,
		Label:       c.Label(),
		From:        from,
		To:          to,
		Reason:      reason,
	})
}

// record fans one settled send out to the bus, the metrics sink and the
// send log.
func (o *Orchestrator) record(c *model.Contact, nonce int64, delivered bool, category, reason string, latency time.Duration) {
	var evErr error
	if reason != "" {
		evErr = errors.New(reason)
	}
	o.publish(events.SendEvent{
		RecipientID: c.RecipientID,
		Nonce:       nonce,
		Delivered:   delivered,
		Err:         evErr,
		Latency:     latency,
	})
	if o.sink != nil {
		res := []metrics.SendResult{{
			RecipientID: c.RecipientID,
			Delivered:   delivered,
			Reason:      category,
			Latency:     latency,
			SendTime:    time.Now(),
		}}
		if err := o.sink.RecordSendResult(res); err != nil {
			o.log.Errorf("metrics: %v", err)
			monitoring.CaptureException(err, map[string]string{"component": "metrics"})
		}
		if lr, ok := o.sink.(metrics.LatencyRecorder); ok && latency > 0 {
			lat := []metrics.SendLatency{{RecipientID: c.RecipientID, Delivered: delivered, Latency: latency}}
			if err := lr.RecordSendLatency(lat); err != nil {
				o.log.Errorf("latency metrics: %v", err)
			}
		}
	}
	if o.store != nil {
		rec := sendlog.Record{
			Timestamp:   time.Now(),
			RecipientID: c.RecipientID,
			Label:       c.Label(),
			Nonce:       nonce,
			Delivered:   delivered,
			Reason:      reason,
			LatencyMS:   latency.Milliseconds(),
		}
		if err := o.store.Append(context.Background(), rec); err != nil {
			o.log.Errorf("send log: %v", err)
			monitoring.CaptureException(err, map[string]string{"component": "sendlog"})
		}
	}
}

func (o *Orchestrator) publish(e eventbus.Event) {
	if o.bus != nil {
		o.bus.Publish(e)
	}
}
