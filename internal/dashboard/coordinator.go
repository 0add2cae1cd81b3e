package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/etay-atar/Sandbox/internal/domain"
	"github.com/etay-atar/Sandbox/internal/metrics"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
)

const commandBuffer = 64

// Metrics bundles the instrumentation the coordinator reports to.
type Metrics struct {
	Poller *metrics.PollerMetrics
	Upload *metrics.UploadMetrics
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Poller: metrics.NewPollerMetrics(reg),
		Upload: metrics.NewUploadMetrics(reg),
	}
}

// coordinatorCmd is the command interface for the Coordinator actor.
type coordinatorCmd interface{ isCoordinatorCmd() }

type baseCoordinatorCmd struct{}

func (baseCoordinatorCmd) isCoordinatorCmd() {}

type mountCmd struct {
	baseCoordinatorCmd
	reply chan struct{}
}

type unmountCmd struct {
	baseCoordinatorCmd
	reply chan struct{}
}

type selectCmd struct {
	baseCoordinatorCmd
	submissionID string
	reply        chan struct{}
}

type refreshCmd struct {
	baseCoordinatorCmd
}

type sessionCmd struct {
	baseCoordinatorCmd
	event domain.SessionEvent
	reply chan struct{}
}

type uploadStartCmd struct {
	baseCoordinatorCmd
	reply chan uploadTicket
}

type uploadDoneCmd struct {
	baseCoordinatorCmd
	reply chan struct{}
}

type snapshotCmd struct {
	baseCoordinatorCmd
	reply chan State
}

type subscribeCmd struct {
	baseCoordinatorCmd
	id  int
	sub *subscriber
}

type unsubscribeCmd struct {
	baseCoordinatorCmd
	id int
}

type stopCmd struct {
	baseCoordinatorCmd
}

type uploadTicket struct {
	rc  domain.RequestContext
	err error
}

// Coordinator owns the dashboard state and both polling loops.
type Coordinator struct {
	api     domain.SubmissionAPI
	session domain.SessionSource
	clock   clockwork.Clock
	metrics *Metrics
	cfg     Config

	cmdCh         chan coordinatorCmd
	listResults   chan listResult
	detailResults chan detailResult
	done          chan struct{}
	rootCtx       context.Context
	cancelRoot    context.CancelFunc

	stopOnce           sync.Once
	unsubscribeSession func()
	subMu              sync.Mutex
	nextSubID          int

	// Owned by the actor goroutine.
	state       State
	list        poller
	detail      poller
	subscribers map[int]*subscriber
	// released holds subscribers stopped by shutdown; Close waits on them
	// after the actor exited.
	released []*subscriber
}

// New starts the coordinator actor and subscribes it to session transitions.
// m may be nil, in which case metrics go to a private throwaway registry.
func New(api domain.SubmissionAPI, session domain.SessionSource, clock clockwork.Clock, m *Metrics, cfg Config) *Coordinator {
	if m == nil {
		m = NewMetrics(prometheus.NewRegistry())
	}
	defaults := DefaultConfig()
	if cfg.ListInterval <= 0 {
		cfg.ListInterval = defaults.ListInterval
	}
	if cfg.DetailInterval <= 0 {
		cfg.DetailInterval = defaults.DetailInterval
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaults.RequestTimeout
	}

	rootCtx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		api:           api,
		session:       session,
		clock:         clock,
		metrics:       m,
		cfg:           cfg,
		cmdCh:         make(chan coordinatorCmd, commandBuffer),
		listResults:   make(chan listResult),
		detailResults: make(chan detailResult),
		done:          make(chan struct{}),
		rootCtx:       rootCtx,
		cancelRoot:    cancel,
		state:         State{Authenticated: session.IsAuthenticated()},
		list:          poller{name: metrics.PollerList},
		detail:        poller{name: metrics.PollerDetail},
		subscribers:   make(map[int]*subscriber),
	}

	go c.run()

	c.unsubscribeSession = session.Subscribe(func(ev domain.SessionEvent) {
		reply := make(chan struct{})
		if c.send(sessionCmd{event: ev, reply: reply}) {
			c.await(reply)
		}
	})

	return c
}

// send enqueues cmd unless the actor has exited.
func (c *Coordinator) send(cmd coordinatorCmd) bool {
	select {
	case c.cmdCh <- cmd:
		return true
	case <-c.done:
		return false
	}
}

func (c *Coordinator) await(reply chan struct{}) {
	select {
	case <-reply:
	case <-c.done:
	}
}

func (c *Coordinator) call(build func(reply chan struct{}) coordinatorCmd) {
	reply := make(chan struct{})
	if c.send(build(reply)) {
		c.await(reply)
	}
}

// Mount starts polling for a mounted dashboard view. It returns once the
// list poller is running (when authenticated).
func (c *Coordinator) Mount() {
	c.call(func(reply chan struct{}) coordinatorCmd { return mountCmd{reply: reply} })
}

// Unmount cancels both pollers and clears all held state. No result of a
// request issued before Unmount can change state afterwards.
func (c *Coordinator) Unmount() {
	c.call(func(reply chan struct{}) coordinatorCmd { return unmountCmd{reply: reply} })
}

// Select changes the selected submission. When it returns, the previous
// detail loop is stopped and the detail cleared; an empty id deselects.
func (c *Coordinator) Select(submissionID string) {
	c.call(func(reply chan struct{}) coordinatorCmd {
		return selectCmd{submissionID: submissionID, reply: reply}
	})
}

func (c *Coordinator) Deselect() {
	c.Select("")
}

// Refresh requests an immediate list fetch. A refresh issued while a fetch
// is in flight runs as soon as that fetch resolves.
func (c *Coordinator) Refresh() {
	c.send(refreshCmd{})
}

// Snapshot returns the current state, or the zero State once closed.
func (c *Coordinator) Snapshot() State {
	reply := make(chan State, 1)
	if !c.send(snapshotCmd{reply: reply}) {
		return State{}
	}
	select {
	case st := <-reply:
		return st
	case <-c.done:
		return State{}
	}
}

// Subscribe registers fn for state changes. fn runs on its own goroutine,
// receives the current state first, and may be skipped over intermediate
// states when it is slower than the updates.
func (c *Coordinator) Subscribe(fn func(State)) (unsubscribe func()) {
	c.subMu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subMu.Unlock()

	sub := newSubscriber(fn)
	if !c.send(subscribeCmd{id: id, sub: sub}) {
		sub.stop()
		return func() {}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			c.send(unsubscribeCmd{id: id})
			sub.stop()
		})
	}
}

// Close stops both pollers, releases subscribers and waits for the actor to
// exit. No subscriber callback runs after Close returns, so a callback must
// not call Close itself.
func (c *Coordinator) Close() {
	c.stopOnce.Do(func() {
		c.unsubscribeSession()
		c.send(stopCmd{})
		<-c.done
		for _, sub := range c.released {
			sub.wait()
		}
	})
}

func (c *Coordinator) run() {
	defer close(c.done)
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Coordinator panic recovered", "panic", r)
			c.shutdown()
		}
	}()

	for {
		select {
		case cmd := <-c.cmdCh:
			if stop := c.handle(cmd); stop {
				return
			}
		case <-c.list.tickChan():
			c.tickList()
		case <-c.detail.tickChan():
			c.tickDetail()
		case res := <-c.listResults:
			c.applyList(res)
		case res := <-c.detailResults:
			c.applyDetail(res)
		}
	}
}

func (c *Coordinator) handle(cmd coordinatorCmd) bool {
	switch cmd := cmd.(type) {
	case mountCmd:
		c.handleMount()
		close(cmd.reply)
	case unmountCmd:
		c.handleUnmount()
		close(cmd.reply)
	case selectCmd:
		c.handleSelect(cmd.submissionID)
		close(cmd.reply)
	case refreshCmd:
		c.handleRefresh()
	case sessionCmd:
		c.handleSession(cmd.event)
		close(cmd.reply)
	case uploadStartCmd:
		cmd.reply <- c.handleUploadStart()
	case uploadDoneCmd:
		c.state.Uploading = false
		c.publish()
		close(cmd.reply)
	case snapshotCmd:
		cmd.reply <- c.state.clone()
	case subscribeCmd:
		c.subscribers[cmd.id] = cmd.sub
		cmd.sub.offer(c.state.clone())
	case unsubscribeCmd:
		delete(c.subscribers, cmd.id)
	case stopCmd:
		c.shutdown()
		return true
	default:
		slog.Warn("Coordinator received unknown command type", "command_type", fmt.Sprintf("%T", cmd))
	}
	return false
}

func (c *Coordinator) shutdown() {
	c.stopList()
	c.stopDetail()
	c.cancelRoot()
	for id, sub := range c.subscribers {
		sub.stop()
		c.released = append(c.released, sub)
		delete(c.subscribers, id)
	}
}

func (c *Coordinator) publish() {
	if len(c.subscribers) == 0 {
		return
	}
	st := c.state.clone()
	for _, sub := range c.subscribers {
		sub.offer(st)
	}
}

// handleMount is a no-op for an already mounted view; its pollers keep running.
func (c *Coordinator) handleMount() {
	if c.state.Mounted {
		return
	}
	c.state.Mounted = true
	c.state.Authenticated = c.session.IsAuthenticated()
	if c.state.Authenticated {
		c.startList()
		if c.state.SelectedID != "" {
			c.startDetail()
		}
	}
	c.publish()
}

func (c *Coordinator) handleUnmount() {
	c.stopList()
	c.stopDetail()
	c.state = State{Authenticated: c.state.Authenticated, Uploading: c.state.Uploading}
	slog.Debug("Dashboard unmounted")
	c.publish()
}

func (c *Coordinator) handleSelect(id string) {
	if id == c.state.SelectedID {
		return
	}

	c.stopDetail()
	c.state.SelectedID = id
	c.state.Detail = nil
	c.state.Phase = PhasePending
	c.state.DetailError = ""

	if id != "" && c.state.Mounted && c.session.IsAuthenticated() {
		c.startDetail()
	}
	c.publish()
}

func (c *Coordinator) handleRefresh() {
	if !c.list.running() || !c.session.IsAuthenticated() {
		return
	}
	if c.list.inFlight {
		c.list.pending = true
		return
	}
	c.dispatchList()
}

// handleSession reacts to login and logout. Any transition invalidates what
// was fetched under the previous credential.
func (c *Coordinator) handleSession(ev domain.SessionEvent) {
	c.stopList()
	c.stopDetail()

	c.state = State{
		Mounted:       c.state.Mounted,
		Authenticated: ev.Authenticated,
		Uploading:     c.state.Uploading,
	}

	if ev.Authenticated && c.state.Mounted {
		c.startList()
	}
	c.publish()
}

func (c *Coordinator) handleUploadStart() uploadTicket {
	if c.state.Uploading {
		return uploadTicket{err: domain.ErrUploadInProgress}
	}
	rc := c.session.RequestContext()
	if !rc.Authenticated() {
		return uploadTicket{err: domain.ErrNotAuthenticated}
	}
	c.state.Uploading = true
	c.publish()
	return uploadTicket{rc: rc}
}
