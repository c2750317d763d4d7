package contact

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Zachkp/portfolio/internal/logger"
	"github.com/Zachkp/portfolio/internal/mailer"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a single outbound send.
const DefaultTimeout = 10 * time.Second

const recordTimeout = 5 * time.Second

// Settings identifies the message-send client account and the fixed
// recipient of every message.
type Settings struct {
	ServiceID      string
	TemplateID     string
	PublicKey      string
	RecipientName  string
	RecipientEmail string
	Timeout        time.Duration
}

func (s Settings) configured() bool {
	return s.ServiceID != "" && s.TemplateID != "" && s.PublicKey != ""
}

// Attempt describes one settled send race.
type Attempt struct {
	SenderName  string
	SenderEmail string
	Phase       Phase
	Kind        Kind
	Message     string
	Duration    time.Duration
	At          time.Time
}

// Recorder persists settled attempts.
type Recorder interface {
	RecordAttempt(ctx context.Context, a Attempt) error
}

// Option configures a Controller.
type Option func(*Controller)

// WithRecorder records every attempt that reached the send race.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) { c.recorder = r }
}

// attempt is the in-flight send race. Only the attempt currently stored in
// Controller.inflight may settle; any other completion is discarded.
type attempt struct {
	id      uint64
	cancel  context.CancelFunc
	timer   *time.Timer
	done    chan struct{}
	result  FormStatus
	started time.Time
	sender  FormData
}

// Controller owns one visitor's form. All state changes go through
// UpdateField and Submit; observers read Status or Subscribe.
type Controller struct {
	settings Settings
	client   mailer.Client
	recorder Recorder
	log      *zap.SugaredLogger

	mu        sync.Mutex
	data      FormData
	status    FormStatus
	configErr *Error
	inflight  *attempt
	seq       uint64
	listeners map[uint64]func(FormStatus)
	nextSub   uint64
	version   uint64

	// deliverMu orders listener calls; delivered is the newest version sent.
	deliverMu sync.Mutex
	delivered uint64
}

// notification is one transition waiting to be delivered to listeners.
type notification struct {
	version uint64
	status  FormStatus
	fns     []func(FormStatus)
}

// NewController returns a controller in the Idle phase, or in a permanent
// configuration Error when the client or its identifiers are missing.
func NewController(settings Settings, client mailer.Client, opts ...Option) *Controller {
	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}
	c := &Controller{
		settings:  settings,
		client:    client,
		log:       logger.GetLogger(),
		status:    idleStatus,
		listeners: make(map[uint64]func(FormStatus)),
	}
	for _, opt := range opts {
		opt(c)
	}

	if client == nil || !settings.configured() {
		c.configErr = newError(KindConfiguration, MsgNotConfigured, "service id, template id or public key missing", nil)
		c.status = FormStatus{Phase: PhaseError, Message: MsgNotConfigured}
	}
	return c
}

// Status returns the current status.
func (c *Controller) Status() FormStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Data returns the current field values.
func (c *Controller) Data() FormData {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data
}

// Subscribe registers fn to receive status transitions in order. A
// transition superseded before it reaches the listeners is skipped, so the
// last status a listener sees is always the current one. fn must not call
// UpdateField or Submit. The returned func removes it.
func (c *Controller) Subscribe(fn func(FormStatus)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// UpdateField overwrites one field. A visible result banner is cleared so it
// does not outlive the edit; the configuration error is permanent.
func (c *Controller) UpdateField(field Field, value string) error {
	c.mu.Lock()
	switch field {
	case FieldName:
		c.data.Name = value
	case FieldEmail:
		c.data.Email = value
	case FieldMessage:
		c.data.Message = value
	default:
		c.mu.Unlock()
		return ErrUnknownField
	}

	var notify notification
	if c.status.Message != "" && c.configErr == nil {
		notify = c.transitionLocked(idleStatus)
	}
	c.mu.Unlock()

	c.deliver(notify)
	return nil
}

// Submit validates the form and starts a send raced against the timeout. It
// returns false, doing nothing, when an attempt is already in flight. The
// outcome arrives asynchronously; use Wait or Subscribe to observe it.
func (c *Controller) Submit() bool {
	c.mu.Lock()
	if c.status.Sending() {
		c.mu.Unlock()
		c.log.Debugw("Ignoring duplicate contact submit while sending")
		return false
	}

	sending := FormStatus{Phase: PhaseSending}
	notifySending := c.transitionLocked(sending)

	failure := c.configErr
	if failure == nil {
		if err := Validate(c.data); err != nil {
			failure = err.(*Error)
		}
	}
	if failure != nil {
		final := FormStatus{Phase: PhaseError, Message: failure.Message}
		notifyFinal := c.transitionLocked(final)
		c.mu.Unlock()

		c.log.Infow("Contact submit rejected", "kind", failure.Kind, "detail", failure.Detail)
		c.deliver(notifySending)
		c.deliver(notifyFinal)
		return true
	}

	c.seq++
	ctx, cancel := context.WithCancel(context.Background())
	a := &attempt{
		id:      c.seq,
		cancel:  cancel,
		done:    make(chan struct{}),
		started: time.Now(),
		sender:  c.data,
	}
	c.inflight = a
	params := c.paramsLocked()
	c.mu.Unlock()

	c.deliver(notifySending)

	c.mu.Lock()
	a.timer = time.AfterFunc(c.settings.Timeout, func() {
		c.settle(a, mailer.Response{}, nil, true)
	})
	c.mu.Unlock()

	c.log.Infow("Sending contact message",
		"attempt", a.id,
		"sender", logger.MaskEmail(a.sender.Email),
		"timeout", c.settings.Timeout)

	go func() {
		resp, err := c.client.Send(ctx, c.settings.ServiceID, c.settings.TemplateID, params)
		c.settle(a, resp, err, false)
	}()
	return true
}

// Wait blocks until the in-flight attempt settles and returns its result.
// Without an attempt in flight it returns the current status at once.
func (c *Controller) Wait(ctx context.Context) (FormStatus, error) {
	c.mu.Lock()
	a := c.inflight
	status := c.status
	c.mu.Unlock()

	if a == nil {
		return status, nil
	}
	select {
	case <-a.done:
		return a.result, nil
	case <-ctx.Done():
		return c.Status(), ctx.Err()
	}
}

func (c *Controller) paramsLocked() map[string]string {
	return map[string]string{
		mailer.ParamSenderName:     c.data.Name,
		mailer.ParamSenderEmail:    c.data.Email,
		mailer.ParamRecipientName:  c.settings.RecipientName,
		mailer.ParamRecipientEmail: c.settings.RecipientEmail,
		mailer.ParamMessage:        c.data.Message,
		mailer.ParamReplyTo:        c.data.Email,
	}
}

// settle resolves the race for a. The first caller for the current attempt
// wins; later callers, and callers for superseded attempts, are no-ops.
func (c *Controller) settle(a *attempt, resp mailer.Response, sendErr error, timedOut bool) {
	c.mu.Lock()
	if c.inflight != a {
		c.mu.Unlock()
		return
	}
	c.inflight = nil
	a.timer.Stop()
	a.cancel()

	var (
		status FormStatus
		kind   Kind
		detail string
	)
	switch {
	case timedOut:
		kind = KindTimeout
		status = FormStatus{Phase: PhaseError, Message: MsgTimedOut}
		detail = fmt.Sprintf("no response within %s", c.settings.Timeout)
	case sendErr == nil && resp.OK():
		status = FormStatus{Phase: PhaseSuccess, Message: MsgSent}
		c.data = FormData{}
	default:
		text := ""
		if sendErr == nil {
			text = fmt.Sprintf("Failed to send message. Status: %d: %s", resp.Status, resp.Text)
		}
		failure := ClassifySendFailure(text, sendErr)
		kind = failure.Kind
		detail = failure.Detail
		status = FormStatus{Phase: PhaseError, Message: failure.Message}
	}

	notify := c.transitionLocked(status)
	a.result = status
	close(a.done)
	c.mu.Unlock()

	elapsed := time.Since(a.started)
	if status.Phase == PhaseSuccess {
		c.log.Infow("Contact message sent",
			"attempt", a.id,
			"sender", logger.MaskEmail(a.sender.Email),
			"duration", elapsed)
	} else {
		c.log.Warnw("Contact message failed",
			"attempt", a.id,
			"kind", kind,
			"detail", detail,
			"duration", elapsed)
	}

	c.deliver(notify)
	c.record(Attempt{
		SenderName:  a.sender.Name,
		SenderEmail: a.sender.Email,
		Phase:       status.Phase,
		Kind:        kind,
		Message:     status.Message,
		Duration:    elapsed,
		At:          a.started,
	})
}

// transitionLocked replaces the status and returns the notification to
// deliver once the lock is released.
func (c *Controller) transitionLocked(status FormStatus) notification {
	c.status = status
	c.version++
	n := notification{version: c.version, status: status}
	if len(c.listeners) == 0 {
		return n
	}
	n.fns = make([]func(FormStatus), 0, len(c.listeners))
	for _, fn := range c.listeners {
		n.fns = append(n.fns, fn)
	}
	return n
}

// deliver calls the listeners unless a newer transition was already
// delivered.
func (c *Controller) deliver(n notification) {
	if n.version == 0 {
		return
	}
	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()
	if n.version <= c.delivered {
		return
	}
	c.delivered = n.version
	for _, fn := range n.fns {
		fn(n.status)
	}
}

func (c *Controller) record(a Attempt) {
	if c.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if err := c.recorder.RecordAttempt(ctx, a); err != nil {
		c.log.Errorw("Failed to record contact attempt", "error", err, "phase", a.Phase)
	}
}
