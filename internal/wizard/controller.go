package wizard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ikkim/restaurant-ops-backend/pkg/logger"
)

// DefaultSubmitTimeout bounds a single store-creation call.
const DefaultSubmitTimeout = 30 * time.Second

// Options configures a Controller.
type Options struct {
	SessionID      string
	Steps          []Descriptor
	Gateway        Gateway
	IdempotencyKey string
	SubmitTimeout  time.Duration
	WebhookBaseURL string
	// OnChange receives a snapshot after every state change, outside the lock.
	OnChange func(State)
}

// Controller drives one wizard session: navigation, validation gates and the
// store-creation submission. It is safe for concurrent use.
type Controller struct {
	mu           sync.Mutex
	state        State
	steps        []Descriptor
	gateway      Gateway
	key          string
	timeout      time.Duration
	webhookBase  string
	onChange     func(State)
	log          *logger.Logger
	generation   uint64
	cancelSubmit context.CancelFunc
	closed       bool
}

// StepTask ties a step-local async result to the step that started it.
type StepTask struct {
	step       StepID
	generation uint64
}

func (t StepTask) Step() StepID { return t.step }

func NewController(opts Options) *Controller {
	steps := opts.Steps
	if len(steps) == 0 {
		steps = DefaultSteps()
	}
	key := opts.IdempotencyKey
	if key == "" {
		key = uuid.New().String()
	}
	timeout := opts.SubmitTimeout
	if timeout <= 0 {
		timeout = DefaultSubmitTimeout
	}
	return &Controller{
		state:       NewState(),
		steps:       steps,
		gateway:     opts.Gateway,
		key:         key,
		timeout:     timeout,
		webhookBase: opts.WebhookBaseURL,
		onChange:    opts.OnChange,
		log: logger.WithContext(map[string]interface{}{
			"wizard_session": opts.SessionID,
		}),
	}
}

func (c *Controller) IdempotencyKey() string { return c.key }

func (c *Controller) Steps() []Descriptor { return c.steps }

// State returns a deep copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Render returns the view of the current step.
func (c *Controller) Render() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renderLocked()
}

func (c *Controller) renderLocked() View {
	return c.RenderState(c.state)
}

// RenderState renders the current step of a snapshot returned by this controller,
// so a state and its view always describe the same step.
func (c *Controller) RenderState(s State) View {
	i := s.CurrentStep
	if i < 0 || i >= len(c.steps) {
		return View{}
	}
	d := c.steps[i]
	v := d.Step.Render(s.Form, s.FieldErrors[d.ID])
	v.StepID = d.ID
	v.Title = d.Title
	v.Section = d.Section
	v.Index = i
	v.Total = len(c.steps)
	return v
}

// UpdateSection merges patch into its section.
func (c *Controller) UpdateSection(patch SectionPatch) (State, error) {
	c.mu.Lock()
	if err := c.writableLocked(); err != nil {
		c.mu.Unlock()
		return State{}, err
	}
	if patch == nil || patch.Section() == SectionCompletion {
		c.mu.Unlock()
		return State{}, ErrReadOnlySection
	}
	snap := c.applyLocked(UpdateSection{Patch: patch})
	c.mu.Unlock()
	c.notify(snap)
	return snap, nil
}

// GoToStep moves to target when allowed and is a silent no-op otherwise.
func (c *Controller) GoToStep(target int) (State, error) {
	c.mu.Lock()
	if err := c.navigableLocked(); err != nil {
		c.mu.Unlock()
		return State{}, err
	}
	snap := c.applyLocked(GoToStep{Target: target})
	c.mu.Unlock()
	c.notify(snap)
	return snap, nil
}

// ValidateStep runs the rules of step index and records its field errors.
func (c *Controller) ValidateStep(index int) (bool, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false, ErrClosed
	}
	if index < 0 || index >= len(c.steps) {
		c.mu.Unlock()
		return false, fmt.Errorf("step index %d out of range", index)
	}
	snap := c.applyLocked(ValidateStep{Index: index})
	_, failed := snap.FieldErrors[c.steps[index].ID]
	c.mu.Unlock()
	c.notify(snap)
	return !failed, nil
}

// Retreat moves one step back. It reports false at the first step and after
// a successful submission, when the wizard no longer moves.
func (c *Controller) Retreat() (State, bool, error) {
	c.mu.Lock()
	if err := c.navigableLocked(); err != nil {
		c.mu.Unlock()
		return State{}, false, err
	}
	if c.state.CurrentStep == 0 {
		snap := c.state.Clone()
		c.mu.Unlock()
		return snap, false, nil
	}
	prev := c.state.CurrentStep
	snap := c.applyLocked(GoToStep{Target: prev - 1})
	c.mu.Unlock()
	c.notify(snap)
	return snap, snap.CurrentStep != prev, nil
}

// Advance moves to the next step. Leaving the last data-entry step submits the
// form to the gateway; the wizard only reaches the terminal step on success.
func (c *Controller) Advance(ctx context.Context) (State, error) {
	c.mu.Lock()
	if err := c.navigableLocked(); err != nil {
		c.mu.Unlock()
		return State{}, err
	}
	next := c.state.CurrentStep + 1
	if next >= len(c.steps) {
		snap := c.state.Clone()
		c.mu.Unlock()
		return snap, nil
	}
	if !c.steps[next].Terminal {
		snap := c.applyLocked(GoToStep{Target: next})
		c.mu.Unlock()
		c.notify(snap)
		return snap, nil
	}
	return c.submitLocked(ctx)
}

// submitLocked is entered with c.mu held and returns with it released.
func (c *Controller) submitLocked(ctx context.Context) (State, error) {
	if !c.requiredStepsValidLocked() {
		snap := c.state.Clone()
		c.mu.Unlock()
		c.notify(snap)
		return snap, nil
	}

	req := SubmissionRequest{
		IdempotencyKey: c.key,
		BasicInfo:      c.state.Form.BasicInfo,
		LineSetup:      c.state.Form.LineSetup,
		GoogleSetup:    c.state.Form.GoogleSetup,
		AISetup:        c.state.Form.AISetup,
	}
	submitCtx, cancel := context.WithTimeout(ctx, c.timeout)
	c.cancelSubmit = cancel
	snap := c.applyLocked(SubmitStart{})
	c.mu.Unlock()
	c.notify(snap)

	c.log.Info("Submitting store registration", map[string]interface{}{
		"store_name": req.BasicInfo.Name,
	})
	res, err := c.callGateway(submitCtx, req)
	cancel()

	c.mu.Lock()
	c.cancelSubmit = nil
	if c.closed {
		c.mu.Unlock()
		if err == nil && res.Success {
			c.log.Warn("Store created after submission was abandoned", map[string]interface{}{
				"store_id":        res.StoreID,
				"idempotency_key": c.key,
			})
		}
		return State{}, ErrClosed
	}

	storeID, message := normalizeResult(res, err)
	if message == "" {
		snap = c.applyLocked(SubmitSuccess{StoreID: storeID})
		c.log.Info("Store registration succeeded", map[string]interface{}{
			"store_id": storeID,
		})
	} else {
		snap = c.applyLocked(SubmitFailure{Message: message})
		if err != nil {
			c.log.Error("Store registration request failed", err, nil)
		} else {
			c.log.Warn("Store registration rejected", map[string]interface{}{
				"error": res.Error,
			})
		}
	}
	c.mu.Unlock()
	c.notify(snap)
	return snap, nil
}

type gatewayOutcome struct {
	res SubmissionResult
	err error
}

// callGateway returns when the gateway answers or ctx ends, whichever comes
// first. A gateway that ignores ctx keeps running; its late result is only logged.
func (c *Controller) callGateway(ctx context.Context, req SubmissionRequest) (SubmissionResult, error) {
	if c.gateway == nil {
		return SubmissionResult{}, fmt.Errorf("no store gateway configured")
	}
	done := make(chan gatewayOutcome, 1)
	go func() {
		var out gatewayOutcome
		defer func() {
			if r := recover(); r != nil {
				out = gatewayOutcome{err: fmt.Errorf("gateway panic: %v", r)}
			}
			done <- out
		}()
		out.res, out.err = c.gateway.CreateStore(ctx, req)
	}()

	select {
	case out := <-done:
		return out.res, out.err
	case <-ctx.Done():
		go c.logLateResult(done)
		return SubmissionResult{}, fmt.Errorf("store gateway: %w", ctx.Err())
	}
}

func (c *Controller) logLateResult(done <-chan gatewayOutcome) {
	out := <-done
	if out.err == nil && out.res.Success {
		c.log.Warn("Store created after submission was abandoned", map[string]interface{}{
			"store_id":        out.res.StoreID,
			"idempotency_key": c.key,
		})
	}
}

func (c *Controller) requiredStepsValidLocked() bool {
	ok := true
	for i, d := range c.steps {
		if d.Terminal {
			break
		}
		if !d.Required {
			continue
		}
		c.state = Reduce(c.steps, c.state, ValidateStep{Index: i})
		if _, failed := c.state.FieldErrors[d.ID]; failed {
			ok = false
		}
	}
	return ok
}

// BeginStepTask hands out a ticket for a step-local async action on step.
func (c *Controller) BeginStepTask(step StepID) (StepTask, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.writableLocked(); err != nil {
		return StepTask{}, err
	}
	if c.steps[c.state.CurrentStep].ID != step {
		return StepTask{}, ErrStaleStepTask
	}
	return StepTask{step: step, generation: c.generation}, nil
}

// CompleteStepTask applies the result of a step-local action. Results that
// arrive after the user navigated away, or that target another section, are dropped.
func (c *Controller) CompleteStepTask(task StepTask, patch SectionPatch) (State, error) {
	c.mu.Lock()
	if err := c.writableLocked(); err != nil {
		c.mu.Unlock()
		return State{}, err
	}
	current := c.steps[c.state.CurrentStep]
	if task.generation != c.generation || current.ID != task.step || patch == nil || patch.Section() != current.Section {
		c.mu.Unlock()
		c.log.Debug("Dropping stale step result", map[string]interface{}{
			"step": task.step,
		})
		return State{}, ErrStaleStepTask
	}
	snap := c.applyLocked(UpdateSection{Patch: patch})
	c.mu.Unlock()
	c.notify(snap)
	return snap, nil
}

// RegenerateWebhookURL derives the LINE webhook URL from the current store name.
func (c *Controller) RegenerateWebhookURL() (State, error) {
	c.mu.Lock()
	if err := c.writableLocked(); err != nil {
		c.mu.Unlock()
		return State{}, err
	}
	url, err := WebhookURL(c.webhookBase, c.state.Form.BasicInfo.Name)
	if err != nil {
		c.mu.Unlock()
		return State{}, err
	}
	snap := c.applyLocked(UpdateSection{Patch: webhookPatch{url: url}})
	c.mu.Unlock()
	c.notify(snap)
	return snap, nil
}

// Close discards the session. An in-flight submission is cancelled; if the
// backing store completes it anyway the result is logged and dropped.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	cancel := c.cancelSubmit
	submitting := c.state.Submission.Status == SubmissionSubmitting
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if submitting {
		c.log.Warn("Wizard closed during store registration", map[string]interface{}{
			"idempotency_key": c.key,
		})
	}
}

// applyLocked runs the reducer and the navigation side effects. c.mu must be held.
func (c *Controller) applyLocked(a Action) State {
	prev := c.state.CurrentStep
	c.state = Reduce(c.steps, c.state, a)
	if c.state.CurrentStep != prev {
		c.generation++
		c.enterStepLocked()
	}
	return c.state.Clone()
}

func (c *Controller) enterStepLocked() {
	d := c.steps[c.state.CurrentStep]
	if d.ID != StepLine || c.state.Form.LineSetup.WebhookURL != "" {
		return
	}
	url, err := WebhookURL(c.webhookBase, c.state.Form.BasicInfo.Name)
	if err != nil {
		return
	}
	c.state = Reduce(c.steps, c.state, UpdateSection{Patch: webhookPatch{url: url}})
}

func (c *Controller) writableLocked() error {
	if c.closed {
		return ErrClosed
	}
	switch c.state.Submission.Status {
	case SubmissionSubmitting:
		return ErrSubmissionInProgress
	case SubmissionSucceeded:
		return ErrWizardComplete
	}
	return nil
}

func (c *Controller) navigableLocked() error {
	if c.closed {
		return ErrClosed
	}
	if c.state.Submission.Status == SubmissionSubmitting {
		return ErrSubmissionInProgress
	}
	return nil
}

func (c *Controller) notify(s State) {
	if c.onChange != nil {
		c.onChange(s)
	}
}
