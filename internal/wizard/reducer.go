package wizard

// SubmissionStatus is the lifecycle of the single store-creation call.
type SubmissionStatus string

const (
	SubmissionIdle       SubmissionStatus = "idle"
	SubmissionSubmitting SubmissionStatus = "submitting"
	SubmissionSucceeded  SubmissionStatus = "succeeded"
	SubmissionFailed     SubmissionStatus = "failed"
)

type Submission struct {
	Status SubmissionStatus `json:"status"`
	Error  string           `json:"error,omitempty"`
}

// State is everything a wizard session holds. It is only changed through Reduce.
type State struct {
	CurrentStep int                    `json:"currentStep"`
	Form        FormData               `json:"formData"`
	FieldErrors map[StepID]FieldErrors `json:"fieldErrors"`
	Submission  Submission             `json:"submission"`
}

// NewState returns the state of a freshly opened wizard.
func NewState() State {
	return State{
		Form:        NewFormData(),
		FieldErrors: map[StepID]FieldErrors{},
		Submission:  Submission{Status: SubmissionIdle},
	}
}

// Clone returns a deep copy that shares nothing with s.
func (s State) Clone() State {
	out := s
	out.Form = s.Form.clone()
	out.FieldErrors = make(map[StepID]FieldErrors, len(s.FieldErrors))
	for id, errs := range s.FieldErrors {
		out.FieldErrors[id] = errs.clone()
	}
	return out
}

// locked reports whether navigation and edits are frozen.
func (s State) locked() bool {
	return s.Submission.Status == SubmissionSubmitting || s.Submission.Status == SubmissionSucceeded
}

// Action is a named state transition.
type Action interface {
	isAction()
}

type UpdateSection struct{ Patch SectionPatch }

type GoToStep struct{ Target int }

type ValidateStep struct{ Index int }

type SubmitStart struct{}

type SubmitSuccess struct{ StoreID string }

type SubmitFailure struct{ Message string }

func (UpdateSection) isAction() {}
func (GoToStep) isAction()      {}
func (ValidateStep) isAction()  {}
func (SubmitStart) isAction()   {}
func (SubmitSuccess) isAction() {}
func (SubmitFailure) isAction() {}

// Reduce applies a to s and returns the next state. s is never modified.
func Reduce(steps []Descriptor, s State, a Action) State {
	next := s.Clone()

	switch a := a.(type) {
	case UpdateSection:
		if next.locked() || a.Patch == nil || a.Patch.Section() == SectionCompletion {
			return next
		}
		a.Patch.apply(&next.Form)
		if next.Submission.Status == SubmissionFailed {
			next.Submission.Status = SubmissionIdle
		}

	case GoToStep:
		if next.locked() || a.Target < 0 || a.Target >= len(steps) {
			return next
		}
		switch {
		case a.Target <= next.CurrentStep:
			next.CurrentStep = a.Target
		case a.Target == next.CurrentStep+1:
			if steps[a.Target].Terminal && next.Form.Completion.StoreID == nil {
				return next
			}
			if !runValidation(steps, &next, next.CurrentStep) {
				return next
			}
			next.CurrentStep = a.Target
		}

	case ValidateStep:
		if a.Index >= 0 && a.Index < len(steps) {
			runValidation(steps, &next, a.Index)
		}

	case SubmitStart:
		if next.locked() {
			return next
		}
		next.Submission = Submission{Status: SubmissionSubmitting}

	case SubmitSuccess:
		if next.Submission.Status != SubmissionSubmitting {
			return next
		}
		id := a.StoreID
		next.Form.Completion = Completion{StoreID: &id, SetupComplete: true}
		next.Submission = Submission{Status: SubmissionSucceeded}
		for i, d := range steps {
			if d.Terminal {
				next.CurrentStep = i
				break
			}
		}

	case SubmitFailure:
		if next.Submission.Status != SubmissionSubmitting {
			return next
		}
		next.Submission = Submission{Status: SubmissionFailed, Error: a.Message}
	}

	return next
}

// runValidation repopulates the errors of step i and reports whether it passed.
// Optional steps always pass.
func runValidation(steps []Descriptor, s *State, i int) bool {
	d := steps[i]
	var errs FieldErrors
	if d.Required {
		errs = d.Step.Validate(s.Form)
	}
	if len(errs) == 0 {
		delete(s.FieldErrors, d.ID)
		return true
	}
	s.FieldErrors[d.ID] = errs
	return false
}
