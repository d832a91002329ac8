package wizard

// StepID identifies one screen of the onboarding wizard.
type StepID string

const (
	StepBasic      StepID = "basic"
	StepLine       StepID = "line"
	StepGoogle     StepID = "google"
	StepAI         StepID = "ai"
	StepCompletion StepID = "completion"
)

// FieldErrors maps a field's wire name to a human-readable message.
type FieldErrors map[string]string

func (e FieldErrors) clone() FieldErrors {
	if e == nil {
		return nil
	}
	out := make(FieldErrors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Step renders and validates one wizard screen.
type Step interface {
	Render(form FormData, errs FieldErrors) View
	Validate(form FormData) FieldErrors
}

// Descriptor is a static entry of the step list.
type Descriptor struct {
	ID       StepID
	Title    string
	Section  SectionKey
	Required bool
	Terminal bool
	Step     Step
}

// DefaultSteps is the fixed navigation order of the store onboarding wizard.
func DefaultSteps() []Descriptor {
	return []Descriptor{
		{ID: StepBasic, Title: "Store information", Section: SectionBasicInfo, Required: true, Step: basicInfoStep{}},
		{ID: StepLine, Title: "LINE integration", Section: SectionLineSetup, Required: true, Step: lineSetupStep{}},
		{ID: StepGoogle, Title: "Google Calendar", Section: SectionGoogleSetup, Step: googleSetupStep{}},
		{ID: StepAI, Title: "AI assistant", Section: SectionAISetup, Required: true, Step: aiSetupStep{}},
		{ID: StepCompletion, Title: "Setup complete", Section: SectionCompletion, Terminal: true, Step: completionStep{}},
	}
}
