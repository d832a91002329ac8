package wizard

// FieldKind tells the dashboard which input widget to draw.
type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldTextArea FieldKind = "textarea"
	FieldSecret   FieldKind = "secret"
	FieldToggle   FieldKind = "toggle"
	FieldSelect   FieldKind = "select"
	FieldHours    FieldKind = "hours"
	FieldFile     FieldKind = "file"
	FieldLink     FieldKind = "link"
)

// FieldView is one rendered form control.
type FieldView struct {
	Name     string      `json:"name"`
	Label    string      `json:"label"`
	Kind     FieldKind   `json:"kind"`
	Value    interface{} `json:"value,omitempty"`
	Options  []string    `json:"options,omitempty"`
	Required bool        `json:"required,omitempty"`
	ReadOnly bool        `json:"readOnly,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// View is the rendered form fragment of one step. Edits go back as a patch of Section.
type View struct {
	StepID  StepID      `json:"stepId"`
	Title   string      `json:"title"`
	Section SectionKey  `json:"section"`
	Index   int         `json:"index"`
	Total   int         `json:"total"`
	Fields  []FieldView `json:"fields"`
}

type basicInfoStep struct{}
type lineSetupStep struct{}
type googleSetupStep struct{}
type aiSetupStep struct{}
type completionStep struct{}

func field(errs FieldErrors, name, label string, kind FieldKind, value interface{}) FieldView {
	return FieldView{Name: name, Label: label, Kind: kind, Value: value, Error: errs[name]}
}

func requiredField(errs FieldErrors, name, label string, kind FieldKind, value interface{}) FieldView {
	f := field(errs, name, label, kind, value)
	f.Required = true
	return f
}

func (basicInfoStep) Render(form FormData, errs FieldErrors) View {
	b := form.BasicInfo
	plan := field(errs, "plan", "Plan", FieldSelect, b.Plan)
	plan.Options = []string{string(PlanEntry), string(PlanStandard), string(PlanPro)}
	return View{
		StepID:  StepBasic,
		Section: SectionBasicInfo,
		Fields: []FieldView{
			requiredField(errs, "name", "Store name", FieldText, b.Name),
			requiredField(errs, "phone", "Phone number", FieldText, b.Phone),
			requiredField(errs, "address", "Address", FieldText, b.Address),
			field(errs, "concept", "Concept", FieldTextArea, b.Concept),
			field(errs, "operatingHours", "Operating hours", FieldHours, b.OperatingHours),
			plan,
		},
	}
}

func (lineSetupStep) Render(form FormData, errs FieldErrors) View {
	l := form.LineSetup
	webhook := field(errs, "webhookUrl", "Webhook URL", FieldLink, l.WebhookURL)
	webhook.ReadOnly = true
	return View{
		StepID:  StepLine,
		Section: SectionLineSetup,
		Fields: []FieldView{
			requiredField(errs, "channelId", "Channel ID", FieldText, l.ChannelID),
			requiredField(errs, "channelSecret", "Channel secret", FieldSecret, l.ChannelSecret),
			requiredField(errs, "accessToken", "Channel access token", FieldSecret, l.AccessToken),
			webhook,
			field(errs, "richMenuEnabled", "Provision rich menu", FieldToggle, l.RichMenuEnabled),
		},
	}
}

func (googleSetupStep) Render(form FormData, errs FieldErrors) View {
	g := form.GoogleSetup
	return View{
		StepID:  StepGoogle,
		Section: SectionGoogleSetup,
		Fields: []FieldView{
			field(errs, "calendarId", "Calendar ID", FieldText, g.CalendarID),
			field(errs, "timezone", "Time zone", FieldText, g.Timezone),
			field(errs, "credentialFile", "Service account key file", FieldFile, nil),
			field(errs, "serviceAccountEmail", "Service account email", FieldText, g.ServiceAccountEmail),
			field(errs, "privateKey", "Private key", FieldSecret, g.PrivateKey),
			field(errs, "autoCreateEvents", "Create events for new reservations", FieldToggle, g.AutoCreateEvents),
			field(errs, "syncExistingEvents", "Sync existing events", FieldToggle, g.SyncExistingEvents),
		},
	}
}

func (aiSetupStep) Render(form FormData, errs FieldErrors) View {
	a := form.AISetup
	personality := field(errs, "personality", "Personality", FieldSelect, a.Personality)
	personality.Options = []string{
		string(PersonalityFriendly), string(PersonalityProfessional),
		string(PersonalityCasual), string(PersonalityElegant),
	}
	tone := field(errs, "tone", "Tone", FieldSelect, a.Tone)
	tone.Options = []string{string(TonePolite), string(ToneStandard), string(ToneFrank)}

	fields := []FieldView{
		personality,
		tone,
		field(errs, "language", "Language", FieldText, a.Language),
		field(errs, "customInstructions", "Custom instructions", FieldTextArea, a.CustomInstructions),
		field(errs, "useCommonKey", "Use the shared API key", FieldToggle, a.UseCommonKey),
	}
	if !a.UseCommonKey {
		fields = append(fields, requiredField(errs, "customApiKey", "API key", FieldSecret, a.CustomAPIKey))
	}
	fields = append(fields,
		field(errs, "autoReply", "Reply automatically", FieldToggle, a.AutoReply),
		field(errs, "learning", "Learn from conversations", FieldToggle, a.Learning),
	)
	return View{StepID: StepAI, Section: SectionAISetup, Fields: fields}
}

func (completionStep) Render(form FormData, _ FieldErrors) View {
	var storeID string
	if form.Completion.StoreID != nil {
		storeID = *form.Completion.StoreID
	}
	fields := []FieldView{
		{Name: "storeId", Label: "Store ID", Kind: FieldText, Value: storeID, ReadOnly: true},
		{Name: "webhookUrl", Label: "LINE webhook URL", Kind: FieldLink, Value: form.LineSetup.WebhookURL, ReadOnly: true},
		{Name: "setupComplete", Label: "Setup complete", Kind: FieldToggle, Value: form.Completion.SetupComplete, ReadOnly: true},
	}
	return View{StepID: StepCompletion, Section: SectionCompletion, Fields: fields}
}
