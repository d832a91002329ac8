package wizard

import "fmt"

// SectionKey names one partition of the wizard form data.
type SectionKey string

const (
	SectionBasicInfo   SectionKey = "basicInfo"
	SectionLineSetup   SectionKey = "lineSetup"
	SectionGoogleSetup SectionKey = "googleSetup"
	SectionAISetup     SectionKey = "aiSetup"
	SectionCompletion  SectionKey = "completion"
)

// PlanTier is the subscription tier picked on the basic info step.
type PlanTier string

const (
	PlanEntry    PlanTier = "entry"
	PlanStandard PlanTier = "standard"
	PlanPro      PlanTier = "pro"
)

func (p PlanTier) Valid() bool {
	switch p {
	case PlanEntry, PlanStandard, PlanPro:
		return true
	}
	return false
}

// Personality selects the voice of the AI assistant.
type Personality string

const (
	PersonalityFriendly     Personality = "friendly"
	PersonalityProfessional Personality = "professional"
	PersonalityCasual       Personality = "casual"
	PersonalityElegant      Personality = "elegant"
)

func (p Personality) Valid() bool {
	switch p {
	case PersonalityFriendly, PersonalityProfessional, PersonalityCasual, PersonalityElegant:
		return true
	}
	return false
}

// Tone controls how formal the assistant's replies are.
type Tone string

const (
	TonePolite   Tone = "polite"
	ToneStandard Tone = "standard"
	ToneFrank    Tone = "frank"
)

func (t Tone) Valid() bool {
	switch t {
	case TonePolite, ToneStandard, ToneFrank:
		return true
	}
	return false
}

// Weekday keys of OperatingHours, in display order.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

type DayHours struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	Closed bool   `json:"closed"`
}

// OperatingHours always carries all seven days.
type OperatingHours struct {
	Monday    DayHours `json:"monday"`
	Tuesday   DayHours `json:"tuesday"`
	Wednesday DayHours `json:"wednesday"`
	Thursday  DayHours `json:"thursday"`
	Friday    DayHours `json:"friday"`
	Saturday  DayHours `json:"saturday"`
	Sunday    DayHours `json:"sunday"`
}

// Day returns a pointer to the hours of the given weekday, or nil for an unknown key.
func (h *OperatingHours) Day(d Weekday) *DayHours {
	switch d {
	case Monday:
		return &h.Monday
	case Tuesday:
		return &h.Tuesday
	case Wednesday:
		return &h.Wednesday
	case Thursday:
		return &h.Thursday
	case Friday:
		return &h.Friday
	case Saturday:
		return &h.Saturday
	case Sunday:
		return &h.Sunday
	}
	return nil
}

// ClosedDays lists the weekdays marked closed, in week order.
func (h OperatingHours) ClosedDays() []Weekday {
	var days []Weekday
	for _, d := range Weekdays {
		if h.Day(d).Closed {
			days = append(days, d)
		}
	}
	return days
}

func DefaultOperatingHours() OperatingHours {
	day := DayHours{Open: "11:00", Close: "22:00"}
	return OperatingHours{
		Monday:    day,
		Tuesday:   day,
		Wednesday: day,
		Thursday:  day,
		Friday:    day,
		Saturday:  day,
		Sunday:    day,
	}
}

type BasicInfo struct {
	Name           string         `json:"name"`
	Phone          string         `json:"phone"`
	Address        string         `json:"address"`
	Concept        string         `json:"concept"`
	OperatingHours OperatingHours `json:"operatingHours"`
	Plan           PlanTier       `json:"plan"`
}

type LineSetup struct {
	ChannelID       string `json:"channelId"`
	ChannelSecret   string `json:"channelSecret"`
	AccessToken     string `json:"accessToken"`
	WebhookURL      string `json:"webhookUrl"`
	RichMenuEnabled bool   `json:"richMenuEnabled"`
}

type GoogleSetup struct {
	CalendarID          string `json:"calendarId"`
	Timezone            string `json:"timezone"`
	ServiceAccountEmail string `json:"serviceAccountEmail"`
	PrivateKey          string `json:"privateKey"`
	AutoCreateEvents    bool   `json:"autoCreateEvents"`
	SyncExistingEvents  bool   `json:"syncExistingEvents"`
}

type AISetup struct {
	Personality        Personality `json:"personality"`
	Tone               Tone        `json:"tone"`
	Language           string      `json:"language"`
	CustomInstructions string      `json:"customInstructions"`
	UseCommonKey       bool        `json:"useCommonKey"`
	CustomAPIKey       string      `json:"customApiKey"`
	AutoReply          bool        `json:"autoReply"`
	Learning           bool        `json:"learning"`
}

// Completion is filled by a successful submission only.
type Completion struct {
	StoreID       *string `json:"storeId"`
	SetupComplete bool    `json:"setupComplete"`
}

// FormData is the aggregate wizard form, one field per section.
type FormData struct {
	BasicInfo   BasicInfo   `json:"basicInfo"`
	LineSetup   LineSetup   `json:"lineSetup"`
	GoogleSetup GoogleSetup `json:"googleSetup"`
	AISetup     AISetup     `json:"aiSetup"`
	Completion  Completion  `json:"completion"`
}

// NewFormData returns the form a freshly opened wizard starts with.
func NewFormData() FormData {
	return FormData{
		BasicInfo: BasicInfo{
			OperatingHours: DefaultOperatingHours(),
			Plan:           PlanStandard,
		},
		GoogleSetup: GoogleSetup{
			CalendarID: "primary",
			Timezone:   "Asia/Tokyo",
		},
		AISetup: AISetup{
			Personality:  PersonalityFriendly,
			Tone:         TonePolite,
			Language:     "ja",
			UseCommonKey: true,
			AutoReply:    true,
		},
	}
}

func (f FormData) clone() FormData {
	out := f
	if f.Completion.StoreID != nil {
		id := *f.Completion.StoreID
		out.Completion.StoreID = &id
	}
	return out
}

// SectionPatch is a partial update of exactly one section. Nil fields are left unchanged.
type SectionPatch interface {
	Section() SectionKey
	apply(f *FormData)
}

type BasicInfoPatch struct {
	Name           *string                   `json:"name,omitempty"`
	Phone          *string                   `json:"phone,omitempty"`
	Address        *string                   `json:"address,omitempty"`
	Concept        *string                   `json:"concept,omitempty"`
	OperatingHours map[Weekday]DayHoursPatch `json:"operatingHours,omitempty"`
	Plan           *PlanTier                 `json:"plan,omitempty"`
}

// DayHoursPatch edits one weekday; omitted fields keep their value.
type DayHoursPatch struct {
	Open   *string `json:"open,omitempty"`
	Close  *string `json:"close,omitempty"`
	Closed *bool   `json:"closed,omitempty"`
}

func (p DayHoursPatch) apply(h *DayHours) {
	setString(&h.Open, p.Open)
	setString(&h.Close, p.Close)
	setBool(&h.Closed, p.Closed)
}

func (BasicInfoPatch) Section() SectionKey { return SectionBasicInfo }

func (p BasicInfoPatch) apply(f *FormData) {
	b := &f.BasicInfo
	setString(&b.Name, p.Name)
	setString(&b.Phone, p.Phone)
	setString(&b.Address, p.Address)
	setString(&b.Concept, p.Concept)
	for day, hours := range p.OperatingHours {
		if slot := b.OperatingHours.Day(day); slot != nil {
			hours.apply(slot)
		}
	}
	if p.Plan != nil {
		b.Plan = *p.Plan
	}
}

func (p BasicInfoPatch) validate() error {
	for day := range p.OperatingHours {
		var h OperatingHours
		if h.Day(day) == nil {
			return fmt.Errorf("%w: unknown weekday %q", ErrInvalidPatch, day)
		}
	}
	if p.Plan != nil && !p.Plan.Valid() {
		return fmt.Errorf("%w: unknown plan %q", ErrInvalidPatch, *p.Plan)
	}
	return nil
}

// LineSetupPatch has no webhook field; the URL is derived from the store name.
type LineSetupPatch struct {
	ChannelID       *string `json:"channelId,omitempty"`
	ChannelSecret   *string `json:"channelSecret,omitempty"`
	AccessToken     *string `json:"accessToken,omitempty"`
	RichMenuEnabled *bool   `json:"richMenuEnabled,omitempty"`
}

func (LineSetupPatch) Section() SectionKey { return SectionLineSetup }

func (p LineSetupPatch) apply(f *FormData) {
	l := &f.LineSetup
	setString(&l.ChannelID, p.ChannelID)
	setString(&l.ChannelSecret, p.ChannelSecret)
	setString(&l.AccessToken, p.AccessToken)
	setBool(&l.RichMenuEnabled, p.RichMenuEnabled)
}

type webhookPatch struct {
	url string
}

func (webhookPatch) Section() SectionKey { return SectionLineSetup }

func (p webhookPatch) apply(f *FormData) { f.LineSetup.WebhookURL = p.url }

type GoogleSetupPatch struct {
	CalendarID          *string `json:"calendarId,omitempty"`
	Timezone            *string `json:"timezone,omitempty"`
	ServiceAccountEmail *string `json:"serviceAccountEmail,omitempty"`
	PrivateKey          *string `json:"privateKey,omitempty"`
	AutoCreateEvents    *bool   `json:"autoCreateEvents,omitempty"`
	SyncExistingEvents  *bool   `json:"syncExistingEvents,omitempty"`
}

func (GoogleSetupPatch) Section() SectionKey { return SectionGoogleSetup }

func (p GoogleSetupPatch) apply(f *FormData) {
	g := &f.GoogleSetup
	setString(&g.CalendarID, p.CalendarID)
	setString(&g.Timezone, p.Timezone)
	setString(&g.ServiceAccountEmail, p.ServiceAccountEmail)
	setString(&g.PrivateKey, p.PrivateKey)
	setBool(&g.AutoCreateEvents, p.AutoCreateEvents)
	setBool(&g.SyncExistingEvents, p.SyncExistingEvents)
}

type AISetupPatch struct {
	Personality        *Personality `json:"personality,omitempty"`
	Tone               *Tone        `json:"tone,omitempty"`
	Language           *string      `json:"language,omitempty"`
	CustomInstructions *string      `json:"customInstructions,omitempty"`
	UseCommonKey       *bool        `json:"useCommonKey,omitempty"`
	CustomAPIKey       *string      `json:"customApiKey,omitempty"`
	AutoReply          *bool        `json:"autoReply,omitempty"`
	Learning           *bool        `json:"learning,omitempty"`
}

func (AISetupPatch) Section() SectionKey { return SectionAISetup }

func (p AISetupPatch) apply(f *FormData) {
	a := &f.AISetup
	if p.Personality != nil {
		a.Personality = *p.Personality
	}
	if p.Tone != nil {
		a.Tone = *p.Tone
	}
	setString(&a.Language, p.Language)
	setString(&a.CustomInstructions, p.CustomInstructions)
	setBool(&a.UseCommonKey, p.UseCommonKey)
	setString(&a.CustomAPIKey, p.CustomAPIKey)
	setBool(&a.AutoReply, p.AutoReply)
	setBool(&a.Learning, p.Learning)
}

func (p AISetupPatch) validate() error {
	if p.Personality != nil && !p.Personality.Valid() {
		return fmt.Errorf("%w: unknown personality %q", ErrInvalidPatch, *p.Personality)
	}
	if p.Tone != nil && !p.Tone.Valid() {
		return fmt.Errorf("%w: unknown tone %q", ErrInvalidPatch, *p.Tone)
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
