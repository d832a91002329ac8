package wizard

import (
	"fmt"
	"strings"
)

// SummaryLine is one labelled row of the setup summary.
type SummaryLine struct {
	Section string
	Label   string
	Value   string
}

// SummaryLines flattens the form into display rows. Secrets are masked.
func SummaryLines(form FormData) []SummaryLine {
	var storeID string
	if form.Completion.StoreID != nil {
		storeID = *form.Completion.StoreID
	}
	b, l, g, a := form.BasicInfo, form.LineSetup, form.GoogleSetup, form.AISetup

	lines := []SummaryLine{
		{"Store", "Store ID", storeID},
		{"Store", "Name", b.Name},
		{"Store", "Phone", b.Phone},
		{"Store", "Address", b.Address},
		{"Store", "Concept", b.Concept},
		{"Store", "Plan", string(b.Plan)},
	}
	for _, d := range Weekdays {
		h := b.OperatingHours.Day(d)
		value := fmt.Sprintf("%s - %s", h.Open, h.Close)
		if h.Closed {
			value = "closed"
		}
		lines = append(lines, SummaryLine{"Hours", dayLabel(d), value})
	}
	lines = append(lines,
		SummaryLine{"LINE", "Channel ID", l.ChannelID},
		SummaryLine{"LINE", "Channel secret", Mask(l.ChannelSecret)},
		SummaryLine{"LINE", "Access token", Mask(l.AccessToken)},
		SummaryLine{"LINE", "Webhook URL", l.WebhookURL},
		SummaryLine{"LINE", "Rich menu", onOff(l.RichMenuEnabled)},
		SummaryLine{"Google Calendar", "Calendar ID", g.CalendarID},
		SummaryLine{"Google Calendar", "Time zone", g.Timezone},
		SummaryLine{"Google Calendar", "Service account", g.ServiceAccountEmail},
		SummaryLine{"Google Calendar", "Auto-create events", onOff(g.AutoCreateEvents)},
		SummaryLine{"Google Calendar", "Sync existing events", onOff(g.SyncExistingEvents)},
		SummaryLine{"AI assistant", "Personality", string(a.Personality)},
		SummaryLine{"AI assistant", "Tone", string(a.Tone)},
		SummaryLine{"AI assistant", "Language", a.Language},
		SummaryLine{"AI assistant", "API key", apiKeyLabel(a)},
		SummaryLine{"AI assistant", "Auto reply", onOff(a.AutoReply)},
		SummaryLine{"AI assistant", "Learning", onOff(a.Learning)},
	)
	return lines
}

// Summary renders the human-readable setup summary offered for download.
func Summary(form FormData) string {
	var sb strings.Builder
	sb.WriteString("Store setup summary\n")
	section := ""
	for _, line := range SummaryLines(form) {
		if line.Section != section {
			section = line.Section
			fmt.Fprintf(&sb, "\n[%s]\n", section)
		}
		value := line.Value
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(&sb, "%s: %s\n", line.Label, value)
	}
	return sb.String()
}

// Mask keeps the last four characters of a secret.
func Mask(secret string) string {
	if secret == "" {
		return ""
	}
	runes := []rune(secret)
	if len(runes) <= 4 {
		return "****"
	}
	return "****" + string(runes[len(runes)-4:])
}

func apiKeyLabel(a AISetup) string {
	if a.UseCommonKey {
		return "shared"
	}
	return "custom " + Mask(a.CustomAPIKey)
}

func dayLabel(d Weekday) string {
	s := string(d)
	return strings.ToUpper(s[:1]) + s[1:]
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
