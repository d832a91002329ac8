package wizard

import (
	"fmt"
	"strings"
)

var personalityOpeners = map[Personality]string{
	PersonalityFriendly:     "Thanks so much for your message!",
	PersonalityProfessional: "Thank you for contacting us.",
	PersonalityCasual:       "Hey, thanks for reaching out!",
	PersonalityElegant:      "We are delighted to hear from you.",
}

var toneClosers = map[Tone]string{
	TonePolite:   "We sincerely look forward to welcoming you.",
	ToneStandard: "We look forward to seeing you.",
	ToneFrank:    "See you soon!",
}

// PreviewReply shows how the assistant would answer message with the chosen
// personality and tone. It is illustrative only and never stored.
func PreviewReply(ai AISetup, storeName, message string) string {
	opener, ok := personalityOpeners[ai.Personality]
	if !ok {
		opener = personalityOpeners[PersonalityFriendly]
	}
	closer, ok := toneClosers[ai.Tone]
	if !ok {
		closer = toneClosers[TonePolite]
	}

	name := strings.TrimSpace(storeName)
	if name == "" {
		name = "our restaurant"
	}

	var b strings.Builder
	b.WriteString(opener)
	b.WriteString(" ")
	if msg := strings.TrimSpace(message); msg != "" {
		fmt.Fprintf(&b, "Regarding \"%s\": ", msg)
	}
	fmt.Fprintf(&b, "the team at %s will take care of it right away.", name)
	b.WriteString(" ")
	b.WriteString(closer)
	return b.String()
}
