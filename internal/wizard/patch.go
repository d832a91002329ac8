package wizard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// DecodePatch turns a wire JSON object into the patch variant of the named section.
// Unknown fields are rejected so a typo never silently drops an edit.
func DecodePatch(section SectionKey, raw []byte) (SectionPatch, error) {
	switch section {
	case SectionBasicInfo:
		var p BasicInfoPatch
		if err := decodeStrict(raw, &p); err != nil {
			return nil, err
		}
		if err := p.validate(); err != nil {
			return nil, err
		}
		return p, nil
	case SectionLineSetup:
		var p LineSetupPatch
		if err := decodeStrict(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case SectionGoogleSetup:
		var p GoogleSetupPatch
		if err := decodeStrict(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case SectionAISetup:
		var p AISetupPatch
		if err := decodeStrict(raw, &p); err != nil {
			return nil, err
		}
		if err := p.validate(); err != nil {
			return nil, err
		}
		return p, nil
	case SectionCompletion:
		return nil, ErrReadOnlySection
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSection, section)
}

func decodeStrict(raw []byte, dst interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("%w: trailing data after patch object", ErrInvalidPatch)
	}
	return nil
}
