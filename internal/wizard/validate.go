package wizard

import "strings"

func required(errs FieldErrors, field, value, message string) {
	if strings.TrimSpace(value) == "" {
		errs[field] = message
	}
}

func nilIfEmpty(errs FieldErrors) FieldErrors {
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (basicInfoStep) Validate(form FormData) FieldErrors {
	b := form.BasicInfo
	errs := FieldErrors{}
	required(errs, "name", b.Name, "Store name is required")
	required(errs, "phone", b.Phone, "Phone number is required")
	required(errs, "address", b.Address, "Address is required")
	return nilIfEmpty(errs)
}

func (lineSetupStep) Validate(form FormData) FieldErrors {
	l := form.LineSetup
	errs := FieldErrors{}
	required(errs, "channelId", l.ChannelID, "Channel ID is required")
	required(errs, "channelSecret", l.ChannelSecret, "Channel secret is required")
	required(errs, "accessToken", l.AccessToken, "Access token is required")
	return nilIfEmpty(errs)
}

// Google Calendar is optional; connection problems surface through the test action only.
func (googleSetupStep) Validate(FormData) FieldErrors { return nil }

func (aiSetupStep) Validate(form FormData) FieldErrors {
	a := form.AISetup
	errs := FieldErrors{}
	if !a.UseCommonKey {
		required(errs, "customApiKey", a.CustomAPIKey, "API key is required when not using the shared key")
	}
	return nilIfEmpty(errs)
}

func (completionStep) Validate(FormData) FieldErrors { return nil }

// ValidateForm runs every required step against form and returns the failing
// steps only. The backing store uses it to re-check submitted payloads.
func ValidateForm(steps []Descriptor, form FormData) map[StepID]FieldErrors {
	out := map[StepID]FieldErrors{}
	for _, d := range steps {
		if !d.Required || d.Terminal {
			continue
		}
		if errs := d.Step.Validate(form); len(errs) > 0 {
			out[d.ID] = errs
		}
	}
	return out
}

// FormFromRequest rebuilds the editable sections of a form from a gateway payload.
func FormFromRequest(req SubmissionRequest) FormData {
	return FormData{
		BasicInfo:   req.BasicInfo,
		LineSetup:   req.LineSetup,
		GoogleSetup: req.GoogleSetup,
		AISetup:     req.AISetup,
	}
}
