package wizard

import (
	"encoding/json"
	"mime"
)

// ServiceAccountCredential is the part of a Google service account key file the wizard keeps.
type ServiceAccountCredential struct {
	ClientEmail string
	PrivateKey  string
}

// ParseCredentialFile reads an uploaded service account key file. Only JSON
// objects with string client_email and private_key fields are accepted.
func ParseCredentialFile(contentType string, data []byte) (ServiceAccountCredential, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "application/json" {
		return ServiceAccountCredential{}, ErrUnsupportedFileType
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil || doc == nil {
		return ServiceAccountCredential{}, ErrMalformedCredential
	}

	email, _ := doc["client_email"].(string)
	key, _ := doc["private_key"].(string)
	if email == "" || key == "" {
		return ServiceAccountCredential{}, ErrMissingCredentialKeys
	}
	return ServiceAccountCredential{ClientEmail: email, PrivateKey: key}, nil
}

// Patch returns the google section update carrying the parsed credential.
func (c ServiceAccountCredential) Patch() GoogleSetupPatch {
	email, key := c.ClientEmail, c.PrivateKey
	return GoogleSetupPatch{ServiceAccountEmail: &email, PrivateKey: &key}
}

// LoadCredentialFile parses an uploaded key file and, when it is valid, applies
// it to the google section under task. A rejected file leaves the form untouched.
func (c *Controller) LoadCredentialFile(task StepTask, contentType string, data []byte) (State, ServiceAccountCredential, error) {
	cred, err := ParseCredentialFile(contentType, data)
	if err != nil {
		return State{}, ServiceAccountCredential{}, err
	}
	state, err := c.CompleteStepTask(task, cred.Patch())
	if err != nil {
		return State{}, ServiceAccountCredential{}, err
	}
	return state, cred, nil
}
