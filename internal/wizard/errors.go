package wizard

import "errors"

var (
	ErrInvalidPatch          = errors.New("invalid section patch")
	ErrReadOnlySection       = errors.New("section is read-only")
	ErrUnknownSection        = errors.New("unknown section")
	ErrSubmissionInProgress  = errors.New("store registration is in progress")
	ErrWizardComplete        = errors.New("wizard is already complete")
	ErrClosed                = errors.New("wizard is closed")
	ErrStaleStepTask         = errors.New("step is no longer active")
	ErrStoreNameRequired     = errors.New("store name is required to derive the webhook URL")
	ErrUnsupportedFileType   = errors.New("credential file must be application/json")
	ErrMalformedCredential   = errors.New("credential file is not valid JSON")
	ErrMissingCredentialKeys = errors.New("credential file must contain client_email and private_key")
)
