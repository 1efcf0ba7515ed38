package relay

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/slack-go/slack"
)

// ErrInvalidSignature is wrapped when a request fails Slack signature checks.
var ErrInvalidSignature = errors.New("invalid slack signature")

// VerifySignature checks the X-Slack-Signature and X-Slack-Request-Timestamp
// headers of a request against body.
func VerifySignature(header http.Header, body []byte, signingSecret string) error {
	sv, err := slack.NewSecretsVerifier(header, signingSecret)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if _, err := sv.Write(body); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if err := sv.Ensure(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return nil
}
