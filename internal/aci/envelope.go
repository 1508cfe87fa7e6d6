package aci

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/querygate/internal/domain"
)

// Unwrap checks an <autnresponse> envelope and returns its <responsedata>.
// An ERROR response becomes a *domain.BackendError.
func Unwrap(action string, root *Node) (*Node, error) {
	if root == nil || !strings.EqualFold(root.Name, "autnresponse") {
		return nil, fmt.Errorf("missing autnresponse envelope: %w", domain.ErrMalformedResponse)
	}
	data := root.Child("responsedata")

	switch status := strings.ToUpper(root.ChildText("response")); status {
	case ResponseSuccess:
		if data == nil {
			return nil, fmt.Errorf("missing responsedata: %w", domain.ErrMalformedResponse)
		}
		return data, nil
	case ResponseError:
		e := data.Child("error")
		if e == nil {
			return nil, &domain.BackendError{Action: action, ErrorString: "unknown error"}
		}
		code := e.ChildText("errorcode")
		if code == "" {
			code = e.ChildText("errorid")
		}
		return nil, &domain.BackendError{
			Action:      action,
			Code:        code,
			ErrorString: e.ChildText("errorstring"),
			Description: e.ChildText("errordescription"),
		}
	default:
		return nil, fmt.Errorf("unexpected response status %q: %w", status, domain.ErrMalformedResponse)
	}
}
