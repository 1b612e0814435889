// Package encoders holds the body encoders for queue messages.
package encoders

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// JSON encodes bodies with encoding/json.
type JSON struct{}

func (JSON) Encode(i any) ([]byte, error) {
	b, err := json.Marshal(i)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal %T", i)
	}
	return b, nil
}

func (JSON) ContentType() string {
	return "application/json"
}
