package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSendWithoutDestinationDrops(t *testing.T) {
	// No destination means messaging is disabled: the message is dropped
	// before the producer is ever touched, so a nil producer must be safe.
	sink := NewKafkaSink(nil)

	err := sink.Send(context.Background(), "", "hello")
	assert.NoError(t, err)
}
