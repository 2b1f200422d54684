package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Block, "payload"))

	msg, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, Block, msg.Type)
	assert.Equal(t, "payload", msg.Payload)
}

func TestReadEmptyPayload(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, ChainRequest, ""))

	msg, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, "", msg.Payload)
}

func TestReadShortHeaderReturnsErrClosed(t *testing.T) {
	buf := bytes.NewBuffer([]byte{1, 2})
	_, err := Read(buf)
	assert.Equal(t, ErrClosed, err)
}

func TestReadOversizedFrameRejected(t *testing.T) {
	header := []byte{byte(Block), 0xFF, 0xFF, 0xFF, 0xFF}
	buf := bytes.NewBuffer(header)
	_, err := Read(buf)
	assert.Error(t, err)
}
