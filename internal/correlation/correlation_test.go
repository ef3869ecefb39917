package correlation

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_Placeholder(t *testing.T) {
	assert.Equal(t, "no requestId", ID(context.Background()))
	assert.Equal(t, "no requestId", ID(WithID(context.Background(), "")))
}

func TestWithID(t *testing.T) {
	ctx := WithID(context.Background(), "abc-123")
	assert.Equal(t, "abc-123", ID(ctx))
}

func TestNewID_IsUUID(t *testing.T) {
	_, err := uuid.Parse(NewID())
	require.NoError(t, err)
	assert.NotEqual(t, NewID(), NewID())
}

func TestEntry_CarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	Entry(WithID(context.Background(), "req-7"), logger).Info("hello")

	assert.Contains(t, buf.String(), `"request_id":"req-7"`)
}
