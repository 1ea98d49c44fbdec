package event

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/pkg/domain/model"
)

func TestLogDispatcher(t *testing.T) {
	logger, hook := test.NewNullLogger()
	dispatcher := NewLogDispatcher(logger)

	require.NoError(t, dispatcher.Session("s-1").Dispatch(model.OrderPlaced{OrderID: "ORD-1", FinalTotal: 1599, Items: 1}))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, log.InfoLevel, entry.Level)
	assert.Equal(t, "OrderPlaced", entry.Data["type"])
	assert.Equal(t, "s-1", entry.Data["session"])
	assert.Equal(t, model.OrderPlaced{OrderID: "ORD-1", FinalTotal: 1599, Items: 1}, entry.Data["event"])
}
