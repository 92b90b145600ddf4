package logger_test

import (
	"testing"

	"github.com/nikolayk812/cartmanager/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	for _, mode := range []string{"production", "PROD", "development", ""} {
		t.Run(mode, func(t *testing.T) {
			log, err := logger.New(mode)
			require.NoError(t, err)
			assert.True(t, log.Core().Enabled(zap.InfoLevel))
		})
	}
}
