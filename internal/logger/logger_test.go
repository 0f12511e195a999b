package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Out: &buf})
	t.Cleanup(func() { Init(Config{Level: "info", Out: &bytes.Buffer{}}) })

	l := Named("request")
	l.Debug().Str("path", "/api/hrms/employee/").Msg("发送请求")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "request", entry["component"])
	assert.Equal(t, "/api/hrms/employee/", entry["path"])
}

func TestInitInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "loud", Format: "json", Out: &buf})
	t.Cleanup(func() { Init(Config{Level: "info", Out: &bytes.Buffer{}}) })

	assert.Equal(t, zerolog.InfoLevel, Logger.GetLevel())
	Debug().Msg("不应输出")
	assert.Empty(t, buf.String())
}

func TestWithContext(t *testing.T) {
	Init(Config{Level: "info", Out: &bytes.Buffer{}})
	ctx := WithContext(context.Background())
	assert.NotNil(t, Ctx(ctx))
}
