package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadConfigOverridesDefaults 验证YAML中出现的字段覆盖默认值，未出现的保持默认
func TestLoadConfigOverridesDefaults(t *testing.T) {
	content := `
api:
  base_url: "http://hr.example.com/"
  token: "abc"
  timeout_ms: 5000
dictionary:
  cache: redis
  ttl_seconds: 30
screening:
  workers: 8
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644), "无法写入临时配置文件")

	cfg, err := LoadConfigFromFileOnly(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "http://hr.example.com", cfg.API.BaseURL, "末尾斜杠应被去掉")
	assert.Equal(t, "abc", cfg.API.Token)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout())
	assert.Equal(t, 1000*time.Second, cfg.API.UploadTimeout(), "上传超时应保持默认的1,000,000毫秒")
	assert.Equal(t, []int{DefaultSuccessCode}, cfg.API.SuccessCodes)
	assert.Equal(t, "redis", cfg.Dictionary.Cache)
	assert.Equal(t, 30*time.Second, cfg.Dictionary.TTL())
	assert.Equal(t, "/api/init/dictionary/", cfg.Dictionary.Path)
	assert.Equal(t, 8, cfg.Screening.Workers)
	assert.Equal(t, "JWT", cfg.API.TokenPrefix)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("api:\n  base_url: http://file\n"), 0644))

	t.Setenv("HRMS_API_BASE_URL", "http://env/")
	t.Setenv("HRMS_API_TOKEN", "env-token")

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, "http://env", cfg.API.BaseURL)
	assert.Equal(t, "env-token", cfg.API.Token)

	// LoadConfigFromFileOnly 不读取环境变量
	fileOnly, err := LoadConfigFromFileOnly(configPath)
	require.NoError(t, err)
	assert.Equal(t, "http://file", fileOnly.API.BaseURL)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfigFromFileOnly(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)

	_, err = LoadConfigFromFileOnly("")
	assert.Error(t, err)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("api: [unclosed"), 0644))

	_, err := LoadConfigFromFileOnly(configPath)
	assert.Error(t, err)
}

func TestTimeoutFallbacks(t *testing.T) {
	var api APIConfig
	assert.Equal(t, 30*time.Second, api.Timeout())
	assert.Equal(t, time.Duration(DefaultUploadTimeoutMS)*time.Millisecond, api.UploadTimeout())

	var dict DictionaryConfig
	assert.Equal(t, 10*time.Minute, dict.TTL())
}

func TestCreateSampleConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.yaml")
	require.NoError(t, CreateSampleConfig(path))

	cfg, err := LoadConfigFromFileOnly(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().API.BaseURL, cfg.API.BaseURL)

	// 已存在时不覆盖
	assert.Error(t, CreateSampleConfig(path))
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 5*time.Second, GetDuration("", 5*time.Second))
	assert.Equal(t, 2*time.Minute, GetDuration("2m", 5*time.Second))
	assert.Equal(t, 5*time.Second, GetDuration("bogus", 5*time.Second))
}
