package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")

	s, err := LoadWithEnv(path, []string{"OPENAI_API_KEY=sk-test"})
	require.NoError(t, err)

	assert.Equal(t, "sk-test", s.OpenAIAPIKey)
	assert.Equal(t, DefaultModelName, s.ModelName)
	assert.Equal(t, 0.0, s.ModelTemperature)
	assert.Equal(t, DefaultMaxTokens, s.ModelMaxTokens)
	assert.True(t, s.AgentVerbose)
	assert.Equal(t, DefaultMaxIterations, s.AgentMaxIterations)
	assert.Equal(t, "development", s.Env)
	assert.Equal(t, "INFO", s.LogLevel)
	assert.Equal(t, "./chroma_db", s.ChromaPersistDir)
	assert.False(t, s.HasSearch())
}

func TestLoadMissingAPIKeyIsFatal(t *testing.T) {
	_, err := LoadWithEnv("", []string{"SERPAPI_API_KEY=serp"})
	require.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = LoadWithEnv("", []string{"OPENAI_API_KEY=   "})
	require.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeSettings(t, `
model:
  name: gpt-4o
  temperature: 0.3
  max_tokens: 512
agent:
  verbose: false
  max_iterations: 3
logging:
  ignored: true
`)

	s, err := LoadWithEnv(path, []string{"OPENAI_API_KEY=sk-test"})
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", s.ModelName)
	assert.Equal(t, 0.3, s.ModelTemperature)
	assert.Equal(t, 512, s.ModelMaxTokens)
	assert.False(t, s.AgentVerbose)
	assert.Equal(t, 3, s.AgentMaxIterations)
}

func TestLoadPartialSectionKeepsOtherDefaults(t *testing.T) {
	path := writeSettings(t, "model:\n  temperature: 0.9\n")

	s, err := LoadWithEnv(path, []string{"OPENAI_API_KEY=sk-test"})
	require.NoError(t, err)

	assert.Equal(t, 0.9, s.ModelTemperature)
	assert.Equal(t, DefaultModelName, s.ModelName)
	assert.Equal(t, DefaultMaxTokens, s.ModelMaxTokens)
	assert.True(t, s.AgentVerbose)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeSettings(t, "model:\n  name: from-file\n  temperature: 0.3\nagent:\n  verbose: true\n")

	s, err := LoadWithEnv(path, []string{
		"OPENAI_API_KEY=sk-test",
		"MODEL_NAME=from-env",
		"MODEL_TEMPERATURE=0.7",
		"AGENT_VERBOSE=false",
		"SERPAPI_API_KEY=serp",
		"LOG_LEVEL=debug",
	})
	require.NoError(t, err)

	assert.Equal(t, "from-env", s.ModelName)
	assert.Equal(t, 0.7, s.ModelTemperature)
	assert.False(t, s.AgentVerbose)
	assert.Equal(t, "serp", s.SerpAPIKey)
	assert.True(t, s.HasSearch())
	assert.Equal(t, "debug", s.LogLevel)
}

func TestLoadEnvNamesAreCaseInsensitive(t *testing.T) {
	s, err := LoadWithEnv("", []string{
		"openai_api_key=lower",
		"Serpapi_Api_Key=mixed",
	})
	require.NoError(t, err)
	assert.Equal(t, "lower", s.OpenAIAPIKey)
	assert.Equal(t, "mixed", s.SerpAPIKey)

	s, err = LoadWithEnv("", []string{
		"OPENAI_API_KEY=upper",
		"openai_api_key=lower",
	})
	require.NoError(t, err)
	assert.Equal(t, "upper", s.OpenAIAPIKey)
}

func TestLoadMalformedFileIsParseError(t *testing.T) {
	path := writeSettings(t, "model: [unclosed\n  name: x")

	_, err := LoadWithEnv(path, []string{"OPENAI_API_KEY=sk-test"})
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, path, perr.Path)
}

func TestLoadWrongTypeInFileIsParseError(t *testing.T) {
	path := writeSettings(t, "model:\n  temperature: hot\n")

	_, err := LoadWithEnv(path, []string{"OPENAI_API_KEY=sk-test"})
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
}

func TestLoadInvalidEnvValue(t *testing.T) {
	_, err := LoadWithEnv("", []string{
		"OPENAI_API_KEY=sk-test",
		"MODEL_TEMPERATURE=hot",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode settings")
}

func TestNormalize(t *testing.T) {
	s := Normalize(Settings{
		OpenAIAPIKey:       "  sk  ",
		ModelName:          " ",
		ModelMaxTokens:     -1,
		AgentMaxIterations: 0,
	})
	assert.Equal(t, "sk", s.OpenAIAPIKey)
	assert.Equal(t, DefaultModelName, s.ModelName)
	assert.Equal(t, DefaultMaxTokens, s.ModelMaxTokens)
	assert.Equal(t, DefaultMaxIterations, s.AgentMaxIterations)
}

func TestRedacted(t *testing.T) {
	s := Settings{OpenAIAPIKey: "sk-1234567890abcd", SerpAPIKey: "short", ModelName: "m"}
	r := s.Redacted()

	assert.Equal(t, "****abcd", r.OpenAIAPIKey)
	assert.Equal(t, "****", r.SerpAPIKey)
	assert.Equal(t, "", r.AnthropicAPIKey)
	assert.Equal(t, "m", r.ModelName)
	assert.Equal(t, "sk-1234567890abcd", s.OpenAIAPIKey)
}
