package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is where Load looks for the YAML settings file.
const DefaultConfigPath = "config/settings.yaml"

const (
	DefaultModelName     = "gpt-4o-mini"
	DefaultMaxTokens     = 2000
	DefaultMaxIterations = 5
)

// ErrMissingAPIKey is returned by Load when no model credential is configured.
var ErrMissingAPIKey = errors.New("OPENAI_API_KEY is not set")

// Settings holds all runtime configuration. It is resolved once at startup and
// passed down by value; nothing mutates it afterwards.
type Settings struct {
	OpenAIAPIKey          string `mapstructure:"openai_api_key"`
	OpenAIOrgID           string `mapstructure:"openai_org_id"`
	OpenAIBaseURL         string `mapstructure:"openai_base_url"`
	SerpAPIKey            string `mapstructure:"serpapi_api_key"`
	AzureOpenAIAPIKey     string `mapstructure:"azure_openai_api_key"`
	AzureOpenAIEndpoint   string `mapstructure:"azure_openai_endpoint"`
	AzureOpenAIDeployment string `mapstructure:"azure_openai_deployment"`
	CohereAPIKey          string `mapstructure:"cohere_api_key"`
	HuggingFaceAPIToken   string `mapstructure:"huggingface_api_token"`
	AnthropicAPIKey       string `mapstructure:"anthropic_api_key"`

	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`

	ChromaPersistDir string `mapstructure:"chroma_persist_dir"`

	ModelName        string  `mapstructure:"model_name"`
	ModelTemperature float64 `mapstructure:"model_temperature"`
	ModelMaxTokens   int     `mapstructure:"model_max_tokens"`

	AgentVerbose       bool `mapstructure:"agent_verbose"`
	AgentMaxIterations int  `mapstructure:"agent_max_iterations"`
}

// DefaultSettings returns the built-in defaults. The API key is left empty.
func DefaultSettings() Settings {
	return Settings{
		Env:                "development",
		LogLevel:           "INFO",
		ChromaPersistDir:   "./chroma_db",
		ModelName:          DefaultModelName,
		ModelTemperature:   0.0,
		ModelMaxTokens:     DefaultMaxTokens,
		AgentVerbose:       true,
		AgentMaxIterations: DefaultMaxIterations,
	}
}

// HasSearch reports whether the web-search credential is configured.
func (s Settings) HasSearch() bool {
	return strings.TrimSpace(s.SerpAPIKey) != ""
}

// Redacted returns a copy with every credential masked.
func (s Settings) Redacted() Settings {
	s.OpenAIAPIKey = mask(s.OpenAIAPIKey)
	s.SerpAPIKey = mask(s.SerpAPIKey)
	s.AzureOpenAIAPIKey = mask(s.AzureOpenAIAPIKey)
	s.CohereAPIKey = mask(s.CohereAPIKey)
	s.HuggingFaceAPIToken = mask(s.HuggingFaceAPIToken)
	s.AnthropicAPIKey = mask(s.AnthropicAPIKey)
	return s
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}

// Normalize sanitizes configuration values and applies defaults.
func Normalize(s Settings) Settings {
	v := reflect.ValueOf(&s).Elem()
	for i := 0; i < v.NumField(); i++ {
		if f := v.Field(i); f.Kind() == reflect.String {
			f.SetString(strings.TrimSpace(f.String()))
		}
	}

	if s.ModelName == "" {
		s.ModelName = DefaultModelName
	}
	if s.ModelMaxTokens <= 0 {
		s.ModelMaxTokens = DefaultMaxTokens
	}
	if s.AgentMaxIterations <= 0 {
		s.AgentMaxIterations = DefaultMaxIterations
	}
	return s
}

// ParseError reports a settings file that exists but cannot be decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Load resolves settings from defaults, the YAML file at path and the process
// environment, in increasing precedence.
func Load(path string) (Settings, error) {
	return LoadWithEnv(path, os.Environ())
}

// LoadWithEnv is Load with an explicit environment in os.Environ form.
func LoadWithEnv(path string, environ []string) (Settings, error) {
	v := viper.New()
	for key, val := range settingsMap(DefaultSettings()) {
		v.SetDefault(key, val)
	}

	fileValues, err := readFile(path)
	if err != nil {
		return Settings{}, err
	}
	if len(fileValues) > 0 {
		if err := v.MergeConfigMap(fileValues); err != nil {
			return Settings{}, &ParseError{Path: path, Err: err}
		}
	}

	for key, val := range envOverrides(environ) {
		v.Set(key, val)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	s = Normalize(s)

	if s.OpenAIAPIKey == "" {
		return Settings{}, ErrMissingAPIKey
	}
	return s, nil
}

// fileSettings mirrors the recognised sections of settings.yaml. Pointers
// distinguish "absent" from zero values so partial sections only override
// the keys they name.
type fileSettings struct {
	Model *struct {
		Name        *string  `yaml:"name"`
		Temperature *float64 `yaml:"temperature"`
		MaxTokens   *int     `yaml:"max_tokens"`
	} `yaml:"model"`
	Agent *struct {
		Verbose       *bool `yaml:"verbose"`
		MaxIterations *int  `yaml:"max_iterations"`
	} `yaml:"agent"`
}

// readFile returns flattened settings keys from path. A missing file yields
// no values and no error.
func readFile(path string) (map[string]any, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var fs fileSettings
	if err := yaml.Unmarshal(raw, &fs); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	out := map[string]any{}
	if m := fs.Model; m != nil {
		if m.Name != nil {
			out["model_name"] = *m.Name
		}
		if m.Temperature != nil {
			out["model_temperature"] = *m.Temperature
		}
		if m.MaxTokens != nil {
			out["model_max_tokens"] = *m.MaxTokens
		}
	}
	if a := fs.Agent; a != nil {
		if a.Verbose != nil {
			out["agent_verbose"] = *a.Verbose
		}
		if a.MaxIterations != nil {
			out["agent_max_iterations"] = *a.MaxIterations
		}
	}
	return out, nil
}

// envOverrides picks the environment entries naming a settings key,
// case-insensitively. An exact upper-case name wins over other spellings.
func envOverrides(environ []string) map[string]string {
	known := settingsMap(Settings{})
	out := map[string]string{}
	exact := map[string]bool{}
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := known[key]; !ok {
			continue
		}
		isExact := name == strings.ToUpper(key)
		if exact[key] && !isExact {
			continue
		}
		out[key] = value
		exact[key] = exact[key] || isExact
	}
	return out
}

// settingsMap flattens s into its mapstructure keys.
func settingsMap(s Settings) map[string]any {
	v := reflect.ValueOf(s)
	t := v.Type()
	out := make(map[string]any, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		key := t.Field(i).Tag.Get("mapstructure")
		if key == "" || key == "-" {
			continue
		}
		out[key] = v.Field(i).Interface()
	}
	return out
}

// AsMap returns the settings keyed by their configuration names.
func (s Settings) AsMap() map[string]any {
	return settingsMap(s)
}
