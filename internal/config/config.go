package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

const (
	KeySkipUpdateCheck  = "skip-update-check"
	KeySkipVersionCheck = "skip-version-check" // Deprecated: use KeySkipUpdateCheck.
	KeyDebug            = "debug"

	KeyUpdateOwner     = "update.owner"
	KeyUpdateRepo      = "update.repo"
	KeyUpdateAPIURL    = "update.api-url"
	KeyUpdateTimeout   = "update.timeout"
	KeyUpdateUserAgent = "update.user-agent"

	KeyOutputFormat = "output.format"
	KeyOutputNotes  = "output.notes"
	KeyOutputWidth  = "output.width"
)

// Output formats accepted by KeyOutputFormat.
const (
	OutputRich  = "rich"
	OutputLight = "light"
	OutputPlain = "plain"
	OutputJSON  = "json"
)

const (
	// DefaultUpdateTimeout is the default HTTP timeout for an update check.
	DefaultUpdateTimeout = 5 * time.Second
	// DefaultOutputWidth is the wrap width for release notes.
	DefaultOutputWidth = 80

	appDirName = ".studio"
	envPrefix  = "STUDIO"
)

type initSettings struct {
	workingDir        string
	projectConfigPath string
	userConfigPath    string
}

// Option configures Initialize behaviour. Useful for tests to override paths.
type Option func(*initSettings)

// WithWorkingDir overrides the directory used for project config discovery.
func WithWorkingDir(dir string) Option {
	return func(cfg *initSettings) {
		cfg.workingDir = dir
	}
}

// WithProjectConfig explicitly sets the project config path instead of discovery.
func WithProjectConfig(path string) Option {
	return func(cfg *initSettings) {
		cfg.projectConfigPath = path
	}
}

// WithUserConfig overrides the default user config path.
func WithUserConfig(path string) Option {
	return func(cfg *initSettings) {
		cfg.userConfigPath = path
	}
}

var (
	configOnce sync.Once
	configMu   sync.RWMutex
	configInst *viper.Viper
	initErr    error
)

// Initialize loads configuration using the precedence:
// defaults < user config < project config < environment variables < overrides.
func Initialize(opts ...Option) error {
	configOnce.Do(func() {
		settings := initSettings{}
		for _, opt := range opts {
			opt(&settings)
		}
		initErr = configure(&settings)
	})
	return initErr
}

// ApplyOverrides injects values typically coming from CLI flags.
func ApplyOverrides(overrides map[string]any) error {
	if len(overrides) == 0 {
		return nil
	}
	if err := Initialize(); err != nil {
		return err
	}
	configMu.Lock()
	defer configMu.Unlock()
	if configInst == nil {
		return fmt.Errorf("configuration not initialized")
	}
	for k, v := range overrides {
		configInst.Set(k, v)
	}
	return nil
}

// GetString fetches a string configuration value, initializing on demand.
func GetString(key string) string {
	v, err := getViper()
	if err != nil {
		return ""
	}
	return v.GetString(key)
}

// GetBool fetches a bool configuration value, initializing on demand.
func GetBool(key string) bool {
	v, err := getViper()
	if err != nil {
		return false
	}
	return v.GetBool(key)
}

// GetInt fetches an integer configuration value, initializing on demand.
func GetInt(key string) int {
	v, err := getViper()
	if err != nil {
		return 0
	}
	return v.GetInt(key)
}

// GetDuration fetches a duration configuration value, initializing on demand.
func GetDuration(key string) time.Duration {
	v, err := getViper()
	if err != nil {
		return 0
	}
	return v.GetDuration(key)
}

// UpdateSettings groups the values the update checker is built from.
type UpdateSettings struct {
	Owner     string
	Repo      string
	APIURL    string
	UserAgent string
	Timeout   time.Duration
	Skip      bool
}

// Update returns the update checker settings after all layers are merged.
func Update() UpdateSettings {
	return UpdateSettings{
		Owner:     GetString(KeyUpdateOwner),
		Repo:      GetString(KeyUpdateRepo),
		APIURL:    GetString(KeyUpdateAPIURL),
		UserAgent: GetString(KeyUpdateUserAgent),
		Timeout:   GetDuration(KeyUpdateTimeout),
		Skip:      GetBool(KeySkipUpdateCheck),
	}
}

// OutputFormat returns the configured output format, falling back to rich
// for unknown values.
func OutputFormat() string {
	switch f := strings.ToLower(strings.TrimSpace(GetString(KeyOutputFormat))); f {
	case OutputRich, OutputLight, OutputPlain, OutputJSON:
		return f
	default:
		return OutputRich
	}
}

func configure(settings *initSettings) error {
	workingDir := strings.TrimSpace(settings.workingDir)
	if workingDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("determine working directory: %w", err)
		}
		workingDir = wd
	}

	userConfigPath := strings.TrimSpace(settings.userConfigPath)
	if userConfigPath == "" {
		path, err := defaultUserConfigPath()
		if err != nil {
			return err
		}
		userConfigPath = path
	}

	projectConfigPath := strings.TrimSpace(settings.projectConfigPath)
	if projectConfigPath == "" {
		path, err := findProjectConfig(workingDir)
		if err != nil {
			return err
		}
		projectConfigPath = path
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := mergeConfigFile(v, userConfigPath); err != nil {
		return fmt.Errorf("load user config: %w", err)
	}
	if err := mergeConfigFile(v, projectConfigPath); err != nil {
		return fmt.Errorf("load project config: %w", err)
	}
	applyLegacySkipConfig(v)
	if err := validate(v); err != nil {
		return err
	}

	configMu.Lock()
	defer configMu.Unlock()
	configInst = v
	return nil
}

func mergeConfigFile(v *viper.Viper, path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("config path %s is a directory", path)
	}
	//nolint:gosec // G304: Config loader intentionally reads user and project config files
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine user home: %w", err)
	}
	return filepath.Join(home, appDirName, "config.yaml"), nil
}

func findProjectConfig(startDir string) (string, error) {
	if strings.TrimSpace(startDir) == "" {
		return "", nil
	}
	dir := startDir
	for {
		candidate := filepath.Join(dir, appDirName, "config.yaml")
		info, err := os.Stat(candidate)
		if err == nil {
			if info.IsDir() {
				return "", fmt.Errorf("config path %s is a directory", candidate)
			}
			return candidate, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("stat %s: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeySkipUpdateCheck, false)
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyUpdateOwner, "Kiln-AI")
	v.SetDefault(KeyUpdateRepo, "Kiln")
	v.SetDefault(KeyUpdateAPIURL, "https://api.github.com")
	v.SetDefault(KeyUpdateUserAgent, "studio-update-checker")
	v.SetDefault(KeyUpdateTimeout, DefaultUpdateTimeout)
	v.SetDefault(KeyOutputFormat, OutputRich)
	v.SetDefault(KeyOutputNotes, false)
	v.SetDefault(KeyOutputWidth, DefaultOutputWidth)
}

// validate rejects values that would make the checker unusable.
func validate(v *viper.Viper) error {
	if strings.TrimSpace(v.GetString(KeyUpdateOwner)) == "" || strings.TrimSpace(v.GetString(KeyUpdateRepo)) == "" {
		return fmt.Errorf("%s and %s must not be empty", KeyUpdateOwner, KeyUpdateRepo)
	}
	if v.GetDuration(KeyUpdateTimeout) < 0 {
		return fmt.Errorf("%s must not be negative", KeyUpdateTimeout)
	}
	return nil
}

func getViper() (*viper.Viper, error) {
	if err := Initialize(); err != nil {
		return nil, err
	}
	configMu.RLock()
	defer configMu.RUnlock()
	if configInst == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}
	return configInst, nil
}

// reset clears package state for tests.
//
//nolint:unused // Used in config_test.go
func reset() {
	configMu.Lock()
	defer configMu.Unlock()
	configInst = nil
	initErr = nil
	configOnce = sync.Once{}
}

// ResetForTesting clears package state for tests in other packages.
// Returns a cleanup function that should be deferred.
func ResetForTesting(t interface{ TempDir() string }) func() {
	reset()
	tmp := t.TempDir()
	_ = Initialize(WithWorkingDir(tmp), WithUserConfig(filepath.Join(tmp, "user.yaml")))
	return reset
}

// applyLegacySkipConfig honours the old skip-version-check key when the new
// key was not set explicitly.
func applyLegacySkipConfig(v *viper.Viper) {
	if v == nil {
		return
	}
	if hasExplicitKey(v, KeySkipUpdateCheck) {
		return
	}
	if v.IsSet(KeySkipVersionCheck) && v.GetBool(KeySkipVersionCheck) {
		v.Set(KeySkipUpdateCheck, true)
	}
}

func hasExplicitKey(v *viper.Viper, key string) bool {
	if v.InConfig(key) {
		return true
	}
	_, ok := os.LookupEnv(envKey(key))
	return ok
}

func envKey(key string) string {
	replacer := strings.NewReplacer(".", "_", "-", "_")
	return strings.ToUpper(envPrefix) + "_" + strings.ToUpper(replacer.Replace(key))
}
