package settings

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/legion-tools/LegionManager/system/display"
	"github.com/legion-tools/LegionManager/system/godmode"
	"github.com/legion-tools/LegionManager/system/powermode"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configName = "legion"
	configType = "toml"
	envPrefix  = "LEGION"

	DefaultRPCAddress   = "127.0.0.1:9963"
	DefaultPollInterval = time.Second * 2
)

const (
	keyAllowAllOnBattery  = "power_mode.allow_all_on_battery"
	keyAutoRefreshRate    = "refresh_rate.auto"
	keyRefreshRateAC      = "refresh_rate.on_ac"
	keyRefreshRateBattery = "refresh_rate.on_battery"
	keyPlanPrefix         = "power_plans."
	keySupportsGodMode    = "machine.supports_god_mode"
	keyQuietToPerfBug     = "machine.quiet_to_performance_bug"
	keyGodModeExitBug     = "machine.god_mode_exit_bug"
	keyCPUFanCurve        = "god_mode.cpu_fan_curve"
	keyGPUFanCurve        = "god_mode.gpu_fan_curve"
	keyRPCAddress         = "rpc.address"
	keyHistoryPath        = "history.path"
	keyPollInterval       = "power_source.poll_interval"
	keyLogLevel           = "log.level"
	keyLogFile            = "log.file"
	keyDryRun             = "dry_run"
	flagConfig            = "config"
)

var defaultPlans = map[powermode.Mode]string{
	powermode.Quiet:       "Power saver",
	powermode.Balance:     "Balanced",
	powermode.Performance: "High performance",
	powermode.Extreme:     "High performance",
	powermode.GodMode:     "High performance",
}

// flag name -> config key
var flagKeys = map[string]string{
	"dry-run":       keyDryRun,
	"log-level":     keyLogLevel,
	"log-file":      keyLogFile,
	"rpc-address":   keyRPCAddress,
	"history-path":  keyHistoryPath,
	"poll-interval": keyPollInterval,
}

// Settings is an immutable snapshot of the configuration
type Settings struct {
	AllowAllPowerModesOnBattery bool

	AutoRefreshRate      bool
	RefreshRateOnAC      display.RefreshRate
	RefreshRateOnBattery display.RefreshRate

	PowerPlans map[powermode.Mode]string
	Machine    powermode.Capabilities
	Curves     godmode.Curves

	RPCAddress   string
	HistoryPath  string
	PollInterval time.Duration
	LogLevel     string
	LogFile      string
	DryRun       bool
}

// Flags returns the command line flags of the daemon. They take precedence
// over the environment and the configuration file.
func Flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String(flagConfig, "", "path to the configuration file")
	fs.Bool("dry-run", false, "simulate the hardware instead of calling into the firmware")
	fs.String("log-level", "info", "one of debug, info, warn, error")
	fs.String("log-file", defaultLogFile(), "log to this file, empty logs to stdout")
	fs.String("rpc-address", DefaultRPCAddress, "listen address of the control service")
	fs.String("history-path", "", "sqlite journal of power mode changes, empty disables it")
	fs.Duration("poll-interval", DefaultPollInterval, "power source polling interval")
	return fs
}

// DefaultDir is where the configuration file is looked up
func DefaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, "LegionManager")
}

func defaultLogFile() string {
	return filepath.Join(DefaultDir(), "legiond.log")
}

// Store loads the configuration and keeps the latest valid snapshot
type Store struct {
	mu      sync.RWMutex
	v       *viper.Viper
	current Settings
	logger  zerolog.Logger
}

// Load reads the configuration. The flag set must already be parsed; a nil
// flag set uses the defaults.
func Load(fs *pflag.FlagSet, logger zerolog.Logger) (*Store, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigType(configType)

	explicit := ""
	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, errors.Wrapf(err, "settings: cannot bind flag %s", name)
				}
			}
		}
		if f := fs.Lookup(flagConfig); f != nil {
			explicit = f.Value.String()
		}
	}

	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(DefaultDir())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "settings: cannot read configuration file")
		}
		logger.Info().Msg("no configuration file found, using defaults")
	}

	s := &Store{
		v:      v,
		logger: logger,
	}
	current, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	s.current = current

	logger.Info().Str("file", v.ConfigFileUsed()).Msg("configuration loaded")

	return s, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyAllowAllOnBattery, false)
	v.SetDefault(keyAutoRefreshRate, false)
	v.SetDefault(keyRefreshRateAC, 0)
	v.SetDefault(keyRefreshRateBattery, 0)
	for m, name := range defaultPlans {
		v.SetDefault(keyPlanPrefix+m.String(), name)
	}
	v.SetDefault(keySupportsGodMode, false)
	v.SetDefault(keyQuietToPerfBug, false)
	v.SetDefault(keyGodModeExitBug, false)
	v.SetDefault(keyCPUFanCurve, "")
	v.SetDefault(keyGPUFanCurve, "")
	v.SetDefault(keyRPCAddress, DefaultRPCAddress)
	v.SetDefault(keyHistoryPath, "")
	v.SetDefault(keyPollInterval, DefaultPollInterval)
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogFile, defaultLogFile())
	v.SetDefault(keyDryRun, false)
}

// snapshot must be called with mu held, or before the Store is shared
func (s *Store) snapshot() (Settings, error) {
	v := s.v

	plans := make(map[powermode.Mode]string, len(defaultPlans))
	for m := range defaultPlans {
		plans[m] = v.GetString(keyPlanPrefix + m.String())
	}

	out := Settings{
		AllowAllPowerModesOnBattery: v.GetBool(keyAllowAllOnBattery),
		AutoRefreshRate:             v.GetBool(keyAutoRefreshRate),
		RefreshRateOnAC:             display.RefreshRate(v.GetInt(keyRefreshRateAC)),
		RefreshRateOnBattery:        display.RefreshRate(v.GetInt(keyRefreshRateBattery)),
		PowerPlans:                  plans,
		Machine: powermode.Capabilities{
			SupportsGodMode:                   v.GetBool(keySupportsGodMode),
			HasQuietToPerformanceSwitchingBug: v.GetBool(keyQuietToPerfBug),
			HasGodModeExitBug:                 v.GetBool(keyGodModeExitBug),
		},
		Curves: godmode.Curves{
			CPU: v.GetString(keyCPUFanCurve),
			GPU: v.GetString(keyGPUFanCurve),
		},
		RPCAddress:   v.GetString(keyRPCAddress),
		HistoryPath:  v.GetString(keyHistoryPath),
		PollInterval: v.GetDuration(keyPollInterval),
		LogLevel:     v.GetString(keyLogLevel),
		LogFile:      v.GetString(keyLogFile),
		DryRun:       v.GetBool(keyDryRun),
	}

	if out.RefreshRateOnAC < 0 || out.RefreshRateOnBattery < 0 {
		return Settings{}, errors.New("settings: refresh rates cannot be negative")
	}
	if out.PollInterval <= 0 {
		return Settings{}, errors.Errorf("settings: invalid %s %s", keyPollInterval, out.PollInterval)
	}
	if _, err := godmode.NewFanTable(out.Curves.CPU); err != nil {
		return Settings{}, errors.Wrapf(err, "settings: invalid %s", keyCPUFanCurve)
	}
	if _, err := godmode.NewFanTable(out.Curves.GPU); err != nil {
		return Settings{}, errors.Wrapf(err, "settings: invalid %s", keyGPUFanCurve)
	}

	return out, nil
}

// Reload re-reads the configuration file. An invalid file leaves the current
// snapshot in place.
func (s *Store) Reload() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.v.ConfigFileUsed() != "" {
		if err := s.v.ReadInConfig(); err != nil {
			return s.current, errors.Wrap(err, "settings: cannot read configuration file")
		}
	}
	next, err := s.snapshot()
	if err != nil {
		return s.current, err
	}
	s.current = next
	return next, nil
}

// ConfigFile returns the path of the configuration file in use, if any
func (s *Store) ConfigFile() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.v.ConfigFileUsed()
}

// Get returns the current snapshot
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current
}

func (s *Store) AllowAllPowerModesOnBattery() bool {
	return s.Get().AllowAllPowerModesOnBattery
}

func (s *Store) AutoRefreshRate() bool {
	return s.Get().AutoRefreshRate
}

func (s *Store) RefreshRateOnAC() display.RefreshRate {
	return s.Get().RefreshRateOnAC
}

func (s *Store) RefreshRateOnBattery() display.RefreshRate {
	return s.Get().RefreshRateOnBattery
}

// PowerPlans returns a copy of the mode to power plan mapping
func (s *Store) PowerPlans() map[powermode.Mode]string {
	plans := s.Get().PowerPlans
	out := make(map[powermode.Mode]string, len(plans))
	for m, name := range plans {
		out[m] = name
	}
	return out
}

func (s *Store) Machine() powermode.Capabilities {
	return s.Get().Machine
}

func (s *Store) Curves() godmode.Curves {
	return s.Get().Curves
}

var (
	_ powermode.BatteryPolicy = &Store{}
	_ display.Preferences     = &Store{}
)
