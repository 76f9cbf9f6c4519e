package conf

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/soerenschneider/stately/internal/state"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

const (
	DriverConsole = "console"
	DriverTicker  = "ticker"
	DriverScript  = "script"

	defaultMachine    = state.ReaderMachineName
	defaultTriggerKey = "p"
	defaultExitKey    = "q"
)

var (
	validate *validator.Validate = validator.New()
)

type Config struct {
	Machine string       `json:"machine" yaml:"machine" validate:"required,oneof=reader cycle"`
	Initial string       `json:"initial" yaml:"initial"`
	Driver  DriverConfig `json:"driver" yaml:"driver"`

	MetricsFile string `json:"metrics_file" yaml:"metrics_file" validate:"excluded_with=MetricsAddr,omitempty,filepath"`
	MetricsAddr string `json:"metrics_addr" yaml:"metrics_addr" validate:"excluded_with=MetricsFile,omitempty,hostname_port"`
}

func (c *Config) Validate() error {
	var errs error
	if err := validate.Struct(c); err != nil {
		errs = multierr.Append(errs, err)
	}

	if c.Initial != "" {
		if _, err := state.New(c.Machine, c.Initial); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("invalid initial state: %w", err))
		}
	}

	if c.Driver.Type == DriverConsole && c.Driver.TriggerKey == c.Driver.ExitKey {
		errs = multierr.Append(errs, fmt.Errorf("trigger key and exit key must differ, both are %q", c.Driver.TriggerKey))
	}

	return errs
}

// InitialState returns the configured initial state, falling back to the default
// state of the configured machine.
func (c *Config) InitialState() (state.State, error) {
	initial := c.Initial
	if initial == "" {
		var err error
		initial, err = state.DefaultInitial(c.Machine)
		if err != nil {
			return nil, err
		}
	}

	return state.New(c.Machine, initial)
}

type DriverConfig struct {
	Type       string        `json:"type" yaml:"type" validate:"required,oneof=console ticker script"`
	TriggerKey string        `json:"trigger_key" yaml:"trigger_key" validate:"required_if=Type console"`
	ExitKey    string        `json:"exit_key" yaml:"exit_key" validate:"required_if=Type console"`
	Interval   time.Duration `json:"interval" yaml:"interval" validate:"required_if=Type ticker,gte=0"`
	Count      int           `json:"count" yaml:"count" validate:"required_if=Type script,gte=0"`
}

func (conf *DriverConfig) UnmarshalYAML(node *yaml.Node) error {
	type Alias DriverConfig // Create an alias to avoid recursion during unmarshalling

	tmp := &Alias{
		Type:       DriverConsole,
		TriggerKey: defaultTriggerKey,
		ExitKey:    defaultExitKey,
	}

	if err := node.Decode(&tmp); err != nil {
		return err
	}

	*conf = DriverConfig(*tmp)
	return nil
}

func Default() *Config {
	return &Config{
		Machine: defaultMachine,
		Driver: DriverConfig{
			Type:       DriverConsole,
			TriggerKey: defaultTriggerKey,
			ExitKey:    defaultExitKey,
		},
	}
}

func ReadFromFile(filePath string) (*Config, error) {
	conf := Default()

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, conf); err != nil {
		return nil, err
	}
	return conf, nil
}
