package conf

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/soerenschneider/stately/internal/state"
)

func TestConf_Validate(t *testing.T) {
	consoleDriver := DriverConfig{
		Type:       DriverConsole,
		TriggerKey: "p",
		ExitKey:    "q",
	}

	tests := []struct {
		name    string
		conf    Config
		wantErr bool
	}{
		{
			name:    "defaults",
			conf:    *Default(),
			wantErr: false,
		},
		{
			name: "cycle with initial state",
			conf: Config{
				Machine: "cycle",
				Initial: "b",
				Driver:  consoleDriver,
			},
			wantErr: false,
		},
		{
			name: "unknown machine",
			conf: Config{
				Machine: "jukebox",
				Driver:  consoleDriver,
			},
			wantErr: true,
		},
		{
			name: "initial state of other machine",
			conf: Config{
				Machine: "reader",
				Initial: "a",
				Driver:  consoleDriver,
			},
			wantErr: true,
		},
		{
			name: "same trigger and exit key",
			conf: Config{
				Machine: "reader",
				Driver: DriverConfig{
					Type:       DriverConsole,
					TriggerKey: "p",
					ExitKey:    "p",
				},
			},
			wantErr: true,
		},
		{
			name: "console without keys",
			conf: Config{
				Machine: "reader",
				Driver: DriverConfig{
					Type: DriverConsole,
				},
			},
			wantErr: true,
		},
		{
			name: "ticker",
			conf: Config{
				Machine: "cycle",
				Driver: DriverConfig{
					Type:     DriverTicker,
					Interval: time.Second,
					Count:    10,
				},
			},
			wantErr: false,
		},
		{
			name: "ticker without interval",
			conf: Config{
				Machine: "cycle",
				Driver: DriverConfig{
					Type: DriverTicker,
				},
			},
			wantErr: true,
		},
		{
			name: "script",
			conf: Config{
				Machine: "cycle",
				Driver: DriverConfig{
					Type:  DriverScript,
					Count: 3,
				},
			},
			wantErr: false,
		},
		{
			name: "script without count",
			conf: Config{
				Machine: "cycle",
				Driver: DriverConfig{
					Type: DriverScript,
				},
			},
			wantErr: true,
		},
		{
			name: "negative count",
			conf: Config{
				Machine: "cycle",
				Driver: DriverConfig{
					Type:     DriverTicker,
					Interval: time.Second,
					Count:    -1,
				},
			},
			wantErr: true,
		},
		{
			name: "unknown driver",
			conf: Config{
				Machine: "cycle",
				Driver: DriverConfig{
					Type: "keyboard",
				},
			},
			wantErr: true,
		},
		{
			name: "metrics addr and file",
			conf: Config{
				Machine:     "reader",
				Driver:      consoleDriver,
				MetricsAddr: "127.0.0.1:9224",
				MetricsFile: "/tmp/stately.prom",
			},
			wantErr: true,
		},
		{
			name: "metrics addr",
			conf: Config{
				Machine:     "reader",
				Driver:      consoleDriver,
				MetricsAddr: "127.0.0.1:9224",
			},
			wantErr: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.conf.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_InitialState(t *testing.T) {
	tests := []struct {
		name    string
		conf    Config
		want    string
		wantErr error
	}{
		{
			name: "reader default",
			conf: Config{Machine: state.ReaderMachineName},
			want: state.PausedStateName,
		},
		{
			name: "cycle default",
			conf: Config{Machine: state.CycleMachineName},
			want: state.AStateName,
		},
		{
			name: "explicit",
			conf: Config{Machine: state.ReaderMachineName, Initial: state.PlayingStateName},
			want: state.PlayingStateName,
		},
		{
			name:    "unknown machine",
			conf:    Config{Machine: "jukebox"},
			wantErr: state.ErrUnknownMachine,
		},
		{
			name:    "unknown state",
			conf:    Config{Machine: state.CycleMachineName, Initial: "d"},
			wantErr: state.ErrUnknownState,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.conf.InitialState()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("InitialState() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got.Name() != tt.want {
				t.Errorf("InitialState() = %q, want %q", got.Name(), tt.want)
			}
		})
	}
}

func TestReadFromFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    *Config
		wantErr bool
	}{
		{
			name:    "empty file keeps defaults",
			content: "",
			want:    Default(),
		},
		{
			name: "partial driver block keeps default keys",
			content: `machine: cycle
initial: c
driver:
  exit_key: x
`,
			want: &Config{
				Machine: "cycle",
				Initial: "c",
				Driver: DriverConfig{
					Type:       DriverConsole,
					TriggerKey: "p",
					ExitKey:    "x",
				},
			},
		},
		{
			name: "ticker",
			content: `machine: reader
driver:
  type: ticker
  interval: 250ms
  count: 4
metrics_addr: 127.0.0.1:9224
`,
			want: &Config{
				Machine: "reader",
				Driver: DriverConfig{
					Type:       DriverTicker,
					TriggerKey: "p",
					ExitKey:    "q",
					Interval:   250 * time.Millisecond,
					Count:      4,
				},
				MetricsAddr: "127.0.0.1:9224",
			},
		},
		{
			name:    "invalid yaml",
			content: "machine: [",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "stately.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}

			got, err := ReadFromFile(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReadFromFile() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ReadFromFile() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestReadFromFile_Missing(t *testing.T) {
	if _, err := ReadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
