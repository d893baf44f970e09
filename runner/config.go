package runner

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/cloudtask/relocation/eviction"
	"github.com/cloudtask/relocation/eviction/client"
)

// How often a planning pass runs when the config does not say.
const DefaultPassInterval = 30 * time.Second

// JSONConfigs config structure holding original json configs
type JSONConfigs struct {
	Eviction EvictionJSONConfig `json:"Eviction"`
	Runner   RunnerJSONConfig   `json:"Runner"`
}

func (c JSONConfigs) String() string {
	return fmt.Sprintf("\n%s\n%s", c.Eviction, c.Runner)
}

type EvictionJSONConfig struct {
	Type string `json:"Type"` // eviction service type: http, memory
	Addr string `json:"Addr"` // root URI for Type == http
}

func (c EvictionJSONConfig) String() string {
	return fmt.Sprintf("EvictionJSONConfig: Type: %s, Addr: %s", c.Type, c.Addr)
}

type RunnerJSONConfig struct {
	PassIntervalSec int    `json:"PassIntervalSec"` // default to 30
	JobsFile        string `json:"JobsFile"`        // static job set for local/demo runs
}

func (c RunnerJSONConfig) String() string {
	return fmt.Sprintf("RunnerJSONConfig: PassIntervalSec: %d, JobsFile: %s", c.PassIntervalSec, c.JobsFile)
}

// ParseConfig reads JSONConfigs from raw json, applying defaults for absent
// fields.
func ParseConfig(data []byte) (JSONConfigs, error) {
	config := JSONConfigs{
		Eviction: EvictionJSONConfig{Type: "memory"},
		Runner:   RunnerJSONConfig{PassIntervalSec: int(DefaultPassInterval / time.Second)},
	}
	if len(data) == 0 {
		return config, nil
	}
	if err := json.Unmarshal(data, &config); err != nil {
		return JSONConfigs{}, errors.Wrap(err, "parsing relocation config")
	}
	if config.Runner.PassIntervalSec <= 0 {
		config.Runner.PassIntervalSec = int(DefaultPassInterval / time.Second)
	}
	return config, nil
}

// PassInterval returns the configured interval between planning passes.
func (c JSONConfigs) PassInterval() time.Duration {
	return time.Duration(c.Runner.PassIntervalSec) * time.Second
}

// MakeOperations creates the eviction service handle described by the config.
func MakeOperations(config EvictionJSONConfig) (eviction.Operations, error) {
	switch config.Type {
	case "", "memory":
		return eviction.NewInMemoryOperations(), nil
	case "http":
		if config.Addr == "" {
			return nil, errors.New("eviction config Type http requires Addr")
		}
		return client.MakeHTTPOperations(config.Addr), nil
	}
	return nil, errors.Errorf("unrecognized eviction config type: %s", config.Type)
}
