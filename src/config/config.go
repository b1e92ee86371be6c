package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/javierwelch/challenge-latam/src/logger"
)

// Config holds the application configuration.
type Config struct {
	Data struct {
		Path      string `json:"path"`       // dataset file (csv or xlsx)
		Format    string `json:"format"`     // "csv" or "xlsx"
		Encoding  string `json:"encoding"`   // "utf-8" or "latin1" (csv only)
		SheetName string `json:"sheet_name"` // xlsx only
	} `json:"data"`

	Email struct {
		Enabled       bool     `json:"enabled"`
		Server        string   `json:"server"`         // IMAP server address with port
		Username      string   `json:"username"`       // mailbox user
		Password      string   `json:"password"`       // password / app token
		TargetSubject string   `json:"target_subject"` // subject of dataset mails
		CheckInterval Duration `json:"check_interval"`
	} `json:"email"`

	Server struct {
		Addr string `json:"addr"`
	} `json:"server"`

	ChartsDir string `json:"charts_dir"`
	Report    struct {
		XLSX string `json:"xlsx"`
		PDF  string `json:"pdf"`
	} `json:"report"`
	DBPath          string        `json:"db_path"`
	RefreshInterval Duration      `json:"refresh_interval"`
	Log             logger.Config `json:"log"`
}

// DataConfig maps logical column names onto the dataset's actual headers
// and carries the analysis parameters that are data, not code.
type DataConfig struct {
	// FlightData: logical name ("carrier", "destination", "scheduled",
	// "actual", "delay", "time") -> dataset column ("OPERA", "SIGLADES", ...).
	FlightData map[string]string `json:"flightData"`

	// Hubs: carrier -> hub destination city.
	Hubs map[string]string `json:"hubs"`

	// Groupings: columns to compute delay rates and charts over.
	Groupings []string `json:"groupings"`

	// ModelGrid: hyperparameter candidates for the grid search.
	ModelGrid map[string][]float64 `json:"model_grid"`
	Scoring   string               `json:"scoring"`
	Features  []string             `json:"features"` // categorical feature columns
}

var (
	once               sync.Once
	instance           *Config
	dataConfigInstance *DataConfig
)

// LoadConfig loads both configuration files once per process.
func LoadConfig(jsonFolder, jsonFile, dataJSONFile string) (*Config, *DataConfig, error) {
	var err error
	once.Do(func() {
		instance, dataConfigInstance, err = loadConfigs(jsonFolder, jsonFile, dataJSONFile)
	})
	return instance, dataConfigInstance, err
}

func loadConfigs(jsonFolder, jsonFile, dataJSONFile string) (*Config, *DataConfig, error) {
	configData, err := readFile(filepath.Join(jsonFolder, jsonFile))
	if err != nil {
		return nil, nil, fmt.Errorf("read config file: %w", err)
	}

	dataConfigData, err := readFile(filepath.Join(jsonFolder, dataJSONFile))
	if err != nil {
		return nil, nil, fmt.Errorf("read data config file: %w", err)
	}

	cfgChan := make(chan *Config, 1)
	dcfgChan := make(chan *DataConfig, 1)
	errChan := make(chan error, 2)

	go parseConfig(configData, cfgChan, errChan)
	go parseDataConfig(dataConfigData, dcfgChan, errChan)

	return waitForResults(cfgChan, dcfgChan, errChan)
}

func readFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", filePath, err)
	}
	return data, nil
}

func parseConfig(data []byte, resultChan chan<- *Config, errChan chan<- error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		errChan <- fmt.Errorf("parse Config: %w", err)
		return
	}
	resultChan <- &cfg
}

func parseDataConfig(data []byte, resultChan chan<- *DataConfig, errChan chan<- error) {
	var dcfg DataConfig
	if err := json.Unmarshal(data, &dcfg); err != nil {
		errChan <- fmt.Errorf("parse DataConfig: %w", err)
		return
	}
	resultChan <- &dcfg
}

func waitForResults(
	cfgChan <-chan *Config,
	dcfgChan <-chan *DataConfig,
	errChan <-chan error,
) (*Config, *DataConfig, error) {
	var (
		cfg  *Config
		dcfg *DataConfig
		errs []error
	)

	for i := 0; i < 2; i++ {
		select {
		case c := <-cfgChan:
			cfg = c
		case d := <-dcfgChan:
			dcfg = d
		case err := <-errChan:
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return nil, nil, combineErrors(errs)
	}
	if cfg == nil || dcfg == nil {
		return nil, nil, fmt.Errorf("incomplete configuration load")
	}
	return cfg, dcfg, nil
}

func combineErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	msg := "configuration load failed:"
	for _, err := range errs {
		msg = fmt.Sprintf("%s\n- %v", msg, err)
	}
	return fmt.Errorf("%s", msg)
}

// Duration wraps time.Duration for JSON round trips ("5m", "1h30m").
type Duration time.Duration

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// GetFlightData returns the dataset column mapped to a logical name. The
// logical name itself is the fallback so unmapped columns pass through.
func (dc *DataConfig) GetFlightData(logical string) string {
	if col, ok := dc.FlightData[logical]; ok {
		return col
	}
	return logical
}
