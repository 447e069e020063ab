package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/mbg-sim/zoox/config"
)

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir       string
	popFile   *os.File
	exitsFile *os.File

	// Track if headers have been written
	popHeaderWritten   bool
	exitsHeaderWritten bool
}

// NewOutputManager creates a new output manager and initializes the output
// directory. Returns nil if dir is empty (output disabled). exits.csv is
// only created when writeExits is set.
func NewOutputManager(dir string, writeExits bool) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, "population.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating population.csv: %w", err)
	}
	om.popFile = f

	if writeExits {
		f, err = os.Create(filepath.Join(dir, "exits.csv"))
		if err != nil {
			om.popFile.Close()
			return nil, fmt.Errorf("creating exits.csv: %w", err)
		}
		om.exitsFile = f
	}

	return om, nil
}

// WriteConfig saves the effective configuration as YAML alongside the CSVs.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WritePopulation appends census rows to population.csv.
func (om *OutputManager) WritePopulation(rows []PopulationRow) error {
	if om == nil {
		return nil
	}

	if !om.popHeaderWritten {
		// First write includes headers
		if err := gocsv.Marshal(rows, om.popFile); err != nil {
			return fmt.Errorf("writing population: %w", err)
		}
		om.popHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(rows, om.popFile); err != nil {
		return fmt.Errorf("writing population: %w", err)
	}
	return nil
}

// WriteExit appends a removal record to exits.csv.
func (om *OutputManager) WriteExit(row ExitRow) error {
	if om == nil || om.exitsFile == nil {
		return nil
	}

	records := []ExitRow{row}
	if !om.exitsHeaderWritten {
		if err := gocsv.Marshal(records, om.exitsFile); err != nil {
			return fmt.Errorf("writing exit: %w", err)
		}
		om.exitsHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.exitsFile); err != nil {
		return fmt.Errorf("writing exit: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	if om.popFile != nil {
		if err := om.popFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if om.exitsFile != nil {
		if err := om.exitsFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
