package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"

	sheetdb "github.com/sheetdb/go-sheetdb"
	"github.com/sheetdb/go-sheetdb/backends/csvfile"
)

// Reading is stored in a semicolon-delimited CSV file. The file holds a
// single table; a watcher drops cached headers when another process
// rewrites it.
type Reading struct {
	Sensor string
	Value  float64
}

func (r *Reading) TableName() string { return "Readings" }

func (r *Reading) FieldMap() map[string]string {
	return map[string]string{
		"sensor": "Sensor",
		"value":  "Value",
	}
}

func (r *Reading) KeyFields() []string { return []string{"sensor"} }

func (r *Reading) MarshalFields() (*sheetdb.Fields, error) {
	f := sheetdb.NewFields()
	f.Set("sensor", r.Sensor)
	f.SetFloat64("value", r.Value)
	return f, nil
}

func (r *Reading) UnmarshalFields(f *sheetdb.Fields) error {
	sensor, ok := f.Get("sensor")
	if !ok || sensor == "" {
		return errors.New("reading requires a sensor name")
	}
	r.Sensor = sensor
	r.Value = f.GetFloat64("value", 0)
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx := context.Background()
	logger := sheetdb.NewLogger(os.Stderr, slog.LevelInfo)

	const path = "./data/readings.csv"
	backend, err := csvfile.New(&csvfile.Config{FilePath: path})
	if err != nil {
		return fmt.Errorf("failed to create backend: %w", err)
	}

	store := sheetdb.NewStore(backend, &sheetdb.Options{Logger: logger})
	readings := sheetdb.NewTable[Reading, *Reading](store)

	if err := readings.InsertMany(ctx, []*Reading{
		{Sensor: "greenhouse", Value: 21.5},
		{Sensor: "cellar", Value: 12.0},
	}); err != nil {
		return fmt.Errorf("failed to insert readings: %w", err)
	}

	// Keep the header cache honest while other processes edit the file.
	watcher, err := sheetdb.NewWatcher(store.Cache(), backend.ID(), logger, path)
	if err != nil {
		return fmt.Errorf("failed to watch file: %w", err)
	}
	defer watcher.Close()

	if _, err := readings.Update(ctx,
		sheetdb.Filters{"sensor": "greenhouse"},
		sheetdb.Changes{"value": "22.1"}); err != nil {
		return fmt.Errorf("failed to update reading: %w", err)
	}

	all, err := readings.GetAll(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to list readings: %w", err)
	}
	for _, r := range all {
		fmt.Printf("%s: %.1f\n", r.Sensor, r.Value)
	}

	return nil
}
