package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/google/uuid"

	sheetdb "github.com/sheetdb/go-sheetdb"
	"github.com/sheetdb/go-sheetdb/backends/gsheet"
)

// Employee is stored on the "Employees" worksheet.
type Employee struct {
	ID         string
	Name       string
	Department string
	Salary     int64
}

func (e *Employee) TableName() string { return "Employees" }

func (e *Employee) FieldMap() map[string]string {
	return map[string]string{
		"id":         "Employee ID",
		"name":       "Full Name",
		"department": "Department",
		"salary":     "Salary",
	}
}

func (e *Employee) KeyFields() []string { return []string{"id"} }

func (e *Employee) MarshalFields() (*sheetdb.Fields, error) {
	f := sheetdb.NewFields()
	f.Set("id", e.ID)
	f.Set("name", e.Name)
	f.Set("department", e.Department)
	f.SetInt64("salary", e.Salary)
	return f, nil
}

func (e *Employee) UnmarshalFields(f *sheetdb.Fields) error {
	id, ok := f.Get("id")
	if !ok || id == "" {
		return errors.New("employee requires an id")
	}
	e.ID = id
	e.Name = f.GetString("name", "")
	e.Department = f.GetString("department", "")
	e.Salary = f.GetInt64("salary", 0)
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

	// Load medium settings from a YAML file; see config.example.yaml.
	cfg, err := sheetdb.LoadFileConfig("./config.yaml")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	policy, err := sheetdb.ParseSchemaPolicy(cfg.SchemaPolicy)
	if err != nil {
		return err
	}

	backend, err := gsheet.NewWithJSONKeyFile(ctx, &gsheet.Config{
		SpreadsheetID: cfg.SpreadsheetID,
	}, cfg.CredentialsFile)
	if err != nil {
		return fmt.Errorf("failed to create backend: %w", err)
	}

	store := sheetdb.NewStore(backend, &sheetdb.Options{
		SchemaPolicy: policy,
		Logger:       logger,
	})
	employees := sheetdb.NewTable[Employee, *Employee](store)

	// Insert a batch; the worksheet and header row are created on first
	// write.
	err = employees.InsertMany(ctx, []*Employee{
		{ID: uuid.NewString(), Name: "Ada Lovelace", Department: "Engineering", Salary: 120000},
		{ID: uuid.NewString(), Name: "Grace Hopper", Department: "Engineering", Salary: 130000},
		{ID: uuid.NewString(), Name: "Jean Bartik", Department: "Research", Salary: 110000},
	})
	if err != nil {
		return fmt.Errorf("failed to insert employees: %w", err)
	}

	engineers, err := employees.GetAll(ctx, sheetdb.Filters{"department": "Engineering"})
	if err != nil {
		return fmt.Errorf("failed to list engineers: %w", err)
	}
	for _, e := range engineers {
		fmt.Printf("%s (%s): %d\n", e.Name, e.Department, e.Salary)
	}

	// The async facade queues operations on a worker and hands back
	// futures; each remote round trip stops blocking the caller.
	async := sheetdb.NewAsync[Employee, *Employee](employees, 16)
	defer async.Close()

	future := async.Update(ctx,
		sheetdb.Filters{"name": "Ada Lovelace"},
		sheetdb.Changes{"salary": "125000"})

	updated, err := future.Wait(ctx)
	if err != nil {
		return fmt.Errorf("failed to update employee: %w", err)
	}
	fmt.Printf("updated %s to %d\n", updated.Name, updated.Salary)

	if _, err := async.DeleteAll(ctx).Wait(ctx); err != nil {
		return fmt.Errorf("failed to clear table: %w", err)
	}

	return nil
}
