package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"

	sheetdb "github.com/sheetdb/go-sheetdb"
	"github.com/sheetdb/go-sheetdb/backends/excel"
)

// Task is stored on the "Tasks" sheet of a local workbook.
type Task struct {
	ID    int64
	Title string
	Done  bool
}

func (t *Task) TableName() string { return "Tasks" }

func (t *Task) FieldMap() map[string]string {
	return map[string]string{
		"id":    "Task ID",
		"title": "Title",
		"done":  "Done",
	}
}

func (t *Task) KeyFields() []string { return []string{"id"} }

func (t *Task) MarshalFields() (*sheetdb.Fields, error) {
	f := sheetdb.NewFields()
	f.SetInt64("id", t.ID)
	f.Set("title", t.Title)
	f.SetBool("done", t.Done)
	return f, nil
}

func (t *Task) UnmarshalFields(f *sheetdb.Fields) error {
	id := f.GetInt64("id", 0)
	if id == 0 {
		return errors.New("task requires a positive id")
	}
	t.ID = id
	t.Title = f.GetString("title", "")
	t.Done = f.GetBool("done", false)
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx := context.Background()
	logger := sheetdb.NewLogger(os.Stderr, slog.LevelDebug)

	backend, err := excel.New(&excel.Config{FilePath: "./data/tasks.xlsx"})
	if err != nil {
		return fmt.Errorf("failed to create backend: %w", err)
	}

	store := sheetdb.NewStore(backend, &sheetdb.Options{Logger: logger})
	tasks := sheetdb.NewTable[Task, *Task](store)

	err = tasks.InsertMany(ctx, []*Task{
		{ID: 1, Title: "Write the report"},
		{ID: 2, Title: "Review the budget"},
		{ID: 3, Title: "Ship the release"},
	})
	if err != nil {
		return fmt.Errorf("failed to insert tasks: %w", err)
	}

	if _, err := tasks.Update(ctx, sheetdb.Filters{"id": "2"}, sheetdb.Changes{"done": "true"}); err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	open, err := tasks.GetAll(ctx, sheetdb.Filters{"done": "false"})
	if err != nil {
		return fmt.Errorf("failed to list open tasks: %w", err)
	}
	for _, t := range open {
		fmt.Printf("#%d %s\n", t.ID, t.Title)
	}

	if _, err := tasks.Delete(ctx, sheetdb.Filters{"id": "3"}); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}
