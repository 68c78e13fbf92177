package datarecording

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"reflect"
)

// ErrNoRecording means there is no database at the given path.
var ErrNoRecording = errors.New("no recording found")

// A Reader reads back a database written by a DataRecorder.
type Reader struct {
	db *sql.DB
}

// NewReader opens path.sqlite3. The file must exist.
func NewReader(path string) (*Reader, error) {
	filename := path + ".sqlite3"

	if _, err := os.Stat(filename); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoRecording, filename)
	}

	db, err := sql.Open("sqlite3", "file:"+filename+"?mode=ro")
	if err != nil {
		return nil, err
	}

	return NewReaderWithDB(db), nil
}

// NewReaderWithDB creates a Reader on an open database.
func NewReaderWithDB(db *sql.DB) *Reader {
	return &Reader{db: db}
}

// ListTables returns the names of the tables in the database, sorted.
func (r *Reader) ListTables(ctx context.Context) ([]string, error) {
	var tables []struct{ Name string }

	err := r.Select(ctx, &tables,
		"SELECT name AS Name FROM sqlite_master WHERE type = 'table' "+
			"ORDER BY name")
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(tables))
	for _, t := range tables {
		names = append(names, t.Name)
	}

	return names, nil
}

// ExecInfo returns the properties an ExecRecorder stored, in the order they
// were recorded.
func (r *Reader) ExecInfo(ctx context.Context) ([]ExecInfo, error) {
	var info []ExecInfo

	err := r.Select(ctx, &info,
		"SELECT Property, Value FROM exec_info ORDER BY rowid")

	return info, err
}

// ExecProperty returns the value of one property in exec_info.
func (r *Reader) ExecProperty(
	ctx context.Context,
	property string,
) (string, bool, error) {
	var info []ExecInfo

	err := r.Select(ctx, &info,
		"SELECT Property, Value FROM exec_info WHERE Property = ? "+
			"ORDER BY rowid DESC LIMIT 1",
		property)
	if err != nil || len(info) == 0 {
		return "", false, err
	}

	return info[0].Value, true, nil
}

// Select runs query and appends one struct per row to the slice that dest
// points to. Columns are matched to fields by name; columns without a field
// are skipped.
func (r *Reader) Select(
	ctx context.Context,
	dest any,
	query string,
	args ...any,
) error {
	slice := reflect.ValueOf(dest)
	if slice.Kind() != reflect.Ptr || slice.Elem().Kind() != reflect.Slice ||
		slice.Elem().Type().Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: %T is not a pointer to a slice of structs",
			ErrInvalidEntry, dest)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	return scanRows(rows, slice.Elem())
}

func scanRows(rows *sql.Rows, slice reflect.Value) error {
	columns, err := rows.Columns()
	if err != nil {
		return err
	}

	entryType := slice.Type().Elem()

	for rows.Next() {
		entry := reflect.New(entryType).Elem()
		targets := make([]any, len(columns))

		for i, column := range columns {
			field := entry.FieldByName(column)
			if field.IsValid() && field.CanSet() {
				targets[i] = field.Addr().Interface()
				continue
			}

			var skipped any
			targets[i] = &skipped
		}

		if err := rows.Scan(targets...); err != nil {
			return err
		}

		slice.Set(reflect.Append(slice, entry))
	}

	return rows.Err()
}

// Close closes the database.
func (r *Reader) Close() error {
	return r.db.Close()
}
