package output

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"slices"
	"strings"
	"text/tabwriter"
	"time"
)

// TableFormatter formats data as an aligned text table.
//
// A slice of structs becomes one row per element. A single struct or a map
// becomes FIELD/VALUE rows. Struct fields tagged `table:"-"` are skipped and
// `table:"wide"` fields appear only in wide mode. Anything else falls back
// to JSON.
type TableFormatter struct {
	Wide      bool
	NoHeaders bool
}

// Format formats data as a table.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	if data == nil {
		return nil
	}
	switch t := data.(type) {
	case *Table:
		return t.render(w, f.NoHeaders)
	case Table:
		return t.render(w, f.NoHeaders)
	}

	table, ok := buildTable(reflect.ValueOf(data), f.Wide)
	if !ok {
		return (&JSONFormatter{}).Format(w, data)
	}
	return table.render(w, f.NoHeaders)
}

func buildTable(v reflect.Value, wide bool) (*Table, bool) {
	v = deref(v)
	if !v.IsValid() {
		return &Table{}, true
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		return rowsTable(v, wide)
	case reflect.Map:
		return mapTable(v), true
	case reflect.Struct:
		if v.Type() == timeType {
			return nil, false
		}
		return fieldsTable(v, wide), true
	default:
		return nil, false
	}
}

type column struct {
	index  int
	header string
}

func columnsOf(t reflect.Type, wide bool) []column {
	var cols []column
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("table")
		if tag == "-" || (tag == "wide" && !wide) {
			continue
		}
		cols = append(cols, column{index: i, header: fieldName(f)})
	}
	return cols
}

func rowsTable(v reflect.Value, wide bool) (*Table, bool) {
	elem := v.Type().Elem()
	for elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}

	table := &Table{}
	if elem.Kind() != reflect.Struct || elem == timeType {
		table.Headers = []string{"VALUE"}
		for i := 0; i < v.Len(); i++ {
			table.AddRow(cell(v.Index(i)))
		}
		return table, true
	}

	cols := columnsOf(elem, wide)
	for _, c := range cols {
		table.Headers = append(table.Headers, strings.ToUpper(toSnake(c.header)))
	}
	for i := 0; i < v.Len(); i++ {
		item := deref(v.Index(i))
		row := make([]string, len(cols))
		for j, c := range cols {
			if item.IsValid() {
				row[j] = cell(item.Field(c.index))
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, true
}

func fieldsTable(v reflect.Value, wide bool) *Table {
	table := &Table{Headers: []string{"FIELD", "VALUE"}}
	for _, c := range columnsOf(v.Type(), wide) {
		table.AddRow(toSnake(c.header), cell(v.Field(c.index)))
	}
	return table
}

func mapTable(v reflect.Value) *Table {
	table := &Table{Headers: []string{"KEY", "VALUE"}}
	keys := v.MapKeys()
	slices.SortFunc(keys, func(a, b reflect.Value) int {
		return strings.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
	})
	for _, k := range keys {
		table.AddRow(cell(k), cell(v.MapIndex(k)))
	}
	return table
}

var timeType = reflect.TypeOf(time.Time{})

func deref(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

// cell renders one value. Empty values render as "-".
func cell(v reflect.Value) string {
	v = deref(v)
	if !v.IsValid() {
		return "-"
	}
	if v.Type() == timeType {
		t := v.Interface().(time.Time)
		if t.IsZero() {
			return "-"
		}
		return t.Format("2006-01-02 15:04")
	}
	if d, ok := v.Interface().(time.Duration); ok {
		return d.String()
	}

	switch v.Kind() {
	case reflect.String:
		if v.Len() == 0 {
			return "-"
		}
		return v.String()
	case reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%.2f", v.Float())
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return "-"
		}
		if v.Type().Elem().Kind() == reflect.String {
			parts := make([]string, v.Len())
			for i := range parts {
				parts[i] = v.Index(i).String()
			}
			return strings.Join(parts, ",")
		}
		return fmt.Sprintf("[%d items]", v.Len())
	case reflect.Map:
		if v.Len() == 0 {
			return "-"
		}
		return fmt.Sprintf("{%d keys}", v.Len())
	case reflect.Struct:
		data, err := json.Marshal(v.Interface())
		if err != nil {
			return fmt.Sprint(v.Interface())
		}
		return string(data)
	default:
		return fmt.Sprint(v.Interface())
	}
}

// fieldName prefers the json tag name.
func fieldName(f reflect.StructField) string {
	if tag := f.Tag.Get("json"); tag != "" {
		if name, _, _ := strings.Cut(tag, ","); name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

// toSnake converts camelCase to snake_case. Runs of capitals stay together,
// so "ID" becomes "id".
func toSnake(s string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range s {
		upper := r >= 'A' && r <= 'Z'
		if upper {
			if prevLower {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		prevLower = !upper && r != '_'
		b.WriteRune(r)
	}
	return b.String()
}

// Table represents tabular data.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Render renders the table to the writer.
func (t *Table) Render(w io.Writer) error {
	return t.render(w, false)
}

func (t *Table) render(w io.Writer, noHeaders bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if !noHeaders && len(t.Headers) > 0 {
		fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	}
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}
