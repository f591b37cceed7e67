package sources

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/valyala/fastjson"
	"gopkg.in/yaml.v3"

	"github.com/yildizm/PortTriage/internal/cases"
	"github.com/yildizm/PortTriage/internal/common"
)

// LoadCases reads historical case records from a .csv, .json or .yaml file.
// Case IDs follow record order starting at 1 unless a record carries an
// integer "id" field.
func LoadCases(path string) ([]cases.Case, error) {
	if err := common.ValidateSourcePath(path, ".csv", ".json", ".yaml", ".yml"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	data, err := os.ReadFile(path) // #nosec G304 - case log path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read case log: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return parseCasesCSV(string(data))
	case ".json":
		return parseCasesJSON(data)
	default:
		return parseCasesYAML(data)
	}
}

func parseCasesCSV(content string) ([]cases.Case, error) {
	reader := csv.NewReader(strings.NewReader(strings.TrimPrefix(content, "\ufeff")))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read case log header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var records []cases.Case
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read case record %d: %w", len(records)+1, err)
		}

		fields := make(map[string]string, len(header))
		for i, name := range header {
			if name == "" || i >= len(row) {
				continue
			}
			fields[name] = strings.TrimSpace(row[i])
		}
		records = append(records, newCase(len(records)+1, fields))
	}

	return records, nil
}

func parseCasesJSON(data []byte) ([]cases.Case, error) {
	var p fastjson.Parser
	root, err := p.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse case log JSON: %w", err)
	}

	list := root
	if root.Type() == fastjson.TypeObject {
		list = root.Get("cases")
		if list == nil {
			return nil, fmt.Errorf("case log JSON object has no \"cases\" array")
		}
	}

	items, err := list.Array()
	if err != nil {
		return nil, fmt.Errorf("case log JSON must be an array of records: %w", err)
	}

	records := make([]cases.Case, 0, len(items))
	for i, item := range items {
		obj, err := item.Object()
		if err != nil {
			return nil, fmt.Errorf("case record %d is not an object: %w", i+1, err)
		}
		fields := make(map[string]string, obj.Len())
		obj.Visit(func(key []byte, v *fastjson.Value) {
			fields[string(key)] = jsonScalar(v)
		})
		records = append(records, newCase(i+1, fields))
	}

	return records, nil
}

func jsonScalar(v *fastjson.Value) string {
	switch v.Type() {
	case fastjson.TypeString:
		return strings.TrimSpace(string(v.GetStringBytes()))
	case fastjson.TypeNull:
		return ""
	default:
		return v.String()
	}
}

func parseCasesYAML(data []byte) ([]cases.Case, error) {
	var raw []map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse case log YAML: %w", err)
	}

	records := make([]cases.Case, 0, len(raw))
	for i, item := range raw {
		fields := make(map[string]string, len(item))
		for k, v := range item {
			if v == nil {
				fields[k] = ""
				continue
			}
			fields[k] = strings.TrimSpace(fmt.Sprint(v))
		}
		records = append(records, newCase(i+1, fields))
	}

	return records, nil
}

// newCase lifts an integer "id" field into the case ID
func newCase(position int, fields map[string]string) cases.Case {
	id := position
	for _, key := range []string{"id", "ID", "Id"} {
		if v, ok := fields[key]; ok {
			if n, err := strconv.Atoi(v); err == nil {
				id = n
			}
			delete(fields, key)
			break
		}
	}
	return cases.Case{ID: id, Fields: fields}
}
