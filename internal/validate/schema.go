package validate

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"linetrack/internal/report"
)

//go:embed report.schema.json
var reportSchemaJSON string

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

// ReportJSON checks a JSON-encoded report against the report schema and
// then against the semantic rules of Report.
func ReportJSON(raw []byte) error {
	value, err := decodeStrictJSON(raw)
	if err != nil {
		return fmt.Errorf("decode report JSON: %w", err)
	}
	schema, err := loadSchema()
	if err != nil {
		return fmt.Errorf("load schema: %w", err)
	}
	if err := schema.Validate(value); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	var rep report.Report
	if err := json.Unmarshal(raw, &rep); err != nil {
		return fmt.Errorf("unmarshal report: %w", err)
	}
	return Report(rep)
}

// Report validates the 1-based rendered form:
//
//   - Line numbers are >= 1.
//   - Mappings are sorted by old line, each with ascending targets.
//   - A new line is the target of at most one mapping and is never also
//     reported as an unmatched addition.
//   - An old line is never both mapped and an unmatched deletion.
//   - Claims, when present, list exactly the mapping targets.
func Report(rep report.Report) error {
	var errs errlist

	targets := make(map[int]int)
	mapped := make(map[int]struct{}, len(rep.Mappings))
	prevOld := 0
	for n, m := range rep.Mappings {
		prefix := fmt.Sprintf("mappings[%d] (old %d)", n, m.Old)
		if m.Old < 1 {
			errs.add("%s: old must be >= 1", prefix)
		}
		if m.Old <= prevOld {
			errs.add("%s: mappings must be sorted by old line without duplicates", prefix)
		}
		prevOld = m.Old
		mapped[m.Old] = struct{}{}
		if len(m.New) == 0 {
			errs.add("%s: new must be non-empty", prefix)
		}
		for k, j := range m.New {
			if j < 1 {
				errs.add("%s: new line must be >= 1 (got %d)", prefix, j)
			}
			if k > 0 && m.New[k-1] >= j {
				errs.add("%s: new lines must be strictly ascending (%v)", prefix, m.New)
			}
			if prev, dup := targets[j]; dup {
				errs.add("%s: new line %d already mapped from old line %d", prefix, j, prev)
			} else {
				targets[j] = m.Old
			}
		}
		if len(m.Claims) > 0 {
			if len(m.Claims) != len(m.New) {
				errs.add("%s: %d claims for %d new lines", prefix, len(m.Claims), len(m.New))
			} else {
				for k, c := range m.Claims {
					if c.Line != m.New[k] {
						errs.add("%s: claims[%d] targets line %d, expected %d", prefix, k, c.Line, m.New[k])
					}
				}
			}
		}
	}
	for _, i := range rep.UnmatchedDeletions {
		if _, ok := mapped[i]; ok {
			errs.add("old line %d is both mapped and unmatched", i)
		}
	}
	for _, j := range rep.UnmatchedAdditions {
		if _, ok := targets[j]; ok {
			errs.add("new line %d is both mapped and unmatched", j)
		}
	}
	return errs.err()
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020

		if err := compiler.AddResource("report.schema.json", strings.NewReader(reportSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		schema, err := compiler.Compile("report.schema.json")
		if err != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}
		compiledSchema = schema
	})

	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	if compiledSchema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return compiledSchema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("report is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("report contains trailing content")
	}
	return value, nil
}

// errlist aggregates multiple validation issues into a single error.
type errlist struct {
	msgs []string
}

func (e *errlist) add(format string, args ...any) {
	if e == nil {
		return
	}
	e.msgs = append(e.msgs, fmt.Sprintf(format, args...))
}

func (e *errlist) err() error {
	if e == nil || len(e.msgs) == 0 {
		return nil
	}
	return errors.New(strings.Join(e.msgs, "\n"))
}
