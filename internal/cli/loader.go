package cli

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"

	"github.com/strandbio/hapgen/internal/harness"
)

//go:embed scenario.cue
var scenarioSchema string

// Error code constants, unified across CLI commands.
const (
	ErrCodeGeneric     = "E001" // generic/unknown error
	ErrCodeNotFound    = "E002" // path not found
	ErrCodeNoFiles     = "E003" // no scenario files found
	ErrCodeSchema      = "E004" // scenario violates the schema
	ErrCodeParse       = "E005" // scenario failed Go-side parsing
	ErrCodeStore       = "E006" // run-log database error
	ErrCodeReconstruct = "E007" // reconstruction failed
)

// LoadError is a scenario loading or validation failure for one file.
type LoadError struct {
	Code    string
	Path    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
}

// LoadScenarioFile validates a scenario file against the CUE schema and
// then parses it. Schema validation runs first so field-level constraint
// violations are reported with CUE's precision rather than as generic
// unmarshal errors.
func LoadScenarioFile(path string) (*harness.Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: "scenario file not found"}
		}
		return nil, &LoadError{Code: ErrCodeGeneric, Path: path, Message: err.Error()}
	}

	if err := validateAgainstSchema(path, data); err != nil {
		return nil, &LoadError{Code: ErrCodeSchema, Path: path, Message: err.Error()}
	}

	scenario, err := harness.ParseScenario(data)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeParse, Path: path, Message: err.Error()}
	}
	return scenario, nil
}

// validateAgainstSchema unifies the YAML document with the embedded
// #Scenario definition and checks the result is valid and concrete.
func validateAgainstSchema(path string, data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(scenarioSchema)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("internal schema error: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Scenario"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("internal schema error: %w", err)
	}

	file, err := cueyaml.Extract(path, data)
	if err != nil {
		return fmt.Errorf("parse YAML: %w", err)
	}
	doc := ctx.BuildFile(file)
	if err := doc.Err(); err != nil {
		return fmt.Errorf("build YAML document: %w", err)
	}

	unified := def.Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("schema violation: %s", cueerrors.Details(err, nil))
	}
	return nil
}

// CollectScenarioPaths expands each argument into scenario file paths: a
// directory contributes every .yaml file directly inside it, sorted; a
// file contributes itself.
func CollectScenarioPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if os.IsNotExist(err) {
			return nil, &LoadError{Code: ErrCodeNotFound, Path: arg, Message: "path not found"}
		}
		if err != nil {
			return nil, &LoadError{Code: ErrCodeGeneric, Path: arg, Message: err.Error()}
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(arg, "*.yaml"))
		if err != nil {
			return nil, &LoadError{Code: ErrCodeGeneric, Path: arg, Message: err.Error()}
		}
		if len(matches) == 0 {
			return nil, &LoadError{Code: ErrCodeNoFiles, Path: arg, Message: "no .yaml scenario files in directory"}
		}
		sort.Strings(matches)
		paths = append(paths, matches...)
	}
	return paths, nil
}
