package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/spboyer/benchboard/schemas"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// defaultPrinter is used to format schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

// taskSchema is the compiled JSON Schema for task definition files.
var taskSchema *jsonschema.Schema

// runSchema is the compiled JSON Schema for evaluation run files.
var runSchema *jsonschema.Schema

func init() {
	taskSchema = mustCompileSchema(schemas.TaskSchemaJSON, "task.schema.json")
	runSchema = mustCompileSchema(schemas.EvalRunSchemaJSON, "eval_run.schema.json")
}

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	var schemaDoc any
	if err := json.Unmarshal([]byte(raw), &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// ValidateTaskBytes validates a task file (JSON or YAML) against the task schema.
func ValidateTaskBytes(data []byte) []string {
	return validateDocument(taskSchema, data)
}

// ValidateRunBytes validates an evaluation run file against the run schema.
// data must already be decompressed.
func ValidateRunBytes(data []byte) []string {
	return validateDocument(runSchema, data)
}

// validateDocument parses data as YAML, which also accepts JSON, and
// checks it against schema.
func validateDocument(schema *jsonschema.Schema, data []byte) []string {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return []string{fmt.Sprintf("parse error: %v", err)}
	}
	if doc == nil {
		return []string{"/: document is empty"}
	}
	return validateAgainstSchema(schema, toJSONCompatible(doc))
}

func validateAgainstSchema(schema *jsonschema.Schema, instance any) []string {
	err := schema.Validate(instance)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var errs []string
	collectSchemaErrors(ve, &errs)
	return errs
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*errs = append(*errs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(defaultPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}

// toJSONCompatible rewrites YAML-decoded values into the shapes the schema
// validator expects: integers become float64 and time stamps become strings.
func toJSONCompatible(v any) any {
	switch val := v.(type) {
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, v2 := range val {
			result[k] = toJSONCompatible(v2)
		}
		return result
	case []any:
		result := make([]any, len(val))
		for i, v2 := range val {
			result[i] = toJSONCompatible(v2)
		}
		return result
	case int:
		return float64(val)
	case fmt.Stringer:
		return val.String()
	default:
		return val
	}
}
