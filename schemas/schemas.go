// Package schemas embeds the JSON Schemas for task and evaluation run files.
package schemas

import _ "embed"

//go:embed task.schema.json
var TaskSchemaJSON string

//go:embed eval_run.schema.json
var EvalRunSchemaJSON string
