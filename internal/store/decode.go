package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/spboyer/benchboard/internal/models"
	"gopkg.in/yaml.v3"
)

var (
	taskExtensions = []string{".json", ".yaml", ".yml"}
	runExtensions  = []string{".json", ".json.gz", ".json.zst"}
)

// IsTaskFile reports whether name looks like a task definition file.
func IsTaskFile(name string) bool {
	return hasAnySuffix(name, taskExtensions)
}

// IsRunFile reports whether name looks like an evaluation run file,
// compressed or not.
func IsRunFile(name string) bool {
	return hasAnySuffix(name, runExtensions)
}

func hasAnySuffix(name string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// trimDataExt strips every known data file extension from name.
func trimDataExt(name string) string {
	for _, ext := range []string{".gz", ".zst", ".json", ".yaml", ".yml"} {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}

// ReadDataFile reads path, transparently decompressing gzip and zstd files.
func ReadDataFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck

	var r io.Reader = f
	switch filepath.Ext(path) {
	case ".gz":
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("opening gzip stream: %w", err)
		}
		defer gz.Close() //nolint:errcheck
		r = gz
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("opening zstd stream: %w", err)
		}
		defer zr.Close()
		r = zr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	return data, nil
}

// parseDocument decodes JSON or YAML into a generic map.
func parseDocument(name string, data []byte) (map[string]any, error) {
	var doc map[string]any
	switch {
	case strings.HasSuffix(name, ".yaml"), strings.HasSuffix(name, ".yml"):
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&doc); err != nil {
			return nil, err
		}
	}
	if doc == nil {
		return nil, fmt.Errorf("empty document")
	}
	return doc, nil
}

func decodeInto(doc map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return dec.Decode(doc)
}

// decodeTask parses a task definition file.
func decodeTask(name string, data []byte) (models.Task, error) {
	var task models.Task
	doc, err := parseDocument(name, data)
	if err != nil {
		return task, fmt.Errorf("parsing task: %w", err)
	}
	if err := decodeInto(doc, &task); err != nil {
		return task, fmt.Errorf("decoding task: %w", err)
	}
	return task, nil
}

// ReadTaskFile reads and decodes a single task file without validating it.
func ReadTaskFile(path string) (models.Task, error) {
	data, err := ReadDataFile(path)
	if err != nil {
		return models.Task{}, err
	}
	return decodeTask(filepath.Base(path), data)
}

// decodeRun parses an evaluation run file found in the directory of
// taskID. Missing identifiers are filled from the file location and a
// missing model name becomes models.UnknownModel. Metric values that are
// not numbers or numeric strings are left out of the run and their names
// returned as dropped.
func decodeRun(taskID, name string, data []byte) (run models.EvaluationRun, dropped []string, err error) {
	doc, err := parseDocument(trimCompressionExt(name), data)
	if err != nil {
		return run, nil, fmt.Errorf("parsing run: %w", err)
	}
	if raw, ok := doc["metrics"].(map[string]any); ok {
		doc["metrics"], dropped = numericMetrics(raw)
	}
	if err := decodeInto(doc, &run); err != nil {
		return run, dropped, fmt.Errorf("decoding run: %w", err)
	}
	if run.TaskID == "" {
		run.TaskID = taskID
	}
	if run.SubmissionID == "" {
		run.SubmissionID = trimDataExt(name)
	}
	if run.ModelName == "" {
		run.ModelName = models.UnknownModel
	}
	return run, dropped, nil
}

// numericMetrics keeps the metric values that read as numbers. Dropped
// names are returned sorted.
func numericMetrics(raw map[string]any) (map[string]float64, []string) {
	out := make(map[string]float64, len(raw))
	var dropped []string
	for k, v := range raw {
		if f, ok := toFloat(v); ok {
			out[k] = f
		} else {
			dropped = append(dropped, k)
		}
	}
	sort.Strings(dropped)
	return out, dropped
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func trimCompressionExt(name string) string {
	return strings.TrimSuffix(strings.TrimSuffix(name, ".gz"), ".zst")
}
