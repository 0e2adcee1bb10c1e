package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	wire "github.com/roboricindustries/sync-events/pkg/schemas/wire/v1"
	"github.com/xeipuuv/gojsonschema"
)

func runSchema(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "usage: protocolctl schema export|check [flags]")
		return exitUsage
	}
	switch args[0] {
	case "export":
		return runSchemaExport(args[1:], stdout, stderr)
	case "check":
		return runSchemaCheck(args[1:], stdin, stdout, stderr)
	}
	fmt.Fprintf(stderr, "protocolctl: unknown schema command %q\n", args[0])
	return exitUsage
}

func runSchemaExport(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("schema export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	outDir := fs.String("out", "./schemas", "output directory for schemas")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	files, err := exportSchemas(*outDir)
	if err != nil {
		fmt.Fprintf(stderr, "protocolctl: %v\n", err)
		return exitInvalid
	}
	for _, f := range files {
		fmt.Fprintf(stdout, "wrote %s\n", f)
	}
	return exitOK
}

// exportSchemas writes one <name>.schema.json per union, after checking each
// document compiles as JSON Schema.
func exportSchemas(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	docs := wire.JSONSchemas()
	names := make([]string, 0, len(docs))
	for name := range docs {
		names = append(names, name)
	}
	sort.Strings(names)

	var written []string
	for _, name := range names {
		if _, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(docs[name])); err != nil {
			return written, fmt.Errorf("schema %s does not compile: %w", name, err)
		}
		data, err := json.MarshalIndent(docs[name], "", "  ")
		if err != nil {
			return written, fmt.Errorf("marshal schema %s: %w", name, err)
		}
		path := filepath.Join(dir, name+".schema.json")
		if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

type checkReport struct {
	Kind         string   `json:"kind"`
	Native       bool     `json:"native"`
	JSONSchema   bool     `json:"jsonSchema"`
	Agree        bool     `json:"agree"`
	SchemaErrors []string `json:"schemaErrors,omitempty"`
}

var schemaForKind = map[string]string{
	kindUpdate:    wire.SchemaUpdate,
	kindEvent:     wire.SchemaEvent,
	kindContainer: wire.SchemaUpdateContainer,
}

func runSchemaCheck(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("schema check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	kind := fs.String("kind", kindUpdate, "message kind: update|event|container")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	data, err := readInput(fs.Args(), stdin)
	if err != nil {
		fmt.Fprintf(stderr, "protocolctl: %v\n", err)
		return exitUsage
	}

	rep, err := schemaCheck(*kind, data)
	if err != nil {
		fmt.Fprintf(stderr, "protocolctl: %v\n", err)
		return exitUsage
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(rep)
	if !rep.Agree {
		return exitInvalid
	}
	return exitOK
}

// schemaCheck runs a JSON message through the native validator and the
// exported JSON Schema and reports whether their verdicts agree.
func schemaCheck(kind string, data []byte) (checkReport, error) {
	name, ok := schemaForKind[kind]
	if !ok {
		return checkReport{}, errUnknownKind
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(wire.JSONSchemas()[name]))
	if err != nil {
		return checkReport{}, fmt.Errorf("compile %s schema: %w", name, err)
	}

	native, _ := validate(kind, wire.CodecJSON, data)
	rep := checkReport{Kind: kind, Native: native.Valid}

	res, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		// not JSON at all; both sides reject
		rep.SchemaErrors = []string{err.Error()}
	} else {
		rep.JSONSchema = res.Valid()
		for _, e := range res.Errors() {
			rep.SchemaErrors = append(rep.SchemaErrors, e.String())
		}
	}
	rep.Agree = rep.Native == rep.JSONSchema
	return rep, nil
}
