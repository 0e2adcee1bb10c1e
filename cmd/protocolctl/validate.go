package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/roboricindustries/sync-events/internal/observability"
	wire "github.com/roboricindustries/sync-events/pkg/schemas/wire/v1"
	"github.com/roboricindustries/sync-events/pkg/shape"
)

// Message kinds accepted by validate, publish and schema check.
const (
	kindUpdate    = "update"
	kindEvent     = "event"
	kindContainer = "container"
)

type report struct {
	Valid     bool          `json:"valid"`
	Kind      string        `json:"kind"`
	Type      string        `json:"type,omitempty"`
	SessionID string        `json:"sessionId,omitempty"`
	MachineID string        `json:"machineId,omitempty"`
	Unknown   *unknown      `json:"unknownVariant,omitempty"`
	Issues    []shape.Issue `json:"issues,omitempty"`
	Error     string        `json:"error,omitempty"`
}

type unknown struct {
	Path  string `json:"path"`
	Value string `json:"value"`
}

func runValidate(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	kind := fs.String("kind", kindUpdate, "message kind: update|event|container")
	codec := fs.String("codec", string(wire.CodecJSON), "payload encoding: json|msgpack")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	data, err := readInput(fs.Args(), stdin)
	if err != nil {
		fmt.Fprintf(stderr, "protocolctl: %v\n", err)
		return exitUsage
	}
	rep, code := validate(*kind, wire.Codec(*codec), data)
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(rep)
	return code
}

// validate decodes and checks one message, filling the report the way a
// consumer would see it.
func validate(kind string, codec wire.Codec, data []byte) (report, int) {
	rep := report{Kind: kind}
	if codec != wire.CodecJSON && codec != wire.CodecMsgpack {
		rep.Error = fmt.Sprintf("unsupported codec %q", codec)
		return rep, exitUsage
	}

	v, err := codec.Decode(data)
	if err == nil {
		err = validateValue(kind, v, &rep)
	}
	observability.RecordValidation(kind, observability.Outcome(err))

	var (
		ve *shape.ValidationError
		uv *shape.UnknownVariantError
	)
	switch {
	case err == nil:
		rep.Valid = true
		return rep, exitOK
	case errors.As(err, &uv):
		rep.Unknown = &unknown{Path: uv.Path, Value: uv.Value}
		return rep, exitUnknownVariant
	case errors.As(err, &ve):
		rep.Issues = ve.Issues
		return rep, exitInvalid
	}
	rep.Error = err.Error()
	if errors.Is(err, errUnknownKind) {
		return rep, exitUsage
	}
	return rep, exitInvalid
}

var errUnknownKind = errors.New("kind must be update, event or container")

func validateValue(kind string, v any, rep *report) error {
	switch kind {
	case kindUpdate:
		u, err := wire.ValidateUpdate(v)
		if err != nil {
			return err
		}
		describeUpdate(u, rep)
	case kindContainer:
		c, err := wire.ValidateUpdateContainer(v)
		if err != nil {
			return err
		}
		describeUpdate(c.Body, rep)
	case kindEvent:
		e, err := wire.ValidateEvent(v)
		if err != nil {
			return err
		}
		rep.Type = string(e.Type())
		rep.SessionID, _ = wire.TryGetEventSessionID(e)
		rep.MachineID, _ = wire.TryGetEventMachineID(e)
	default:
		return errUnknownKind
	}
	return nil
}

func describeUpdate(u wire.Update, rep *report) {
	rep.Type = string(u.Type())
	rep.SessionID, _ = wire.TryGetSessionID(u)
	rep.MachineID, _ = wire.TryGetMachineID(u)
}
