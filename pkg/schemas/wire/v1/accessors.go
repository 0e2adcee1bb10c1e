package wire

import "fmt"

// Carrier tables: which variants carry a session or machine id, and under
// which wire field. Field names drifted historically, so this is an explicit
// list rather than a naming convention. A variant using a legacy spelling is
// added here and in the matching TryGet switch; call sites never change.
var (
	updateSessionIDFields = map[UpdateType]string{
		TypeNewSession:     "sid",
		TypeUpdateSession:  "sid",
		TypeDeleteSession:  "sid",
		TypeArchiveSession: "sid",
		TypeNewMessage:     "sid",
	}
	updateMachineIDFields = map[UpdateType]string{
		TypeNewMachine:    "machineId",
		TypeUpdateMachine: "machineId",
		TypeDeleteMachine: "machineId",
	}
	eventSessionIDFields = map[EventType]string{
		TypeActivity: "sid",
		TypeUsage:    "sid",
	}
	eventMachineIDFields = map[EventType]string{
		TypeMachineActivity:     "machineId",
		TypeMachineStatus:       "machineId",
		TypeMachineDisconnected: "machineId",
	}
)

// SessionIDField returns the wire field holding the session id of t.
func SessionIDField(t UpdateType) (string, bool) {
	f, ok := updateSessionIDFields[t]
	return f, ok
}

// MachineIDField returns the wire field holding the machine id of t.
func MachineIDField(t UpdateType) (string, bool) {
	f, ok := updateMachineIDFields[t]
	return f, ok
}

// EventSessionIDField is SessionIDField for events.
func EventSessionIDField(t EventType) (string, bool) {
	f, ok := eventSessionIDFields[t]
	return f, ok
}

// EventMachineIDField is MachineIDField for events.
func EventMachineIDField(t EventType) (string, bool) {
	f, ok := eventMachineIDFields[t]
	return f, ok
}

// ---- durable updates ----

// TryGetSessionID returns the session id of u, if its variant carries one.
// A nil variant pointer carries nothing.
func TryGetSessionID(u Update) (string, bool) {
	switch v := u.(type) {
	case *NewSession:
		if v == nil {
			return "", false
		}
		return v.SID, true
	case *UpdateSession:
		if v == nil {
			return "", false
		}
		return v.SID, true
	case *DeleteSession:
		if v == nil {
			return "", false
		}
		return v.SID, true
	case *ArchiveSession:
		if v == nil {
			return "", false
		}
		return v.SID, true
	case *NewMessage:
		if v == nil {
			return "", false
		}
		return v.SID, true
	}
	return "", false
}

// HasSessionID reports whether u's variant carries a session id.
func HasSessionID(u Update) bool {
	_, ok := TryGetSessionID(u)
	return ok
}

// SessionID returns the session id of u. Calling it on a variant without one
// is a programming error and panics.
func SessionID(u Update) string {
	id, ok := TryGetSessionID(u)
	if !ok {
		panic(fmt.Sprintf("wire: SessionID called on %s, which carries no session id", updateName(u)))
	}
	return id
}

// TryGetMachineID returns the machine id of u, if its variant carries one.
func TryGetMachineID(u Update) (string, bool) {
	switch v := u.(type) {
	case *NewMachine:
		if v == nil {
			return "", false
		}
		return v.MachineID, true
	case *UpdateMachine:
		if v == nil {
			return "", false
		}
		return v.MachineID, true
	case *DeleteMachine:
		if v == nil {
			return "", false
		}
		return v.MachineID, true
	}
	return "", false
}

// HasMachineID reports whether u's variant carries a machine id.
func HasMachineID(u Update) bool {
	_, ok := TryGetMachineID(u)
	return ok
}

// MachineID returns the machine id of u and panics if it has none.
func MachineID(u Update) string {
	id, ok := TryGetMachineID(u)
	if !ok {
		panic(fmt.Sprintf("wire: MachineID called on %s, which carries no machine id", updateName(u)))
	}
	return id
}

// SessionIDs returns the session ids of the session-carrying updates, in order.
func SessionIDs(updates []Update) []string {
	var out []string
	for _, u := range updates {
		if HasSessionID(u) {
			out = append(out, SessionID(u))
		}
	}
	return out
}

// MachineIDs returns the machine ids of the machine-carrying updates, in order.
func MachineIDs(updates []Update) []string {
	var out []string
	for _, u := range updates {
		if HasMachineID(u) {
			out = append(out, MachineID(u))
		}
	}
	return out
}

// ---- ephemeral events ----

// TryGetEventSessionID returns the session id of e, if its variant carries one.
func TryGetEventSessionID(e Event) (string, bool) {
	switch v := e.(type) {
	case *Activity:
		if v == nil {
			return "", false
		}
		return v.SID, true
	case *Usage:
		if v == nil {
			return "", false
		}
		return v.SID, true
	}
	return "", false
}

// EventHasSessionID reports whether e's variant carries a session id.
func EventHasSessionID(e Event) bool {
	_, ok := TryGetEventSessionID(e)
	return ok
}

// EventSessionID returns the session id of e and panics if it has none.
func EventSessionID(e Event) string {
	id, ok := TryGetEventSessionID(e)
	if !ok {
		panic(fmt.Sprintf("wire: EventSessionID called on %s, which carries no session id", eventName(e)))
	}
	return id
}

// TryGetEventMachineID returns the machine id of e, if its variant carries one.
func TryGetEventMachineID(e Event) (string, bool) {
	switch v := e.(type) {
	case *MachineActivity:
		if v == nil {
			return "", false
		}
		return v.MachineID, true
	case *MachineStatus:
		if v == nil {
			return "", false
		}
		return v.MachineID, true
	case *MachineDisconnected:
		if v == nil {
			return "", false
		}
		return v.MachineID, true
	}
	return "", false
}

// EventHasMachineID reports whether e's variant carries a machine id.
func EventHasMachineID(e Event) bool {
	_, ok := TryGetEventMachineID(e)
	return ok
}

// EventMachineID returns the machine id of e and panics if it has none.
func EventMachineID(e Event) string {
	id, ok := TryGetEventMachineID(e)
	if !ok {
		panic(fmt.Sprintf("wire: EventMachineID called on %s, which carries no machine id", eventName(e)))
	}
	return id
}

func updateName(u Update) string {
	if u == nil {
		return "<nil update>"
	}
	return string(u.Type())
}

func eventName(e Event) string {
	if e == nil {
		return "<nil event>"
	}
	return string(e.Type())
}
