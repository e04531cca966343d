package attributes

// GuestNamespace is the guest attribute namespace the installer writes to.
const GuestNamespace = "outline"

// Entry is one pre-structured guest attribute.
type Entry struct {
	Namespace string
	Key       string
	Value     string
}

// FromEntries builds a snapshot from guest attribute entries. Values are taken
// verbatim; entries from other namespaces are ignored when a namespace is set.
func FromEntries(entries []Entry) Snapshot {
	values := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.Key == "" {
			continue
		}
		if e.Namespace != "" && e.Namespace != GuestNamespace {
			continue
		}
		values[e.Key] = e.Value
	}
	return NewSnapshot(values)
}
