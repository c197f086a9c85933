// internal/ruleid/id.go
package ruleid

import (
	"cmp"
	"fmt"
	"regexp"
	"strings"
)

// DefaultNamespace is assumed when a raw identifier carries no namespace.
const DefaultNamespace = "minecraft"

var (
	namespaceRegex = regexp.MustCompile(`^[a-z0-9_.-]+$`)
	pathRegex      = regexp.MustCompile(`^[a-z0-9_./-]+$`)
)

// ID identifies a single production rule within one graph build.
type ID struct {
	Namespace string
	Path      string
}

// New builds an ID from already validated parts.
func New(namespace, path string) ID {
	return ID{Namespace: namespace, Path: path}
}

// Parse creates an ID from its canonical string representation.
func Parse(raw string) (ID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ID{}, fmt.Errorf("identifier cannot be empty")
	}

	namespace, path, found := strings.Cut(raw, ":")
	if !found {
		namespace, path = DefaultNamespace, raw
	}
	if namespace == "" {
		return ID{}, fmt.Errorf("identifier %q has an empty namespace", raw)
	}
	if path == "" {
		return ID{}, fmt.Errorf("identifier %q has an empty path", raw)
	}
	if !namespaceRegex.MatchString(namespace) {
		return ID{}, fmt.Errorf("invalid namespace %q in identifier %q", namespace, raw)
	}
	if !pathRegex.MatchString(path) {
		return ID{}, fmt.Errorf("invalid path %q in identifier %q", path, raw)
	}
	return ID{Namespace: namespace, Path: path}, nil
}

// MustParse is like Parse but panics on malformed input. Intended for tests
// and static tables.
func MustParse(raw string) ID {
	id, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return id
}

// String serializes the ID into its canonical `namespace:path` form.
func (id ID) String() string {
	if id.IsZero() {
		return ""
	}
	return id.Namespace + ":" + id.Path
}

// IsZero reports whether the ID is the zero value.
func (id ID) IsZero() bool {
	return id.Namespace == "" && id.Path == ""
}

// Compare orders IDs by namespace, then path. It returns -1, 0 or +1.
func Compare(a, b ID) int {
	if c := cmp.Compare(a.Namespace, b.Namespace); c != 0 {
		return c
	}
	return cmp.Compare(a.Path, b.Path)
}

// Less reports whether a sorts before b.
func Less(a, b ID) bool {
	return Compare(a, b) < 0
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
