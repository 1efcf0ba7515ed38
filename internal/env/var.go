// Package env provides a centralized registry for the environment variables
// read by the opsbridge handlers. Variables are self-registering: calling any
// Register* function records the variable's metadata (name, default,
// description, type, component) in a process-wide registry and returns a typed
// accessor.
//
// The registry backs `opsctl env`, which prints the documentation for every
// variable a deployment may set.
package env

import (
	"cmp"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// VarType identifies the data type of an environment variable.
type VarType int

const (
	TypeString VarType = iota
	TypeBool
	TypeDuration
)

// String returns the human-readable name of a VarType.
func (v VarType) String() string {
	switch v {
	case TypeString:
		return "String"
	case TypeBool:
		return "Boolean"
	case TypeDuration:
		return "Duration"
	default:
		return "Unknown"
	}
}

// MarshalJSON serializes VarType as its string representation.
func (v VarType) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// UnmarshalJSON parses the string representation written by MarshalJSON.
func (v *VarType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for _, t := range []VarType{TypeString, TypeBool, TypeDuration} {
		if t.String() == s {
			*v = t
			return nil
		}
	}
	return fmt.Errorf("unknown variable type %q", s)
}

// Component identifies which handler consumes the variable.
type Component string

const (
	ComponentRelay       Component = "relay"
	ComponentDispatchers Component = "dispatchers"
	ComponentServer      Component = "server"
	ComponentRuntime     Component = "runtime"
	ComponentTesting     Component = "testing"
)

// Var holds the metadata for a single registered environment variable.
type Var struct {
	// Name is the environment variable name (e.g. "AGENT_ID").
	Name string `json:"name"`
	// DefaultValue is the stringified default value.
	DefaultValue string `json:"default"`
	// Description explains what this variable controls.
	Description string `json:"description"`
	// Type is the data type.
	Type VarType `json:"type"`
	// Component identifies which handler uses this variable.
	Component Component `json:"component"`
	// Required marks variables without which the owning component refuses to start.
	Required bool `json:"required"`
	// Hidden, when true, excludes the variable from generated documentation.
	Hidden bool `json:"-"`
}

var (
	allVars = make(map[string]Var)
	mu      sync.Mutex
)

func register(v Var) {
	mu.Lock()
	defer mu.Unlock()
	allVars[v.Name] = v
}

// VarDescriptions returns all registered variables sorted by name.
func VarDescriptions() []Var {
	mu.Lock()
	defer mu.Unlock()

	out := make([]Var, 0, len(allVars))
	for _, v := range allVars {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b Var) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// VarByName returns the metadata for a registered variable, or false if not found.
func VarByName(name string) (Var, bool) {
	mu.Lock()
	defer mu.Unlock()
	v, ok := allVars[name]
	return v, ok
}

// ---------- StringVar ----------

// StringVar is a registered environment variable that holds a string value.
type StringVar struct {
	v Var
}

// RegisterStringVar registers a string environment variable and returns a typed accessor.
func RegisterStringVar(name, defaultValue, description string, component Component) StringVar {
	v := Var{
		Name:         name,
		DefaultValue: defaultValue,
		Description:  description,
		Type:         TypeString,
		Component:    component,
	}
	register(v)
	return StringVar{v: v}
}

// RegisterRequiredStringVar registers a string variable that has no default and
// must be set for its component to start.
func RegisterRequiredStringVar(name, description string, component Component) StringVar {
	v := Var{
		Name:        name,
		Description: description,
		Type:        TypeString,
		Component:   component,
		Required:    true,
	}
	register(v)
	return StringVar{v: v}
}

// Get returns the current value of the environment variable, or the default.
func (s StringVar) Get() string {
	if val, ok := os.LookupEnv(s.v.Name); ok {
		return val
	}
	return s.v.DefaultValue
}

// Lookup returns the value and whether the variable was set.
func (s StringVar) Lookup() (string, bool) {
	val, ok := os.LookupEnv(s.v.Name)
	if !ok {
		return s.v.DefaultValue, false
	}
	return val, true
}

// Name returns the environment variable name.
func (s StringVar) Name() string { return s.v.Name }

// DefaultValue returns the default value.
func (s StringVar) DefaultValue() string { return s.v.DefaultValue }

// List splits a comma separated value into trimmed, non-empty items.
func (s StringVar) List() []string {
	var out []string
	for _, item := range strings.Split(s.Get(), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// ---------- BoolVar ----------

// BoolVar is a registered environment variable that holds a boolean value.
type BoolVar struct {
	v            Var
	defaultValue bool
}

// RegisterBoolVar registers a boolean environment variable and returns a typed accessor.
func RegisterBoolVar(name string, defaultValue bool, description string, component Component) BoolVar {
	v := Var{
		Name:         name,
		DefaultValue: strconv.FormatBool(defaultValue),
		Description:  description,
		Type:         TypeBool,
		Component:    component,
	}
	register(v)
	return BoolVar{v: v, defaultValue: defaultValue}
}

// Get returns the current value of the environment variable, or the default.
func (b BoolVar) Get() bool {
	if val, ok := os.LookupEnv(b.v.Name); ok {
		parsed, err := strconv.ParseBool(val)
		if err == nil {
			return parsed
		}
	}
	return b.defaultValue
}

// Name returns the environment variable name.
func (b BoolVar) Name() string { return b.v.Name }

// ---------- DurationVar ----------

// DurationVar is a registered environment variable that holds a time.Duration value.
type DurationVar struct {
	v            Var
	defaultValue time.Duration
}

// RegisterDurationVar registers a duration environment variable and returns a typed accessor.
func RegisterDurationVar(name string, defaultValue time.Duration, description string, component Component) DurationVar {
	v := Var{
		Name:         name,
		DefaultValue: defaultValue.String(),
		Description:  description,
		Type:         TypeDuration,
		Component:    component,
	}
	register(v)
	return DurationVar{v: v, defaultValue: defaultValue}
}

// Get returns the current value of the environment variable, or the default.
func (d DurationVar) Get() time.Duration {
	if val, ok := os.LookupEnv(d.v.Name); ok {
		parsed, err := time.ParseDuration(val)
		if err == nil {
			return parsed
		}
	}
	return d.defaultValue
}

// Name returns the environment variable name.
func (d DurationVar) Name() string { return d.v.Name }

// ---------- Formatting ----------

func filtered(component string) []Var {
	vars := VarDescriptions()
	out := make([]Var, 0, len(vars))
	for _, v := range vars {
		if v.Hidden {
			continue
		}
		if component != "" && component != "all" && string(v.Component) != component {
			continue
		}
		out = append(out, v)
	}
	return out
}

// ExportMarkdown generates a markdown document listing all registered variables.
func ExportMarkdown(component string) string {
	var sb strings.Builder

	sb.WriteString("# opsbridge Environment Variables\n\n")

	grouped := make(map[Component][]Var)
	for _, v := range filtered(component) {
		grouped[v.Component] = append(grouped[v.Component], v)
	}

	// Sort component keys for deterministic output
	components := make([]Component, 0, len(grouped))
	for c := range grouped {
		components = append(components, c)
	}
	slices.SortFunc(components, func(a, b Component) int {
		return cmp.Compare(string(a), string(b))
	})

	for _, comp := range components {
		fmt.Fprintf(&sb, "## %s\n\n", comp)
		sb.WriteString("| Variable | Type | Default | Description |\n")
		sb.WriteString("|----------|------|---------|-------------|\n")
		for _, v := range grouped[comp] {
			required := ""
			if v.Required {
				required = " **(required)**"
			}
			defaultVal := v.DefaultValue
			if defaultVal == "" {
				defaultVal = "(none)"
			}
			fmt.Fprintf(&sb, "| `%s` | %s | `%s` | %s%s |\n",
				v.Name, v.Type, defaultVal, v.Description, required)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// ExportJSON generates a JSON array of all registered variables.
func ExportJSON(component string) string {
	b, err := json.MarshalIndent(filtered(component), "", "  ")
	if err != nil {
		return "[]\n"
	}
	return string(b) + "\n"
}
