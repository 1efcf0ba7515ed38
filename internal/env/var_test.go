package env

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterStringVar(t *testing.T) {
	tests := []struct {
		name         string
		envName      string
		defaultValue string
		envValue     string
		setEnv       bool
		want         string
	}{
		{name: "returns default when unset", envName: "TEST_STRING_DEFAULT", defaultValue: "mydefault", setEnv: false, want: "mydefault"},
		{name: "returns env value when set", envName: "TEST_STRING_SET", defaultValue: "mydefault", envValue: "override", setEnv: true, want: "override"},
		{name: "returns empty string when set empty", envName: "TEST_STRING_EMPTY", defaultValue: "mydefault", envValue: "", setEnv: true, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv(tt.envName, tt.envValue)
			}
			sv := RegisterStringVar(tt.envName, tt.defaultValue, "test desc", ComponentTesting)
			assert.Equal(t, tt.want, sv.Get())
		})
	}
}

func TestStringVarLookup(t *testing.T) {
	sv := RegisterStringVar("TEST_STRING_LOOKUP", "fallback", "test desc", ComponentTesting)

	val, ok := sv.Lookup()
	assert.False(t, ok)
	assert.Equal(t, "fallback", val)

	t.Setenv("TEST_STRING_LOOKUP", "set")
	val, ok = sv.Lookup()
	assert.True(t, ok)
	assert.Equal(t, "set", val)
}

func TestStringVarList(t *testing.T) {
	sv := RegisterStringVar("TEST_STRING_LIST", "a,b", "test desc", ComponentTesting)
	assert.Equal(t, []string{"a", "b"}, sv.List())

	t.Setenv("TEST_STRING_LIST", " finance-db , ,hr-payroll-db,")
	assert.Equal(t, []string{"finance-db", "hr-payroll-db"}, sv.List())

	t.Setenv("TEST_STRING_LIST", "")
	assert.Empty(t, sv.List())
}

func TestRegisterRequiredStringVar(t *testing.T) {
	RegisterRequiredStringVar("TEST_REQUIRED", "test desc", ComponentTesting)

	v, ok := VarByName("TEST_REQUIRED")
	require.True(t, ok, "expected TEST_REQUIRED to be registered")
	assert.True(t, v.Required)
	assert.Empty(t, v.DefaultValue)
}

func TestRegisterBoolVar(t *testing.T) {
	tests := []struct {
		name         string
		envName      string
		defaultValue bool
		envValue     string
		setEnv       bool
		want         bool
	}{
		{name: "returns default when unset", envName: "TEST_BOOL_DEFAULT", defaultValue: false, setEnv: false, want: false},
		{name: "returns true when set", envName: "TEST_BOOL_TRUE", defaultValue: false, envValue: "true", setEnv: true, want: true},
		{name: "returns false when set", envName: "TEST_BOOL_FALSE", defaultValue: true, envValue: "false", setEnv: true, want: false},
		{name: "returns default on invalid", envName: "TEST_BOOL_INVALID", defaultValue: true, envValue: "notabool", setEnv: true, want: true},
		{name: "accepts 1 as true", envName: "TEST_BOOL_ONE", defaultValue: false, envValue: "1", setEnv: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv(tt.envName, tt.envValue)
			}
			bv := RegisterBoolVar(tt.envName, tt.defaultValue, "test desc", ComponentTesting)
			assert.Equal(t, tt.want, bv.Get())
		})
	}
}

func TestRegisterDurationVar(t *testing.T) {
	dv := RegisterDurationVar("TEST_DURATION", 5*time.Second, "test desc", ComponentTesting)
	assert.Equal(t, 5*time.Second, dv.Get())

	t.Setenv("TEST_DURATION", "250ms")
	assert.Equal(t, 250*time.Millisecond, dv.Get())

	t.Setenv("TEST_DURATION", "soon")
	assert.Equal(t, 5*time.Second, dv.Get(), "invalid values fall back to the default")
}

func TestExportMarkdown(t *testing.T) {
	out := ExportMarkdown(string(ComponentRelay))

	assert.Contains(t, out, "## relay")
	assert.Contains(t, out, "`AGENT_ID`")
	assert.Contains(t, out, "**(required)**")
	assert.NotContains(t, out, "`PORT`", "server variables should be filtered out")
}

func TestExportJSON(t *testing.T) {
	var vars []Var
	require.NoError(t, json.Unmarshal([]byte(ExportJSON("all")), &vars))

	var found *Var
	for i := range vars {
		if vars[i].Name == SensitiveResources.Name() {
			found = &vars[i]
		}
	}
	require.NotNil(t, found, "expected SENSITIVE_RESOURCES in export")
	assert.Equal(t, "finance-db,hr-payroll-db", found.DefaultValue)
	assert.Equal(t, TypeString, found.Type)
	assert.Equal(t, ComponentDispatchers, found.Component)
}

func TestVarTypeJSON(t *testing.T) {
	for _, vt := range []VarType{TypeString, TypeBool, TypeDuration} {
		data, err := json.Marshal(vt)
		require.NoError(t, err)

		var got VarType
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, vt, got)
	}

	var vt VarType
	assert.EqualError(t, json.Unmarshal([]byte(`"Float"`), &vt), `unknown variable type "Float"`)
	assert.Error(t, json.Unmarshal([]byte(`1`), &vt))
}
