package interpolation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(vars map[string]string) LookupFunc {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

func TestExpand(t *testing.T) {
	t.Parallel()
	e := New(lookupFrom(map[string]string{"HOST": "example.com", "EMPTY": ""}))

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "no references", input: "localhost:8080", want: "localhost:8080"},
		{name: "set variable", input: "https://${HOST}", want: "https://example.com"},
		{name: "set but empty", input: "x${EMPTY}y", want: "xy"},
		{name: "default used", input: "${PORT:8080}", want: "8080"},
		{name: "empty default", input: "a${PORT:}b", want: "ab"},
		{name: "default ignored when set", input: "${HOST:other}", want: "example.com"},
		{name: "several", input: "${HOST}:${PORT:443}", want: "example.com:443"},
		{name: "missing", input: "${MISSING}/x", want: "${MISSING}/x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := e.Expand(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUndefinedVariable)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("URLRELAY_TEST_ORIGIN", "https://relay.test")
	got, err := ExpandEnv("${URLRELAY_TEST_ORIGIN}/cb")
	require.NoError(t, err)
	assert.Equal(t, "https://relay.test/cb", got)
}

type section struct {
	Listen string   `interpolate:"env"`
	IDs    []string `interpolate:"env"`
	Plain  string
}

type root struct {
	Origin  string `interpolate:"env"`
	Section section
	hidden  string `interpolate:"env"`
}

func TestStruct(t *testing.T) {
	t.Parallel()
	e := New(lookupFrom(map[string]string{"PORT": "9000", "EXT": "pub.ext"}))

	v := &root{
		Origin: "http://localhost:${PORT}",
		Section: section{
			Listen: ":${PORT}",
			IDs:    []string{"${EXT}", "", "fixed"},
			Plain:  "${PORT}",
		},
		hidden: "${PORT}",
	}
	require.NoError(t, e.Struct(v))

	assert.Equal(t, "http://localhost:9000", v.Origin)
	assert.Equal(t, ":9000", v.Section.Listen)
	assert.Equal(t, []string{"pub.ext", "", "fixed"}, v.Section.IDs)
	assert.Equal(t, "${PORT}", v.Section.Plain, "untagged fields are left alone")
	assert.Equal(t, "${PORT}", v.hidden)
}

func TestStruct_Errors(t *testing.T) {
	t.Parallel()
	e := New(lookupFrom(nil))

	err := e.Struct(&root{Origin: "${A}", Section: section{IDs: []string{"${B}"}}})
	require.ErrorIs(t, err, ErrUndefinedVariable)
	assert.Contains(t, err.Error(), "Origin")
	assert.Contains(t, err.Error(), "Section.IDs[0]")

	require.Error(t, e.Struct(root{}))
	require.Error(t, e.Struct((*root)(nil)))
}
