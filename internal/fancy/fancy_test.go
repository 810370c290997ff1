package fancy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateString(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		input  string
		max    int
		expect string
	}{
		{"short", "abc", 10, "abc"},
		{"exact", "abcdef", 6, "abcdef"},
		{"long", "abcdefghij", 6, "abc..."},
		{"tiny limit", "abcdef", 2, "ab"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, TruncateString(tc.input, tc.max))
		})
	}
}

func TestTree(t *testing.T) {
	t.Parallel()

	tr := Tree()
	tr.Root("root")
	tr.Child("first")
	tr.Child(BranchNode("Section", "(2)").Child("a").Child("b"))

	out := tr.String()
	assert.Contains(t, out, "root")
	assert.Contains(t, out, "first")
	assert.Contains(t, out, "Section")
	assert.Contains(t, out, "(2)")
	assert.Contains(t, out, "b")
}

func TestStyleHelpers(t *testing.T) {
	t.Parallel()
	for _, fn := range []func(string) string{SchemeText, ModeText, EndpointText, URIText, ExtensionText, ErrorText} {
		assert.Contains(t, fn("value"), "value")
	}
}
