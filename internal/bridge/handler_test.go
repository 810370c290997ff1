package bridge

import (
	"context"
	"errors"
	"testing"

	"github.com/atlanticdynamic/urlrelay/internal/uri"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestExtensionIDEquals(t *testing.T) {
	t.Parallel()
	assert.True(t, ExtensionIDEquals("Foo.Bar", "foo.bar"))
	assert.True(t, ExtensionIDEquals("", ""))
	assert.False(t, ExtensionIDEquals("foo.bar", "foo.baz"))
}

func TestExtensionHandler(t *testing.T) {
	t.Parallel()

	t.Run("authority mismatch is not forwarded", func(t *testing.T) {
		proxy := newMockProxy(nil)
		h := &extensionHandler{proxy: proxy, handle: 7, extensionID: "foo.bar"}

		accepted, err := h.HandleURL(context.Background(), uri.MustParse("myapp://other.ext/x"))
		require.NoError(t, err)
		assert.False(t, accepted)
		proxy.AssertNotCalled(t, "HandleExternalURI", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("matching authority is forwarded and accepted", func(t *testing.T) {
		proxy := newMockProxy(nil)
		h := &extensionHandler{proxy: proxy, handle: 7, extensionID: "foo.bar"}
		u := uri.MustParse("myapp://FOO.bar/x?y=1")

		accepted, err := h.HandleURL(context.Background(), u)
		require.NoError(t, err)
		assert.True(t, accepted)
		proxy.AssertCalled(t, "HandleExternalURI", mock.Anything, int32(7), u)
	})

	t.Run("forward failure is not accepted", func(t *testing.T) {
		boom := errors.New("host gone")
		proxy := newMockProxy(boom)
		h := &extensionHandler{proxy: proxy, handle: 3, extensionID: "foo.bar"}

		accepted, err := h.HandleURL(context.Background(), uri.MustParse("myapp://foo.bar"))
		require.ErrorIs(t, err, boom)
		assert.False(t, accepted)
	})
}
