package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptions(t *testing.T) {
	t.Setenv("CHROME_PATH", "/opt/chrome/chrome")
	opts := DefaultOptions()
	assert.Equal(t, "/opt/chrome/chrome", opts.ExecPath)
	assert.Equal(t, DefaultTabTimeout, opts.TabTimeout)
	assert.Equal(t, DefaultMaxTabs, opts.MaxTabs)
}

func TestAvailable_MissingChromePath(t *testing.T) {
	t.Setenv("CHROME_PATH", "/nonexistent/chrome")
	assert.False(t, Available())
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("exec: not found")
	err := &Error{Message: "failed to start headless chrome", Cause: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to start headless chrome")
	assert.Equal(t, "browser error: closed", (&Error{Message: "closed"}).Error())
}

func TestBrowser_LoadHTML(t *testing.T) {
	if !Available() {
		t.Skip("chrome not available")
	}

	b, err := New(DefaultOptions())
	require.NoError(t, err)
	defer func() { _ = b.Close() }()

	tab, cancel, err := b.NewTab(context.Background())
	require.NoError(t, err)
	defer cancel()

	var text string
	err = chromedp.Run(tab,
		LoadHTML(`<html><body><p id="x">hello</p></body></html>`),
		chromedp.Text("#x", &text, chromedp.ByQuery),
	)
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestBrowser_NewTabAfterClose(t *testing.T) {
	if !Available() {
		t.Skip("chrome not available")
	}

	b, err := New(Options{TabTimeout: 5 * time.Second})
	require.NoError(t, err)
	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	_, _, err = b.NewTab(context.Background())
	var browserErr *Error
	assert.ErrorAs(t, err, &browserErr)
}
