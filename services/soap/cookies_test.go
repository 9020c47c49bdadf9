package soap

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func responseWithCookies(cookies ...string) *http.Response {
	h := http.Header{}
	for _, c := range cookies {
		h.Add("Set-Cookie", c)
	}
	return &http.Response{Header: h}
}

func TestCookieJarMergesAcrossResponses(t *testing.T) {
	jar := newCookieJar()

	jar.Absorb(responseWithCookies("ASP.NET_SessionId=abc123; path=/; HttpOnly"))
	jar.Absorb(responseWithCookies("PassToken=t0k3n; path=/pass"))

	require.Equal(t, 2, jar.Size())
	require.Equal(t, "ASP.NET_SessionId=abc123; PassToken=t0k3n", jar.Header())
}

func TestCookieJarRepeatedNameKeepsPosition(t *testing.T) {
	jar := newCookieJar()

	jar.Absorb(responseWithCookies("ASP.NET_SessionId=old; path=/"))
	jar.Absorb(responseWithCookies("PassToken=t0k3n"))
	// The service reissues the session cookie mid-conversation; only the
	// value changes.
	jar.Absorb(responseWithCookies("ASP.NET_SessionId=new; path=/"))

	require.Equal(t, 2, jar.Size())
	require.Equal(t, "ASP.NET_SessionId=new; PassToken=t0k3n", jar.Header())
}

func TestCookieJarRestoreRoundTrip(t *testing.T) {
	jar := newCookieJar()
	jar.Absorb(responseWithCookies("ASP.NET_SessionId=abc", "PassToken=xyz"))

	restored := newCookieJar()
	restored.Restore(jar.Header())
	require.Equal(t, jar.Header(), restored.Header())
}

func TestCookieJarRestoreReplacesContents(t *testing.T) {
	jar := newCookieJar()
	jar.Absorb(responseWithCookies("Stale=1"))

	jar.Restore("A=1; B=2")
	require.Equal(t, 2, jar.Size())
	require.Equal(t, "A=1; B=2", jar.Header())
}

func TestCookieJarRestoreIgnoresMalformedParts(t *testing.T) {
	jar := newCookieJar()
	jar.Restore("A=1; ; noequals; =orphan; B=2")
	require.Equal(t, 2, jar.Size())
	require.Equal(t, "A=1; B=2", jar.Header())
}

func TestCookieJarEmpty(t *testing.T) {
	jar := newCookieJar()
	require.Equal(t, 0, jar.Size())
	require.Equal(t, "", jar.Header())
}
