package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JCrossman/dats-booking-sub000/database/sessionstore"
	"github.com/JCrossman/dats-booking-sub000/models"
	"github.com/JCrossman/dats-booking-sub000/services/crypto"
	"github.com/JCrossman/dats-booking-sub000/services/soap"
)

const clientInfoResponse = `<?xml version="1.0" encoding="utf-8"?>` +
	`<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"><soap:Body>` +
	`<GetClientInfoResponse><ClientInfo><ClientId>12345</ClientId></ClientInfo></GetClientInfoResponse>` +
	`</soap:Body></soap:Envelope>`

// fakeRemote models the legacy service's login conversation: a seeded
// anonymous cookie, a form post, and a home page that completes the cookie
// set.
type fakeRemote struct {
	password     string
	loginGets    int
	loginPosts   int
	homeGets     int
	logoutGets   int
	infoCalls    int
	ambiguous    bool
	infoClientID string
}

func (f *fakeRemote) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+soap.LoginPath, func(w http.ResponseWriter, r *http.Request) {
		f.loginGets++
		http.SetCookie(w, &http.Cookie{Name: "ASP.NET_SessionId", Value: "anon1"})
		fmt.Fprint(w, "<html><form>Client Number</form></html>")
	})
	mux.HandleFunc("POST "+soap.LoginPath, func(w http.ResponseWriter, r *http.Request) {
		f.loginPosts++
		if f.ambiguous {
			fmt.Fprint(w, "<html>Scheduled maintenance in progress.</html>")
			return
		}
		if r.FormValue("password") != f.password {
			fmt.Fprint(w, "<html>The password you entered is incorrect.</html>")
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "PassAuth", Value: "granted"})
		fmt.Fprint(w, "<html>Welcome. <a href=\"/pass/logout\">Logout</a></html>")
	})
	mux.HandleFunc("GET "+soap.HomePath, func(w http.ResponseWriter, r *http.Request) {
		f.homeGets++
		http.SetCookie(w, &http.Cookie{Name: "PassHome", Value: "ready"})
		fmt.Fprint(w, "<html>My Trips</html>")
	})
	mux.HandleFunc("GET "+soap.LogoutPath, func(w http.ResponseWriter, r *http.Request) {
		f.logoutGets++
		fmt.Fprint(w, "<html>Goodbye</html>")
	})
	mux.HandleFunc("POST "+soap.ServicePath, func(w http.ResponseWriter, r *http.Request) {
		f.infoCalls++
		if f.infoClientID == "" {
			fmt.Fprint(w, `<?xml version="1.0"?><soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"><soap:Body><GetClientInfoResponse/></soap:Body></soap:Envelope>`)
			return
		}
		fmt.Fprint(w, clientInfoResponse)
	})
	return mux
}

func newTestService(t *testing.T, baseURL string) *Service {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return &Service{
		Factory: soap.NewFactory(soap.Config{
			BaseURL:     baseURL,
			Timeout:     5 * time.Second,
			MaxAttempts: 1,
		}, zap.NewNop()),
		Store:      sessionstore.NewFileStore(filepath.Join(t.TempDir(), "session.json"), key),
		SessionTTL: 4 * time.Hour,
		Logger:     zap.NewNop(),
	}
}

func TestConnect(t *testing.T) {
	remote := &fakeRemote{password: "hunter2", infoClientID: "12345"}
	srv := httptest.NewServer(remote.handler())
	defer srv.Close()

	svc := newTestService(t, srv.URL)
	sess, err := svc.Connect(context.Background(), "12345", "hunter2")
	require.NoError(t, err)

	require.Equal(t, "12345", sess.OwnerID)
	require.Contains(t, sess.Token, "ASP.NET_SessionId=anon1")
	require.Contains(t, sess.Token, "PassAuth=granted")
	require.Contains(t, sess.Token, "PassHome=ready")
	require.WithinDuration(t, time.Now().Add(4*time.Hour), sess.ExpiresAt, time.Minute)

	// The full conversation ran in order and the session was validated.
	require.Equal(t, 1, remote.loginGets)
	require.Equal(t, 1, remote.loginPosts)
	require.Equal(t, 1, remote.homeGets)
	require.Equal(t, 1, remote.infoCalls)

	// The session is persisted and resumable.
	_, stored, err := svc.Resume(context.Background(), "12345")
	require.NoError(t, err)
	require.Equal(t, sess.Token, stored.Token)
}

func TestConnectBadPassword(t *testing.T) {
	remote := &fakeRemote{password: "hunter2", infoClientID: "12345"}
	srv := httptest.NewServer(remote.handler())
	defer srv.Close()

	svc := newTestService(t, srv.URL)
	_, err := svc.Connect(context.Background(), "12345", "wrong")
	require.Equal(t, models.CodeAuthFailure, models.CodeOf(err))

	// Nothing was persisted.
	_, _, err = svc.Resume(context.Background(), "12345")
	require.Equal(t, models.CodeAuthFailure, models.CodeOf(err))
}

func TestConnectAmbiguousResponse(t *testing.T) {
	remote := &fakeRemote{password: "hunter2", ambiguous: true}
	srv := httptest.NewServer(remote.handler())
	defer srv.Close()

	svc := newTestService(t, srv.URL)
	_, err := svc.Connect(context.Background(), "12345", "hunter2")
	// An unrecognized page is never treated as success or bad credentials.
	require.Equal(t, models.CodeSystemError, models.CodeOf(err))
	require.Equal(t, 0, remote.homeGets)
}

func TestConnectValidationFails(t *testing.T) {
	remote := &fakeRemote{password: "hunter2", infoClientID: ""}
	srv := httptest.NewServer(remote.handler())
	defer srv.Close()

	svc := newTestService(t, srv.URL)
	_, err := svc.Connect(context.Background(), "12345", "hunter2")
	require.Equal(t, models.CodeAuthFailure, models.CodeOf(err))
	require.Equal(t, 1, remote.infoCalls)
}

func TestConnectNoSeedCookie(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>no cookies here</html>")
	}))
	defer srv.Close()

	svc := newTestService(t, srv.URL)
	_, err := svc.Connect(context.Background(), "12345", "hunter2")
	require.Equal(t, models.CodeAuthFailure, models.CodeOf(err))
}

func TestResumeExpiredSession(t *testing.T) {
	svc := newTestService(t, "http://unused.invalid")
	stale := models.Session{
		Token:     "ASP.NET_SessionId=old",
		OwnerID:   "12345",
		CreatedAt: time.Now().Add(-5 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, svc.Store.Save(context.Background(), "12345", stale))

	_, _, err := svc.Resume(context.Background(), "12345")
	require.Equal(t, models.CodeSessionExpired, models.CodeOf(err))

	// The stale record was purged; the next attempt reports not connected.
	_, _, err = svc.Resume(context.Background(), "12345")
	require.Equal(t, models.CodeAuthFailure, models.CodeOf(err))
}

func TestResumeRestoresCookies(t *testing.T) {
	svc := newTestService(t, "http://unused.invalid")
	sess := models.Session{
		Token:     "ASP.NET_SessionId=abc; PassAuth=granted",
		OwnerID:   "12345",
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, svc.Store.Save(context.Background(), "12345", sess))

	client, _, err := svc.Resume(context.Background(), "12345")
	require.NoError(t, err)
	require.Equal(t, sess.Token, client.SessionToken())
	require.Equal(t, 2, client.CookieCount())
}

func TestDisconnect(t *testing.T) {
	remote := &fakeRemote{password: "hunter2", infoClientID: "12345"}
	srv := httptest.NewServer(remote.handler())
	defer srv.Close()

	svc := newTestService(t, srv.URL)
	_, err := svc.Connect(context.Background(), "12345", "hunter2")
	require.NoError(t, err)

	require.NoError(t, svc.Disconnect(context.Background(), "12345"))
	require.Equal(t, 1, remote.logoutGets)

	_, _, err = svc.Resume(context.Background(), "12345")
	require.Equal(t, models.CodeAuthFailure, models.CodeOf(err))
}

func TestDisconnectWithoutSession(t *testing.T) {
	svc := newTestService(t, "http://unused.invalid")
	// No session on file: the delete is still clean.
	require.NoError(t, svc.Disconnect(context.Background(), "12345"))
}
