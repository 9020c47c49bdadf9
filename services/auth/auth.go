package auth

import (
	"context"
	"encoding/xml"
	"errors"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JCrossman/dats-booking-sub000/database/sessionstore"
	"github.com/JCrossman/dats-booking-sub000/models"
	"github.com/JCrossman/dats-booking-sub000/services/soap"
)

// loginFailureMarkers are the substrings the service is known to embed in the
// login page when credentials are rejected. The list is inherently brittle;
// anything that matches neither these nor the logged-in markers is treated as
// an ambiguous failure, never as a guessed success.
var loginFailureMarkers = []string{
	"invalid client number",
	"the password you entered is incorrect",
	"invalid login",
	"login failed",
	"account is locked",
}

// loggedInMarkers indicate the response is a post-login page.
var loggedInMarkers = []string{
	"logout",
	"sign out",
	"my trips",
	"trip booking",
}

type clientInfoRequest struct {
	XMLName xml.Name `xml:"GetClientInfo"`
}

// Service establishes, resumes, and tears down remote sessions.
type Service struct {
	Factory    *soap.Factory
	Store      sessionstore.Store
	SessionTTL time.Duration
	Logger     *zap.Logger
}

// Connect performs the full login conversation: seed an anonymous cookie,
// submit credentials bound to it, confirm the outcome by scanning the body,
// finalize the session on the post-login page, and independently validate it
// before anything is persisted.
func (s *Service) Connect(ctx context.Context, clientID, password string) (*models.Session, error) {
	client := s.Factory.New()

	// Step 1: anonymous fetch seeds the initial session cookie.
	if _, err := client.Get(ctx, soap.LoginPath); err != nil {
		return nil, err
	}
	if client.CookieCount() == 0 {
		return nil, models.NewServiceError(models.CodeAuthFailure,
			"the booking service did not start a login session")
	}

	// Step 2: credentials bound to the seeded cookie.
	form := url.Values{}
	form.Set("clientId", clientID)
	form.Set("password", password)
	body, err := client.PostForm(ctx, soap.LoginPath, form)
	if err != nil {
		return nil, err
	}

	// Step 3: no structured error code exists; scan for known markers.
	lower := strings.ToLower(body)
	for _, marker := range loginFailureMarkers {
		if strings.Contains(lower, marker) {
			return nil, models.NewServiceError(models.CodeAuthFailure,
				"the booking service rejected the client number or password")
		}
	}
	if !containsAny(lower, loggedInMarkers) {
		// Unrecognized response shape: escalate, never guess success.
		s.Logger.Error("unrecognized login response shape")
		return nil, models.NewServiceError(models.CodeSystemError,
			"the booking service returned an unrecognized login response")
	}

	// Step 4: navigating to the home page finalizes the cookie set.
	if _, err := client.Get(ctx, soap.HomePath); err != nil {
		return nil, err
	}

	// Step 5: validate the session independently before declaring success.
	if err := s.validateSession(ctx, client); err != nil {
		return nil, err
	}

	now := time.Now()
	sess := models.Session{
		Token:     client.SessionToken(),
		OwnerID:   clientID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.SessionTTL),
	}
	if err := s.Store.Save(ctx, clientID, sess); err != nil {
		return nil, models.NewServiceError(models.CodeStorageError,
			"the session could not be saved").WithDetail(err.Error())
	}

	s.Logger.Info("session established", zap.String("owner", clientID))
	return &sess, nil
}

// validateSession issues an authenticated call and requires a sensible
// answer; a cookie set that looks complete can still be dead on the server.
func (s *Service) validateSession(ctx context.Context, client *soap.Client) error {
	node, err := client.Call(ctx, "GetClientInfo", clientInfoRequest{})
	if err != nil {
		var se *models.ServiceError
		if errors.As(err, &se) && se.Code == models.CodeSessionExpired {
			return models.NewServiceError(models.CodeAuthFailure,
				"the login did not produce a working session")
		}
		return err
	}
	if node.Lookup("ClientInfo/ClientId", "ClientId") == "" {
		return models.NewServiceError(models.CodeAuthFailure,
			"the login could not be verified with the booking service")
	}
	return nil
}

// Resume loads the stored session for an owner and rebuilds a conversation
// around it. A missing or expired record is an auth outcome; a backend
// failure stays a storage outcome.
func (s *Service) Resume(ctx context.Context, ownerID string) (*soap.Client, *models.Session, error) {
	sess, err := s.Store.Load(ctx, ownerID)
	if err != nil {
		if errors.Is(err, sessionstore.ErrNotFound) {
			return nil, nil, models.NewServiceError(models.CodeAuthFailure,
				"you are not connected to the booking service yet")
		}
		return nil, nil, models.NewServiceError(models.CodeStorageError,
			"the session could not be loaded").WithDetail(err.Error())
	}
	if sess.Expired(time.Now()) {
		_ = s.Store.Delete(ctx, ownerID)
		return nil, nil, models.NewServiceError(models.CodeSessionExpired,
			"your session has expired, please connect again")
	}

	client := s.Factory.New()
	client.RestoreSessionToken(sess.Token)
	return client, sess, nil
}

// Disconnect tells the remote service goodbye on a best-effort basis and
// removes the stored session.
func (s *Service) Disconnect(ctx context.Context, ownerID string) error {
	client, _, err := s.Resume(ctx, ownerID)
	if err == nil {
		if _, logoutErr := client.Get(ctx, soap.LogoutPath); logoutErr != nil {
			s.Logger.Warn("remote logout failed", zap.String("owner", ownerID))
		}
	}

	if err := s.Store.Delete(ctx, ownerID); err != nil {
		return models.NewServiceError(models.CodeStorageError,
			"the session could not be removed").WithDetail(err.Error())
	}
	s.Logger.Info("session removed", zap.String("owner", ownerID))
	return nil
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
