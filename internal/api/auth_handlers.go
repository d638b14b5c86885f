package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/folllow/folllow-server/internal/auth"
	"github.com/folllow/folllow-server/internal/http/response"
)

const stateCookieName = "folllow_oauthstate"

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-user-info",
		Method:      http.MethodGet,
		Path:        "/api/v1/auth/me",
		Summary:     "Get current user",
		Description: "Returns the profile of the signed-in user.",
		Tags:        []string{"Authentication"},
	}, s.handleGetUserInfo)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-account",
		Method:      http.MethodGet,
		Path:        "/api/v1/auth/account",
		Summary:     "Get linked account",
		Description: "Returns the sign-in provider backing the current session.",
		Tags:        []string{"Authentication"},
	}, s.handleGetAccount)
}

// === DTOs ===

// UserResponse contains user information in auth responses.
type UserResponse struct {
	ID        string    `json:"id" doc:"User ID"`
	Email     string    `json:"email" doc:"User email"`
	Name      string    `json:"name" doc:"Display name"`
	Image     string    `json:"image,omitempty" doc:"Profile picture URL"`
	CreatedAt time.Time `json:"created_at" doc:"Creation timestamp"`
}

// UserOutput wraps the user response for Huma.
type UserOutput struct {
	Body UserResponse
}

// AccountResponse describes a linked sign-in provider.
type AccountResponse struct {
	Provider  string    `json:"provider" doc:"Sign-in provider name"`
	CreatedAt time.Time `json:"created_at" doc:"When the provider was linked"`
}

// AccountOutput wraps the account response for Huma.
type AccountOutput struct {
	Body AccountResponse
}

// === Typed handlers ===

func (s *Server) handleGetUserInfo(ctx context.Context, _ *struct{}) (*UserOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Auth.GetUser(ctx, userID)
	if err != nil {
		return nil, huma.Error404NotFound("user not found", err)
	}

	return &UserOutput{Body: UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Image:     user.Image,
		CreatedAt: user.CreatedAt,
	}}, nil
}

func (s *Server) handleGetAccount(ctx context.Context, _ *struct{}) (*AccountOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	account, err := s.services.Auth.GetAccount(ctx, userID)
	if err != nil {
		return nil, huma.Error404NotFound("no linked account", err)
	}

	return &AccountOutput{Body: AccountResponse{
		Provider:  account.Provider,
		CreatedAt: account.CreatedAt,
	}}, nil
}

// === Browser flow ===

// handleSignIn redirects the browser to Google's consent page.
func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	if !s.google.Enabled() {
		response.Error(w, http.StatusServiceUnavailable, "sign-in is not configured", s.logger)
		return
	}

	state, err := auth.GenerateState()
	if err != nil {
		response.InternalError(w, "failed to start sign-in", s.logger)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Expires:  time.Now().Add(20 * time.Minute),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.production,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, s.google.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// handleCallback finishes the consent flow: it verifies the state
// cookie, exchanges the code, maps the profile to a user, and sets the
// session cookie before sending the browser to the dashboard.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil {
		s.logger.Warn("callback without state cookie")
		http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
		return
	}
	if r.FormValue("state") != stateCookie.Value {
		s.logger.Warn("oauth state mismatch")
		response.BadRequest(w, "invalid oauth state", s.logger)
		return
	}

	profile, err := s.google.Exchange(r.Context(), r.FormValue("code"))
	if err != nil {
		s.logger.Error("oauth exchange failed", "error", err)
		response.InternalError(w, "sign-in failed", s.logger)
		return
	}

	user, err := s.services.Auth.SignInGoogle(r.Context(), profile)
	if err != nil {
		s.logger.Error("sign-in rejected", "error", err)
		response.HandleError(w, err, s.logger)
		return
	}

	token, err := s.tokens.GenerateSessionToken(user)
	if err != nil {
		s.logger.Error("session token generation failed", "error", err)
		response.InternalError(w, "sign-in failed", s.logger)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Expires:  time.Now().Add(s.tokens.SessionDuration()),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.production,
		SameSite: http.SameSiteLaxMode,
	})

	s.logger.Info("user signed in", "user_id", user.ID)
	http.Redirect(w, r, s.baseURL+"/dashboard", http.StatusTemporaryRedirect)
}

// handleLogout clears the session cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.production,
		SameSite: http.SameSiteLaxMode,
	})
	response.NoContent(w)
}
