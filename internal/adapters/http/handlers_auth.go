package web

import (
	"errors"
	"net/http"
	"strings"

	"paddock/internal/adapters/http/middleware"
	"paddock/internal/application/orchestrators"
	"paddock/internal/domain/account"
)

// userResponse is the public shape of a user account.
type userResponse struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	FullName  string   `json:"fullName"`
}

// authResponse carries the user and their bearer token.
type authResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

func userResponseFrom(u account.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Roles:     u.Roles,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
	}
}

func issueAuthResponse(w http.ResponseWriter, status int, result orchestrators.LoginResult) {
	token, _, err := tokens.Issue(result.UserID, result.Email, result.Roles)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, status, authResponse{
		User: userResponse{
			ID:        result.UserID,
			Email:     result.Email,
			Roles:     result.Roles,
			FirstName: result.FirstName,
			LastName:  result.LastName,
			FullName:  strings.TrimSpace(result.FirstName + " " + result.LastName),
		},
		Token: token,
	})
}

// handleRegister handles POST /api/auth/register.
func handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Role      string `json:"role"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Role == "" {
		req.Role = account.RoleRider
	}

	deps := orchestrators.RegisterDeps{AccountStore: stores.AccountStore}
	userID, err := orchestrators.ExecuteRegister(r.Context(), orchestrators.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
	}, deps)
	if err != nil {
		if errors.Is(err, orchestrators.ErrEmailAlreadyExists) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		domainError(w, err)
		return
	}

	issueAuthResponse(w, http.StatusCreated, orchestrators.LoginResult{
		UserID:    userID,
		Email:     account.NormalizeEmail(req.Email),
		Roles:     []string{req.Role},
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
}

// handleLogin handles POST /api/auth/login.
func handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := orchestrators.ExecuteLogin(r.Context(),
		orchestrators.LoginInput{Email: req.Email, Password: req.Password},
		orchestrators.LoginDeps{AccountStore: stores.AccountStore})
	if err != nil {
		if errors.Is(err, orchestrators.ErrAccountLocked) {
			writeError(w, http.StatusTooManyRequests, err.Error())
			return
		}
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	issueAuthResponse(w, http.StatusOK, result)
}

// handleGoogleLogin handles POST /api/auth/google.
func handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDToken string `json:"idToken"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := orchestrators.ExecuteGoogleLogin(r.Context(),
		orchestrators.GoogleLoginInput{IDToken: req.IDToken},
		orchestrators.GoogleLoginDeps{
			AccountStore: stores.AccountStore,
			ClientID:     googleClientID,
		})
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	issueAuthResponse(w, http.StatusOK, result)
}

// handleMe handles GET /api/auth/me.
func handleMe(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())
	u, err := stores.AccountStore.GetByID(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "account not found")
		return
	}
	writeJSON(w, http.StatusOK, userResponseFrom(u))
}
