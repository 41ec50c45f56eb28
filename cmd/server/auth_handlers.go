package server

import (
	"encoding/json"
	"net/http"
	"regexp"
	"time"

	"example.com/socialnet/internal/middleware"
	"example.com/socialnet/internal/models"
	"github.com/gocql/gocql"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// setTokenCookie issues a signed session token and attaches it as an
// http-only cookie.
func (s *Server) setTokenCookie(w http.ResponseWriter, userID string) error {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(s.cfg.TokenTTL).Unix(),
	})
	tokenStr, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    tokenStr,
		Path:     "/",
		MaxAge:   int(s.cfg.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

// signupHandler handles POST /auth/signup.
// Expects JSON body: {"full_name", "username", "email", "password"}
func (s *Server) signupHandler(w http.ResponseWriter, r *http.Request) {
	type req struct {
		FullName string `json:"full_name"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	var body req

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		logg.Error("http/auth", "Invalid signup body", err)
		respondFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	defer r.Body.Close()

	if body.FullName == "" || body.Username == "" || body.Email == "" || body.Password == "" {
		respondFail(w, http.StatusBadRequest, "All fields required!")
		return
	}
	if !emailPattern.MatchString(body.Email) {
		respondFail(w, http.StatusBadRequest, "Invalid email format!")
		return
	}
	if len(body.Password) < 6 {
		respondFail(w, http.StatusBadRequest, "Password must be 6 characters long!")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		logg.Error("http/auth", "Failed to hash password", err)
		respondFail(w, http.StatusInternalServerError, "internal error")
		return
	}

	user := models.User{
		ID:       gocql.TimeUUID().String(),
		Username: body.Username,
		FullName: body.FullName,
		Email:    body.Email,
		Password: string(hashed),
		Created:  time.Now().UTC(),
	}

	if err := s.store.CreateUser(user); err != nil {
		logg.Error("http/auth", "Failed to create user", err)
		respondErr(w, err)
		return
	}

	if err := s.setTokenCookie(w, user.ID); err != nil {
		logg.Error("http/auth", "Failed to issue session token", err)
		respondFail(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	logg.Info("http/auth", "Account created (username anonymized)")
	respondOK(w, http.StatusCreated, "Your account has been created!", map[string]any{
		"user": user,
	})
}

// loginHandler handles POST /auth/login.
// Expects JSON body: {"username", "password"}
func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	type req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	var body req

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		logg.Error("http/auth", "Invalid login body", err)
		respondFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	defer r.Body.Close()

	user, err := s.store.GetUserByUsername(body.Username)
	if err != nil {
		respondErr(w, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(body.Password)); err != nil {
		respondFail(w, http.StatusUnauthorized, "Invalid credentials!")
		return
	}

	if err := s.setTokenCookie(w, user.ID); err != nil {
		logg.Error("http/auth", "Failed to issue session token", err)
		respondFail(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	logg.Info("http/auth", "Login successful (username anonymized)")
	respondOK(w, http.StatusOK, "Login successful!", map[string]any{
		"user": user,
	})
}

// logoutHandler handles POST /auth/logout by expiring the cookie.
func (s *Server) logoutHandler(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	respondOK(w, http.StatusOK, "Logout successful!", nil)
}

// meHandler handles GET /auth/me.
func (s *Server) meHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondFail(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := s.store.GetUser(userID)
	if err != nil {
		respondErr(w, err)
		return
	}

	respondOK(w, http.StatusOK, "", map[string]any{
		"user": user,
	})
}
