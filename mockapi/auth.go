package mockapi

import (
	"net/http"
	"strings"

	"axiapac.com/timetrack/model"
	"axiapac.com/timetrack/security"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"

	msgInvalidToken = "Invalid or expired token."
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,password"`
}

type loginResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        *profileDTO `json:"user,omitempty"`
}

type profileDTO struct {
	ID              int64                 `json:"id"`
	Name            string                `json:"name"`
	Email           string                `json:"email"`
	Role            model.Role            `json:"role"`
	TodayAttendance model.TodayAttendance `json:"today_attendance"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, bindingErrors(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var acc *account
	for _, a := range s.accounts {
		if strings.EqualFold(a.Email, req.Email) {
			acc = a
			break
		}
	}
	if acc == nil || bcrypt.CompareHashAndPassword(acc.hash, []byte(req.Password)) != nil {
		detail(c, http.StatusUnauthorized, envelope{Success: false, StatusCode: http.StatusUnauthorized, Message: "Invalid email or password"})
		return
	}

	token, err := security.CreateIdentityToken(&security.Identity{UserID: acc.ID, Email: acc.Email, Role: acc.Role}, s.secret, int64(s.ttl.Seconds()))
	if err != nil {
		failure(c, http.StatusInternalServerError, err.Error())
		return
	}
	// one active token per user; a new login revokes the previous one
	acc.token = token

	resp := loginResponse{AccessToken: token, TokenType: "bearer"}
	if s.withUser {
		p := s.profileLocked(acc)
		resp.User = &p
	}
	success(c, "Login successful", resp)
}

func (s *Server) logout(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acc, ok := s.accounts[c.GetInt64(ctxUserID)]; ok {
		acc.token = ""
	}
	success(c, "Logout successful", nil)
}

func (s *Server) me(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[c.GetInt64(ctxUserID)]
	if !ok {
		detail(c, http.StatusUnauthorized, msgInvalidToken)
		return
	}
	success(c, "User profile fetched successfully", s.profileLocked(acc))
}

func (s *Server) profileLocked(acc *account) profileDTO {
	next := model.NextActionPunchIn
	if _, open := openInterval(acc.intervals); open != nil {
		next = model.NextActionPunchOut
	}
	return profileDTO{
		ID:              acc.ID,
		Name:            acc.Name,
		Email:           acc.Email,
		Role:            acc.Role,
		TodayAttendance: model.TodayAttendance{NextAction: next},
	}
}

// authentication checks the bearer token and that it is still the user's
// active one.
func (s *Server) authentication() gin.HandlerFunc {
	return func(c *gin.Context) {
		parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			detail(c, http.StatusUnauthorized, "Not authenticated")
			return
		}

		claims, err := security.ParseIdentityToken(parts[1], s.secret)
		if err != nil {
			detail(c, http.StatusUnauthorized, msgInvalidToken)
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			detail(c, http.StatusUnauthorized, "Invalid token payload.")
			return
		}

		s.mu.Lock()
		acc, ok := s.accounts[userID]
		active := ok && acc.token == parts[1]
		var role model.Role
		if ok {
			role = acc.Role
		}
		s.mu.Unlock()

		if !active {
			detail(c, http.StatusUnauthorized, msgInvalidToken)
			return
		}

		c.Set(ctxUserID, userID)
		c.Set(ctxRole, string(role))
		c.Next()
	}
}

func requirePrivileged() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !model.Role(c.GetString(ctxRole)).Privileged() {
			failure(c, http.StatusForbidden, "You do not have permission to access this resource")
			return
		}
		c.Next()
	}
}
