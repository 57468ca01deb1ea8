package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	authmw "github.com/miniquiz/miniquiz/internal/auth/middleware"
	"github.com/miniquiz/miniquiz/internal/rbac"
)

type userResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

// POST /api/register  { "email": "...", "password": "...", "full_name": "...", "role": "student|instructor" }
func RegisterHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
			FullName string `json:"full_name"`
			Role     string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		if req.Email == "" || !strings.Contains(req.Email, "@") {
			http.Error(w, "valid email required", http.StatusBadRequest)
			return
		}
		if len(req.Password) < 8 {
			http.Error(w, "password must be at least 8 characters", http.StatusBadRequest)
			return
		}
		switch req.Role {
		case "":
			req.Role = "student"
		case "student", "instructor", "admin":
		default:
			http.Error(w, "role must be student, instructor or admin", http.StatusBadRequest)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			http.Error(w, "hash password", http.StatusInternalServerError)
			return
		}
		u := userResponse{
			ID:       uuid.NewString(),
			Email:    req.Email,
			FullName: strings.TrimSpace(req.FullName),
			Role:     req.Role,
			IsActive: true,
		}
		_, err = db.ExecContext(r.Context(),
			`INSERT INTO users (id,email,full_name,role,pass_hash,is_active,created_at)
			 VALUES ($1,$2,$3,$4,$5,1,$6)`,
			u.ID, u.Email, u.FullName, u.Role, string(hash), time.Now().Unix())
		if err != nil {
			if isUniqueViolation(err) {
				http.Error(w, "email already registered", http.StatusConflict)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(u)
	}
}

// POST /api/login  { "email": "...", "password": "..." }
func LoginHandler(db *sql.DB, authSvc *authmw.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		var (
			id, role, hash string
			active         int
		)
		err := db.QueryRowContext(r.Context(),
			`SELECT id, role, pass_hash, is_active FROM users WHERE email=$1`,
			strings.ToLower(strings.TrimSpace(req.Email))).
			Scan(&id, &role, &hash, &active)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && active == 0) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		tok, err := authSvc.IssueJWT(id, role)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token": tok,
			"token_type":   "bearer",
			"role":         role,
		})
	}
}

// GET /api/me
func MeHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := rbac.SubjectFromContext(r.Context())
		var u userResponse
		var active int
		err := db.QueryRowContext(r.Context(),
			`SELECT id, email, full_name, role, is_active FROM users WHERE id=$1`, sub).
			Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &active)
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		u.IsActive = active != 0
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(u)
	}
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // sqlite
		strings.Contains(msg, "duplicate key") // postgres
}
