package httpx

import (
	"crypto/subtle"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/oauth"
	"golang.org/x/crypto/bcrypt"

	"github.com/castworks/designdesk/config"
	"github.com/castworks/designdesk/model"
)

// Claim keys carried in access tokens. The principal claim distinguishes
// the env-var administrator from stored users.
const (
	ClaimUserID    = "user_id"
	ClaimRoles     = "roles"
	ClaimName      = "name"
	ClaimPrincipal = "principal"
)

func NewBearerServer(db *sql.DB, cfg config.Config) *oauth.BearerServer {
	return oauth.NewBearerServer(cfg.TokenSecret, cfg.TokenTTL, CredentialsVerifier(db, cfg), nil)
}

type credentialsVerifier struct {
	db  *sql.DB
	cfg config.Config
}

func CredentialsVerifier(db *sql.DB, cfg config.Config) oauth.CredentialsVerifier {
	return &credentialsVerifier{db, cfg}
}

func (cs *credentialsVerifier) isEnvAdmin(username string) bool {
	return cs.cfg.HasEnvAdmin() && strings.EqualFold(username, cs.cfg.AdminEmail)
}

func (cs *credentialsVerifier) ValidateUser(username string, password string, scope string, r *http.Request) error {
	if cs.isEnvAdmin(username) {
		if subtle.ConstantTimeCompare([]byte(password), []byte(cs.cfg.AdminPassword)) != 1 {
			return errors.New("invalid credentials")
		}
		return nil
	}

	email := strings.ToLower(username)
	var hash []byte
	err := cs.db.
		QueryRow("SELECT password_hash FROM user WHERE email=?", email).
		Scan(&hash)
	if err != nil {
		return err
	}

	err = bcrypt.CompareHashAndPassword(hash, []byte(password))
	if err != nil {
		return err
	}

	_, err = cs.db.Exec("UPDATE user SET last_login=? WHERE email=?", time.Now().UTC(), email)
	return err
}

func (cs *credentialsVerifier) StoreTokenID(tokenType oauth.TokenType, credential string, tokenID string, refreshTokenID string) error {
	_, err := cs.db.Exec(
		"INSERT INTO token (username, token_id, refresh_token_id, expiration) VALUES (?, ?, ?, ?)",
		credential,
		tokenID,
		refreshTokenID,
		time.Now().Add(8760*time.Hour),
	)
	return err
}

func (cs *credentialsVerifier) ValidateTokenID(tokenType oauth.TokenType, credential string, tokenID string, refreshTokenID string) error {
	var expiration time.Time
	var ok bool

	cs.db.
		QueryRow(`
			DELETE FROM token
			WHERE username = ?
				AND token_id = ?
				AND refresh_token_id = ?
			RETURNING expiration, 1`,
			credential,
			tokenID,
			refreshTokenID,
		).
		Scan(&expiration, &ok)
	if !ok {
		return errors.New("could not refresh")
	}

	if expiration.Before(time.Now()) {
		return errors.New("could not refresh")
	}
	return nil
}

func (cs *credentialsVerifier) AddClaims(tokenType oauth.TokenType, credential string, tokenID string, scope string, r *http.Request) (map[string]string, error) {
	if cs.isEnvAdmin(credential) {
		return map[string]string{
			ClaimRoles:     model.RoleAdmin,
			ClaimName:      "Administrator",
			ClaimPrincipal: string(model.PrincipalEnvAdmin),
		}, nil
	}

	var id, name, role string
	err := cs.db.
		QueryRow("SELECT id, name, role FROM user WHERE email=?", strings.ToLower(credential)).
		Scan(&id, &name, &role)
	if err != nil {
		return nil, err
	}

	return map[string]string{
		ClaimUserID:    id,
		ClaimRoles:     role,
		ClaimName:      name,
		ClaimPrincipal: string(model.PrincipalStored),
	}, nil
}

func (*credentialsVerifier) AddProperties(tokenType oauth.TokenType, credential string, tokenID string, scope string, r *http.Request) (map[string]string, error) {
	return map[string]string{}, nil
}

func (*credentialsVerifier) ValidateClient(clientID string, clientSecret string, scope string, r *http.Request) error {
	return errors.New("not supported")
}
