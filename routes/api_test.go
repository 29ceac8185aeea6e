package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castworks/designdesk/app"
	"github.com/castworks/designdesk/config"
	"github.com/castworks/designdesk/database"
	"github.com/castworks/designdesk/httpx"
	"github.com/castworks/designdesk/model"
)

func testApp(t *testing.T) (app.App, http.Handler) {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := config.Config{
		Addr:            "localhost:0",
		TokenSecret:     "test-secret",
		TokenTTL:        time.Minute,
		NotificationTTL: 30 * 24 * time.Hour,
		AdminEmail:      "root@plant.test",
		AdminPassword:   "root-secret",
	}

	a := app.New(db, httpx.NewBearerServer(db, cfg), cfg)
	return a, Wire(a)
}

func login(t *testing.T, handler http.Handler, email, password string) string {
	t.Helper()

	req := httptest.NewRequest("POST", "/api/login", nil)
	req.SetBasicAuth(email, password)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, "login failed: %s", rec.Body.String())

	body := map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func doJSON(t *testing.T, handler http.Handler, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	body := map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func templatePayload() map[string]any {
	return map[string]any{
		"name":        "Customer Intake",
		"description": "New customer form",
		"formType":    "customer",
		"fields": []map[string]any{
			{"name": "name", "label": "Name", "type": "text", "required": true, "order": 0},
			{"name": "email", "label": "Email", "type": "email", "required": true, "order": 1},
			{"name": "phone", "label": "Phone", "type": "tel", "order": 2},
		},
	}
}

func TestNotificationFeedDegradesWithoutSession(t *testing.T) {
	_, handler := testApp(t)

	// no token at all
	rec := doJSON(t, handler, "GET", "/api/notifications", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []any{}, body["data"])
	assert.EqualValues(t, 0, body["unreadCount"])

	// bogus token degrades the same way
	rec = doJSON(t, handler, "GET", "/api/notifications", "garbage", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeEnvelope(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []any{}, body["data"])
}

func TestEnvAdminGetsEmptyFeed(t *testing.T) {
	_, handler := testApp(t)

	token := login(t, handler, "root@plant.test", "root-secret")
	rec := doJSON(t, handler, "GET", "/api/notifications", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, []any{}, body["data"])
	assert.EqualValues(t, 0, body["unreadCount"])
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	a, handler := testApp(t)
	_, err := a.Users.Create(context.Background(), "user@plant.test", "User", "pw-123456", model.RoleUser)
	require.NoError(t, err)

	rec := doJSON(t, handler, "GET", "/api/admin/form-templates", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := login(t, handler, "user@plant.test", "pw-123456")
	rec = doJSON(t, handler, "GET", "/api/admin/form-templates", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTemplateLifecycleWithFanout(t *testing.T) {
	a, handler := testApp(t)
	ctx := context.Background()

	_, err := a.Users.Create(ctx, "admin@plant.test", "Admin", "pw-123456", model.RoleAdmin)
	require.NoError(t, err)
	_, err = a.Users.Create(ctx, "user@plant.test", "User", "pw-123456", model.RoleUser)
	require.NoError(t, err)

	adminToken := login(t, handler, "admin@plant.test", "pw-123456")

	// create
	rec := doJSON(t, handler, "POST", "/api/admin/form-templates", adminToken, templatePayload())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeEnvelope(t, rec)["data"].(map[string]any)
	templateId := created["id"].(string)
	assert.EqualValues(t, 1, created["version"])

	// creation alone must not notify anyone
	userToken := login(t, handler, "user@plant.test", "pw-123456")
	rec = doJSON(t, handler, "GET", "/api/notifications", userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decodeEnvelope(t, rec)["unreadCount"])

	// update bumps version and fans out
	update := templatePayload()
	update["name"] = "Customer Intake v2"
	rec = doJSON(t, handler, "PATCH", "/api/admin/form-templates/"+templateId, adminToken, update)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeEnvelope(t, rec)["data"].(map[string]any)
	assert.EqualValues(t, 2, updated["version"])

	rec = doJSON(t, handler, "GET", "/api/notifications", userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	feed := decodeEnvelope(t, rec)
	assert.EqualValues(t, 1, feed["unreadCount"])
	entries := feed["data"].([]any)
	require.Len(t, entries, 1)
	entry := entries[0].(map[string]any)
	assert.Equal(t, "Customer Form Updated", entry["title"])
	assert.Equal(t, false, entry["read"])

	// the owner marks it read; a stranger may not
	notificationId := entry["id"].(string)
	rec = doJSON(t, handler, "PATCH", "/api/notifications/"+notificationId, adminToken, map[string]any{"read": true})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, handler, "PATCH", "/api/notifications/"+notificationId, userToken, map[string]any{"read": true})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, handler, "GET", "/api/notifications", userToken, nil)
	assert.EqualValues(t, 0, decodeEnvelope(t, rec)["unreadCount"])

	// active template is visible to plain users
	rec = doJSON(t, handler, "GET", "/api/form-templates/active?type=customer", userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	active := decodeEnvelope(t, rec)["data"].(map[string]any)
	assert.Equal(t, "Customer Intake v2", active["name"])

	// delete, then everything 404s
	rec = doJSON(t, handler, "DELETE", "/api/admin/form-templates/"+templateId, adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, handler, "GET", "/api/admin/form-templates/"+templateId, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = doJSON(t, handler, "GET", "/api/form-templates/active?type=customer", userToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateCustomerValidatesAgainstActiveTemplate(t *testing.T) {
	a, handler := testApp(t)
	ctx := context.Background()

	admin, err := a.Users.Create(ctx, "admin@plant.test", "Admin", "pw-123456", model.RoleAdmin)
	require.NoError(t, err)

	fields := []model.FieldSchema{
		{Name: "name", Label: "Name", Type: model.FieldText, Required: true, Order: 0},
		{Name: "email", Label: "Email", Type: model.FieldEmail, Required: true, Order: 1},
	}
	_, err = a.Templates.Create(ctx, "Customer Intake", "", model.FormTypeCustomer, fields, admin.ID)
	require.NoError(t, err)

	token := login(t, handler, "admin@plant.test", "pw-123456")

	// empty required email fails before anything is persisted
	rec := doJSON(t, handler, "POST", "/api/customers", token, map[string]any{
		"name":  "ACME Precast",
		"email": "",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeEnvelope(t, rec)
	fieldErrors := body["data"].(map[string]any)
	assert.Equal(t, "Email is required", fieldErrors["email"])

	// unknown keys are rejected at the mapper boundary
	rec = doJSON(t, handler, "POST", "/api/customers", token, map[string]any{
		"name":    "ACME Precast",
		"email":   "sales@acme.test",
		"unknown": "x",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// valid bag maps and persists
	rec = doJSON(t, handler, "POST", "/api/customers", token, map[string]any{
		"name":  "ACME Precast",
		"email": "sales@acme.test",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	customer := decodeEnvelope(t, rec)["data"].(map[string]any)
	contact := customer["contactInfo"].(map[string]any)
	assert.Equal(t, "sales@acme.test", contact["email"])
}

func TestUpdateProfile(t *testing.T) {
	a, handler := testApp(t)
	_, err := a.Users.Create(context.Background(), "user@plant.test", "User", "pw-123456", model.RoleUser)
	require.NoError(t, err)

	token := login(t, handler, "user@plant.test", "pw-123456")

	rec := doJSON(t, handler, "PUT", "/api/auth/profile", token, map[string]any{
		"name": "Renamed User",
		"role": model.RoleUser,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeEnvelope(t, rec)["data"].(map[string]any)
	assert.Equal(t, "Renamed User", updated["name"])

	// wrong current password rejected
	rec = doJSON(t, handler, "PUT", "/api/auth/profile", token, map[string]any{
		"name":            "Renamed User",
		"role":            model.RoleUser,
		"currentPassword": "wrong",
		"newPassword":     "next-password",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// env admin has no profile
	envToken := login(t, handler, "root@plant.test", "root-secret")
	rec = doJSON(t, handler, "PUT", "/api/auth/profile", envToken, map[string]any{
		"name": "X",
		"role": model.RoleAdmin,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
