package locations

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	locsvc "easyshifthq-backend/internal/application/locations"
	"easyshifthq-backend/internal/infrastructure/database"
	"easyshifthq-backend/internal/infrastructure/persistence"
	"easyshifthq-backend/internal/middleware"
	"easyshifthq-backend/internal/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "locations-test-secret"

func setupLocationHandlers(t *testing.T) *fiber.App {
	t.Helper()
	db, err := database.Open("sqlite://:memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	h := &Handlers{Service: &locsvc.Service{Store: persistence.NewStore(db)}}
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	app.Use(middleware.BearerAuth(testSecret))
	g := app.Group("/locations", middleware.RequireAuth())
	g.Get("/", h.List)
	g.Get("/active", h.Active)
	g.Get("/jurisdiction/:code", h.ByJurisdiction)
	g.Get("/timezone/*", h.ByTimeZone)
	g.Get("/:id", h.Get)
	g.Post("/", h.Create)
	g.Put("/:id", h.Update)
	g.Patch("/:id/active", h.SetActive)
	g.Delete("/:id", h.Delete)
	return app
}

var tenantID = uuid.NewString()

func bearer(t *testing.T, role string) string {
	t.Helper()
	tok, err := middleware.IssueToken(testSecret, middleware.SessionUser{
		UserID: uuid.NewString(), Role: role, TenantID: &tenantID,
	}, time.Hour, time.Now())
	require.NoError(t, err)
	return "Bearer " + tok
}

func do(t *testing.T, app *fiber.App, method, path, auth string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", auth)
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return resp.StatusCode, out
}

func create(t *testing.T, app *fiber.App, name, tz, jurisdiction string) string {
	t.Helper()
	status, body := do(t, app, "POST", "/locations", bearer(t, constants.Admin), map[string]interface{}{
		"name": name, "address": name + " Main St", "time_zone": tz, "jurisdiction_code": jurisdiction,
	})
	require.Equal(t, fiber.StatusCreated, status)
	return body["data"].(map[string]interface{})["id"].(string)
}

func TestCreate_PermissionsAndValidation(t *testing.T) {
	app := setupLocationHandlers(t)

	status, _ := do(t, app, "POST", "/locations", bearer(t, constants.Manager), map[string]interface{}{
		"name": "Downtown", "address": "1 Main St", "time_zone": "America/Chicago",
	})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body := do(t, app, "POST", "/locations", bearer(t, constants.Admin), map[string]interface{}{
		"name": "Downtown", "address": "1 Main St", "time_zone": "Mars/Olympus",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	details := body["error"].(map[string]interface{})["details"].(map[string]interface{})
	assert.Equal(t, "time_zone", details["field"])
}

func TestLookups(t *testing.T) {
	app := setupLocationHandlers(t)
	emp := bearer(t, constants.Employee)
	chicago := create(t, app, "Downtown", "America/Chicago", "IL")
	create(t, app, "Uptown", "America/New_York", "NY")

	status, body := do(t, app, "GET", "/locations/timezone/America/Chicago", emp, nil)
	require.Equal(t, fiber.StatusOK, status)
	items := body["data"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, chicago, items[0].(map[string]interface{})["id"])

	status, body = do(t, app, "GET", "/locations/jurisdiction/NY", emp, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["data"], 1)

	status, body = do(t, app, "GET", "/locations/"+chicago, emp, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Downtown", body["data"].(map[string]interface{})["name"])

	status, _ = do(t, app, "GET", "/locations/"+uuid.NewString(), emp, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestSetActive_AndListFilters(t *testing.T) {
	app := setupLocationHandlers(t)
	admin := bearer(t, constants.Admin)
	a := create(t, app, "Alpha", "America/Chicago", "IL")
	create(t, app, "Bravo", "America/Chicago", "IL")

	status, _ := do(t, app, "PATCH", "/locations/"+a+"/active", admin, map[string]interface{}{})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body := do(t, app, "PATCH", "/locations/"+a+"/active", admin, map[string]interface{}{"is_active": false})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, false, body["data"].(map[string]interface{})["is_active"])

	status, body = do(t, app, "GET", "/locations/active", admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["data"], 1)

	status, body = do(t, app, "GET", "/locations?is_active=false", admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	data := body["data"].(map[string]interface{})
	assert.EqualValues(t, 2, data["total_count"])
	assert.EqualValues(t, 1, data["filtered_count"])

	status, _ = do(t, app, "GET", "/locations?is_active=maybe", admin, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = do(t, app, "GET", "/locations?sorting=name%20desc&max=1", admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	items := body["data"].(map[string]interface{})["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "Bravo", items[0].(map[string]interface{})["name"])
}

func TestUpdateAndDelete(t *testing.T) {
	app := setupLocationHandlers(t)
	admin := bearer(t, constants.Admin)
	id := create(t, app, "Alpha", "America/Chicago", "IL")

	status, body := do(t, app, "PUT", "/locations/"+id, admin, map[string]interface{}{
		"name": "Alpha West", "address": "9 Elm St", "time_zone": "America/Denver",
	})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "America/Denver", body["data"].(map[string]interface{})["time_zone"])

	status, _ = do(t, app, "DELETE", "/locations/"+id, bearer(t, constants.Manager), nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = do(t, app, "DELETE", "/locations/"+id, admin, nil)
	require.Equal(t, fiber.StatusOK, status)

	status, _ = do(t, app, "GET", "/locations/"+id, admin, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}
