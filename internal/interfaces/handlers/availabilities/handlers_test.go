package availabilities

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	availsvc "easyshifthq-backend/internal/application/availabilities"
	"easyshifthq-backend/internal/infrastructure/database"
	"easyshifthq-backend/internal/infrastructure/persistence"
	"easyshifthq-backend/internal/middleware"
	"easyshifthq-backend/internal/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "availability-test-secret"

type fixture struct {
	app    *fiber.App
	store  *persistence.Store
	tenant string
}

func setupAvailabilityHandlers(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open("sqlite://:memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	store := persistence.NewStore(db)

	h := &Handlers{Service: &availsvc.Service{Store: store}}
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	app.Use(middleware.BearerAuth(testSecret))
	g := app.Group("/availabilities", middleware.RequireAuth())
	g.Get("/", h.List)
	g.Get("/me/weekly", h.MyWeekly)
	g.Get("/employee/:employeeId/weekly", h.EmployeeWeekly)
	g.Get("/employee/:employeeId/time-off", h.EmployeeTimeOff)
	g.Get("/:id", h.Get)
	g.Post("/weekly", h.SubmitWeekly)
	g.Post("/time-off", h.SubmitTimeOff)
	g.Put("/:id/weekly", h.UpdateWeekly)
	g.Put("/:id/time-off", h.UpdateTimeOff)
	g.Put("/:id/approve", h.Approve)
	g.Put("/:id/deny", h.Deny)
	g.Delete("/:id", h.Delete)

	return &fixture{app: app, store: store, tenant: uuid.NewString()}
}

type caller struct {
	id     string
	header string
}

func (f *fixture) caller(t *testing.T, role string) caller {
	t.Helper()
	id := uuid.NewString()
	tok, err := middleware.IssueToken(testSecret, middleware.SessionUser{
		UserID: id, Fullname: "Test " + role, Email: role + "@acme.test", Role: role, TenantID: &f.tenant,
	}, time.Hour, time.Now())
	require.NoError(t, err)
	return caller{id: id, header: "Bearer " + tok}
}

func (f *fixture) do(t *testing.T, method, path string, who caller, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", who.header)
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return resp.StatusCode, out
}

func dataOf(body map[string]interface{}) map[string]interface{} {
	m, _ := body["data"].(map[string]interface{})
	return m
}

var mondayShift = map[string]interface{}{"day_of_week": 1, "start_time": "09:00", "end_time": "17:00", "is_available": true}

func TestSubmitWeekly_AndReadBack(t *testing.T) {
	f := setupAvailabilityHandlers(t)
	emp := f.caller(t, constants.Employee)

	status, body := f.do(t, "POST", "/availabilities/weekly", emp, mondayShift)
	require.Equal(t, fiber.StatusCreated, status)
	created := dataOf(body)
	assert.Equal(t, emp.id, created["employee_id"])
	assert.Equal(t, "09:00", created["start_time"])

	status, body = f.do(t, "GET", "/availabilities/me/weekly", emp, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["data"], 1)

	status, _ = f.do(t, "GET", "/availabilities/"+created["id"].(string), emp, nil)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestSubmitWeekly_Invalid(t *testing.T) {
	f := setupAvailabilityHandlers(t)
	emp := f.caller(t, constants.Employee)

	status, _ := f.do(t, "POST", "/availabilities/weekly", emp, map[string]interface{}{"day_of_week": 1, "start_time": "17:00", "end_time": "09:00"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = f.do(t, "POST", "/availabilities/weekly", emp, map[string]interface{}{"day_of_week": 1, "start_time": "9am", "end_time": "17:00"})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestTimeOff_SubmitApproveDeny(t *testing.T) {
	f := setupAvailabilityHandlers(t)
	emp := f.caller(t, constants.Employee)
	mgr := f.caller(t, constants.Manager)

	status, body := f.do(t, "POST", "/availabilities/time-off", emp, map[string]interface{}{
		"time_off_start_date": "2025-07-01", "time_off_end_date": "2025-07-03", "reason": "Family trip",
	})
	require.Equal(t, fiber.StatusCreated, status)
	id := dataOf(body)["id"].(string)
	assert.Equal(t, "pending", dataOf(body)["approval_status"])

	status, _ = f.do(t, "PUT", "/availabilities/"+id+"/approve", emp, nil)
	assert.Equal(t, fiber.StatusForbidden, status, "employees cannot approve")

	status, body = f.do(t, "PUT", "/availabilities/"+id+"/approve", mgr, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "approved", dataOf(body)["approval_status"])
	assert.Equal(t, mgr.id, dataOf(body)["approver_id"])

	status, _ = f.do(t, "PUT", "/availabilities/"+id+"/approve", mgr, nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, body = f.do(t, "PUT", "/availabilities/"+id+"/deny", mgr, map[string]string{"reason": "Short staffed"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "denied", dataOf(body)["approval_status"])
	assert.Equal(t, "Short staffed", dataOf(body)["denial_reason"])

	msgs, err := f.store.Outbox().CountBacklog(t.Context())
	require.NoError(t, err)
	assert.EqualValues(t, 3, msgs, "requested, approved and denied events are queued")
}

func TestTimeOff_BadDates(t *testing.T) {
	f := setupAvailabilityHandlers(t)
	emp := f.caller(t, constants.Employee)

	status, body := f.do(t, "POST", "/availabilities/time-off", emp, map[string]interface{}{
		"time_off_start_date": "07/01/2025", "time_off_end_date": "2025-07-03",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	details := body["error"].(map[string]interface{})["details"].(map[string]interface{})
	assert.Equal(t, "time_off_start_date", details["field"])

	status, _ = f.do(t, "POST", "/availabilities/time-off", emp, map[string]interface{}{
		"time_off_start_date": "2025-07-05", "time_off_end_date": "2025-07-03",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestTimeOff_OffsetTimestampKeepsCalendarDate(t *testing.T) {
	f := setupAvailabilityHandlers(t)
	emp := f.caller(t, constants.Employee)

	status, body := f.do(t, "POST", "/availabilities/time-off", emp, map[string]interface{}{
		"time_off_start_date": "2024-01-10T00:00:00+05:00", "time_off_end_date": "2024-01-11T00:00:00+05:00",
	})
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "2024-01-10T00:00:00Z", dataOf(body)["time_off_start_date"])
	assert.Equal(t, "2024-01-11T00:00:00Z", dataOf(body)["time_off_end_date"])
}

func TestTimeOff_EmployeeCannotEditDecidedRequest(t *testing.T) {
	f := setupAvailabilityHandlers(t)
	emp := f.caller(t, constants.Employee)
	mgr := f.caller(t, constants.Manager)

	_, body := f.do(t, "POST", "/availabilities/time-off", emp, map[string]interface{}{
		"time_off_start_date": "2025-07-01", "time_off_end_date": "2025-07-01",
	})
	id := dataOf(body)["id"].(string)
	status, _ := f.do(t, "PUT", "/availabilities/"+id+"/approve", mgr, nil)
	require.Equal(t, fiber.StatusOK, status)

	status, body = f.do(t, "PUT", "/availabilities/"+id+"/time-off", emp, map[string]interface{}{
		"time_off_start_date": "2025-07-01", "time_off_end_date": "2025-07-31",
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "Time-off request has already been decided", body["error"].(map[string]interface{})["message"])

	status, body = f.do(t, "GET", "/availabilities/"+id, emp, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.True(t, strings.HasPrefix(dataOf(body)["time_off_end_date"].(string), "2025-07-01"))
	assert.Equal(t, "approved", dataOf(body)["approval_status"])
}

func TestApprove_WeeklyRecordIsBusinessError(t *testing.T) {
	f := setupAvailabilityHandlers(t)
	emp := f.caller(t, constants.Employee)
	_, body := f.do(t, "POST", "/availabilities/weekly", emp, mondayShift)
	id := dataOf(body)["id"].(string)

	status, _ := f.do(t, "PUT", "/availabilities/"+id+"/approve", f.caller(t, constants.Manager), nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
}

func TestUpdateAndDelete_OwnershipRules(t *testing.T) {
	f := setupAvailabilityHandlers(t)
	emp := f.caller(t, constants.Employee)
	other := f.caller(t, constants.Employee)

	_, body := f.do(t, "POST", "/availabilities/weekly", emp, mondayShift)
	id := dataOf(body)["id"].(string)

	update := map[string]interface{}{"day_of_week": 2, "start_time": "10:00", "end_time": "14:00", "is_available": true}
	status, _ := f.do(t, "PUT", "/availabilities/"+id+"/weekly", other, update)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body = f.do(t, "PUT", "/availabilities/"+id+"/weekly", emp, update)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 2, dataOf(body)["day_of_week"])

	status, body = f.do(t, "PUT", "/availabilities/"+id+"/time-off", emp, map[string]interface{}{
		"time_off_start_date": "2025-08-01", "time_off_end_date": "2025-08-01",
	})
	require.Equal(t, fiber.StatusOK, status)
	assert.NotNil(t, dataOf(body)["time_off_start_date"])

	status, _ = f.do(t, "DELETE", "/availabilities/"+id, other, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	status, _ = f.do(t, "DELETE", "/availabilities/"+id, emp, nil)
	require.Equal(t, fiber.StatusOK, status)
	status, _ = f.do(t, "GET", "/availabilities/"+id, emp, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestList_FiltersAndPermissions(t *testing.T) {
	f := setupAvailabilityHandlers(t)
	emp := f.caller(t, constants.Employee)
	mgr := f.caller(t, constants.Manager)

	for day := 1; day <= 3; day++ {
		shift := map[string]interface{}{"day_of_week": day, "start_time": "09:00", "end_time": "17:00", "is_available": true}
		status, _ := f.do(t, "POST", "/availabilities/weekly", emp, shift)
		require.Equal(t, fiber.StatusCreated, status)
	}

	status, body := f.do(t, "GET", "/availabilities?employee_id="+emp.id+"&max=2", mgr, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 3, dataOf(body)["total_count"])
	assert.Len(t, dataOf(body)["items"], 2)

	status, body = f.do(t, "GET", "/availabilities?day_of_week=2", mgr, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 1, dataOf(body)["total_count"])

	status, _ = f.do(t, "GET", "/availabilities?day_of_week=9", mgr, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	status, _ = f.do(t, "GET", "/availabilities?employee_id=nope", mgr, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = f.do(t, "GET", "/availabilities/employee/"+emp.id+"/weekly", mgr, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["data"], 3)

	status, _ = f.do(t, "GET", "/availabilities/employee/"+mgr.id+"/time-off", emp, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
}
