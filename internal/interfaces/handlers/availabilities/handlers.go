package availabilities

import (
	availsvc "easyshifthq-backend/internal/application/availabilities"
	"easyshifthq-backend/internal/domain"
	"easyshifthq-backend/internal/interfaces/handlers"
	"easyshifthq-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const defaultPageSize = 10

// Handlers holds dependencies for availability and time-off endpoints.
type Handlers struct {
	Service *availsvc.Service
}

type timeOffRequest struct {
	StartDate string  `json:"time_off_start_date"`
	EndDate   string  `json:"time_off_end_date"`
	Reason    *string `json:"reason"`
}

func (r timeOffRequest) input() (availsvc.TimeOffInput, error) {
	start, err := handlers.ParseDate("time_off_start_date", r.StartDate)
	if err != nil {
		return availsvc.TimeOffInput{}, err
	}
	end, err := handlers.ParseDate("time_off_end_date", r.EndDate)
	if err != nil {
		return availsvc.TimeOffInput{}, err
	}
	return availsvc.TimeOffInput{StartDate: start, EndDate: end, Reason: r.Reason}, nil
}

type denyRequest struct {
	Reason string `json:"reason"`
}

// Get GET /api/v1/availabilities/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	actor, err := handlers.Actor(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := handlers.UUIDParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	a, err := h.Service.Get(c.UserContext(), actor, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Availability retrieved", a, nil)
}

// List GET /api/v1/availabilities?employee_id=&day_of_week=&from=&to=&skip=&max=
func (h *Handlers) List(c *fiber.Ctx) error {
	actor, err := handlers.Actor(c)
	if err != nil {
		return response.FromError(c, err)
	}
	f, err := listFilter(c)
	if err != nil {
		return response.FromError(c, err)
	}
	res, err := h.Service.List(c.UserContext(), actor, f)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Availabilities retrieved", res, fiber.Map{"skip": f.Skip, "max": f.Max})
}

func listFilter(c *fiber.Ctx) (domain.AvailabilityFilter, error) {
	f := domain.AvailabilityFilter{
		Skip: c.QueryInt("skip", 0),
		Max:  c.QueryInt("max", defaultPageSize),
	}
	if f.Skip < 0 || f.Max <= 0 {
		return f, domain.Validation("max", "skip must be >= 0 and max > 0")
	}
	var err error
	if f.EmployeeID, err = handlers.OptionalUUIDQuery(c, "employee_id"); err != nil {
		return f, err
	}
	if c.Query("day_of_week") != "" {
		day := domain.DayOfWeek(c.QueryInt("day_of_week", -1))
		if !day.Valid() {
			return f, domain.Validation("day_of_week", "Day of week must be between 0 (Sunday) and 6 (Saturday)")
		}
		f.DayOfWeek = &day
	}
	if f.TimeOffStartDate, err = handlers.OptionalDateQuery(c, "from"); err != nil {
		return f, err
	}
	if f.TimeOffEndDate, err = handlers.OptionalDateQuery(c, "to"); err != nil {
		return f, err
	}
	return f, nil
}

// EmployeeWeekly GET /api/v1/availabilities/employee/:employeeId/weekly
func (h *Handlers) EmployeeWeekly(c *fiber.Ctx) error {
	actor, err := handlers.Actor(c)
	if err != nil {
		return response.FromError(c, err)
	}
	employeeID, err := handlers.UUIDParam(c, "employeeId")
	if err != nil {
		return response.FromError(c, err)
	}
	items, err := h.Service.GetEmployeeWeeklyAvailability(c.UserContext(), actor, employeeID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Weekly availability retrieved", items, nil)
}

// EmployeeTimeOff GET /api/v1/availabilities/employee/:employeeId/time-off
func (h *Handlers) EmployeeTimeOff(c *fiber.Ctx) error {
	actor, err := handlers.Actor(c)
	if err != nil {
		return response.FromError(c, err)
	}
	employeeID, err := handlers.UUIDParam(c, "employeeId")
	if err != nil {
		return response.FromError(c, err)
	}
	items, err := h.Service.GetEmployeeTimeOffRequests(c.UserContext(), actor, employeeID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Time-off requests retrieved", items, nil)
}

// MyWeekly GET /api/v1/availabilities/me/weekly
func (h *Handlers) MyWeekly(c *fiber.Ctx) error {
	actor, err := handlers.Actor(c)
	if err != nil {
		return response.FromError(c, err)
	}
	items, err := h.Service.GetCurrentUserWeeklyAvailability(c.UserContext(), actor)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Weekly availability retrieved", items, nil)
}

// SubmitWeekly POST /api/v1/availabilities/weekly
func (h *Handlers) SubmitWeekly(c *fiber.Ctx) error {
	actor, err := handlers.Actor(c)
	if err != nil {
		return response.FromError(c, err)
	}
	var req availsvc.WeeklyInput
	if err := handlers.ParseBody(c, &req); err != nil {
		return response.FromError(c, err)
	}
	a, err := h.Service.SubmitWeeklyAvailability(c.UserContext(), actor, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Weekly availability submitted", a, nil)
}

// SubmitTimeOff POST /api/v1/availabilities/time-off
func (h *Handlers) SubmitTimeOff(c *fiber.Ctx) error {
	actor, err := handlers.Actor(c)
	if err != nil {
		return response.FromError(c, err)
	}
	var req timeOffRequest
	if err := handlers.ParseBody(c, &req); err != nil {
		return response.FromError(c, err)
	}
	in, err := req.input()
	if err != nil {
		return response.FromError(c, err)
	}
	a, err := h.Service.SubmitTimeOffRequest(c.UserContext(), actor, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Time-off request submitted", a, nil)
}

// UpdateWeekly PUT /api/v1/availabilities/:id/weekly
func (h *Handlers) UpdateWeekly(c *fiber.Ctx) error {
	actor, err := handlers.Actor(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := handlers.UUIDParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req availsvc.WeeklyInput
	if err := handlers.ParseBody(c, &req); err != nil {
		return response.FromError(c, err)
	}
	a, err := h.Service.UpdateWeeklyAvailability(c.UserContext(), actor, id, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Weekly availability updated", a, nil)
}

// UpdateTimeOff PUT /api/v1/availabilities/:id/time-off
func (h *Handlers) UpdateTimeOff(c *fiber.Ctx) error {
	actor, err := handlers.Actor(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := handlers.UUIDParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req timeOffRequest
	if err := handlers.ParseBody(c, &req); err != nil {
		return response.FromError(c, err)
	}
	in, err := req.input()
	if err != nil {
		return response.FromError(c, err)
	}
	a, err := h.Service.UpdateTimeOffRequest(c.UserContext(), actor, id, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Time-off request updated", a, nil)
}

// Approve PUT /api/v1/availabilities/:id/approve
func (h *Handlers) Approve(c *fiber.Ctx) error {
	actor, err := handlers.Actor(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := handlers.UUIDParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	a, err := h.Service.ApproveTimeOffRequest(c.UserContext(), actor, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Time-off request approved", a, nil)
}

// Deny PUT /api/v1/availabilities/:id/deny. The body's reason is optional.
func (h *Handlers) Deny(c *fiber.Ctx) error {
	actor, err := handlers.Actor(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := handlers.UUIDParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req denyRequest
	if len(c.Body()) > 0 {
		if err := handlers.ParseBody(c, &req); err != nil {
			return response.FromError(c, err)
		}
	}
	a, err := h.Service.DenyTimeOffRequest(c.UserContext(), actor, id, req.Reason)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Time-off request denied", a, nil)
}

// Delete DELETE /api/v1/availabilities/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	actor, err := handlers.Actor(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := handlers.UUIDParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.Service.Delete(c.UserContext(), actor, id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Availability deleted", nil, nil)
}
