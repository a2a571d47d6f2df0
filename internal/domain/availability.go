package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"easyshifthq-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const MaxReasonLength = 500

// DayOfWeek follows time.Weekday numbering: Sunday is 0.
type DayOfWeek int

func (d DayOfWeek) Valid() bool {
	return d >= 0 && d <= 6
}

func (d DayOfWeek) String() string {
	if !d.Valid() {
		return fmt.Sprintf("DayOfWeek(%d)", int(d))
	}
	return time.Weekday(d).String()
}

// ClockTime is a time of day in minutes since midnight. 24:00 is allowed as
// an end-of-day marker.
type ClockTime int

const EndOfDay ClockTime = 24 * 60

func (t ClockTime) Valid() bool {
	return t >= 0 && t <= EndOfDay
}

func (t ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// ParseClockTime accepts HH:MM or HH:MM:SS; seconds are dropped.
func ParseClockTime(s string) (ClockTime, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	if h < 0 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	t := ClockTime(h*60 + m)
	if !t.Valid() {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return t, nil
}

func (t ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *ClockTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalDenied   ApprovalStatus = "denied"
)

// Availability is either a recurring weekly slot or a time-off request,
// never both: time-off rows carry both dates, weekly rows carry neither.
type Availability struct {
	ID               uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	TenantID         *uuid.UUID     `gorm:"column:tenant_id;type:uuid;index" json:"tenant_id"`
	EmployeeID       uuid.UUID      `gorm:"column:employee_id;type:uuid;not null;index" json:"employee_id"`
	DayOfWeek        DayOfWeek      `gorm:"column:day_of_week;not null" json:"day_of_week"`
	StartTime        ClockTime      `gorm:"column:start_time;not null" json:"start_time"`
	EndTime          ClockTime      `gorm:"column:end_time;not null" json:"end_time"`
	IsAvailable      bool           `gorm:"column:is_available;not null" json:"is_available"`
	TimeOffStartDate *time.Time     `gorm:"column:time_off_start_date" json:"time_off_start_date"`
	TimeOffEndDate   *time.Time     `gorm:"column:time_off_end_date" json:"time_off_end_date"`
	Reason           *string        `gorm:"column:reason;type:varchar(500)" json:"reason"`
	ApprovalStatus   ApprovalStatus `gorm:"column:approval_status;type:varchar(16);not null" json:"approval_status"`
	ApprovalDate     *time.Time     `gorm:"column:approval_date" json:"approval_date"`
	ApproverID       *uuid.UUID     `gorm:"column:approver_id;type:uuid" json:"approver_id"`
	DenialReason     *string        `gorm:"column:denial_reason;type:varchar(500)" json:"denial_reason"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Availability) TableName() string {
	return "availabilities"
}

func (a *Availability) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func NewWeeklyAvailability(tenantID *uuid.UUID, employeeID uuid.UUID, day DayOfWeek, start, end ClockTime, isAvailable bool) (*Availability, error) {
	if employeeID == uuid.Nil {
		return nil, Validation("employee_id", "Employee is required")
	}
	a := &Availability{TenantID: tenantID, EmployeeID: employeeID}
	if err := a.SetAvailability(day, start, end, isAvailable); err != nil {
		return nil, err
	}
	return a, nil
}

func NewTimeOffRequest(tenantID *uuid.UUID, employeeID uuid.UUID, start, end time.Time, reason *string) (*Availability, error) {
	if employeeID == uuid.Nil {
		return nil, Validation("employee_id", "Employee is required")
	}
	a := &Availability{TenantID: tenantID, EmployeeID: employeeID}
	if err := a.SetTimeOff(start, end, reason); err != nil {
		return nil, err
	}
	return a, nil
}

// IsTimeOffRequest reports whether the row is in time-off mode.
func (a *Availability) IsTimeOffRequest() bool {
	return a.TimeOffStartDate != nil && a.TimeOffEndDate != nil
}

// SetAvailability switches the row to weekly mode and clears time-off state.
func (a *Availability) SetAvailability(day DayOfWeek, start, end ClockTime, isAvailable bool) error {
	if !day.Valid() {
		return Validation("day_of_week", "Day of week must be between 0 (Sunday) and 6 (Saturday)")
	}
	if !start.Valid() || !end.Valid() {
		return Validation("start_time", "Times must be between 00:00 and 24:00")
	}
	if start > end {
		return Validation("start_time", "Start time must be before end time")
	}
	a.DayOfWeek = day
	a.StartTime = start
	a.EndTime = end
	a.IsAvailable = isAvailable

	a.TimeOffStartDate = nil
	a.TimeOffEndDate = nil
	a.Reason = nil
	a.ApprovalStatus = ApprovalPending
	a.ApprovalDate = nil
	a.ApproverID = nil
	a.DenialReason = nil
	return nil
}

// SetTimeOff switches the row to time-off mode and zeroes the weekly slot.
// Approval state is left untouched.
func (a *Availability) SetTimeOff(start, end time.Time, reason *string) error {
	if start.IsZero() || end.IsZero() {
		return Validation("time_off_start_date", "Start and end dates are required")
	}
	s, e := DateOf(start), DateOf(end)
	if s.After(e) {
		return Validation("time_off_start_date", "Start date must be before end date")
	}
	if reason != nil {
		r := strings.TrimSpace(*reason)
		if !validation.MaxLen(r, MaxReasonLength) {
			return Validation("reason", "Reason must be at most 500 characters")
		}
		if r == "" {
			reason = nil
		} else {
			reason = &r
		}
	}
	wasTimeOff := a.IsTimeOffRequest()
	a.TimeOffStartDate = &s
	a.TimeOffEndDate = &e
	a.Reason = reason
	a.IsAvailable = false
	a.DayOfWeek = 0
	a.StartTime = 0
	a.EndTime = 0
	if !wasTimeOff {
		a.ApprovalStatus = ApprovalPending
	}
	return nil
}

func (a *Availability) ApproveTimeOff(approverID uuid.UUID, now time.Time) error {
	if !a.IsTimeOffRequest() {
		return ErrNotATimeOffRequest
	}
	if a.ApprovalStatus == ApprovalApproved {
		return ErrTimeOffAlreadyApproved
	}
	at := now.UTC()
	a.ApproverID = &approverID
	a.ApprovalStatus = ApprovalApproved
	a.ApprovalDate = &at
	a.DenialReason = nil
	return nil
}

func (a *Availability) DenyTimeOff(approverID uuid.UUID, reason string, now time.Time) error {
	if !a.IsTimeOffRequest() {
		return ErrNotATimeOffRequest
	}
	if a.ApprovalStatus == ApprovalDenied {
		return ErrTimeOffAlreadyDenied
	}
	reason = strings.TrimSpace(reason)
	if !validation.MaxLen(reason, MaxReasonLength) {
		return Validation("reason", "Reason must be at most 500 characters")
	}
	at := now.UTC()
	a.ApproverID = &approverID
	a.ApprovalStatus = ApprovalDenied
	a.ApprovalDate = &at
	a.DenialReason = &reason
	return nil
}

// DateOf truncates t to midnight UTC of its calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
