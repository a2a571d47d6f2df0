package constants

const (
	Employee = "employee"
	Manager  = "manager"
	Admin    = "admin"
)

// ValidRoles is the set of roles a user or invitation may carry.
var ValidRoles = []string{Employee, Manager, Admin}

// IsValidRole returns true if role is one of the allowed values.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// ApproverRoles receive time-off requests for review.
var ApproverRoles = []string{Manager, Admin}
