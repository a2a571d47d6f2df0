package constants

const (
	InvitationView       = "invitation.view"
	InvitationCreate     = "invitation.create"
	InvitationBulkCreate = "invitation.bulk_create"
	InvitationManage     = "invitation.manage"

	AvailabilityView    = "availability.view"
	AvailabilityCreate  = "availability.create"
	AvailabilityEdit    = "availability.edit"
	AvailabilityDelete  = "availability.delete"
	AvailabilityApprove = "availability.approve"

	LocationView           = "location.view"
	LocationCreate         = "location.create"
	LocationEdit           = "location.edit"
	LocationDelete         = "location.delete"
	LocationManageActivity = "location.manage_activity"
)
