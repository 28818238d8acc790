package service

import "billboardwatch/pkg/types"

// Authorization rules live here rather than scattered through the operations,
// so the role/ownership/status table stays auditable in one place.

// imageRequired: public reporters must attach a photo; organization callers
// may file image-less reports on behalf of field staff.
func imageRequired(actor *types.User) bool {
	return actor.Role == types.UserRolePublic
}

// canUpdateStatus: only organization reviewers may move a report through its
// lifecycle.
func canUpdateStatus(actor *types.User) bool {
	return actor.Role == types.UserRoleOrganization
}

// canDelete: deletion is reachable only from pending. Organization reviewers
// may delete any pending report; public reporters only their own.
func canDelete(actor *types.User, report *types.Report) bool {
	if report.Status != types.ReportStatusPending {
		return false
	}

	switch actor.Role {
	case types.UserRoleOrganization:
		return true
	case types.UserRolePublic:
		return report.ReporterID == actor.ID
	}

	return false
}
