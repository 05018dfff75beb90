// Package policy maps (role, operation) pairs to allow/deny decisions.
// It is pure: no store access, no ownership checks.
package policy

import (
	"fmt"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/domain"
)

type Operation string

const (
	OpSubmit        Operation = "submit"
	OpAttachImage   Operation = "attach_image"
	OpSetPricing    Operation = "set_pricing"
	OpVerify        Operation = "verify"
	OpReserve       Operation = "reserve"
	OpCancel        Operation = "cancel"
	OpSubmitPayment Operation = "submit_payment"
	OpVerifyPayment Operation = "verify_payment"
	OpCloseSale     Operation = "close_sale"
	OpSendEnquiry   Operation = "send_enquiry"
	OpLeaveFeedback Operation = "leave_feedback"
	OpViewQueue     Operation = "view_queue"
	OpViewOwn       Operation = "view_own"
	OpManageAgents  Operation = "manage_agents"
	OpViewAssigned  Operation = "view_assigned"
	OpViewReports   Operation = "view_reports"
)

var (
	sellerOnly = roles(domain.RoleSeller)
	staff      = roles(domain.RoleAgent, domain.RoleAdmin)
)

var table = map[Operation]map[domain.Role]bool{
	OpSubmit:        sellerOnly,
	OpAttachImage:   roles(domain.RoleSeller, domain.RoleAgent, domain.RoleAdmin),
	OpSetPricing:    staff,
	OpVerify:        staff,
	OpReserve:       sellerOnly,
	OpCancel:        staff,
	OpSubmitPayment: sellerOnly,
	OpVerifyPayment: staff,
	OpCloseSale:     staff,
	OpSendEnquiry:   roles(domain.RoleSeller, domain.RoleAnonymous),
	OpLeaveFeedback: roles(domain.RoleSeller, domain.RoleAnonymous),
	OpViewQueue:     staff,
	OpViewOwn:       sellerOnly,
	OpManageAgents:  roles(domain.RoleAdmin),
	OpViewAssigned:  roles(domain.RoleAgent),
	OpViewReports:   roles(domain.RoleAdmin),
}

func roles(rs ...domain.Role) map[domain.Role]bool {
	m := make(map[domain.Role]bool, len(rs))
	for _, r := range rs {
		m[r] = true
	}
	return m
}

// Allowed reports whether role may perform op. Unknown operations are denied.
func Allowed(role domain.Role, op Operation) bool {
	return table[op][role]
}

// Authorize returns a wrapped domain.ErrAuthorization when the actor may not
// perform op. Authenticated roles also need a non-empty actor id.
func Authorize(actor domain.Actor, op Operation) error {
	if !Allowed(actor.Role, op) {
		return fmt.Errorf("%w: role %q may not %s", domain.ErrAuthorization, actor.Role, op)
	}
	if actor.Role != domain.RoleAnonymous && actor.ID == "" {
		return fmt.Errorf("%w: %s requires an actor id", domain.ErrAuthorization, op)
	}
	return nil
}
