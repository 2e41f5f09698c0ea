package enums

import "fmt"

// AuditAction is the canonical action kind recorded in the audit log.
type AuditAction string

const (
	AuditActionLogin             AuditAction = "login"
	AuditActionLoginFailed       AuditAction = "login_failed"
	AuditActionRegister          AuditAction = "register"
	AuditActionAddToCart         AuditAction = "add_to_cart"
	AuditActionRemoveFromCart    AuditAction = "remove_from_cart"
	AuditActionCreateOrder       AuditAction = "create_order"
	AuditActionConfirmPayment    AuditAction = "confirm_payment"
	AuditActionCompletePayment   AuditAction = "complete_payment"
	AuditActionCancelOrder       AuditAction = "cancel_order"
	AuditActionUpdateOrderStatus AuditAction = "update_order_status"
	AuditActionViewCredentials   AuditAction = "view_credentials"
	AuditActionAccessDenied      AuditAction = "access_denied"
	AuditActionAddAccount        AuditAction = "add_account"
	AuditActionEditAccount       AuditAction = "edit_account"
	AuditActionDeleteAccount     AuditAction = "delete_account"
	AuditActionUpdatePayment     AuditAction = "update_payment_settings"
)

var validAuditActions = []AuditAction{
	AuditActionLogin,
	AuditActionLoginFailed,
	AuditActionRegister,
	AuditActionAddToCart,
	AuditActionRemoveFromCart,
	AuditActionCreateOrder,
	AuditActionConfirmPayment,
	AuditActionCompletePayment,
	AuditActionCancelOrder,
	AuditActionUpdateOrderStatus,
	AuditActionViewCredentials,
	AuditActionAccessDenied,
	AuditActionAddAccount,
	AuditActionEditAccount,
	AuditActionDeleteAccount,
	AuditActionUpdatePayment,
}

// String implements fmt.Stringer.
func (a AuditAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AuditAction.
func (a AuditAction) IsValid() bool {
	for _, candidate := range validAuditActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAuditAction converts raw input into an AuditAction.
func ParseAuditAction(value string) (AuditAction, error) {
	for _, candidate := range validAuditActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit action %q", value)
}
