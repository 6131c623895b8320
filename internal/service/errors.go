package service

import "finance_tracker/internal/apperr"

var (
	ErrUserAlreadyExists  = apperr.New(apperr.KindConflict, "user_exists", "User with this email already exists")
	ErrInvalidCredentials = apperr.New(apperr.KindAuthentication, "invalid_credentials", "Invalid email or password")
	ErrAccountSuspended   = apperr.New(apperr.KindForbidden, "account_suspended", "Account is suspended")
	ErrInvalidRole        = apperr.New(apperr.KindValidation, "invalid_role", "Role must be user or advisor")
	ErrUserNotFound       = apperr.New(apperr.KindNotFound, "user_not_found", "User not found")
	ErrForbidden          = apperr.New(apperr.KindForbidden, "forbidden", "Forbidden")
)

var (
	ErrMissingCardFields = apperr.New(apperr.KindValidation, "missing_fields", "Missing required fields")
	ErrPasswordRequired  = apperr.New(apperr.KindValidation, "password_required", "Password is required")
	ErrInvalidPassword   = apperr.New(apperr.KindAuthentication, "invalid_password", "Invalid password")
	ErrTooManyAttempts   = apperr.New(apperr.KindRateLimited, "too_many_attempts", "Too many failed attempts. Please try again later")
	ErrCardNotFound      = apperr.New(apperr.KindNotFound, "card_not_found", "Card not found")
	ErrCardNotEncrypted  = apperr.New(apperr.KindValidation, "card_not_encrypted", "Card number is not available for this card")
)

var (
	ErrInvalidSpendingType = apperr.New(apperr.KindValidation, "invalid_type", "Type must be income or expense")
	ErrInvalidAmount       = apperr.New(apperr.KindValidation, "invalid_amount", "Amount must be a positive number")
	ErrAmountPrecision     = apperr.New(apperr.KindValidation, "invalid_amount", "Amount must have at most 2 decimal places")
)

var (
	ErrAdvisorIDRequired      = apperr.New(apperr.KindValidation, "advisor_id_required", "Advisor ID is required")
	ErrAdvisorNotFound        = apperr.New(apperr.KindNotFound, "advisor_not_found", "Advisor not found")
	ErrAdvisorNotAccepting    = apperr.New(apperr.KindConflict, "advisor_not_accepting", "Advisor is not accepting clients")
	ErrAdvisorAlreadyAssigned = apperr.New(apperr.KindConflict, "advisor_already_assigned", "You already have an assigned advisor")
	ErrRequestAlreadyPending  = apperr.New(apperr.KindConflict, "request_already_pending", "You already have a pending request to this advisor")
	ErrRequestNotFound        = apperr.New(apperr.KindNotFound, "request_not_found", "Request not found or already processed")
	ErrInvalidAction          = apperr.New(apperr.KindValidation, "invalid_action", "Action must be approve or decline")
	ErrInvalidStatusFilter    = apperr.New(apperr.KindValidation, "invalid_status", "Status must be pending, approved or declined")
	ErrClientAlreadyAssigned  = apperr.New(apperr.KindConflict, "client_already_assigned", "User already has an assigned advisor")
)
