package account

import (
	"github.com/amirasaad/atm/pkg/domain"
)

// User-facing failure messages.
const (
	msgFieldsRequired      = "All fields are required."
	msgUsernameTaken       = "Username already exists."
	msgNoSuchUser          = "No such user."
	msgIncorrectPassword   = "Incorrect password."
	msgLoginRequired       = "Login required."
	msgInvalidAmount       = "Invalid amount."
	msgAmountNotPositive   = "Amount must be positive."
	msgIncorrectPIN        = "Incorrect PIN."
	msgInsufficientFunds   = "Insufficient funds."
	msgRecipientNotFound   = "Recipient not found."
	msgSelfTransfer        = "Cannot transfer to yourself."
	msgIncorrectOldPIN     = "Incorrect old PIN."
	msgNewPINRequired      = "New PIN required."
	msgIncorrectCurrentPwd = "Incorrect current password."
	msgNewPasswordRequired = "New password required."
	msgInvalidRating       = "Invalid rating."
	msgRatingOutOfRange    = "Rating must be 1–5."
	msgSaveFailed          = "Could not save account data."
)

// User-facing success messages.
const (
	msgAccountCreated  = "Account '%s' created."
	msgWelcome         = "Welcome back, %s!"
	msgLoggedOut       = "Logged out."
	msgDeposited       = "Deposited %s. New balance: %s"
	msgWithdrew        = "Withdrew %s. New balance: %s"
	msgTransferred     = "Transferred %s to %s. New balance: %s"
	msgPINChanged      = "PIN changed successfully."
	msgPasswordChanged = "Password changed successfully."
	msgRated           = "Thanks for rating %d star(s)!"
)

var (
	errLoginRequired       = domain.NewError(domain.ErrUnauthorized, msgLoginRequired)
	errFieldsRequired      = domain.NewError(domain.ErrValidation, msgFieldsRequired)
	errUsernameTaken       = domain.NewError(domain.ErrAlreadyExists, msgUsernameTaken)
	errNoSuchUser          = domain.NewError(domain.ErrNotFound, msgNoSuchUser)
	errIncorrectPassword   = domain.NewError(domain.ErrUnauthorized, msgIncorrectPassword)
	errInvalidAmount       = domain.NewError(domain.ErrValidation, msgInvalidAmount)
	errAmountNotPositive   = domain.NewError(domain.ErrValidation, msgAmountNotPositive)
	errIncorrectPIN        = domain.NewError(domain.ErrUnauthorized, msgIncorrectPIN)
	errInsufficientFunds   = domain.NewError(domain.ErrInsufficientFunds, msgInsufficientFunds)
	errRecipientNotFound   = domain.NewError(domain.ErrNotFound, msgRecipientNotFound)
	errSelfTransfer        = domain.NewError(domain.ErrValidation, msgSelfTransfer)
	errIncorrectOldPIN     = domain.NewError(domain.ErrUnauthorized, msgIncorrectOldPIN)
	errNewPINRequired      = domain.NewError(domain.ErrValidation, msgNewPINRequired)
	errIncorrectCurrentPwd = domain.NewError(domain.ErrUnauthorized, msgIncorrectCurrentPwd)
	errNewPasswordRequired = domain.NewError(domain.ErrValidation, msgNewPasswordRequired)
	errInvalidRating       = domain.NewError(domain.ErrValidation, msgInvalidRating)
	errRatingOutOfRange    = domain.NewError(domain.ErrValidation, msgRatingOutOfRange)
)
