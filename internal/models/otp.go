package models

import "time"

type OTPPurpose string

const (
	OTPVerify OTPPurpose = "verify"
	OTPReset  OTPPurpose = "reset"
)

// OTP is a time-boxed one-time code issued to an email address.
type OTP struct {
	Email     string     `json:"email"`
	Code      string     `json:"code"`
	Purpose   OTPPurpose `json:"purpose"`
	ExpiresAt time.Time  `json:"expiresAt"`
	Attempts  int        `json:"attempts"`
}
