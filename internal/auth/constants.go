// Copyright (c) 2026 Keygate. All rights reserved.
// Author: dang.hoanq.dev@gmail.com

package auth

import "time"

// # Authentication Constraints

const (
	// PasswordMinLength is the minimum accepted password length.
	PasswordMinLength = 8

	// UsernameMinLength is the minimum accepted username length.
	UsernameMinLength = 3

	// OTPTTL is the duration a password-reset one-time code remains valid.
	// Short-lived (5 minutes) because the code is only six digits.
	OTPTTL = 5 * time.Minute

	// OTPDigits is the number of digits in a password-reset code.
	OTPDigits = 6
)
