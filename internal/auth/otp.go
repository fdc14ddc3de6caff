// Copyright (c) 2026 Keygate. All rights reserved.
// Author: dang.hoanq.dev@gmail.com

package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// generateOTP produces a uniformly random 6-digit numeric code.
//
// crypto/rand is used because the code is the only secret protecting the
// reset flow; math/rand would make it guessable from adjacent codes.
func generateOTP() (string, error) {

	// Upper bound is exclusive: codes range 000000..999999.
	upperBound := big.NewInt(1)
	for i := 0; i < OTPDigits; i++ {
		upperBound.Mul(upperBound, big.NewInt(10))
	}

	value, err := rand.Int(rand.Reader, upperBound)
	if err != nil {
		return "", fmt.Errorf("auth_otp_generation_failed: %w", err)
	}

	// Left-pad so "42" becomes "000042".
	return fmt.Sprintf("%0*d", OTPDigits, value), nil
}

// otpEmailSubject is the subject line for password-reset delivery.
const otpEmailSubject = "Your one-time code for resetting your password"

// buildOTPEmail renders the HTML body carrying the reset code.
func buildOTPEmail(code string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
  <body style="margin: 0; font-family: sans-serif; background: #f4f7ff; color: #434343;">
    <div style="max-width: 480px; margin: 0 auto; padding: 40px 24px;">
      <h1 style="font-size: 22px; font-weight: 500; color: #1f1f1f;">Your one-time code</h1>
      <p style="font-size: 14px;">
        Use the following code to reset your password. It is valid for
        <strong>5 minutes</strong>. Do not share this code with anyone.
      </p>
      <p style="font-size: 36px; font-weight: 600; letter-spacing: 12px; color: #ba3d4f;">%s</p>
      <p style="font-size: 12px; color: #8c8c8c;">
        If you did not request a password reset, you can safely ignore this email.
      </p>
    </div>
  </body>
</html>`, code)
}
