package domain

// Enrollment is a freshly generated, not yet confirmed TOTP secret.
type Enrollment struct {
	Secret          string // base32
	ProvisioningURI string // otpauth://totp/...
	QRCodePNG       []byte
}
