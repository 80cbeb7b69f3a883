package draft

import "errors"

var (
	ErrNotFound     = errors.New("draft not found")
	ErrUnknownTheme = errors.New("unknown theme")
	ErrInvalidLogo  = errors.New("logo must be a PNG or JPEG image")
	ErrLogoTooLarge = errors.New("logo exceeds the size limit")
	ErrSealed       = errors.New("draft is encrypted but no key is configured")
)
