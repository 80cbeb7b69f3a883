package render

import "errors"

var ErrLogo = errors.New("logo must be a PNG, JPEG or GIF image")
