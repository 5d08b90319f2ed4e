// internal/controller/token-registrar/models.go
package tokenregistrar

import "errors"

var errEmptyToken = errors.New("push service returned an empty token")
