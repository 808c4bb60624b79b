// Package pagination parses and clamps limit/offset query parameters.
package pagination

import (
	"github.com/gin-gonic/gin"
)

const (
	// DefaultLimit is the default number of items per page.
	DefaultLimit = 20
	// MaxLimit caps the number of items per page.
	MaxLimit = 100
)

// Params represents pagination parameters.
type Params struct {
	Limit  int `form:"limit" json:"limit"`
	Offset int `form:"offset" json:"offset"`
}

// ParseParams extracts and clamps pagination parameters from the request.
// Invalid or missing values fall back to the defaults.
func ParseParams(c *gin.Context) Params {
	params := Params{Limit: DefaultLimit}

	if err := c.ShouldBindQuery(&params); err != nil {
		return Params{Limit: DefaultLimit}
	}

	if params.Limit <= 0 {
		params.Limit = DefaultLimit
	}
	if params.Limit > MaxLimit {
		params.Limit = MaxLimit
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	return params
}
