package request

import "fmt"

// ByIDRequest is a common struct for endpoints that require an ID path parameter.
type ByIDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// PageParams is embedded by list queries.
type PageParams struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

const MaxPageSize = 100

// Normalize fills defaults and rejects out-of-range values.
func (p *PageParams) Normalize() error {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.PageSize == 0 {
		p.PageSize = 20
	}
	if p.Page < 1 {
		return fmt.Errorf("page must be positive")
	}
	if p.PageSize < 1 || p.PageSize > MaxPageSize {
		return fmt.Errorf("page_size must be between 1 and %d", MaxPageSize)
	}
	return nil
}
