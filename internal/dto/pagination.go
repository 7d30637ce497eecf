package dto

// PageQuery holds the pagination parameters shared by list endpoints.
// HostelID lets a super admin pick the tenant; other roles may omit it.
type PageQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
	HostelID string `form:"hostelId" binding:"omitempty"`
}

// SetDefaults sets default values for query parameters
func (q *PageQuery) SetDefaults() {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = 10
	}
}
