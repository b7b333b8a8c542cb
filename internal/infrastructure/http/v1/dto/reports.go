package dto

// DashboardRequest selects the dashboard month. Zero values mean the current month.
type DashboardRequest struct {
	Year  int `form:"year" binding:"omitempty,min=1970,max=9999"`
	Month int `form:"month" binding:"omitempty,min=1,max=12"`
}
