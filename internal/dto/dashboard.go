package dto

import (
	"time"

	"github.com/noah-isme/admin-dashboard-api/internal/models"
)

// AdminDashboardResponse is the combined view model behind the admin dashboard.
type AdminDashboardResponse struct {
	Payments      []models.PaymentRecord `json:"payments"`
	Students      []models.Student       `json:"students"`
	TotalRevenue  float64                `json:"totalRevenue"`
	RevenueSeries []models.RevenuePoint  `json:"revenueSeries"`
}

// EmptyAdminDashboard returns the zero view model with non-nil collections.
func EmptyAdminDashboard() *AdminDashboardResponse {
	return &AdminDashboardResponse{
		Payments:      []models.PaymentRecord{},
		Students:      []models.Student{},
		RevenueSeries: []models.RevenuePoint{},
	}
}

// DashboardSnapshot is the last published view model of a session.
type DashboardSnapshot struct {
	Dashboard   *AdminDashboardResponse `json:"dashboard,omitempty"`
	Loading     bool                    `json:"loading"`
	PublishedAt *time.Time              `json:"publishedAt,omitempty"`
}
