package dto

// MarkPaidRequest is the body of the manual mark-paid endpoint.
type MarkPaidRequest struct {
	Amount *float64 `json:"amount" validate:"omitempty,gte=0"`
}

// PaymentsListRequest filters the payments listing.
type PaymentsListRequest struct {
	Page   int    `form:"page" validate:"omitempty,min=1"`
	Limit  int    `form:"limit" validate:"omitempty,min=1,max=100"`
	Status string `form:"status" validate:"omitempty,oneof=COMPLETED PENDING FAILED REFUNDED"`
}

// PaymentsExportRequest selects the export format and size.
type PaymentsExportRequest struct {
	Format string `form:"format" validate:"omitempty,oneof=csv pdf"`
	Limit  int    `form:"limit" validate:"omitempty,min=1,max=500"`
	Status string `form:"status" validate:"omitempty,oneof=COMPLETED PENDING FAILED REFUNDED"`
}

// RevenueTimeseriesRequest bounds the revenue window.
type RevenueTimeseriesRequest struct {
	Days int `form:"days" validate:"omitempty,min=1,max=365"`
}

// AuditTrailRequest bounds the audit entries returned for an enrollment.
type AuditTrailRequest struct {
	Limit int `form:"limit" validate:"omitempty,min=1,max=100"`
}

// ExportFile is a rendered export ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}
