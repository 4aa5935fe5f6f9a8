package models

// CourseRevenue aggregates revenue per course.
type CourseRevenue struct {
	CourseID string  `json:"courseId"`
	Title    string  `json:"title"`
	Amount   float64 `json:"amount"`
	Count    int     `json:"count"`
}

// RevenueSummary is the headline revenue block.
type RevenueSummary struct {
	Total       float64         `json:"total"`
	Outstanding float64         `json:"outstanding"`
	ByCourse    []CourseRevenue `json:"byCourse"`
}

// RevenuePoint is a single day of the revenue series.
type RevenuePoint struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// RevenueTimeseries wraps the daily revenue series.
type RevenueTimeseries struct {
	Series []RevenuePoint `json:"series"`
}
