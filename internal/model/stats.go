package model

// GenreShare is one slice of the admin genre distribution chart.
type GenreShare struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// AdminStats feeds the admin dashboard.
type AdminStats struct {
	UserCount          int          `json:"userCount"`
	BooksCount         int          `json:"booksCount"`
	AdminCount         int          `json:"adminCount"`
	PendingReviewCount int          `json:"pendingReviewCount"`
	GenreDistribution  []GenreShare `json:"genreDistribution"`
}

// MonthlyStat is one bar of the reader's monthly chart.
type MonthlyStat struct {
	Month string `json:"month"`
	Books int    `json:"books"`
	Pages int    `json:"pages"`
}

// UserStats feeds the reader dashboard.
type UserStats struct {
	AnnualGoal        int           `json:"annualGoal"`
	BooksReadThisYear int           `json:"booksReadThisYear"`
	TotalPagesRead    int           `json:"totalPagesRead"`
	AverageRating     float64       `json:"averageRating"`
	ReadingStreak     int           `json:"readingStreak"`
	MonthlyStats      []MonthlyStat `json:"monthlyStats"`
	GoalPercentage    int           `json:"goalPercentage"`
}
