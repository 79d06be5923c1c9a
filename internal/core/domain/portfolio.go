package domain

// Holding is a user's position in one curriculum's shares.
type Holding struct {
	CurriculumID     string `json:"curriculumID"`
	AssetCode        string `json:"assetCode"`
	Shares           int64  `json:"shares"`
	LastPrice        *int64 `json:"lastPrice,omitempty"`
	LiquidationValue int64  `json:"liquidationValue"`
}

// Portfolio is a user's cash plus share holdings, valued against the live bid books.
type Portfolio struct {
	UserID                string    `json:"userID"`
	CashTicks             int64     `json:"cashTicks"`
	Holdings              []Holding `json:"holdings"`
	TotalLiquidationValue int64     `json:"totalLiquidationValue"`
}
