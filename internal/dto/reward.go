package dto

// SignupBonusRequest grants the one-time signup bonus. Ticks defaults to the configured amount.
type SignupBonusRequest struct {
	UserID string `json:"userID" binding:"required"`
	Ticks  int64  `json:"ticks" binding:"omitempty,gt=0"`
}

// SignupBonusResponse reports whether this call granted the bonus.
type SignupBonusResponse struct {
	UserID  string `json:"userID"`
	Granted bool   `json:"granted"`
}

// MintSharesRequest issues curriculum shares from the treasury to a user.
// Reference makes repeated mints of the same quantity distinct; it defaults to the quantity.
type MintSharesRequest struct {
	UserID    string `json:"userID" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
	Reference string `json:"reference" binding:"omitempty,max=128"`
}

// MintSharesResponse returns the minting transaction.
type MintSharesResponse struct {
	TransactionID string `json:"transactionID"`
}

// LessonRewardRequest rewards a completed lesson attempt.
type LessonRewardRequest struct {
	UserID       string `json:"userID" binding:"required"`
	LessonID     string `json:"lessonID" binding:"required"`
	CurriculumID string `json:"curriculumID"`
	SecondsSpent int64  `json:"secondsSpent" binding:"gte=0"`
	Day          string `json:"day" binding:"omitempty,datetime=2006-01-02"`
}

// LessonRewardResponse reports what was issued. TransactionID is empty when nothing was earned.
type LessonRewardResponse struct {
	TransactionID        string `json:"transactionID,omitempty"`
	RewardTicks          int64  `json:"rewardTicks"`
	CurriculumBonusTicks int64  `json:"curriculumBonusTicks"`
	RewardDisplay        string `json:"rewardDisplay"`
}

// PayoutRequest distributes a curriculum wallet. MaxTicks of 0 distributes everything.
type PayoutRequest struct {
	MaxTicks int64 `json:"maxTicks" binding:"gte=0"`
}

// PayoutResponse reports the distributed amount.
type PayoutResponse struct {
	CurriculumID     string `json:"curriculumID,omitempty"`
	DistributedTicks int64  `json:"distributedTicks"`
	Display          string `json:"display"`
}
