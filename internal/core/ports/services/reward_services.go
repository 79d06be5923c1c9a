package services

import (
	"context"

	"github.com/SscSPs/access_exchange/internal/dto"
)

// RewardSvcFacade issues currency and shares and distributes curriculum earnings.
type RewardSvcFacade interface {
	// GrantSignupBonus returns false when the bonus had already been granted.
	GrantSignupBonus(ctx context.Context, userID string, ticks int64) (bool, error)
	MintShares(ctx context.Context, curriculumID string, req dto.MintSharesRequest) (string, error)
	RewardLessonCompletion(ctx context.Context, req dto.LessonRewardRequest) (*dto.LessonRewardResponse, error)

	// PayoutCurriculumWallet returns the number of ticks distributed. maxTicks <= 0 means no cap.
	PayoutCurriculumWallet(ctx context.Context, curriculumID string, maxTicks int64) (int64, error)
	PayoutAllCurricula(ctx context.Context) (int64, error)
}
