package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/parsa-dv/messenger/internal/token"
)

// TokenSweepJob reclaims expired verification/reset tokens. Expiry itself is
// checked on every access, so this job only bounds memory; a missed run
// never extends a token's life.
type TokenSweepJob struct {
	tokens *token.Service
}

func NewTokenSweepJob(tokens *token.Service) *TokenSweepJob {
	return &TokenSweepJob{tokens: tokens}
}

func (j *TokenSweepJob) Name() string {
	return "token_sweep"
}

func (j *TokenSweepJob) Run(ctx context.Context) error {
	removed, err := j.tokens.Sweep(ctx)
	if err != nil {
		return err
	}
	if removed > 0 {
		logutil.GetLogger(ctx).Info("expired tokens reclaimed", zap.Int("count", removed))
	}
	return nil
}
