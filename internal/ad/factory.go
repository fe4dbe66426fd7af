package ad

import (
	"context"
	"fmt"

	"ad-mediation/internal/placement"
)

// New создает блок нужной категории
func New(ctx context.Context, env Env, category placement.Category, key string) (Unit, error) {
	switch category {
	case placement.CategoryRewardedVideo:
		return NewRewardedVideo(ctx, env, key), nil
	case placement.CategoryInterstitial:
		return NewInterstitial(ctx, env, key), nil
	case placement.CategoryBanner:
		return NewBanner(ctx, env, key), nil
	case placement.CategorySplash:
		return NewSplash(ctx, env, key), nil
	case placement.CategoryNative:
		return NewNative(ctx, env, key), nil
	default:
		return nil, fmt.Errorf("unsupported ad category %s", category)
	}
}
