package ad

import "ad-mediation/internal/backend"

// StatusListener получает уведомления рекламного блока.
// Все методы вызываются на горутине диспетчера.
type StatusListener interface {
	OnAdLoaded()
	OnAdFailed(reason string)
	OnAdShown()
	OnAdClosed()
}

// RewardedListener - слушатель видео с вознаграждением
type RewardedListener interface {
	StatusListener
	OnRewardGranted()
	OnAdClicked()
}

// ClickListener - слушатель interstitial и native блоков
type ClickListener interface {
	StatusListener
	OnAdClicked()
}

// BannerListener - слушатель баннера
type BannerListener interface {
	StatusListener
	OnAdClicked()
	OnAdRefreshed()
}

// SplashListener - слушатель splash-рекламы
type SplashListener interface {
	StatusListener
	OnAdClicked()
	OnSplashDismissed(reason backend.DismissType)
}

// ListenerFuncs адаптирует набор функций к StatusListener. Пустые поля игнорируются.
type ListenerFuncs struct {
	Loaded func()
	Failed func(reason string)
	Shown  func()
	Closed func()
}

var _ StatusListener = ListenerFuncs{}

func (f ListenerFuncs) OnAdLoaded() {
	if f.Loaded != nil {
		f.Loaded()
	}
}

func (f ListenerFuncs) OnAdFailed(reason string) {
	if f.Failed != nil {
		f.Failed(reason)
	}
}

func (f ListenerFuncs) OnAdShown() {
	if f.Shown != nil {
		f.Shown()
	}
}

func (f ListenerFuncs) OnAdClosed() {
	if f.Closed != nil {
		f.Closed()
	}
}
