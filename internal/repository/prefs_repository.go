package repository

import (
	"context"

	"lingo_learn_client/pkg/kvstore"
)

const (
	languageKey   = "prefs:language"
	onboardingKey = "prefs:onboarding"
)

// PrefsRepository 界面语言与引导完成标记的持久化
type PrefsRepository struct {
	store kvstore.Store
}

func NewPrefsRepository(store kvstore.Store) *PrefsRepository {
	return &PrefsRepository{store: store}
}

func (p *PrefsRepository) Language(ctx context.Context) string {
	data, err := p.store.Get(ctx, languageKey)
	if err != nil || len(data) == 0 {
		return "en"
	}
	return string(data)
}

func (p *PrefsRepository) SetLanguage(ctx context.Context, lang string) error {
	return p.store.Set(ctx, languageKey, []byte(lang))
}

func (p *PrefsRepository) OnboardingCompleted(ctx context.Context) bool {
	data, err := p.store.Get(ctx, onboardingKey)
	return err == nil && string(data) == "1"
}

func (p *PrefsRepository) SetOnboardingCompleted(ctx context.Context, done bool) error {
	val := "0"
	if done {
		val = "1"
	}
	return p.store.Set(ctx, onboardingKey, []byte(val))
}
