package placement

import (
	"fmt"
	"strings"
)

// Category - тип рекламного блока
type Category int

const (
	CategoryNative        Category = 0
	CategoryRewardedVideo Category = 1
	CategoryBanner        Category = 2
	CategoryInterstitial  Category = 3
	CategorySplash        Category = 4
)

var categoryNames = map[Category]string{
	CategoryNative:        "native",
	CategoryRewardedVideo: "rewarded_video",
	CategoryBanner:        "banner",
	CategoryInterstitial:  "interstitial",
	CategorySplash:        "splash",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// ParseCategory разбирает имя категории из конфигурации или запроса
func ParseCategory(name string) (Category, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for c, n := range categoryNames {
		if n == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown ad category %q", name)
}

// Resolver возвращает идентификатор площадки бэкенда по категории и ключу.
// Пустая строка означает, что площадка не настроена.
type Resolver interface {
	Resolve(category Category, key string) string
}

// Mapping - готовое отображение категория -> (ключ -> placement id)
type Mapping map[Category]map[string]string

var _ Resolver = Mapping(nil)

func (m Mapping) Resolve(category Category, key string) string {
	if m == nil {
		return ""
	}
	return m[category][key]
}

// FromNames строит Mapping из секции конфигурации, где категории заданы именами
func FromNames(raw map[string]map[string]string) (Mapping, error) {
	m := make(Mapping, len(raw))
	for name, keys := range raw {
		c, err := ParseCategory(name)
		if err != nil {
			return nil, err
		}
		slot := make(map[string]string, len(keys))
		for k, id := range keys {
			slot[k] = id
		}
		m[c] = slot
	}
	return m, nil
}
