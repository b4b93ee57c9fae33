package views

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownView is returned for slugs that name no view.
var ErrUnknownView = errors.New("unknown view")

// Kind enumerates the dashboard views.
type Kind int

const (
	Home Kind = iota
	Passengers
	Survival
	Search
	Predict
	Download
)

var kindInfo = []struct {
	slug, label, icon string
}{
	Home:       {"home", "홈", "🏠"},
	Passengers: {"passengers", "탑승자 분석", "👥"},
	Survival:   {"survival", "생존 예측", "📊"},
	Search:     {"search", "탑승자 검색", "🔎"},
	Predict:    {"predict", "생존 예측 입력", "🚢"},
	Download:   {"download", "데이터 다운로드", "📁"},
}

// Kinds returns every view in menu order.
func Kinds() []Kind {
	return []Kind{Home, Passengers, Survival, Search, Predict, Download}
}

func (k Kind) valid() bool { return k >= Home && k <= Download }

// Slug is the URL and CLI name of the view.
func (k Kind) Slug() string {
	if !k.valid() {
		return ""
	}
	return kindInfo[k].slug
}

// Label is the Korean menu label.
func (k Kind) Label() string {
	if !k.valid() {
		return ""
	}
	return kindInfo[k].label
}

// Icon is the menu emoji.
func (k Kind) Icon() string {
	if !k.valid() {
		return ""
	}
	return kindInfo[k].icon
}

func (k Kind) String() string {
	if !k.valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return k.Slug()
}

// ParseKind resolves a view slug.
func ParseKind(slug string) (Kind, error) {
	key := strings.ToLower(strings.TrimSpace(slug))
	for _, k := range Kinds() {
		if k.Slug() == key {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownView, slug)
}

// Tab selects one panel of the Passengers view.
type Tab int

const (
	Distribution Tab = iota
	EmbarkFare
	Family
)

var tabInfo = []struct{ slug, label string }{
	Distribution: {"distribution", "탑승자 분포 & 나이대 분포"},
	EmbarkFare:   {"embark-fare", "탑승 위치 분포 & 요금 분포"},
	Family:       {"family", "가족 동반 여부"},
}

// Tabs returns the Passengers tabs in display order.
func Tabs() []Tab { return []Tab{Distribution, EmbarkFare, Family} }

// Slug is the query parameter value of the tab.
func (t Tab) Slug() string {
	if t < Distribution || t > Family {
		return ""
	}
	return tabInfo[t].slug
}

// Label is the Korean tab label.
func (t Tab) Label() string {
	if t < Distribution || t > Family {
		return ""
	}
	return tabInfo[t].label
}

// ParseTab resolves a tab slug; empty selects Distribution.
func ParseTab(slug string) (Tab, error) {
	key := strings.ToLower(strings.TrimSpace(slug))
	if key == "" {
		return Distribution, nil
	}
	for _, t := range Tabs() {
		if t.Slug() == key {
			return t, nil
		}
	}
	return Distribution, fmt.Errorf("%w: unknown tab %q", ErrInvalidInput, slug)
}
