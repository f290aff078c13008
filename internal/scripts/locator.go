package scripts

import (
	"ratequote-backend/internal/browser"
)

// FieldLocator resolves a portal field key to a way of finding its control
// in the page. It is the only portal specific part of form filling.
type FieldLocator interface {
	Locate(key string) (browser.Locator, bool)
}

// LabelLocator finds controls by the label text rendered next to them. Keys
// are label texts unless Labels overrides them.
type LabelLocator struct {
	Labels map[string]string
}

func (l LabelLocator) Locate(key string) (browser.Locator, bool) {
	if label, ok := l.Labels[key]; ok {
		if label == "" {
			return browser.Locator{}, false
		}
		return browser.Label(label), true
	}
	if key == "" {
		return browser.Locator{}, false
	}
	return browser.Label(key), true
}

// IDLocator finds controls by a fixed table of element ids.
type IDLocator struct {
	IDs map[string]string
}

func (l IDLocator) Locate(key string) (browser.Locator, bool) {
	id, ok := l.IDs[key]
	if !ok || id == "" {
		return browser.Locator{}, false
	}
	return browser.ID(id), true
}
