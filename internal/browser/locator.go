package browser

type Strategy string

const (
	// ByLabel finds the control nearest to a text node equal to Target.
	ByLabel Strategy = "label"
	// ByID finds the element whose id attribute equals Target.
	ByID Strategy = "id"
	// BySelector runs Target as a css selector.
	BySelector Strategy = "selector"
)

// Locator tells the in-page runtime how to find a form control.
type Locator struct {
	Strategy Strategy `json:"strategy"`
	Target   string   `json:"target"`
}

func Label(text string) Locator {
	return Locator{Strategy: ByLabel, Target: text}
}

func ID(id string) Locator {
	return Locator{Strategy: ByID, Target: id}
}

func Selector(selector string) Locator {
	return Locator{Strategy: BySelector, Target: selector}
}
