package entity

// BrowseView is the current screen of a browse session.
type BrowseView string

const (
	ViewCategories BrowseView = "cats"
	ViewItems      BrowseView = "items"
)

// CategoryItem is one enriched item inside a category group.
type CategoryItem struct {
	ID   int
	Name string
}

// Category is a derived group of items; not persisted across sessions.
type Category struct {
	Key   string
	Label string
	Items []CategoryItem
}

// BrowseActionKind enumerates the session state machine's inputs.
type BrowseActionKind int

const (
	BrowseSelectCategory BrowseActionKind = iota
	BrowseBack
	BrowseNextPage
	BrowsePrevPage
	BrowsePickItem
)

// BrowseAction is one user interaction with a browse session. Category
// selection addresses the category by index into the session's category
// list (what fits in callback payloads).
type BrowseAction struct {
	Kind          BrowseActionKind
	CategoryIndex int
	ItemID        int
}

// BrowseState is a render-ready snapshot of a browse session after an
// interaction. Picked is set exactly once, on the terminal item-pick
// transition; the session is gone afterwards.
type BrowseState struct {
	SessionID       string
	Keyword         string
	View            BrowseView
	Categories      []Category
	CurrentCategory int
	CatPage         int
	ItemPage        int
	MaxPage         int
	Picked          *CategoryItem
}
