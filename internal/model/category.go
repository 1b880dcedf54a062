package model

// Category is a node in the two-level spending taxonomy.
type Category struct {
	ID          int64
	Name        string
	ParentID    int64 // 0 = top-level
	Description string
}

// IsTopLevel reports whether the category has no parent.
func (c Category) IsTopLevel() bool {
	return c.ParentID == 0
}

// TransactionCategory links one transaction to one category.
type TransactionCategory struct {
	TransactionID    int64
	CategoryID       int64
	ParentCategoryID int64 // 0 = none
}
