package categories

// Seed is a category with its subcategories.
type Seed struct {
	Name        string
	Description string
	Children    []Seed
}

// DefaultTaxonomy returns the two-level category set written to an empty
// database.
func DefaultTaxonomy() []Seed {
	return []Seed{
		{Name: "Income", Description: "Money coming in", Children: []Seed{
			{Name: "Salary"},
			{Name: "Refunds"},
			{Name: "Interest"},
		}},
		{Name: "Food", Description: "Groceries and eating out", Children: []Seed{
			{Name: "Groceries", Description: "Supermarkets and convenience stores"},
			{Name: "Dining Out", Description: "Restaurants, cafes and takeaway"},
		}},
		{Name: "Housing", Children: []Seed{
			{Name: "Rent"},
			{Name: "Utilities", Description: "Electricity, gas, water, broadband"},
		}},
		{Name: "Transport", Children: []Seed{
			{Name: "Fuel"},
			{Name: "Public Transport"},
			{Name: "Taxi"},
		}},
		{Name: "Shopping", Children: []Seed{
			{Name: "Clothing"},
			{Name: "Electronics"},
		}},
		{Name: "Entertainment", Children: []Seed{
			{Name: "Subscriptions", Description: "Streaming and software"},
			{Name: "Events"},
		}},
		{Name: "Health", Children: []Seed{
			{Name: "Pharmacy"},
			{Name: "Medical"},
		}},
		{Name: "Transfers", Description: "Moves between own accounts", Children: []Seed{
			{Name: "Savings"},
			{Name: "Currency Exchange"},
		}},
		{Name: "Fees", Description: "Bank and card fees"},
	}
}
