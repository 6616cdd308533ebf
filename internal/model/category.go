package model

// Category is a closed set. Key is the storage-partition key, Priority is the
// triage sort weight (lower sorts first).
type Category struct {
	Key      string
	Title    string
	Icon     string
	Priority int
}

var (
	CategoryPayment = Category{Key: "payment", Title: "Payment", Icon: "💳", Priority: 1}
	CategoryTech    = Category{Key: "tech", Title: "Tech Issue", Icon: "🛠", Priority: 2}
	CategoryFeature = Category{Key: "feature", Title: "Feature Request", Icon: "📦", Priority: 3}
	CategoryOther   = Category{Key: "other", Title: "Other", Icon: "❓", Priority: 2}
)

var categories = []Category{
	CategoryPayment,
	CategoryTech,
	CategoryFeature,
	CategoryOther,
}

func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

func CategoryByKey(key string) (Category, bool) {
	for _, c := range categories {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}

func (c Category) Label() string {
	return c.Icon + " " + c.Title
}

// PriorityTag mirrors the dashboard marker: high priority burns, the rest
// get the plain bullet.
func (c Category) PriorityTag() string {
	if c.Priority == 1 {
		return "🔥"
	}
	return "🔹"
}
