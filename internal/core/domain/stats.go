package domain

// DishCount is one entry of the popular dishes ranking.
type DishCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Stats is the manager dashboard payload.
type Stats struct {
	Revenue       float64     `json:"revenue"`
	TotalOrders   int         `json:"total_orders"`
	PopularDishes []DishCount `json:"popular_dishes"`
}
