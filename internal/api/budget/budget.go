package budget

import "github.com/FACorreiaa/go-khonkaen-travel-planner/internal/types"

// DaySpent sums the activity costs of one plan.
func DaySpent(p types.Plan) float64 {
	var total float64
	for _, a := range p.Activities {
		total += a.Cost
	}
	return total
}

// TotalSpent sums activity costs over every plan. A single currency is assumed.
func TotalSpent(c *types.Collection) float64 {
	var total float64
	for _, p := range c.Plans {
		total += DaySpent(p)
	}
	return total
}

// RemainingBudget may be negative when the trip is over budget.
func RemainingBudget(c *types.Collection) float64 {
	return c.Budget - TotalSpent(c)
}

func IsOverBudget(c *types.Collection) bool {
	return TotalSpent(c) > c.Budget
}

// Summarize builds the budget panel for a collection.
func Summarize(c *types.Collection) types.BudgetSummary {
	perDay := make(map[int]float64, len(c.Plans))
	byType := make(map[string]float64)
	for _, p := range c.Plans {
		perDay[p.Day] += DaySpent(p)
		for _, a := range p.Activities {
			key := a.Type
			if key == "" {
				key = "other"
			}
			byType[key] += a.Cost
		}
	}

	spent := TotalSpent(c)
	status := types.WithinBudget
	if spent > c.Budget {
		status = types.OverBudget
	}
	return types.BudgetSummary{
		Budget:    c.Budget,
		Spent:     spent,
		Remaining: c.Budget - spent,
		Status:    status,
		PerDay:    perDay,
		ByType:    byType,
	}
}
