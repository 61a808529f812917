package dto

import "github.com/backdrop/placement-market/internal/models"

type ProjectFinancing struct {
	models.Project
	CommittedAmount   float64 `json:"committed_amount"`
	PercentageCovered float64 `json:"percentage_covered"`
}

type FinancingDashboard struct {
	Projects             []ProjectFinancing `json:"projects"`
	TotalBudgetTarget    float64            `json:"total_budget_target"`
	TotalCommittedAmount float64            `json:"total_committed_amount"`
	PercentageCovered    float64            `json:"percentage_covered"`
}

type OperatorOverview struct {
	TotalCommitted    float64 `json:"total_committed"`
	TotalBudgets      float64 `json:"total_budgets"`
	MarketplaceMargin float64 `json:"marketplace_margin"`
	CommittedBidCount int     `json:"committed_bid_count"`
	ProjectCount      int     `json:"project_count"`
}
