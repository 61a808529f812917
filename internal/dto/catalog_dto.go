package dto

import "github.com/backdrop/placement-market/internal/models"

type DemographicsInput struct {
	AgeStart int    `json:"age_start" validate:"gte=0,lte=120"`
	AgeEnd   int    `json:"age_end" validate:"gte=0,lte=120,gtefield=AgeStart"`
	Gender   string `json:"gender" validate:"omitempty,oneof=Male Female All"`
}

// ProjectRequest is the JSON metadata of a project create (multipart field
// "metadata") or the body of a project update.
type ProjectRequest struct {
	Title            string            `json:"title" validate:"required,max=255"`
	Genre            string            `json:"genre" validate:"omitempty,max=50"`
	BudgetTarget     float64           `json:"budget_target" validate:"gte=0"`
	ProductionWindow string            `json:"production_window" validate:"max=255"`
	Demographics     DemographicsInput `json:"demographics"`
}

type SlotRequest struct {
	ProjectID    string                `json:"project_id"`
	SceneRef     string                `json:"scene_ref" validate:"required,max=255"`
	Description  string                `json:"description"`
	Constraints  string                `json:"constraints"`
	PricingFloor float64               `json:"pricing_floor" validate:"gte=0"`
	Modality     models.SlotModality   `json:"modality" validate:"required,oneof='Private Auction' PG/Reservation"`
	Status       models.SlotStatus     `json:"status" validate:"omitempty,oneof=Available Locked Completed"`
	Visibility   models.SlotVisibility `json:"visibility" validate:"omitempty,oneof=Public Private"`
}

type SKURequest struct {
	Title    string   `json:"title" validate:"required,max=255"`
	Price    float64  `json:"price" validate:"gte=0"`
	Margin   float64  `json:"margin" validate:"gte=0,lte=100"`
	Tags     []string `json:"tags" validate:"dive,max=50"`
	ImageURL string   `json:"image_url" validate:"omitempty,max=1024"`
}

type UploadResponse struct {
	URL string `json:"url"`
}
