package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreatePolicyRequest struct {
	Product        string  `json:"product"`
	ProductLabel   string  `json:"product_label,omitempty"`
	ProductName    string  `json:"product_name"`
	ProductModel   string  `json:"product_model,omitempty"`
	SerialNumber   string  `json:"serial_number"`
	PurchaseDate   string  `json:"purchase_date"` // RFC3339
	PurchasePrice  float64 `json:"purchase_price"`
	CoverageAmount float64 `json:"coverage_amount"`
}

type PolicyPayload struct {
	PolicyID       string         `json:"policy_id"`
	OwnerID        string         `json:"owner_id"`
	Product        string         `json:"product"`
	ProductLabel   string         `json:"product_label,omitempty"`
	ProductName    string         `json:"product_name"`
	ProductModel   string         `json:"product_model,omitempty"`
	SerialNumber   string         `json:"serial_number"`
	PurchaseDate   string         `json:"purchase_date"`
	PurchasePrice  float64        `json:"purchase_price"`
	CoverageStart  string         `json:"coverage_start"`
	CoverageEnd    string         `json:"coverage_end"`
	CoverageAmount float64        `json:"coverage_amount"`
	MonthlyPremium float64        `json:"monthly_premium"`
	Status         string         `json:"status"`
	Claims         []ClaimPayload `json:"claims"`
	CreatedAt      string         `json:"created_at"`
}

type ClaimPayload struct {
	ClaimID     string   `json:"claim_id"`
	PolicyID    string   `json:"policy_id"`
	Description string   `json:"description"`
	Damage      string   `json:"damage"`
	DamageLabel string   `json:"damage_label,omitempty"`
	Amount      float64  `json:"amount"`
	Evidence    []string `json:"evidence,omitempty"`
	Status      string   `json:"status"`
	SubmittedAt string   `json:"submitted_at"`
	ResolvedAt  string   `json:"resolved_at,omitempty"`
}

type PolicyResponse struct {
	Status string        `json:"status"`
	Data   PolicyPayload `json:"data"`
}

type PolicyListResponse struct {
	Status string `json:"status"`
	Data   struct {
		Policies []PolicyPayload `json:"policies"`
	} `json:"data"`
}

type SubmitClaimRequest struct {
	Description string   `json:"description"`
	Damage      string   `json:"damage"`
	DamageLabel string   `json:"damage_label,omitempty"`
	Amount      float64  `json:"amount"`
	Evidence    []string `json:"evidence,omitempty"`
}

type ClaimResponse struct {
	Status string       `json:"status"`
	Data   ClaimPayload `json:"data"`
}

type ProcessClaimRequest struct {
	Approved bool `json:"approved"`
}

type PaymentResponse struct {
	Status string `json:"status"`
	Data   struct {
		Reference   string  `json:"reference"`
		PolicyID    string  `json:"policy_id"`
		Amount      float64 `json:"amount"`
		ProcessedAt string  `json:"processed_at"`
	} `json:"data"`
}
