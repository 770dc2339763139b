package types

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type OrderNote struct {
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

type Order struct {
	Id           uint64            `json:"id"`
	PurchaseKey  string            `json:"purchase_key"`
	Email        string            `json:"email"`
	Price        string            `json:"price"`
	Currency     string            `json:"currency"`
	Status       string            `json:"status"`
	CartKey      string            `json:"cart_key,omitempty"`
	PurchaseDate string            `json:"purchase_date"`
	Notes        []*OrderNote      `json:"notes"`
	Metadata     map[string]string `json:"metadata"`
	CreatedAt    string            `json:"created_at"`
	UpdatedAt    string            `json:"updated_at"`
}

type OrderResponse struct {
	Order *Order `json:"order"`
}

type CreatePaymentResponse struct {
	Order       *Order `json:"order"`
	RedirectUrl string `json:"redirect_url"`
}
