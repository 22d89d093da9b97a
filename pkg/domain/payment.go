package domain

// ChargeRequest carries the card details of a checkout.
type ChargeRequest struct {
	CardNumber  string `json:"card_number"`
	Expiry      string `json:"expiry"` // MM/YY
	CVC         string `json:"cvc"`
	Holder      string `json:"holder,omitempty"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency,omitempty"`
	Plan        string `json:"plan,omitempty"`
}

// ChargeResult is the settlement of a charge.
type ChargeResult struct {
	Approved    bool   `json:"approved"`
	Reference   string `json:"reference,omitempty"`
	Reason      string `json:"reason,omitempty"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency,omitempty"`
}
