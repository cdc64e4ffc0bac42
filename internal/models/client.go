package models

// Client is an interlocutor at a customer account.
type Client struct {
	ID        string  `db:"id" json:"id"`
	Name      string  `db:"name" json:"name"`
	Email     *string `db:"email" json:"email,omitempty"`
	Details   *string `db:"details" json:"details,omitempty"`
	AccountID string  `db:"account_id" json:"accountId"`
}

// ClientWithAccount joins the client with its account.
type ClientWithAccount struct {
	Client
	Account Account `db:"account" json:"account"`
}

// FullClient additionally resolves the account manager.
type FullClient struct {
	Client
	Account AccountWithACMA `json:"account"`
}

// ClientPayload is the client creation request body. Exactly one of
// AccountID and AccountData must be provided.
type ClientPayload struct {
	Name        string              `json:"name" validate:"required"`
	Email       string              `json:"email" validate:"omitempty,email"`
	Details     string              `json:"details" validate:"omitempty"`
	AccountID   string              `json:"accountId" validate:"omitempty"`
	AccountData *AccountDataPayload `json:"accountData" validate:"omitempty"`
}

// AccountDataPayload describes an account created inline with a client.
type AccountDataPayload struct {
	Name             string `json:"name" validate:"required"`
	AccountManagerID string `json:"accountManagerId" validate:"omitempty"`
}
