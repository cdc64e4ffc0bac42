package models

// Account is a customer account.
type Account struct {
	ID               string  `db:"id" json:"id"`
	Name             string  `db:"name" json:"name"`
	AccountManagerID *string `db:"account_manager_id" json:"accountManagerId,omitempty"`
}

// AccountWithACMA joins the account with its account manager, when set.
type AccountWithACMA struct {
	Account
	AccountManager *Employee `json:"accountManager,omitempty"`
}

// AccountFilter captures the accounts listing criteria.
type AccountFilter struct {
	Query            string
	AccountManagerID string
}
