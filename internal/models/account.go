package models

import (
	"time"
)

type Account struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Company   string    `json:"company"`
	CreatedAt time.Time `json:"createdAt"`
}

// AccountView is the account shape returned to clients, optionally carrying
// the derived completedSteps set.
type AccountView struct {
	ID             string   `json:"id"`
	Email          string   `json:"email"`
	FirstName      string   `json:"firstName"`
	LastName       string   `json:"lastName"`
	Company        string   `json:"company"`
	CompletedSteps []string `json:"completedSteps,omitempty"`
}

func (a *Account) View() AccountView {
	return AccountView{
		ID:        a.ID,
		Email:     a.Email,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Company:   a.Company,
	}
}
