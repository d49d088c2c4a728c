package accounts

import "time"

type AccountResponse struct {
	ID         int64      `json:"id"`
	Username   string     `json:"username"`
	Name       *string    `json:"name,omitempty"`
	Email      *string    `json:"email,omitempty"`
	Role       string     `json:"role"`
	Balance    float64    `json:"balance"`
	LastIP     *string    `json:"last_ip,omitempty"`
	LastSignIn *time.Time `json:"last_sign_in,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func toResponse(a *Account) AccountResponse {
	resp := AccountResponse{
		ID:        a.ID,
		Username:  a.Username,
		Role:      a.Role,
		Balance:   a.Balance,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	if a.Name.Valid {
		resp.Name = &a.Name.String
	}
	if a.Email.Valid {
		resp.Email = &a.Email.String
	}
	if a.LastIP.Valid {
		resp.LastIP = &a.LastIP.String
	}
	if a.LastSignIn.Valid {
		resp.LastSignIn = &a.LastSignIn.Time
	}
	return resp
}
