package idcards

import "time"

type UploadRequest struct {
	// Image is a data URL ("data:image/jpeg;base64,...").
	Image string `json:"image" binding:"required"`
}

type VerifyRequest struct {
	Status string  `json:"status" binding:"required"`
	Notes  *string `json:"notes"`
}

type IDCardResponse struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	ImageURL   string     `json:"image_url"`
	Status     string     `json:"status"`
	Notes      *string    `json:"notes,omitempty"`
	VerifiedBy *int64     `json:"verified_by,omitempty"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func toResponse(c *IDCard) IDCardResponse {
	resp := IDCardResponse{
		ID:        c.ID,
		UserID:    c.UserID,
		ImageURL:  c.ImageURL,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.Notes.Valid {
		resp.Notes = &c.Notes.String
	}
	if c.VerifiedBy.Valid {
		resp.VerifiedBy = &c.VerifiedBy.Int64
	}
	if c.VerifiedAt.Valid {
		resp.VerifiedAt = &c.VerifiedAt.Time
	}
	return resp
}
