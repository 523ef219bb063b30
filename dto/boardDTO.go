package dto

type CreateBoardRequest struct {
	ProjectID string `json:"projectid" binding:"required"`
	Name      string `json:"name" binding:"required,max=100"`
}

// AddStateRequest places the new state before the exit state unless Order is
// given.
type AddStateRequest struct {
	Name  string `json:"name" binding:"required,max=50"`
	Order *int   `json:"order" binding:"omitempty,min=2"`
}

type UpdateStateRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=1,max=50"`
	Order *int    `json:"order" binding:"omitempty,min=2"`
}
