package dto

type RegisterTeamRequest struct {
	TeamName  string `json:"teamName" binding:"required,min=2,max=100"`
	TeamEmail string `json:"teamEmail" binding:"required,email"`
	Name      string `json:"name" binding:"required,min=2,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8,max=72"`
}

type RegisterUserRequest struct {
	TeamID       string  `json:"teamId" binding:"required,uuid"`
	DepartmentID *string `json:"departmentId" binding:"omitempty,uuid"`
	Name         string  `json:"name" binding:"required,min=2,max=100"`
	Email        string  `json:"email" binding:"required,email"`
	Password     string  `json:"password" binding:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
