package dto

type CreateMemberRequest struct {
	Name         string  `json:"name" binding:"required,min=2,max=100"`
	Email        string  `json:"email" binding:"required,email"`
	Password     string  `json:"password" binding:"required,min=8,max=72"`
	Role         string  `json:"role" binding:"omitempty,oneof=LEADER MEMBER"`
	DepartmentID *string `json:"departmentId" binding:"omitempty,uuid"`
}

type UpdateRoleRequest struct {
	Role         string  `json:"role" binding:"required,oneof=LEADER MEMBER"`
	DepartmentID *string `json:"departmentId" binding:"omitempty,uuid"`
}

type DepartmentRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}
