package dto

type CreateChatRoomRequest struct {
	Name   string `json:"name" binding:"required,max=100"`
	TeamID string `json:"teamId" binding:"required,uuid"`
}

type AddMemberRequest struct {
	ChatRoomID string `json:"chatRoomId" binding:"required,uuid"`
	UserID     string `json:"userId" binding:"required,uuid"`
}

// SendMessageRequest используется и в REST, и как data события sendMessage
type SendMessageRequest struct {
	ChatRoomID string `json:"chatRoomId" binding:"required,uuid"`
	Content    string `json:"content"`
	ImageFile  string `json:"imageFile"`
}

type MarkSeenRequest struct {
	MessageID string `json:"messageId" binding:"required,uuid"`
}
