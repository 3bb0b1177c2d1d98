package dto

// ConnectFriendRequest: payload to connect with another user by username.
type ConnectFriendRequest struct {
	Username string `json:"username" binding:"required"`
}
