package transport

import "testing"

func TestUserDisplayName(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{"username", User{UserName: "hog", FirstName: "Ivan"}, "hog"},
		{"full name", User{FirstName: "Ivan", LastName: "Petrov"}, "Ivan Petrov"},
		{"first name only", User{FirstName: "Ivan"}, "Ivan"},
		{"nothing", User{}, "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUpdateAccessors(t *testing.T) {
	msg := &Update{ID: 1, Message: &Message{ChatID: -10, From: User{ID: 7}}}
	cb := &Update{ID: 2, Callback: &CallbackQuery{From: User{ID: 8}, Message: &Message{ChatID: -20}}}
	empty := &Update{ID: 3}

	tests := []struct {
		u              *Update
		kind           string
		chatID, userID int64
	}{
		{msg, "message", -10, 7},
		{cb, "callback", -20, 8},
		{empty, "other", 0, 0},
	}
	for _, tt := range tests {
		if got := tt.u.Kind(); got != tt.kind {
			t.Errorf("Kind() = %q, want %q", got, tt.kind)
		}
		if got := tt.u.ChatID(); got != tt.chatID {
			t.Errorf("ChatID() = %d, want %d", got, tt.chatID)
		}
		if got := tt.u.UserID(); got != tt.userID {
			t.Errorf("UserID() = %d, want %d", got, tt.userID)
		}
	}
}

func TestChatMemberIsAdmin(t *testing.T) {
	for status, want := range map[string]bool{
		StatusCreator:       true,
		StatusAdministrator: true,
		StatusMember:        false,
		"left":              false,
	} {
		if got := (ChatMember{Status: status}).IsAdmin(); got != want {
			t.Errorf("IsAdmin(%q) = %v, want %v", status, got, want)
		}
	}
}
