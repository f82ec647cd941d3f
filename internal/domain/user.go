package domain

import "context"

type UserRepository interface {
	CreateUser(ctx context.Context, user *User) (*User, error)
	GetUserByID(ctx context.Context, id int) (*User, error)
	GetUserByDocument(ctx context.Context, document string) (*User, error)
	UpdateUser(ctx context.Context, user *User) (*User, error)
	DeleteUser(ctx context.Context, id int) error
	ListUsers(ctx context.Context) ([]User, error)
}
