// Package models defines the core data structures for accounts and tasks.
package models

import "time"

// User represents an application account with credentials.
type User struct {
	// ID is the unique internal identifier for the user.
	ID string
	// Login is the identifier chosen by the user (usually an email).
	// It is matched verbatim and is unique across all users.
	Login string
	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash []byte
}

// Task is a single to-do item owned by a user.
type Task struct {
	// ID is the unique identifier for the task.
	ID string `json:"id"`
	// Title is the short, required summary of the task.
	Title string `json:"title"`
	// Description holds optional free-form details.
	Description string `json:"description"`
	// Completed reports whether the task is done.
	Completed bool `json:"completed"`
	// UserID is the ID of the owning user.
	UserID string `json:"userId"`
	// CreatedAt is set once when the task is created.
	CreatedAt time.Time `json:"createdAt"`
}

// TaskUpdate carries a partial modification of a task.
// Nil fields are left unchanged.
type TaskUpdate struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// Apply copies the non-nil fields of u onto t.
func (u TaskUpdate) Apply(t *Task) {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Completed != nil {
		t.Completed = *u.Completed
	}
}
