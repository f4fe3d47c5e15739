package services

import (
	"strings"

	"github.com/dmitrijs2005/gophvault/internal/common"
)

// UnlockInput asks to verify the vault password, setting the vault up on first use.
type UnlockInput struct {
	UserID   string
	Password string
}

func (in UnlockInput) Validate() error {
	if in.UserID == "" || in.Password == "" {
		return common.ErrInvalidInput
	}
	return nil
}

// AddItemInput carries a new secret. Label is trimmed before it is checked and stored.
type AddItemInput struct {
	UserID   string
	Password string
	Label    string
	Secret   string
}

func (in AddItemInput) Validate() error {
	if in.UserID == "" || in.Password == "" {
		return common.ErrInvalidInput
	}
	if strings.TrimSpace(in.Label) == "" {
		return common.ErrLabelRequired
	}
	if in.Secret == "" {
		return common.ErrSecretRequired
	}
	return nil
}

type RevealInput struct {
	UserID   string
	Password string
}

func (in RevealInput) Validate() error {
	if in.UserID == "" || in.Password == "" {
		return common.ErrInvalidInput
	}
	return nil
}

// DeleteItemInput names an item to remove. Ownership is checked by the store.
type DeleteItemInput struct {
	UserID string
	ItemID string
}

func (in DeleteItemInput) Validate() error {
	if in.UserID == "" || in.ItemID == "" {
		return common.ErrInvalidInput
	}
	return nil
}
