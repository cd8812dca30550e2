package users

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

const (
	minWalletLength   = 5
	minUsernameLength = 2
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("users: not found")
	// ErrAlreadyExists is returned when the wallet address is taken.
	ErrAlreadyExists = errors.New("users: already exists")
	// ErrInvalidUser is the sentinel matched by every ValidationError.
	ErrInvalidUser = errors.New("users: invalid user")
)

// ValidationError carries the client-facing message of a rejected user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "users: " + e.Field + ": " + e.Message
}

// Is makes every ValidationError match ErrInvalidUser.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidUser
}

// User is a registered account, identified externally by its wallet address.
type User struct {
	ID            uuid.UUID `json:"id"`
	WalletAddress string    `json:"wallet_address"`
	Username      string    `json:"username"`
}

// New validates the input and assigns a random ID.
func New(walletAddress, username string) (User, error) {
	u := User{
		ID:            uuid.New(),
		WalletAddress: strings.TrimSpace(walletAddress),
		Username:      strings.TrimSpace(username),
	}
	if err := u.Validate(); err != nil {
		return User{}, err
	}
	return u, nil
}

// Validate enforces the minimum wallet and username lengths.
func (u User) Validate() error {
	return validateFields(u.WalletAddress, u.Username)
}

func validateFields(wallet, username string) error {
	if len(wallet) < minWalletLength {
		return &ValidationError{Field: "wallet_address", Message: "Wallet address is invalid."}
	}
	if len(username) < minUsernameLength {
		return &ValidationError{Field: "username", Message: "Name is too short."}
	}
	return nil
}

// Update is a partial change; nil fields are left untouched.
type Update struct {
	WalletAddress *string `json:"wallet_address"`
	Username      *string `json:"username"`
}

// Apply returns u with the non-nil fields of upd applied and re-validated.
func (upd Update) Apply(u User) (User, error) {
	if upd.WalletAddress != nil {
		u.WalletAddress = strings.TrimSpace(*upd.WalletAddress)
	}
	if upd.Username != nil {
		u.Username = strings.TrimSpace(*upd.Username)
	}
	if err := u.Validate(); err != nil {
		return User{}, err
	}
	return u, nil
}
