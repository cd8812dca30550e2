// Package users holds the wallet-identified user model, its Postgres
// repository and the adapter that exposes it to the engine as a
// goSession.UserProvider.
package users
