// Package credstore persists the session token between runs of the console.
//
// Three backends implement domain.CredentialStore: an in-process Memory store
// (tests, throwaway sessions), a File in the user config directory, and Redis
// for analysts sharing a workstation profile across hosts. File and Redis
// optionally seal the token with AES-256-GCM when CREDENTIAL_KEY is set.
package credstore
