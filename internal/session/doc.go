// Package session owns the client-held bearer token: rehydration from the
// credential store, login, logout, and the RequestContext every outgoing
// backend call is authorized with.
package session
