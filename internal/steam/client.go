// Package steam describes the Steam session client the bot drives: its
// result codes, relationship enums, events and methods. The package does
// not talk to Steam itself.
package steam

import (
	"context"
	"fmt"
	"time"
)

// ResultError is a failure reported by Steam.
type ResultError struct {
	Op     string
	Result EResult
}

func (e *ResultError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("steam: %s (%d)", e.Result, int32(e.Result))
	}
	return fmt.Sprintf("steam: %s: %s (%d)", e.Op, e.Result, int32(e.Result))
}

// Is matches any *ResultError carrying the same result code.
func (e *ResultError) Is(target error) bool {
	t, ok := target.(*ResultError)
	if !ok {
		return false
	}
	return t.Op == "" && t.Result == e.Result
}

var ErrNotLoggedOn = &ResultError{Result: EResultNotLoggedOn}

// LogOnDetails identifies the account. Either Password or LoginKey is required.
type LogOnDetails struct {
	AccountName      string
	Password         string
	LoginKey         string
	TwoFactorCode    string
	RememberPassword bool
}

func (d LogOnDetails) Validate() error {
	if d.AccountName == "" {
		return &ResultError{Op: "logon", Result: EResultInvalidName}
	}
	if d.Password == "" && d.LoginKey == "" {
		return &ResultError{Op: "logon", Result: EResultInvalidPassword}
	}
	return nil
}

type Limitations struct {
	Limited          bool
	CommunityBanned  bool
	Locked           bool
	CanInviteFriends bool
}

// Persona is the cached profile of a user the client knows about.
type Persona struct {
	PlayerName      string
	AvatarHash      []byte
	LastLogoff      time.Time
	LastLogon       time.Time
	LastSeenOnline  time.Time
	AvatarURLIcon   string
	AvatarURLMedium string
	AvatarURLFull   string
	RichPresence    map[string]string
}

// Client is the Steam session client. Methods that change remote state
// report their outcome through the returned error and, where Steam
// notifies about it, through the matching Event on Events().
type Client interface {
	SteamID() SteamID
	Limitations() Limitations
	Users() map[SteamID]Persona
	MyGroups() map[SteamID]EClanRelationship
	MyFriends() map[SteamID]EFriendRelationship
	AutoRelogin() bool
	SetAutoRelogin(enabled bool)
	PlayingAppIDs() []uint32

	Events() *Bus

	LogOn(details LogOnDetails) error
	WebLogOn() error
	SetPersona(state EPersonaState, name string) error
	GamesPlayed(apps []uint32, force bool) error
	ChatMessage(recipient SteamID, message string) error
	AddFriend(ctx context.Context, steamID SteamID) (personaName string, err error)
	RemoveFriend(steamID SteamID) error
	BlockUser(ctx context.Context, steamID SteamID) error
	UnblockUser(ctx context.Context, steamID SteamID) error
	RespondToGroupInvite(groupID SteamID, accept bool) error
	LogOff() error
}
