package steam

import "sync"

// Event is one of the notifications a session client emits. The set of
// events is closed: only the types in this file implement it.
type Event interface {
	eventKind() eventKind
}

type eventKind int

const (
	kindLoggedOn eventKind = iota
	kindWebSession
	kindAccountLimitations
	kindFriendMessage
	kindFriendRelationship
	kindGroupRelationship
	kindSteamGuard
	kindLoginKey
	kindError
)

func (k eventKind) String() string {
	switch k {
	case kindLoggedOn:
		return "loggedOn"
	case kindWebSession:
		return "webSession"
	case kindAccountLimitations:
		return "accountLimitations"
	case kindFriendMessage:
		return "friendMessage"
	case kindFriendRelationship:
		return "friendRelationship"
	case kindGroupRelationship:
		return "groupRelationship"
	case kindSteamGuard:
		return "steamGuard"
	case kindLoginKey:
		return "loginKey"
	case kindError:
		return "error"
	}
	return "unknown"
}

// LoggedOn is emitted once the client is logged on to Steam.
type LoggedOn struct{}

// WebSession carries the cookies of a freshly negotiated web session.
type WebSession struct {
	SessionID string
	Cookies   []string
}

type AccountLimitations struct {
	Limited          bool
	CommunityBanned  bool
	Locked           bool
	CanInviteFriends bool
}

type FriendMessage struct {
	Sender  SteamID
	Message string
}

type FriendRelationship struct {
	SteamID      SteamID
	Relationship EFriendRelationship
}

type GroupRelationship struct {
	GroupID      SteamID
	Relationship EClanRelationship
}

// SteamGuard asks for a Steam Guard code. Domain is the e-mail domain the
// code was sent to, or empty for a mobile authenticator code.
type SteamGuard struct {
	Domain        string
	LastCodeWrong bool

	respond func(code string)
	once    *sync.Once
}

// NewSteamGuard builds a prompt whose Respond forwards the code to respond.
func NewSteamGuard(domain string, lastCodeWrong bool, respond func(code string)) SteamGuard {
	return SteamGuard{
		Domain:        domain,
		LastCodeWrong: lastCodeWrong,
		respond:       respond,
		once:          &sync.Once{},
	}
}

// Respond submits the code. Only the first call per prompt has an effect.
func (e SteamGuard) Respond(code string) {
	if e.respond == nil || e.once == nil {
		return
	}
	e.once.Do(func() { e.respond(code) })
}

// LoginKey carries a rotated long-lived credential.
type LoginKey struct {
	Key string
}

// ErrorEvent reports a fatal asynchronous failure. The client is logged off.
type ErrorEvent struct {
	Err error
}

func (LoggedOn) eventKind() eventKind           { return kindLoggedOn }
func (WebSession) eventKind() eventKind         { return kindWebSession }
func (AccountLimitations) eventKind() eventKind { return kindAccountLimitations }
func (FriendMessage) eventKind() eventKind      { return kindFriendMessage }
func (FriendRelationship) eventKind() eventKind { return kindFriendRelationship }
func (GroupRelationship) eventKind() eventKind  { return kindGroupRelationship }
func (SteamGuard) eventKind() eventKind         { return kindSteamGuard }
func (LoginKey) eventKind() eventKind           { return kindLoginKey }
func (ErrorEvent) eventKind() eventKind         { return kindError }
