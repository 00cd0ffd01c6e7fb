// Package steamtest provides an in-memory steam.Client for tests.
package steamtest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/DeWolfRobin/tf2autobot/internal/steam"
)

// SentMessage is a chat message sent through the fake client.
type SentMessage struct {
	Recipient steam.SteamID
	Message   string
}

// FakeClient implements steam.Client without any network access. Outgoing
// calls mutate its state and emit the events Steam would send back;
// the Receive* helpers simulate events initiated by other users.
type FakeClient struct {
	mu sync.Mutex

	bus         *steam.Bus
	steamID     steam.SteamID
	loggedOn    bool
	limitations steam.Limitations
	users       map[steam.SteamID]steam.Persona
	groups      map[steam.SteamID]steam.EClanRelationship
	friends     map[steam.SteamID]steam.EFriendRelationship
	autoRelogin bool
	playing     []uint32
	persona     steam.EPersonaState
	personaName string
	sent        []SentMessage

	// AccountID is assigned as the SteamID on a successful logon.
	AccountID steam.SteamID
	// GuardCode, when set, must be supplied before logon completes.
	GuardCode string
	// LoginKey is handed out after a logon with RememberPassword.
	LoginKey string
}

var _ steam.Client = (*FakeClient)(nil)

func NewFakeClient(accountID steam.SteamID) *FakeClient {
	return &FakeClient{
		bus:         steam.NewBus(),
		users:       make(map[steam.SteamID]steam.Persona),
		groups:      make(map[steam.SteamID]steam.EClanRelationship),
		friends:     make(map[steam.SteamID]steam.EFriendRelationship),
		autoRelogin: true,
		AccountID:   accountID,
		LoginKey:    "fake-login-key",
	}
}

func (c *FakeClient) emit(e steam.Event) {
	_ = c.bus.Emit(context.Background(), e)
}

func (c *FakeClient) requireLoggedOn(op string) error {
	if !c.loggedOn {
		return &steam.ResultError{Op: op, Result: steam.EResultNotLoggedOn}
	}
	return nil
}

func (c *FakeClient) SteamID() steam.SteamID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.steamID
}

func (c *FakeClient) Limitations() steam.Limitations {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.limitations
}

func (c *FakeClient) Users() map[steam.SteamID]steam.Persona {
	c.mu.Lock()
	defer c.mu.Unlock()
	users := make(map[steam.SteamID]steam.Persona, len(c.users))
	for id, p := range c.users {
		users[id] = p
	}
	return users
}

func (c *FakeClient) MyGroups() map[steam.SteamID]steam.EClanRelationship {
	c.mu.Lock()
	defer c.mu.Unlock()
	groups := make(map[steam.SteamID]steam.EClanRelationship, len(c.groups))
	for id, r := range c.groups {
		groups[id] = r
	}
	return groups
}

func (c *FakeClient) MyFriends() map[steam.SteamID]steam.EFriendRelationship {
	c.mu.Lock()
	defer c.mu.Unlock()
	friends := make(map[steam.SteamID]steam.EFriendRelationship, len(c.friends))
	for id, r := range c.friends {
		friends[id] = r
	}
	return friends
}

func (c *FakeClient) AutoRelogin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.autoRelogin
}

func (c *FakeClient) SetAutoRelogin(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoRelogin = enabled
}

func (c *FakeClient) PlayingAppIDs() []uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]uint32(nil), c.playing...)
}

func (c *FakeClient) Events() *steam.Bus {
	return c.bus
}

// LogOn validates details and logs on. With GuardCode set and no matching
// TwoFactorCode it emits a SteamGuard prompt and completes once the prompt
// is answered with the right code.
func (c *FakeClient) LogOn(details steam.LogOnDetails) error {
	if err := details.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	if c.loggedOn {
		c.mu.Unlock()
		return &steam.ResultError{Op: "logon", Result: steam.EResultAlreadyLoggedInElsewhere}
	}
	guard := c.GuardCode
	c.mu.Unlock()

	if guard != "" && details.TwoFactorCode != guard {
		c.promptGuard(details, false)
		return nil
	}

	c.completeLogOn(details)
	return nil
}

func (c *FakeClient) promptGuard(details steam.LogOnDetails, lastCodeWrong bool) {
	c.emit(steam.NewSteamGuard("", lastCodeWrong, func(code string) {
		c.mu.Lock()
		guard := c.GuardCode
		c.mu.Unlock()

		if code != guard {
			c.promptGuard(details, true)
			return
		}
		c.completeLogOn(details)
	}))
}

func (c *FakeClient) completeLogOn(details steam.LogOnDetails) {
	c.mu.Lock()
	c.loggedOn = true
	c.steamID = c.AccountID
	limitations := c.limitations
	loginKey := c.LoginKey
	c.mu.Unlock()

	c.emit(steam.LoggedOn{})
	c.emit(steam.AccountLimitations(limitations))
	if details.RememberPassword && loginKey != "" {
		c.emit(steam.LoginKey{Key: loginKey})
	}
}

func (c *FakeClient) WebLogOn() error {
	c.mu.Lock()
	if err := c.requireLoggedOn("webLogOn"); err != nil {
		c.mu.Unlock()
		return err
	}
	id := c.steamID
	c.mu.Unlock()

	c.emit(steam.WebSession{
		SessionID: fmt.Sprintf("session-%s", id),
		Cookies:   []string{"steamLoginSecure=" + id.String()},
	})
	return nil
}

func (c *FakeClient) SetPersona(state steam.EPersonaState, name string) error {
	if !state.IsValid() {
		return &steam.ResultError{Op: "setPersona", Result: steam.EResultInvalidParam}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireLoggedOn("setPersona"); err != nil {
		return err
	}
	c.persona = state
	if name != "" {
		c.personaName = name
	}
	return nil
}

// Persona returns the last state and name set with SetPersona.
func (c *FakeClient) Persona() (steam.EPersonaState, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.persona, c.personaName
}

func (c *FakeClient) GamesPlayed(apps []uint32, force bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireLoggedOn("gamesPlayed"); err != nil {
		return err
	}
	if !force && len(apps) == len(c.playing) {
		same := true
		for i := range apps {
			if apps[i] != c.playing[i] {
				same = false
				break
			}
		}
		if same {
			return nil
		}
	}
	c.playing = append([]uint32(nil), apps...)
	return nil
}

func (c *FakeClient) ChatMessage(recipient steam.SteamID, message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireLoggedOn("chatMessage"); err != nil {
		return err
	}
	if c.friends[recipient] == steam.FriendRelationshipBlocked {
		return &steam.ResultError{Op: "chatMessage", Result: steam.EResultBlocked}
	}
	c.sent = append(c.sent, SentMessage{Recipient: recipient, Message: message})
	return nil
}

// Sent returns every chat message sent so far.
func (c *FakeClient) Sent() []SentMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]SentMessage(nil), c.sent...)
}

// AddFriend accepts a pending request or sends a new one.
func (c *FakeClient) AddFriend(ctx context.Context, steamID steam.SteamID) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c.mu.Lock()
	if err := c.requireLoggedOn("addFriend"); err != nil {
		c.mu.Unlock()
		return "", err
	}
	var next steam.EFriendRelationship
	switch c.friends[steamID] {
	case steam.FriendRelationshipFriend:
		c.mu.Unlock()
		return "", &steam.ResultError{Op: "addFriend", Result: steam.EResultDuplicateRequest}
	case steam.FriendRelationshipBlocked:
		c.mu.Unlock()
		return "", &steam.ResultError{Op: "addFriend", Result: steam.EResultBlocked}
	case steam.FriendRelationshipRequestRecipient:
		next = steam.FriendRelationshipFriend
	default:
		next = steam.FriendRelationshipRequestInitiator
	}
	c.friends[steamID] = next
	name := c.users[steamID].PlayerName
	c.mu.Unlock()

	c.emit(steam.FriendRelationship{SteamID: steamID, Relationship: next})
	return name, nil
}

func (c *FakeClient) RemoveFriend(steamID steam.SteamID) error {
	return c.setRelationship("removeFriend", steamID, steam.FriendRelationshipNone)
}

func (c *FakeClient) BlockUser(ctx context.Context, steamID steam.SteamID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.setRelationship("blockUser", steamID, steam.FriendRelationshipBlocked)
}

func (c *FakeClient) UnblockUser(ctx context.Context, steamID steam.SteamID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	blocked := c.friends[steamID] == steam.FriendRelationshipBlocked
	c.mu.Unlock()
	if !blocked {
		return &steam.ResultError{Op: "unblockUser", Result: steam.EResultInvalidState}
	}
	return c.setRelationship("unblockUser", steamID, steam.FriendRelationshipNone)
}

func (c *FakeClient) setRelationship(op string, steamID steam.SteamID, r steam.EFriendRelationship) error {
	c.mu.Lock()
	if err := c.requireLoggedOn(op); err != nil {
		c.mu.Unlock()
		return err
	}
	if r == steam.FriendRelationshipNone {
		delete(c.friends, steamID)
	} else {
		c.friends[steamID] = r
	}
	c.mu.Unlock()

	c.emit(steam.FriendRelationship{SteamID: steamID, Relationship: r})
	return nil
}

func (c *FakeClient) RespondToGroupInvite(groupID steam.SteamID, accept bool) error {
	c.mu.Lock()
	if err := c.requireLoggedOn("respondToGroupInvite"); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.groups[groupID] != steam.ClanRelationshipInvited {
		c.mu.Unlock()
		return &steam.ResultError{Op: "respondToGroupInvite", Result: steam.EResultInvalidState}
	}
	next := steam.ClanRelationshipNone
	if accept {
		next = steam.ClanRelationshipMember
		c.groups[groupID] = next
	} else {
		delete(c.groups, groupID)
	}
	c.mu.Unlock()

	c.emit(steam.GroupRelationship{GroupID: groupID, Relationship: next})
	return nil
}

func (c *FakeClient) LogOff() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireLoggedOn("logOff"); err != nil {
		return err
	}
	c.loggedOn = false
	c.steamID = 0
	return nil
}

// ReceiveMessage simulates a chat message from another user.
func (c *FakeClient) ReceiveMessage(from steam.SteamID, message string) {
	c.emit(steam.FriendMessage{Sender: from, Message: message})
}

// ReceiveFriendRequest simulates another user sending a friend request.
func (c *FakeClient) ReceiveFriendRequest(from steam.SteamID, persona steam.Persona) {
	c.mu.Lock()
	c.users[from] = persona
	c.friends[from] = steam.FriendRelationshipRequestRecipient
	c.mu.Unlock()

	c.emit(steam.FriendRelationship{SteamID: from, Relationship: steam.FriendRelationshipRequestRecipient})
}

// InviteToGroup simulates an invitation to a Steam group.
func (c *FakeClient) InviteToGroup(groupID steam.SteamID) {
	c.mu.Lock()
	c.groups[groupID] = steam.ClanRelationshipInvited
	c.mu.Unlock()

	c.emit(steam.GroupRelationship{GroupID: groupID, Relationship: steam.ClanRelationshipInvited})
}

// SetLimitations changes the account limitations and emits them.
func (c *FakeClient) SetLimitations(l steam.Limitations) {
	c.mu.Lock()
	c.limitations = l
	c.mu.Unlock()

	c.emit(steam.AccountLimitations(l))
}

// Fail simulates a fatal error: the client is logged off and err is emitted.
func (c *FakeClient) Fail(err error) {
	if err == nil {
		err = errors.New("steam: connection lost")
	}

	c.mu.Lock()
	c.loggedOn = false
	c.steamID = 0
	c.mu.Unlock()

	c.emit(steam.ErrorEvent{Err: err})
}

// Close releases the event handlers.
func (c *FakeClient) Close() {
	c.bus.Close()
}
