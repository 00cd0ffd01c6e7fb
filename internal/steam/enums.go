package steam

import "strconv"

type EPersonaState int32

const (
	PersonaOffline        EPersonaState = 0
	PersonaOnline         EPersonaState = 1
	PersonaBusy           EPersonaState = 2
	PersonaAway           EPersonaState = 3
	PersonaSnooze         EPersonaState = 4
	PersonaLookingToTrade EPersonaState = 5
	PersonaLookingToPlay  EPersonaState = 6
	PersonaMax            EPersonaState = 7
)

var personaStateNames = [...]string{
	PersonaOffline:        "Offline",
	PersonaOnline:         "Online",
	PersonaBusy:           "Busy",
	PersonaAway:           "Away",
	PersonaSnooze:         "Snooze",
	PersonaLookingToTrade: "LookingToTrade",
	PersonaLookingToPlay:  "LookingToPlay",
	PersonaMax:            "Max",
}

func (s EPersonaState) String() string {
	if s >= 0 && int(s) < len(personaStateNames) {
		return personaStateNames[s]
	}
	return "EPersonaState(" + strconv.Itoa(int(s)) + ")"
}

// IsValid reports whether s can be set as a persona state.
func (s EPersonaState) IsValid() bool {
	return s >= PersonaOffline && s < PersonaMax
}

// EClanRelationship is the account's relationship to a Steam group.
type EClanRelationship int32

const (
	ClanRelationshipNone             EClanRelationship = 0
	ClanRelationshipBlocked          EClanRelationship = 1
	ClanRelationshipInvited          EClanRelationship = 2
	ClanRelationshipMember           EClanRelationship = 3
	ClanRelationshipKicked           EClanRelationship = 4
	ClanRelationshipKickAcknowledged EClanRelationship = 5
)

var clanRelationshipNames = [...]string{
	ClanRelationshipNone:             "None",
	ClanRelationshipBlocked:          "Blocked",
	ClanRelationshipInvited:          "Invited",
	ClanRelationshipMember:           "Member",
	ClanRelationshipKicked:           "Kicked",
	ClanRelationshipKickAcknowledged: "KickAcknowledged",
}

func (r EClanRelationship) String() string {
	if r >= 0 && int(r) < len(clanRelationshipNames) {
		return clanRelationshipNames[r]
	}
	return "EClanRelationship(" + strconv.Itoa(int(r)) + ")"
}

// EFriendRelationship is the account's relationship to another user.
type EFriendRelationship int32

const (
	FriendRelationshipNone             EFriendRelationship = 0
	FriendRelationshipBlocked          EFriendRelationship = 1
	FriendRelationshipRequestRecipient EFriendRelationship = 2
	FriendRelationshipFriend           EFriendRelationship = 3
	FriendRelationshipRequestInitiator EFriendRelationship = 4
	FriendRelationshipIgnored          EFriendRelationship = 5
	FriendRelationshipIgnoredFriend    EFriendRelationship = 6
	FriendRelationshipSuggestedFriend  EFriendRelationship = 7
	FriendRelationshipMax              EFriendRelationship = 8
)

var friendRelationshipNames = [...]string{
	FriendRelationshipNone:             "None",
	FriendRelationshipBlocked:          "Blocked",
	FriendRelationshipRequestRecipient: "RequestRecipient",
	FriendRelationshipFriend:           "Friend",
	FriendRelationshipRequestInitiator: "RequestInitiator",
	FriendRelationshipIgnored:          "Ignored",
	FriendRelationshipIgnoredFriend:    "IgnoredFriend",
	FriendRelationshipSuggestedFriend:  "SuggestedFriend",
	FriendRelationshipMax:              "Max",
}

func (r EFriendRelationship) String() string {
	if r >= 0 && int(r) < len(friendRelationshipNames) {
		return friendRelationshipNames[r]
	}
	return "EFriendRelationship(" + strconv.Itoa(int(r)) + ")"
}

// SteamID is a 64-bit Steam account or group identifier.
type SteamID uint64

func ParseSteamID(s string) (SteamID, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return SteamID(id), nil
}

func (id SteamID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// IsValid reports whether id carries a non-zero account number.
func (id SteamID) IsValid() bool {
	return uint32(id) != 0
}
