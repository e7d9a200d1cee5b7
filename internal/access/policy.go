// Package access holds the authorization table shared by chat, membership
// and message operations. It is pure: callers resolve the actor's
// relationship to a chat and ask what that relationship allows.
package access

import "messenger/internal/domain"

// Capability is a set of permissions on a single chat.
type Capability uint8

const (
	// Read allows viewing the chat, its members and its messages.
	Read Capability = 1 << iota
	// Send allows posting new messages.
	Send
	// Manage allows renaming the chat and managing its members.
	Manage
	// Delete allows deleting the whole chat.
	Delete
	// Moderate allows deleting messages sent by others.
	Moderate
)

// None is the empty capability set.
const None Capability = 0

// Has reports whether every bit of want is present in c.
func (c Capability) Has(want Capability) bool {
	return c&want == want
}

// Relation describes how an actor relates to one chat.
type Relation struct {
	Kind domain.ChatType

	// Participant is set when the actor is one of a private chat's pair.
	Participant bool
	// Role is the actor's group role, empty when not a group member.
	Role domain.Role
	// Owner is set when the actor owns the channel.
	Owner bool
	// Subscribed is set when the actor holds a channel subscription row.
	Subscribed bool
}

// Capabilities is the decision table for every chat kind and relationship.
func Capabilities(r Relation) Capability {
	switch r.Kind {
	case domain.ChatPrivate:
		if r.Participant {
			return Read | Send | Delete
		}
	case domain.ChatGroup:
		switch r.Role {
		case domain.RoleAdmin:
			return Read | Send | Manage | Delete | Moderate
		case domain.RoleMember:
			return Read | Send
		case domain.RoleRestricted:
			return Read
		}
	case domain.ChatChannel:
		if r.Owner {
			return Read | Send | Manage | Delete | Moderate
		}
		if r.Subscribed {
			return Read
		}
	}
	return None
}

// CanDeleteMessage decides whether the actor may delete a message sent by
// senderID. Senders may always delete their own messages.
func CanDeleteMessage(r Relation, actorID, senderID int64) bool {
	return actorID == senderID || Capabilities(r).Has(Moderate)
}
