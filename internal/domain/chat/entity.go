package chat

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Chat represents the chats table together with its membership sets.
//
// A nil Name marks a direct chat between exactly two all-time members; any
// other chat is a group. A group without admins has a nil OwnerID and is
// read-only.
type Chat struct {
	ID        uuid.UUID  `json:"id"`
	Name      *string    `json:"name,omitempty"`
	Picture   *string    `json:"picture,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	OwnerID   *uuid.UUID `json:"owner_id,omitempty"`

	AdminIDs []uuid.UUID `json:"admin_ids"`
	// AllTimeMemberIDs only ever grows; it grants access to history.
	AllTimeMemberIDs []uuid.UUID `json:"all_time_member_ids"`
	// ListingMemberIDs are the users who see the chat in their chat list.
	ListingMemberIDs     []uuid.UUID `json:"listing_member_ids"`
	ActualGroupMemberIDs []uuid.UUID `json:"actual_group_member_ids"`
}

// Membership kinds as stored in chat_members.kind
const (
	KindAllTime = "all_time"
	KindListing = "listing"
	KindActual  = "actual"
	KindAdmin   = "admin"
)

// NewDirect builds a direct chat that is only listed for current until the
// other user gets involved.
func NewDirect(current, other uuid.UUID, now time.Time) Chat {
	return Chat{
		ID:               uuid.New(),
		CreatedAt:        now,
		AllTimeMemberIDs: []uuid.UUID{current, other},
		ListingMemberIDs: []uuid.UUID{current},
	}
}

// NewGroup builds a group owned and administered by owner.
func NewGroup(owner uuid.UUID, members []uuid.UUID, name string, picture *string, now time.Time) Chat {
	ids := append(lo.Without(lo.Uniq(members), owner), owner)
	return Chat{
		ID:                   uuid.New(),
		Name:                 &name,
		Picture:              picture,
		CreatedAt:            now,
		OwnerID:              &owner,
		AdminIDs:             []uuid.UUID{owner},
		AllTimeMemberIDs:     ids,
		ListingMemberIDs:     append([]uuid.UUID(nil), ids...),
		ActualGroupMemberIDs: append([]uuid.UUID(nil), ids...),
	}
}

func (c Chat) IsGroup() bool {
	return c.Name != nil
}

func (c Chat) IsListedFor(userID uuid.UUID) bool {
	return lo.Contains(c.ListingMemberIDs, userID)
}

func (c Chat) IsActualMember(userID uuid.UUID) bool {
	return lo.Contains(c.ActualGroupMemberIDs, userID)
}

// List adds userID to the listing members. It reports false when the chat
// was already listed for userID.
func (c *Chat) List(userID uuid.UUID) bool {
	if c.IsListedFor(userID) {
		return false
	}
	c.ListingMemberIDs = append(c.ListingMemberIDs, userID)
	return true
}

// Unlist removes userID from the listing members and reports whether anybody
// still has the chat listed.
func (c *Chat) Unlist(userID uuid.UUID) bool {
	c.ListingMemberIDs = lo.Without(c.ListingMemberIDs, userID)
	return len(c.ListingMemberIDs) > 0
}

// LeaveGroup drops userID from the actual members and the admins. Ownership
// passes to the first remaining admin; with no admin left the owner is nil.
func (c *Chat) LeaveGroup(userID uuid.UUID) {
	c.ActualGroupMemberIDs = lo.Without(c.ActualGroupMemberIDs, userID)
	c.AdminIDs = lo.Without(c.AdminIDs, userID)

	if len(c.AdminIDs) == 0 {
		c.OwnerID = nil
		return
	}
	next := c.AdminIDs[0]
	c.OwnerID = &next
}
