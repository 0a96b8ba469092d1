package chat

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNewDirect_ListsOnlyForCreator(t *testing.T) {
	req := require.New(t)
	alice, bob := uuid.New(), uuid.New()

	c := NewDirect(alice, bob, time.Now())

	req.False(c.IsGroup())
	req.Nil(c.OwnerID)
	req.Equal([]uuid.UUID{alice, bob}, c.AllTimeMemberIDs)
	req.True(c.IsListedFor(alice))
	req.False(c.IsListedFor(bob))
}

func TestNewGroup_OwnerIsAdminAndMember(t *testing.T) {
	req := require.New(t)
	owner, bob, carol := uuid.New(), uuid.New(), uuid.New()
	picture := "https://cdn.example.com/g.png"

	c := NewGroup(owner, []uuid.UUID{bob, carol, bob, owner}, "Friends", &picture, time.Now())

	req.True(c.IsGroup())
	req.Equal("Friends", *c.Name)
	req.Equal(owner, *c.OwnerID)
	req.Equal([]uuid.UUID{owner}, c.AdminIDs)
	req.Equal([]uuid.UUID{bob, carol, owner}, c.AllTimeMemberIDs)
	req.Equal(c.AllTimeMemberIDs, c.ListingMemberIDs)
	req.Equal(c.AllTimeMemberIDs, c.ActualGroupMemberIDs)

	// the sets must not share storage
	c.Unlist(bob)
	req.Len(c.ActualGroupMemberIDs, 3)
	req.Len(c.AllTimeMemberIDs, 3)
}

func TestChat_ListAndUnlist(t *testing.T) {
	req := require.New(t)
	alice, bob := uuid.New(), uuid.New()
	c := NewDirect(alice, bob, time.Now())

	req.False(c.List(alice))
	req.True(c.List(bob))
	req.Len(c.ListingMemberIDs, 2)

	req.True(c.Unlist(alice))
	req.False(c.Unlist(bob))
	req.Empty(c.ListingMemberIDs)
	req.Len(c.AllTimeMemberIDs, 2)
}

func TestChat_LeaveGroup(t *testing.T) {
	owner, bob, carol := uuid.New(), uuid.New(), uuid.New()

	t.Run("ownership passes to the next admin", func(t *testing.T) {
		req := require.New(t)
		c := NewGroup(owner, []uuid.UUID{bob, carol}, "Team", nil, time.Now())
		c.AdminIDs = append(c.AdminIDs, carol)

		c.LeaveGroup(owner)

		req.Equal([]uuid.UUID{carol}, c.AdminIDs)
		req.Equal(carol, *c.OwnerID)
		req.False(c.IsActualMember(owner))
		req.Contains(c.AllTimeMemberIDs, owner)
	})

	t.Run("last admin leaving makes the group read-only", func(t *testing.T) {
		req := require.New(t)
		c := NewGroup(owner, []uuid.UUID{bob, carol}, "Team", nil, time.Now())

		c.LeaveGroup(owner)

		req.Empty(c.AdminIDs)
		req.Nil(c.OwnerID)
		req.Equal([]uuid.UUID{bob, carol}, c.ActualGroupMemberIDs)
	})

	t.Run("plain member leaving keeps the owner", func(t *testing.T) {
		req := require.New(t)
		c := NewGroup(owner, []uuid.UUID{bob, carol}, "Team", nil, time.Now())

		c.LeaveGroup(bob)

		req.Equal(owner, *c.OwnerID)
		req.Equal([]uuid.UUID{carol, owner}, c.ActualGroupMemberIDs)
	})
}
