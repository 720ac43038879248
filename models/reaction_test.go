package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestKindOrdinal(t *testing.T) {
	assert.Equal(t, int32(4), KindOrdinal(KindLove))
	assert.Equal(t, int32(3), KindOrdinal(KindLike))
	assert.Equal(t, int32(2), KindOrdinal(KindMeh))
	assert.Equal(t, int32(1), KindOrdinal(KindDislike))
	assert.Equal(t, int32(0), KindOrdinal("banana"))
	assert.Equal(t, int32(0), KindOrdinal(""))
}

func TestTallyStatsEmpty(t *testing.T) {
	trackOID := primitive.NewObjectID()

	stats := tallyStats(trackOID, nil)

	assert.Equal(t, trackOID, stats.TrackID)
	assert.Equal(t, int32(0), stats.Total)
	assert.Equal(t, float64(0), stats.Score)
}

func TestTallyStatsCountsAndScore(t *testing.T) {
	trackOID := primitive.NewObjectID()

	reactions := []Reaction{
		{Kind: KindLove},
		{Kind: KindLove},
		{Kind: KindLike},
		{Kind: KindMeh},
		{Kind: KindDislike},
	}

	stats := tallyStats(trackOID, reactions)

	assert.Equal(t, int32(2), stats.Loves)
	assert.Equal(t, int32(1), stats.Likes)
	assert.Equal(t, int32(1), stats.Mehs)
	assert.Equal(t, int32(1), stats.Dislikes)
	assert.Equal(t, int32(5), stats.Total)
	// (4+4+3+2+1) / 5
	assert.InDelta(t, 2.8, stats.Score, 0.0001)
}

func TestTallyStatsIgnoresUnknownKinds(t *testing.T) {
	trackOID := primitive.NewObjectID()

	reactions := []Reaction{
		{Kind: KindLove},
		{Kind: "spam"},
	}

	stats := tallyStats(trackOID, reactions)

	assert.Equal(t, int32(1), stats.Total)
	assert.InDelta(t, 4.0, stats.Score, 0.0001)
}

func TestIdentityFilterMember(t *testing.T) {
	reaction := &Reaction{
		TrackID:   primitive.NewObjectID(),
		UserID:    primitive.NewObjectID(),
		SessionID: "anon_123_abcdefgh",
	}

	filter := identityFilter(reaction)

	// members dedup on their account, not the device session
	assert.Equal(t, bson.D{
		{Key: "trackID", Value: reaction.TrackID},
		{Key: "userID", Value: reaction.UserID},
	}, filter)
}

func TestIdentityFilterGuest(t *testing.T) {
	reaction := &Reaction{
		TrackID:   primitive.NewObjectID(),
		SessionID: "anon_123_abcdefgh",
	}

	filter := identityFilter(reaction)

	assert.Equal(t, bson.D{
		{Key: "trackID", Value: reaction.TrackID},
		{Key: "sessionID", Value: reaction.SessionID},
	}, filter)
}

func TestIdentityFilterAnonymousMember(t *testing.T) {
	// a member reacting anonymously is tracked like a guest
	reaction := &Reaction{
		TrackID:   primitive.NewObjectID(),
		UserID:    primitive.NewObjectID(),
		Anonymous: true,
		SessionID: "anon_123_abcdefgh",
	}

	filter := identityFilter(reaction)

	assert.Equal(t, "sessionID", filter[1].Key)
}

func TestApplyIdentityDiscardsWireUserID(t *testing.T) {
	// a guest body carrying some member's ID must not impersonate them
	victim := primitive.NewObjectID()
	body := `{"trackID":"` + primitive.NewObjectID().Hex() + `","kind":"love","userID":"` + victim.Hex() + `"}`

	var reaction Reaction
	err := json.Unmarshal([]byte(body), &reaction)
	assert.Nil(t, err)
	assert.Equal(t, victim, reaction.UserID) // the wire delivers it

	ApplyIdentity(&reaction, "")

	assert.Equal(t, primitive.NilObjectID, reaction.UserID)
	assert.NotEmpty(t, reaction.SessionID)

	// the dedup filter must key on the session, never the victim's ID
	filter := identityFilter(&reaction)
	assert.Equal(t, "sessionID", filter[1].Key)
}

func TestApplyIdentityMemberUsesToken(t *testing.T) {
	member := primitive.NewObjectID()

	// a bogus userID in the body loses against the token
	reaction := Reaction{
		TrackID: primitive.NewObjectID(),
		UserID:  primitive.NewObjectID(),
		Kind:    KindLike,
	}

	ApplyIdentity(&reaction, member.Hex())

	assert.Equal(t, member, reaction.UserID)
	assert.Empty(t, reaction.SessionID)

	filter := identityFilter(&reaction)
	assert.Equal(t, "userID", filter[1].Key)
	assert.Equal(t, member, filter[1].Value)
}

func TestRateLimitBoundary(t *testing.T) {
	assert.False(t, rateLimitReached(0))
	assert.False(t, rateLimitReached(reactionRateLimit-1)) // the 30th still passes
	assert.True(t, rateLimitReached(reactionRateLimit))    // the 31st is rejected
	assert.True(t, rateLimitReached(reactionRateLimit+1))
}

func TestOwnsReactionMatrix(t *testing.T) {
	member := primitive.NewObjectID()

	memberReaction := Reaction{UserID: member}
	guestReaction := Reaction{SessionID: "anon_1_abcdefgh"}
	anonymousReaction := Reaction{UserID: member, Anonymous: true, SessionID: "anon_2_ijklmnop"}

	tests := []struct {
		name      string
		reaction  *Reaction
		userID    string
		sessionID string
		owns      bool
	}{
		{"member with own token", &memberReaction, member.Hex(), "", true},
		{"member with foreign token", &memberReaction, primitive.NewObjectID().Hex(), "", false},
		{"member reaction without token", &memberReaction, "", "anon_1_abcdefgh", false},
		{"guest with matching session", &guestReaction, "", "anon_1_abcdefgh", true},
		{"guest with wrong session", &guestReaction, "", "anon_other", false},
		{"guest without session", &guestReaction, "", "", false},
		{"anonymous member - token alone is not enough", &anonymousReaction, member.Hex(), "", false},
		{"anonymous member with session", &anonymousReaction, "", "anon_2_ijklmnop", true},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.owns, ownsReaction(tc.reaction, tc.userID, tc.sessionID), tc.name)
	}
}

func TestIdentityQuery(t *testing.T) {
	member := primitive.NewObjectID()

	filter := identityQuery(member.Hex(), "")
	assert.Equal(t, "userID", filter[0].Key)
	assert.Equal(t, member, filter[0].Value)

	filter = identityQuery("", "anon_1_abcdefgh")
	assert.Equal(t, "sessionID", filter[0].Key)
	assert.Equal(t, "anon_1_abcdefgh", filter[0].Value)
}

func TestAnonSessionID(t *testing.T) {
	first := AnonSessionID()
	second := AnonSessionID()

	assert.True(t, strings.HasPrefix(first, "anon_"))
	assert.NotEqual(t, first, second)

	// format: anon_<millis>_<8 uuid chars>
	parts := strings.Split(first, "_")
	assert.Len(t, parts, 3)
	assert.Len(t, parts[2], 8)
}

func TestLockTrackSameInstance(t *testing.T) {
	id := primitive.NewObjectID().Hex()

	l1 := lockTrack(id)
	l2 := lockTrack(id)
	other := lockTrack(primitive.NewObjectID().Hex())

	assert.Same(t, l1, l2)
	assert.NotSame(t, l1, other)
}
