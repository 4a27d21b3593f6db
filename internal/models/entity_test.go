package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntityRefs(t *testing.T) {
	cases := []struct {
		entity Entity
		want   EntityRef
	}{
		{&User{ID: 1}, EntityRef{Kind: KindUser, ID: 1}},
		{&Post{ID: 2}, EntityRef{Kind: KindPost, ID: 2}},
		{&Comment{ID: 3}, EntityRef{Kind: KindComment, ID: 3}},
		{&CommentReply{ID: 4}, EntityRef{Kind: KindCommentReply, ID: 4}},
		{&CommentReplyLike{ID: 5}, EntityRef{Kind: KindCommentReplyLike, ID: 5}},
	}

	seen := map[EntityKind]bool{}
	for _, tc := range cases {
		got := tc.entity.Ref()
		assert.Equal(t, tc.want, got)
		assert.True(t, got.Kind.Valid())
		seen[got.Kind] = true
	}
	assert.Len(t, seen, len(EntityKinds), "every kind needs an entity type")
}

func TestEntityKind_Valid(t *testing.T) {
	assert.True(t, KindCommentReply.Valid())
	assert.False(t, EntityKind("story").Valid())
	assert.False(t, EntityKind("").Valid())
}

func TestVerb_Valid(t *testing.T) {
	for _, v := range Verbs {
		assert.True(t, v.Valid(), v)
	}
	assert.False(t, Verb("mention").Valid())
	assert.False(t, Verb("").Valid())
}

func TestSummary_Truncates(t *testing.T) {
	post := &Post{Content: strings.Repeat("é", 50)}

	summary := post.Summary()
	assert.True(t, strings.HasSuffix(summary, `..."`))
	assert.Equal(t, "@alice", (&User{Username: "alice"}).Summary())
	assert.Equal(t, `comment "short"`, (&Comment{Content: "short"}).Summary())
	assert.Equal(t, "like on reply #9", (&CommentReplyLike{ReplyID: 9}).Summary())
}

func TestEntityRef_String(t *testing.T) {
	assert.Equal(t, "post:7", EntityRef{Kind: KindPost, ID: 7}.String())
}
