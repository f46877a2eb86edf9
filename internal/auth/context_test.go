// ABOUTME: Tests for AuthContext propagation via context.Context
// ABOUTME: Covers WithAuth/FromContext/MustFromContext round trips

package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithAuthAndFromContext(t *testing.T) {
	ctx := WithAuth(context.Background(), &AuthContext{PrincipalID: "p-1"})

	got := FromContext(ctx)
	if assert.NotNil(t, got) {
		assert.Equal(t, "p-1", got.PrincipalID)
	}
}

func TestFromContext_Absent(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
}

func TestMustFromContext_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustFromContext(context.Background())
	})
}
