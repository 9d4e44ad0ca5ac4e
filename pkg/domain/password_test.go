package domain

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoom_GeneratesPassword(t *testing.T) {
	alnum := regexp.MustCompile(`^[A-Za-z0-9]{8}$`)
	for i := 0; i < 50; i++ {
		r, err := NewRoom(NewRoomOptions{})
		require.NoError(t, err)
		assert.Regexp(t, alnum, r.Password)
	}
}

func TestNewRoom_ValidatesPassword(t *testing.T) {
	tcases := []struct {
		name     string
		password string
		err      bool
	}{
		{name: "short alnum", password: "ab"},
		{name: "punctuation", password: "p@ss-w0rd!"},
		{name: "max length", password: strings.Repeat("a", MaxPasswordLength)},
		{name: "too long", password: strings.Repeat("a", MaxPasswordLength+1), err: true},
		{name: "emoji", password: "ab😀", err: true},
		{name: "space", password: "ab cd", err: true},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := NewRoom(NewRoomOptions{Password: tc.password})
			if tc.err {
				require.Error(t, err)
				assert.True(t, IsValidation(err))
				assert.Nil(t, r)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.password, r.Password)
		})
	}
}
