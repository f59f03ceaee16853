package session

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_JSONFormat(t *testing.T) {
	data, err := json.Marshal(Session{UserID: "u1", Username: "alice", StudentID: "1234", Role: RoleRegularUser})
	require.NoError(t, err)
	assert.JSONEq(t, `{"userId":"u1","username":"alice","studentId":"1234","isAdmin":false}`, string(data))

	data, err = json.Marshal(Session{Username: "admin", StudentID: "0000", Role: RoleAdministrator})
	require.NoError(t, err)
	assert.JSONEq(t, `{"username":"admin","studentId":"0000","isAdmin":true}`, string(data))
}

func TestSession_ReadsWebClientFormat(t *testing.T) {
	var s Session
	require.NoError(t, json.Unmarshal([]byte(`{"username":"admin","studentId":"0000","isAdmin":true}`), &s))

	assert.Equal(t, RoleAdministrator, s.Role)
	assert.Equal(t, ViewAdmin, s.HomeView())
	assert.NoError(t, s.Validate())
}
