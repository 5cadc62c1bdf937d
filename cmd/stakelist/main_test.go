package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forestrie/go-nftstaking/identity"
	"github.com/forestrie/go-nftstaking/stakelist"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var out, errOut bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(append([]string{"stakelist"}, args...))
	return out.String(), err
}

func TestInitHeaderList(t *testing.T) {
	file := filepath.Join(t.TempDir(), "list.bin")

	_, err := run(t, "init", "-f", file, "--capacity", "3")
	require.NoError(t, err)
	info, err := os.Stat(file)
	require.NoError(t, err)
	assert.Equal(t, int64(stakelist.BufferBytes(3)), info.Size())

	_, err = run(t, "init", "-f", file, "--capacity", "3")
	require.Error(t, err)

	out, err := run(t, "header", "-f", file)
	require.NoError(t, err)
	var h map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &h))
	assert.Equal(t, true, h["initialized"])
	assert.Equal(t, float64(3), h["capacity"])
	assert.Equal(t, float64(0), h["count"])

	out, err = run(t, "list", "-f", file)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestFind(t *testing.T) {
	file := filepath.Join(t.TempDir(), "list.bin")
	buf := make([]byte, stakelist.BufferBytes(2))
	s, err := stakelist.Init(buf, 2)
	require.NoError(t, err)
	owner, token, holder := identity.ID{1}, identity.ID{2}, identity.ID{3}
	require.NoError(t, s.Push(stakelist.Record{OwnerID: owner, TokenID: token, HolderID: holder, StakeTime: 1000}))
	require.NoError(t, os.WriteFile(file, buf, 0o644))

	out, err := run(t, "find", "-f", file, "--owner", owner.String(), "--token", token.String())
	require.NoError(t, err)
	var r recordJSON
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, holder, r.Holder)
	assert.Equal(t, int64(1000), r.StakeTime)

	_, err = run(t, "find", "-f", file, "--owner", owner.String(), "--token", holder.String())
	require.Error(t, err)

	out, err = run(t, "list", "-f", file)
	require.NoError(t, err)
	var rs []recordJSON
	require.NoError(t, json.Unmarshal([]byte(out), &rs))
	require.Len(t, rs, 1)
	require.NotNil(t, rs[0].Slot)
	assert.Equal(t, 0, *rs[0].Slot)
}

func TestAuthority(t *testing.T) {
	program, owner, token := identity.ID{9}, identity.ID{1}, identity.ID{2}
	out, err := run(t, "authority", "-p", program.String(), "-o", owner.String(), "-t", token.String())
	require.NoError(t, err)
	var a map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &a))
	assert.NotEmpty(t, a["authority"])

	_, err = run(t, "authority", "-p", "not base58 0OIl", "-o", owner.String(), "-t", token.String())
	require.Error(t, err)
}
