package shop

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/consoleshop/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectory_RegisterThenLogin(t *testing.T) {
	ts := newTestShop(t)
	ctx := context.Background()

	acc, err := ts.Accounts.Register(ctx, "ann", "s3cret", "customer")
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, acc.Role)
	assert.NotEqual(t, "s3cret", acc.PasswordHash, "passwords are hashed")

	got, err := ts.Accounts.Login(ctx, "ann", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, got.Role)

	_, err = ts.Accounts.Register(ctx, "root", "pw", "admin")
	require.NoError(t, err)
	got, err = ts.Accounts.Login(ctx, "root", "pw")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)

	raw, err := os.ReadFile(filepath.Join(ts.dir, "admins.txt"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "root $2"))
	assert.True(t, strings.HasSuffix(string(raw), " admin\n"))
}

func TestDirectory_DuplicateAcrossRoles(t *testing.T) {
	ts := newTestShop(t)
	ctx := context.Background()

	_, err := ts.Accounts.Register(ctx, "sam", "a", "admin")
	require.NoError(t, err)

	_, err = ts.Accounts.Register(ctx, "sam", "b", "customer")
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	_, err = ts.Accounts.Register(ctx, "Sam", "b", "customer")
	assert.NoError(t, err, "usernames are case-sensitive")

	assert.Equal(t, 2, ts.Accounts.Len())
}

func TestDirectory_DuplicateCheckedBeforeRole(t *testing.T) {
	ts := newTestShop(t)
	ctx := context.Background()
	_, err := ts.Accounts.Register(ctx, "sam", "a", "admin")
	require.NoError(t, err)

	_, err = ts.Accounts.Register(ctx, "sam", "a", "wizard")
	assert.ErrorIs(t, err, ErrDuplicateUsername)
}

func TestDirectory_RegisterValidation(t *testing.T) {
	ts := newTestShop(t)
	ctx := context.Background()

	_, err := ts.Accounts.Register(ctx, "ann", "pw", "Admin")
	assert.ErrorIs(t, err, ErrInvalidRole)
	_, err = ts.Accounts.Register(ctx, "ann", "pw", "")
	assert.ErrorIs(t, err, ErrInvalidRole)

	for _, name := range []string{"", "a b", "../etc", `x\y`} {
		_, err = ts.Accounts.Register(ctx, name, "pw", "customer")
		assert.ErrorIs(t, err, ErrInvalidInput, "username %q", name)
	}
	_, err = ts.Accounts.Register(ctx, "ann", "two words", "customer")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = ts.Accounts.Register(ctx, "ann", strings.Repeat("p", 73), "customer")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.True(t, IsUserError(err))

	assert.Equal(t, 0, ts.Accounts.Len())
	assert.NoFileExists(t, filepath.Join(ts.dir, "customers.txt"))
}

func TestDirectory_LoginFailuresAreUniform(t *testing.T) {
	ts := newTestShop(t)
	ctx := context.Background()
	_, err := ts.Accounts.Register(ctx, "ann", "pw", "customer")
	require.NoError(t, err)

	_, unknown := ts.Accounts.Login(ctx, "bob", "pw")
	_, wrong := ts.Accounts.Login(ctx, "ann", "nope")

	assert.ErrorIs(t, unknown, ErrAuthFailure)
	assert.ErrorIs(t, wrong, ErrAuthFailure)
	assert.Equal(t, unknown.Error(), wrong.Error())
}

func TestDirectory_SurvivesRestartAndAcceptsLegacyPlaintext(t *testing.T) {
	ts := newTestShop(t)
	ctx := context.Background()

	_, err := ts.Accounts.Register(ctx, "ann", "pw", "customer")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(ts.dir, "admins.txt"), []byte("old plain admin\n"), 0o644))

	reopened := openTestShop(t, ts.dir)
	assert.Equal(t, 2, reopened.Accounts.Len())

	acc, err := reopened.Accounts.Login(ctx, "old", "plain")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, acc.Role)

	_, err = reopened.Accounts.Login(ctx, "ann", "pw")
	assert.NoError(t, err)

	_, err = reopened.Accounts.Register(ctx, "old", "x", "customer")
	assert.ErrorIs(t, err, ErrDuplicateUsername)
}
