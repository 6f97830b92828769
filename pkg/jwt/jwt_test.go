package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/inventario-ledger/pkg/jwt"
)

func TestGenerateParse_RoundTrip(t *testing.T) {
	tok, err := pkgjwt.Generate("s3cret", "user-1", pkgjwt.RoleManager, "test", 5)
	require.NoError(t, err)

	id, err := pkgjwt.Parse("s3cret", tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id.UserID)
	assert.Equal(t, pkgjwt.RoleManager, id.Role)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	tok, err := pkgjwt.Generate("s3cret", "user-1", pkgjwt.RoleUser, "test", 5)
	require.NoError(t, err)
	_, err = pkgjwt.Parse("otro", tok)
	assert.Error(t, err)
}

func TestParse_Expirado(t *testing.T) {
	tok, err := pkgjwt.Generate("s3cret", "user-1", pkgjwt.RoleUser, "test", -1)
	require.NoError(t, err)
	_, err = pkgjwt.Parse("s3cret", tok)
	assert.Error(t, err)
}

func TestSecretVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", "u", "user", "i", 1)
	assert.Error(t, err)
	_, err = pkgjwt.Parse("", "x")
	assert.Error(t, err)
}
