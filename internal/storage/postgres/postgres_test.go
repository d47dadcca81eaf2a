package postgres

import (
	"testing"

	"github.com/kickoff/matchcore/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	b := New(Dependencies{})
	require.NotNil(t, b)
	assert.Nil(t, b.Backend)
}

func TestInit_UnreachableServer(t *testing.T) {
	b := New(Dependencies{DB: config.DBConfig{
		Host:     "127.0.0.1",
		Port:     "1",
		Username: "nobody",
		Password: "nothing",
		Database: "none",
	}})

	err := b.Init()
	require.Error(t, err)
	assert.Nil(t, b.Backend)
}

func TestClose_BeforeInit(t *testing.T) {
	b := New(Dependencies{})
	assert.NoError(t, b.Close())
}
