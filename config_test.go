package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		bind:   "0.0.0.0",
		port:   8080,
		rounds: 3,
	}
}

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.validate())
}

func TestPartialTLSConfig(t *testing.T) {
	cfg := validConfig()
	cfg.tlsCert = "/etc/ssl/cert.pem"

	require.Error(t, cfg.validate())

	cfg.tlsKey = "/etc/ssl/key.pem"
	assert.NoError(t, cfg.validate())
}

func TestInvalidPort(t *testing.T) {
	for _, port := range []int{0, -1, 65536} {
		cfg := validConfig()
		cfg.port = port
		assert.Error(t, cfg.validate())
	}
}

func TestInvalidRounds(t *testing.T) {
	cfg := validConfig()
	cfg.rounds = 0
	assert.Error(t, cfg.validate())
}

func TestScheme(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "http", cfg.scheme())

	cfg.tlsCert = "/etc/ssl/cert.pem"
	cfg.tlsKey = "/etc/ssl/key.pem"
	assert.Equal(t, "https", cfg.scheme())
}

func TestFlagDefaults(t *testing.T) {
	cfg := &Config{}
	cmd := newCmd(cfg)
	require.NoError(t, cmd.ParseFlags(nil))

	assert.Equal(t, "0.0.0.0", cfg.bind)
	assert.Equal(t, 8080, cfg.port)
	assert.Equal(t, 3, cfg.rounds)
	assert.False(t, cfg.verbose)
}
