package config

import (
	"testing"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(env.EnvSet{})
	require.NoError(t, err)
	require.Equal(t, BackendMemory, cfg.StoreBackend)
	require.Equal(t, "INFO", cfg.LogLevel)
	require.Equal(t, "localhost:8080", cfg.Address())
}

func TestParse_Badger(t *testing.T) {
	cfg, err := Parse(env.EnvSet{"STORE_BACKEND": "badger", "BADGER_PATH": "/var/lib/messages"})
	require.NoError(t, err)
	require.Equal(t, "/var/lib/messages", cfg.BadgerPath)
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		name string
		es   env.EnvSet
		want string
	}{
		{name: "unknown backend", es: env.EnvSet{"STORE_BACKEND": "postgres"}, want: "StoreBackend"},
		{name: "badger without path", es: env.EnvSet{"STORE_BACKEND": "badger"}, want: "BadgerPath"},
		{name: "dynamodb without table", es: env.EnvSet{"STORE_BACKEND": "dynamodb"}, want: "MESSAGE_TABLE"},
		{name: "bad port", es: env.EnvSet{"PORT": "0"}, want: "Port"},
		{name: "non numeric port", es: env.EnvSet{"PORT": "http"}, want: "decode"},
		{name: "bad log level", es: env.EnvSet{"LOG_LEVEL": "LOUD"}, want: "LogLevel"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.es)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestParse_DynamoDBWithParam(t *testing.T) {
	cfg, err := Parse(env.EnvSet{"STORE_BACKEND": "dynamodb", "MESSAGE_TABLE_PARAM": "/message-store/table"})
	require.NoError(t, err)
	require.Empty(t, cfg.MessageTable)
	require.Equal(t, "/message-store/table", cfg.MessageTableParam)
}
