package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infraai/backend/internal/config"
)

func TestBuildPostgresURL(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.PostgresConfig
		want    string
		wantErr bool
	}{
		{
			name: "database url wins",
			cfg:  config.PostgresConfig{DatabaseURL: "postgres://a@b/c", User: "x", Database: "y"},
			want: "postgres://a@b/c",
		},
		{
			name: "assembled with password",
			cfg:  config.PostgresConfig{Host: "db", Port: "5432", User: "infra", Password: "secret", Database: "ops", SSLMode: "disable"},
			want: "postgres://infra:secret@db:5432/ops?sslmode=disable",
		},
		{
			name:    "missing user",
			cfg:     config.PostgresConfig{Host: "db", Port: "5432", Database: "ops"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildPostgresURL(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
