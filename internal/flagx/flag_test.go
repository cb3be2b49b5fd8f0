package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "short flag with separate value",
			args:         []string{"-c", "server.json", "-a", ":8080"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"-c", "server.json"},
		},
		{
			name:         "long flag with equals",
			args:         []string{"--config=override.json", "-d", "postgres://localhost/carelink"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"--config=override.json"},
		},
		{
			name:         "short and long both present, order preserved",
			args:         []string{"--config=first.json", "-c", "second.json", "-r", "http://localhost/cb"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"--config=first.json", "-c", "second.json"},
		},
		{
			name:         "unrelated flags and positionals dropped",
			args:         []string{"-d", "dsn", "--verbose=true", "extra"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{},
		},
		{
			name:         "trailing flag without value kept",
			args:         []string{"-c"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"-c"},
		},
		{
			name:         "next dash token is not consumed as a value",
			args:         []string{"-c", "-a"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"-c"},
		},
		{
			name:         "equals form may carry a dash-starting value",
			args:         []string{"--config=--odd.json"},
			allowedFlags: []string{"--config"},
			want:         []string{"--config=--odd.json"},
		},
		{
			name:         "several allowed flags survive together",
			args:         []string{"-a", ":9090", "-c", "server.json", "--other", "x"},
			allowedFlags: []string{"-c", "-a"},
			want:         []string{"-a", ":9090", "-c", "server.json"},
		},
		{
			name:         "empty input",
			args:         []string{},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{},
		},
		{
			name:         "repeated allowed flag preserved in order",
			args:         []string{"-c", "one.json", "-c", "two.json"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c", "one.json", "-c", "two.json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowedFlags))
		})
	}
}

func TestJsonConfigFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("short -c with value", func(t *testing.T) {
		os.Args = []string{"carelink-server", "-c", "/etc/carelink/server.json"}
		assert.Equal(t, "/etc/carelink/server.json", JsonConfigFlags())
	})

	t.Run("long -config with value", func(t *testing.T) {
		os.Args = []string{"carelink-server", "-config", "/etc/carelink/alt.json"}
		assert.Equal(t, "/etc/carelink/alt.json", JsonConfigFlags())
	})

	t.Run("unknown flags ignored", func(t *testing.T) {
		os.Args = []string{"carelink-server", "-a", ":8080", "-d", "dsn"}
		assert.Empty(t, JsonConfigFlags())
	})

	t.Run("last occurrence wins", func(t *testing.T) {
		os.Args = []string{"carelink-server", "-c", "/first.json", "-config", "/second.json"}
		assert.Equal(t, "/second.json", JsonConfigFlags())
	})
}
