package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	config := []string{"-c", "--config"}

	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{"separate value", []string{"-c", "conf.json", "-a", "localhost"}, config, []string{"-c", "conf.json"}},
		{"attached value", []string{"--config=alt.json", "-a", "localhost"}, config, []string{"--config=alt.json"}},
		{"order preserved", []string{"--config=1.json", "-c", "2.json", "-x", "1"}, config, []string{"--config=1.json", "-c", "2.json"}},
		{"subcommands and unknown flags dropped", []string{"album", "list", "--owner", "u1", "x=y"}, config, []string{}},
		{"trailing flag without value", []string{"-c"}, config, []string{"-c"}},
		{"next flag is not a value", []string{"-c", "--owner", "u1"}, config, []string{"-c"}},
		{"attached value may start with a dash", []string{"--config=--odd.json"}, config, []string{"--config=--odd.json"}},
		{"several allowed flags", []string{"-a", ":8080", "-c", "c.json", "--other", "x"}, []string{"-c", "-a"}, []string{"-a", ":8080", "-c", "c.json"}},
		{"stops at terminator", []string{"-c", "a.json", "--", "-c", "b.json"}, config, []string{"-c", "a.json"}},
		{"lone dash is a value", []string{"-c", "-"}, config, []string{"-c", "-"}},
		{"empty", nil, config, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigPath(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"short", []string{"-c", "/etc/offsync.json"}, "/etc/offsync.json"},
		{"single dash long", []string{"-config", "a.json"}, "a.json"},
		{"double dash long among subcommand args", []string{"sync", "--config", "b.json", "--push"}, "b.json"},
		{"attached", []string{"--config=c.json"}, "c.json"},
		{"last wins", []string{"-c", "1.json", "-config", "2.json"}, "2.json"},
		{"missing value", []string{"-c", "--push"}, ""},
		{"none", []string{"-x", "1"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConfigPath(tt.args))
		})
	}
}
