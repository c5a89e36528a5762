package flagx

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	storeFlags := []string{"-s", "-d", "-e"}

	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{"separate value", []string{"-s", "memory", "-u", "http://api"}, storeFlags, []string{"-s", "memory"}},
		{"equals form", []string{"-d=/tmp/notes", "-u", "http://api"}, storeFlags, []string{"-d=/tmp/notes"}},
		{"order preserved", []string{"-d=/a", "-s", "redis", "-log-level", "debug"}, storeFlags, []string{"-d=/a", "-s", "redis"}},
		{"nothing allowed matches", []string{"-u", "http://api", "-log-format=json", "extra"}, storeFlags, []string{}},
		{"trailing boolean flag", []string{"-s", "sqlite", "-e"}, storeFlags, []string{"-s", "sqlite", "-e"}},
		{"boolean flag before another flag", []string{"-e", "-d", "/data"}, storeFlags, []string{"-e", "-d", "/data"}},
		{"dash value only in equals form", []string{"-d=-odd-dir"}, storeFlags, []string{"-d=-odd-dir"}},
		{"repeated flag kept twice", []string{"-s", "memory", "-s", "redis"}, storeFlags, []string{"-s", "memory", "-s", "redis"}},
		{"no args", nil, storeFlags, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowed)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("FilterArgs() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestConfigFileFlag(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"short -c with value", []string{"-c", "/path/short.yaml"}, "/path/short.yaml"},
		{"long -config with value", []string{"-config", "/path/long.json"}, "/path/long.json"},
		{"equals form", []string{"-config=/path/eq.yml", "-a", "http://x"}, "/path/eq.yml"},
		{"unknown flags are ignored", []string{"-a", "http://x", "-d", "/tmp"}, ""},
		{"multiple flags, last wins", []string{"-c", "/path/1.json", "-config", "/path/2.json"}, "/path/2.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConfigFileFlag(tt.args))
		})
	}
}
