package zookeeper

import (
	"reflect"
	"testing"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"single segment", "/addresses", false},
		{"nested", "/pairstore/addresses.json", false},
		{"relative", "addresses", true},
		{"root", "/", true},
		{"empty", "", true},
		{"trailing slash", "/pairstore/", true},
		{"double slash", "/pairstore//addresses", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestParents(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"/a", nil},
		{"/a/b", []string{"/a"}},
		{"/a/b/c", []string{"/a", "/a/b"}},
	}

	for _, tt := range tests {
		if got := Parents(tt.path); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Parents(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
