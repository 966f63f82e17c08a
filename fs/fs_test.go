package appfs

import "testing"

// Directory embed patterns skip underscore-prefixed files; the email base
// layouts must survive regardless since every template parses against them.
func TestFS_includesBaseTemplates(t *testing.T) {
	files := []string{
		"assets/templates/email/_base.txt",
		"assets/templates/email/_base.gohtml",
		"migrations/0001_initial_schema.sql",
	}
	for _, name := range files {
		if _, err := FS.ReadFile(name); err != nil {
			t.Errorf("ReadFile(%q): %v", name, err)
		}
	}
}
