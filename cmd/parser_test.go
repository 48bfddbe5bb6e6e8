package cmd

import (
	"reflect"
	"testing"
)

func testFlagSet() *CommandFlagSet {
	return &CommandFlagSet{
		Flags: map[string]*CommandFlag{
			"all":    {Name: "all", Short: "a", Type: "bool"},
			"offset": {Name: "offset", Short: "o", Type: "int", Default: int64(0)},
			"glob":   {Name: "glob", Short: "g", Type: "string"},
		},
	}
}

func TestParser_Parse(t *testing.T) {
	tests := []struct {
		name   string
		raw    []string
		args   []string
		all    bool
		offset int
		glob   string
	}{
		{"defaults", []string{"/a.txt"}, []string{"/a.txt"}, false, 0, ""},
		{"long", []string{"--all", "--offset=5", "/a.txt"}, []string{"/a.txt"}, true, 5, ""},
		{"long-separate", []string{"--glob", "*.py", "x"}, []string{"x"}, false, 0, "*.py"},
		{"short-combined", []string{"-ao", "3", "p"}, []string{"p"}, true, 3, ""},
		{"short-attached", []string{"-o7"}, []string{}, false, 7, ""},
		{"negative-positional", []string{"-1"}, []string{"-1"}, false, 0, ""},
		{"terminator", []string{"--", "-a", "--all"}, []string{"-a", "--all"}, false, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(tst *testing.T) {
			args, err := NewParser(testFlagSet()).Parse(tt.raw)
			if err != nil {
				tst.Fatalf("Parse failed: %v", err)
			}

			if !reflect.DeepEqual(args.Args, tt.args) {
				tst.Errorf("Expected args %v, got %v", tt.args, args.Args)
			}
			if args.Bool("all") != tt.all {
				tst.Errorf("Expected all=%v", tt.all)
			}
			if args.Int("offset") != tt.offset {
				tst.Errorf("Expected offset=%d, got %d", tt.offset, args.Int("offset"))
			}
			if args.String("glob") != tt.glob {
				tst.Errorf("Expected glob '%s', got '%s'", tt.glob, args.String("glob"))
			}
		})
	}
}

func TestParser_Errors(t *testing.T) {
	for _, raw := range [][]string{
		{"--unknown"},
		{"-x"},
		{"--offset"},
		{"--offset=abc"},
		{"-o"},
	} {
		if _, err := NewParser(testFlagSet()).Parse(raw); err == nil {
			t.Errorf("Expected error for %v", raw)
		}
	}

	required := &CommandFlagSet{
		Flags: map[string]*CommandFlag{
			"name": {Name: "name", Type: "string", Required: true},
		},
	}
	if _, err := NewParser(required).Parse(nil); err == nil {
		t.Errorf("Expected error for missing required flag")
	}
}

func TestSplitCommandLine(t *testing.T) {
	tests := []struct {
		line   string
		expect []string
	}{
		{"ls -l /", []string{"ls", "-l", "/"}},
		{`edit /a.txt "hello world" 'bye  now'`, []string{"edit", "/a.txt", "hello world", "bye  now"}},
		{`write /empty.txt ""`, []string{"write", "/empty.txt", ""}},
		{`grep "say \"hi\""`, []string{"grep", `say "hi"`}},
		{"  spaced\targs  ", []string{"spaced", "args"}},
	}

	for _, tt := range tests {
		got, err := SplitCommandLine(tt.line)
		if err != nil {
			t.Fatalf("SplitCommandLine(%q) failed: %v", tt.line, err)
		}
		if !reflect.DeepEqual(got, tt.expect) {
			t.Errorf("SplitCommandLine(%q) = %q, expected %q", tt.line, got, tt.expect)
		}
	}

	if _, err := SplitCommandLine(`read "open`); err == nil {
		t.Errorf("Expected error for unterminated quote")
	}
}
