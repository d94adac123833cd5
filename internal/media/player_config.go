package media

import "slices"

// Command is a resolved program invocation.
type Command struct {
	Name string
	Args []string
}

// OpenerRegistry knows the extra arguments well-known programs need.
type OpenerRegistry struct {
	openers map[string]openerDefinition
	goos    string
}

func newOpenerRegistry(f *openersFile, goos string) *OpenerRegistry {
	openers := f.Openers
	if openers == nil {
		openers = map[string]openerDefinition{}
	}
	return &OpenerRegistry{openers: openers, goos: goos}
}

// Command builds the invocation of program for a link of the given kind.
// Programs without a definition, or whose definition does not cover this
// platform or kind, get the link as their only argument.
func (r *OpenerRegistry) Command(program string, kind Kind, link string) Command {
	plain := Command{Name: program, Args: []string{link}}

	def, ok := r.openers[program]
	if !ok || !slices.Contains(def.Platforms, r.goos) {
		return plain
	}

	cfg := def.Page
	if kind == KindImage {
		cfg = def.Image
	}
	if cfg == nil {
		return plain
	}

	name := program
	if def.Command != "" {
		name = def.Command
	}
	args := append(slices.Clone(cfg.Args), link)
	return Command{Name: name, Args: args}
}
