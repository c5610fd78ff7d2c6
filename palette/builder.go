package palette

import "github.com/okvt/okvt"

// Builder assembles a Command fluently:
//
//	palette.New().
//		Title("Undo").
//		Docs("Undo the last action.").
//		Shortcut("Shift+Z").
//		Action(undo).
//		Register("undo", registry)
type Builder struct {
	cmd Command
}

// New starts an empty builder.
func New() *Builder {
	return &Builder{cmd: Command{Params: map[string]Param{}}}
}

// Title sets the human-facing name.
func (b *Builder) Title(title string) *Builder {
	b.cmd.Title = title
	return b
}

// Docs sets the searchable description.
func (b *Builder) Docs(docs string) *Builder {
	b.cmd.Docs = docs
	return b
}

// Shortcut binds a key chord like "Shift+Z".
func (b *Builder) Shortcut(shortcut string) *Builder {
	b.cmd.Shortcut = shortcut
	return b
}

// Param declares a parameter with docs and a default argument.
func (b *Builder) Param(name, docs string, def okvt.Value) *Builder {
	b.cmd.Params[name] = Param{Docs: docs, Default: def}
	return b
}

// Action sets the function run on dispatch.
func (b *Builder) Action(action Action) *Builder {
	b.cmd.Action = action
	return b
}

// Build returns the assembled command.
func (b *Builder) Build() Command {
	return b.cmd.clone()
}

// Register adds the assembled command to r under name.
func (b *Builder) Register(name string, r *Registry) {
	r.Add(name, b.Build())
}
