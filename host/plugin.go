package host

// Plugin identifies the owner of scheduled tasks.
type Plugin interface {
	Name() string
}

// PluginDescription is optionally implemented by plugins that expose
// authorship and their Go package path. It is only used for diagnostics.
type PluginDescription interface {
	Authors() []string
	Package() string
}

// Server is the minimal surface every host exposes.
type Server interface {
	Name() string
	Version() string
}
